package assets

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	namePattern = regexp.MustCompile(`^\d{13,}-[0-9a-f]{8}-[A-Za-z0-9._-]+$`)
)

// NewObjectName generates a stored name for an uploaded file: millisecond
// timestamp, a random fragment and the sanitized original base name. Names
// are collision-resistant and not guessable from the original filename.
func NewObjectName(original string) string {
	base := unsafeChars.ReplaceAllString(strings.ReplaceAll(path.Base(original), " ", "-"), "")
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:8], base)
}

// ValidObjectName reports whether name could have been produced by
// NewObjectName. The engine rejects image references outside its own
// convention.
func ValidObjectName(name string) bool {
	return namePattern.MatchString(name)
}
