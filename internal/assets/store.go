// Package assets persists question-image binaries. The lifecycle engine is
// the sole writer and deleter of objects under its naming convention.
package assets

import (
	"context"
	"io"
)

// Store is the asset-store collaborator: save bytes under a caller-supplied
// generated name, delete by name.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, name string) error
}

// Upload carries raw image bytes received with a request, before the engine
// assigns them a stored object name.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}
