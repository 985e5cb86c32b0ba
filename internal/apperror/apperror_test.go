package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"exam-service/internal/models"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validationf("bad input"), http.StatusBadRequest},
		{NotFound("exam"), http.StatusNotFound},
		{Forbidden(models.TierPremium), http.StatusForbidden},
		{Conflict("duplicate"), http.StatusConflict},
		{Dependency(errors.New("mongo down"), "failed to save"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestKindOfFollowsWrapping(t *testing.T) {
	inner := NotFound("category")
	wrapped := fmt.Errorf("resolving gate target: %w", inner)
	if KindOf(wrapped) != KindNotFound {
		t.Errorf("KindOf(wrapped) = %v, want KindNotFound", KindOf(wrapped))
	}
}

func TestMessageHidesCauses(t *testing.T) {
	err := Dependency(errors.New("connection refused 10.0.0.1:27017"), "failed to save question at index 2")
	if got := Message(err); got != "failed to save question at index 2" {
		t.Errorf("Message leaked cause: %q", got)
	}
	if got := Message(errors.New("raw driver error")); got != "internal server error" {
		t.Errorf("expected generic message for foreign errors, got %q", got)
	}
}

func TestForbiddenCarriesRequiredTier(t *testing.T) {
	err := Forbidden(models.TierBasic)
	if RequiredTierOf(err) != models.TierBasic {
		t.Errorf("RequiredTierOf = %s, want basic", RequiredTierOf(err))
	}
	if RequiredTierOf(Validationf("x")) != "" {
		t.Error("non-forbidden errors should carry no required tier")
	}
}
