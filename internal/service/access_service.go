package service

import (
	"context"

	"exam-service/internal/apperror"
	"exam-service/internal/models"
)

// AccessService is the tier gate. It resolves the requesting principal and
// the addressed content item, compares tiers and allows or denies. It is
// read-only, idempotent and safe to call concurrently.
type AccessService struct {
	principals PrincipalStore
	categories CategoryStore
	exams      ExamStore
}

func NewAccessService(principals PrincipalStore, categories CategoryStore, exams ExamStore) *AccessService {
	return &AccessService{principals: principals, categories: categories, exams: exams}
}

// Principal resolves the requesting principal by identity.
func (s *AccessService) Principal(ctx context.Context, principalID string) (*models.Principal, error) {
	return s.principals.FindPrincipal(ctx, principalID)
}

// AuthorizeExam gates access to an exam addressed by id or slug.
func (s *AccessService) AuthorizeExam(ctx context.Context, principalID, identifier string) (*models.Principal, error) {
	principal, err := s.principals.FindPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	exam, err := s.exams.FindByIDOrSlug(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if err := authorize(principal, exam.Tier); err != nil {
		return nil, err
	}
	return principal, nil
}

// AuthorizeCategory gates access to a category addressed by id or slug.
func (s *AccessService) AuthorizeCategory(ctx context.Context, principalID, identifier string) (*models.Principal, error) {
	principal, err := s.principals.FindPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	category, err := s.categories.FindByIDOrSlug(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if err := authorize(principal, category.Tier); err != nil {
		return nil, err
	}
	return principal, nil
}

// AuthorizeCategoryByTitle gates access to a category addressed by its exact
// title, the addressing form used by the per-category exam listing.
func (s *AccessService) AuthorizeCategoryByTitle(ctx context.Context, principalID, title string) (*models.Principal, error) {
	principal, err := s.principals.FindPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	category, err := s.categories.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if err := authorize(principal, category.Tier); err != nil {
		return nil, err
	}
	return principal, nil
}

func authorize(principal *models.Principal, contentTier models.Tier) error {
	if principal.Tier.Dominates(contentTier) {
		return nil
	}
	return apperror.Forbidden(contentTier)
}
