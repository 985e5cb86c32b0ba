package service

import (
	"context"
	"log"
	"strings"

	"exam-service/internal/apperror"
	"exam-service/internal/event"
	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryService owns the category lifecycle, including the cascade that
// removes a category's exams, questions and images.
type CategoryService struct {
	categories  CategoryStore
	exams       ExamStore
	lifecycle   *ExamService
	events      *event.Publisher
	defaultTier models.Tier
}

func NewCategoryService(categories CategoryStore, exams ExamStore, lifecycle *ExamService, events *event.Publisher, defaultTier models.Tier) *CategoryService {
	return &CategoryService{
		categories:  categories,
		exams:       exams,
		lifecycle:   lifecycle,
		events:      events,
		defaultTier: defaultTier,
	}
}

type CreateCategoryInput struct {
	Title  string
	UserID primitive.ObjectID
	Tier   models.Tier
}

type UpdateCategoryInput struct {
	Title     *string
	Tier      *models.Tier
	IsVisible *bool
}

// ListCategories returns every category with its computed exam count.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.CategoryWithCount, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.CategoryWithCount, 0, len(categories))
	for _, c := range categories {
		count, err := s.exams.CountByCategory(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.CategoryWithCount{Category: c, ExamCount: count})
	}
	return out, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, identifier string) (*models.Category, error) {
	return s.categories.FindByIDOrSlug(ctx, identifier)
}

func (s *CategoryService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	if err := models.ValidateTitle(in.Title); err != nil {
		return nil, apperror.Validationf("%v", err)
	}
	tier := in.Tier
	if tier == "" {
		tier = s.defaultTier
	}
	if !tier.Valid() {
		return nil, apperror.Validationf("unknown tier %q", tier)
	}

	category := &models.Category{
		UserID: in.UserID,
		Title:  strings.TrimSpace(in.Title),
		Slug:   models.Slugify(in.Title),
		Tier:   tier,
	}
	if err := s.categories.Insert(context.WithoutCancel(ctx), category); err != nil {
		return nil, err
	}
	s.events.Submit("category.created", map[string]any{"id": category.ID.Hex(), "title": category.Title})
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id string, in UpdateCategoryInput) (*models.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.Validationf("invalid category id %q", id)
	}
	upd := models.CategoryUpdate{Tier: in.Tier, IsVisible: in.IsVisible}
	if in.Title != nil {
		if err := models.ValidateTitle(*in.Title); err != nil {
			return nil, apperror.Validationf("%v", err)
		}
		title := strings.TrimSpace(*in.Title)
		slug := models.Slugify(title)
		upd.Title = &title
		upd.Slug = &slug
	}
	if in.Tier != nil && !in.Tier.Valid() {
		return nil, apperror.Validationf("unknown tier %q", *in.Tier)
	}
	return s.categories.Update(context.WithoutCancel(ctx), oid, upd)
}

// DeleteCategory removes the category document first so it is immediately
// unlistable, then cascades over every exam referencing it. Individual exam
// teardown failures are logged and collected; the cascade keeps going.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.Validationf("invalid category id %q", id)
	}
	if _, err := s.categories.FindByID(ctx, oid); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.categories.Delete(ctx, oid); err != nil {
		return err
	}

	exams, err := s.exams.FindByCategory(ctx, oid)
	if err != nil {
		return err
	}
	var failed []string
	for i := range exams {
		if err := s.lifecycle.teardown(ctx, &exams[i]); err != nil {
			failed = append(failed, exams[i].ID.Hex())
			log.Printf("Failed to cascade-delete exam %s of category %s: %v", exams[i].ID.Hex(), id, err)
		}
	}
	if len(failed) > 0 {
		return apperror.Dependency(nil, "category deleted but exams %s could not be removed", strings.Join(failed, ", "))
	}

	s.events.Submit("category.deleted", map[string]any{"id": id})
	return nil
}
