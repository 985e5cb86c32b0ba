package service

import (
	"context"

	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store contracts consumed by the services. The repository package provides
// the MongoDB implementations; tests substitute in-memory fakes.

type CategoryStore interface {
	FindAll(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindByIDOrSlug(ctx context.Context, identifier string) (*models.Category, error)
	FindByTitle(ctx context.Context, title string) (*models.Category, error)
	Insert(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id primitive.ObjectID, upd models.CategoryUpdate) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ExamStore interface {
	FindAll(ctx context.Context) ([]models.Exam, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Exam, error)
	FindByIDOrSlug(ctx context.Context, identifier string) (*models.Exam, error)
	FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Exam, error)
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
	Insert(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, id primitive.ObjectID, upd models.ExamUpdate) (*models.Exam, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type QuestionStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Question, error)
	Insert(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, id primitive.ObjectID, question *models.Question) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) error
}

type PrincipalStore interface {
	FindPrincipal(ctx context.Context, id string) (*models.Principal, error)
}
