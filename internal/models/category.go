package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Title     string             `bson:"title" json:"title"`
	Slug      string             `bson:"slug" json:"slug"`
	Tier      Tier               `bson:"tier" json:"tier"`
	IsVisible bool               `bson:"is_visible" json:"isVisible"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// CategoryWithCount is the list projection: a category plus the number of
// exams currently referencing it.
type CategoryWithCount struct {
	Category  `bson:",inline"`
	ExamCount int64 `json:"examCount"`
}

// CategoryUpdate carries the mutable category fields. Nil means unchanged.
type CategoryUpdate struct {
	Title     *string
	Slug      *string
	Tier      *Tier
	IsVisible *bool
}
