package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Exam struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Slug        string               `bson:"slug" json:"slug"`
	QuestionIDs []primitive.ObjectID `bson:"questions" json:"questions"`
	CategoryID  primitive.ObjectID   `bson:"category" json:"category"`
	UserID      primitive.ObjectID   `bson:"user" json:"user"`
	Duration    int                  `bson:"duration" json:"duration"`
	Tier        Tier                 `bson:"tier" json:"tier"`
	IsVisible   bool                 `bson:"is_visible" json:"isVisible"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updatedAt"`
}

// ExamWithQuestions is the single-exam projection with question documents
// resolved in presentation order.
type ExamWithQuestions struct {
	Exam      `bson:",inline"`
	Questions []Question `json:"resolvedQuestions"`
}

// ExamUpdate carries the mutable exam fields. Nil means unchanged.
type ExamUpdate struct {
	Title       *string
	Slug        *string
	CategoryID  *primitive.ObjectID
	Duration    *int
	Tier        *Tier
	IsVisible   *bool
	QuestionIDs *[]primitive.ObjectID
}
