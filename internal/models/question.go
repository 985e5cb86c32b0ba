package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Question struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Answers        []string           `bson:"answers" json:"answers"`
	CorrectAnswers []int              `bson:"correct_answers" json:"correctAnswers"`
	Points         float64            `bson:"points" json:"points"`
	Explanation    string             `bson:"explanation" json:"explanation"`
	Image          string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Validate checks the intra-question invariants: at least one answer, every
// correct-answer marker pointing at an existing answer, no duplicate markers
// and a non-negative point value.
func (q *Question) Validate() error {
	if len(q.Answers) == 0 {
		return fmt.Errorf("question has no answers")
	}
	for _, a := range q.Answers {
		if a == "" {
			return fmt.Errorf("question has an empty answer")
		}
	}
	if len(q.CorrectAnswers) == 0 {
		return fmt.Errorf("question has no correct answers")
	}
	seen := make(map[int]bool, len(q.CorrectAnswers))
	for _, idx := range q.CorrectAnswers {
		if idx < 0 || idx >= len(q.Answers) {
			return fmt.Errorf("correct answer index %d out of range", idx)
		}
		if seen[idx] {
			return fmt.Errorf("duplicate correct answer index %d", idx)
		}
		seen[idx] = true
	}
	if q.Points < 0 {
		return fmt.Errorf("points must be non-negative")
	}
	return nil
}
