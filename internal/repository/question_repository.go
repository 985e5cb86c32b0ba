package repository

import (
	"context"
	"time"

	"exam-service/internal/apperror"
	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

func (r *QuestionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error) {
	var question models.Question
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err == mongo.ErrNoDocuments {
		return nil, apperror.NotFound("question")
	}
	if err != nil {
		return nil, apperror.Dependency(err, "failed to fetch question %s", id.Hex())
	}
	return &question, nil
}

// FindByIDs returns the questions for the given ids, reordered to match the
// input. Ids without a document are skipped.
func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.Col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperror.Dependency(err, "failed to fetch questions")
	}
	defer cur.Close(ctx)

	byID := make(map[primitive.ObjectID]models.Question, len(ids))
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, apperror.Dependency(err, "failed to decode question")
		}
		byID[q.ID] = q
	}

	questions := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func (r *QuestionRepository) Insert(ctx context.Context, question *models.Question) error {
	question.CreatedAt = time.Now()
	question.UpdatedAt = time.Now()
	res, err := r.Col.InsertOne(ctx, question)
	if err != nil {
		return apperror.Dependency(err, "failed to create question")
	}
	question.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *QuestionRepository) Update(ctx context.Context, id primitive.ObjectID, question *models.Question) error {
	set := bson.M{
		"answers":         question.Answers,
		"correct_answers": question.CorrectAnswers,
		"points":          question.Points,
		"explanation":     question.Explanation,
		"image":           question.Image,
		"updated_at":      time.Now(),
	}
	res, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return apperror.Dependency(err, "failed to update question %s", id.Hex())
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("question")
	}
	return nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperror.Dependency(err, "failed to delete question %s", id.Hex())
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("question")
	}
	return nil
}

func (r *QuestionRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.Col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return apperror.Dependency(err, "failed to delete questions")
	}
	return nil
}
