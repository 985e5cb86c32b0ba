package repository

import (
	"context"
	"time"

	"exam-service/internal/apperror"
	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ExamRepository struct {
	Col *mongo.Collection
}

func NewExamRepository(db *mongo.Database) *ExamRepository {
	return &ExamRepository{Col: db.Collection("exams")}
}

func findOneAndUpdateReturnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func (r *ExamRepository) FindAll(ctx context.Context) ([]models.Exam, error) {
	cur, err := r.Col.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperror.Dependency(err, "failed to list exams")
	}
	defer cur.Close(ctx)
	var exams []models.Exam
	for cur.Next(ctx) {
		var e models.Exam
		if err := cur.Decode(&e); err != nil {
			return nil, apperror.Dependency(err, "failed to decode exam")
		}
		exams = append(exams, e)
	}
	return exams, nil
}

func (r *ExamRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Exam, error) {
	var exam models.Exam
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&exam)
	if err == mongo.ErrNoDocuments {
		return nil, apperror.NotFound("exam")
	}
	if err != nil {
		return nil, apperror.Dependency(err, "failed to fetch exam %s", id.Hex())
	}
	return &exam, nil
}

// FindByIDOrSlug resolves either addressing form: a hex ObjectID matches by
// id or slug, anything else by slug only.
func (r *ExamRepository) FindByIDOrSlug(ctx context.Context, identifier string) (*models.Exam, error) {
	filter := bson.M{"slug": identifier}
	if oid, err := primitive.ObjectIDFromHex(identifier); err == nil {
		filter = bson.M{"$or": []bson.M{{"_id": oid}, {"slug": identifier}}}
	}
	var exam models.Exam
	err := r.Col.FindOne(ctx, filter).Decode(&exam)
	if err == mongo.ErrNoDocuments {
		return nil, apperror.NotFound("exam")
	}
	if err != nil {
		return nil, apperror.Dependency(err, "failed to fetch exam %q", identifier)
	}
	return &exam, nil
}

func (r *ExamRepository) FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Exam, error) {
	cur, err := r.Col.Find(ctx, bson.M{"category": categoryID})
	if err != nil {
		return nil, apperror.Dependency(err, "failed to list exams for category %s", categoryID.Hex())
	}
	defer cur.Close(ctx)
	var exams []models.Exam
	for cur.Next(ctx) {
		var e models.Exam
		if err := cur.Decode(&e); err != nil {
			return nil, apperror.Dependency(err, "failed to decode exam")
		}
		exams = append(exams, e)
	}
	return exams, nil
}

func (r *ExamRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	n, err := r.Col.CountDocuments(ctx, bson.M{"category": categoryID})
	if err != nil {
		return 0, apperror.Dependency(err, "failed to count exams for category %s", categoryID.Hex())
	}
	return n, nil
}

func (r *ExamRepository) Insert(ctx context.Context, exam *models.Exam) error {
	exam.CreatedAt = time.Now()
	exam.UpdatedAt = time.Now()
	res, err := r.Col.InsertOne(ctx, exam)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict("an exam with this title already exists")
	}
	if err != nil {
		return apperror.Dependency(err, "failed to create exam")
	}
	exam.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ExamRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.ExamUpdate) (*models.Exam, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Slug != nil {
		set["slug"] = *upd.Slug
	}
	if upd.CategoryID != nil {
		set["category"] = *upd.CategoryID
	}
	if upd.Duration != nil {
		set["duration"] = *upd.Duration
	}
	if upd.Tier != nil {
		set["tier"] = *upd.Tier
	}
	if upd.IsVisible != nil {
		set["is_visible"] = *upd.IsVisible
	}
	if upd.QuestionIDs != nil {
		set["questions"] = *upd.QuestionIDs
	}

	var exam models.Exam
	err := r.Col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		findOneAndUpdateReturnAfter()).Decode(&exam)
	if err == mongo.ErrNoDocuments {
		return nil, apperror.NotFound("exam")
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, apperror.Conflict("an exam with this title already exists")
	}
	if err != nil {
		return nil, apperror.Dependency(err, "failed to update exam %s", id.Hex())
	}
	return &exam, nil
}

func (r *ExamRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperror.Dependency(err, "failed to delete exam %s", id.Hex())
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("exam")
	}
	return nil
}
