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

type CategoryRepository struct {
	Col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{Col: db.Collection("categories")}
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	cur, err := r.Col.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperror.Dependency(err, "failed to list categories")
	}
	defer cur.Close(ctx)
	var categories []models.Category
	for cur.Next(ctx) {
		var c models.Category
		if err := cur.Decode(&c); err != nil {
			return nil, apperror.Dependency(err, "failed to decode category")
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, apperror.NotFound("category")
	}
	if err != nil {
		return nil, apperror.Dependency(err, "failed to fetch category %s", id.Hex())
	}
	return &category, nil
}

// FindByIDOrSlug resolves either addressing form: a hex ObjectID matches by
// id or slug, anything else by slug only.
func (r *CategoryRepository) FindByIDOrSlug(ctx context.Context, identifier string) (*models.Category, error) {
	filter := bson.M{"slug": identifier}
	if oid, err := primitive.ObjectIDFromHex(identifier); err == nil {
		filter = bson.M{"$or": []bson.M{{"_id": oid}, {"slug": identifier}}}
	}
	var category models.Category
	err := r.Col.FindOne(ctx, filter).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, apperror.NotFound("category")
	}
	if err != nil {
		return nil, apperror.Dependency(err, "failed to fetch category %q", identifier)
	}
	return &category, nil
}

func (r *CategoryRepository) FindByTitle(ctx context.Context, title string) (*models.Category, error) {
	var category models.Category
	err := r.Col.FindOne(ctx, bson.M{"title": title}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, apperror.NotFound("category")
	}
	if err != nil {
		return nil, apperror.Dependency(err, "failed to fetch category %q", title)
	}
	return &category, nil
}

func (r *CategoryRepository) Insert(ctx context.Context, category *models.Category) error {
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()
	res, err := r.Col.InsertOne(ctx, category)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict("a category with this title already exists")
	}
	if err != nil {
		return apperror.Dependency(err, "failed to create category")
	}
	category.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.CategoryUpdate) (*models.Category, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Slug != nil {
		set["slug"] = *upd.Slug
	}
	if upd.Tier != nil {
		set["tier"] = *upd.Tier
	}
	if upd.IsVisible != nil {
		set["is_visible"] = *upd.IsVisible
	}

	var category models.Category
	err := r.Col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		findOneAndUpdateReturnAfter()).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, apperror.NotFound("category")
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, apperror.Conflict("a category with this title already exists")
	}
	if err != nil {
		return nil, apperror.Dependency(err, "failed to update category %s", id.Hex())
	}
	return &category, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperror.Dependency(err, "failed to delete category %s", id.Hex())
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("category")
	}
	return nil
}
