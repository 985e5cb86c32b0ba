package repository

import (
	"context"

	"exam-service/internal/apperror"
	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository reads principals out of the users collection maintained by
// the authentication service. This service never writes to it.
type UserRepository struct {
	Col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{Col: db.Collection("users")}
}

func (r *UserRepository) FindPrincipal(ctx context.Context, id string) (*models.Principal, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound("user")
	}
	var principal models.Principal
	err = r.Col.FindOne(ctx, bson.M{"_id": oid}).Decode(&principal)
	if err == mongo.ErrNoDocuments {
		return nil, apperror.NotFound("user")
	}
	if err != nil {
		return nil, apperror.Dependency(err, "failed to fetch user %s", id)
	}
	return &principal, nil
}
