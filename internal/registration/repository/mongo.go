package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"horizon/backend/internal/registration/domain"
)

// MongoRepository persists registrations in the "registrations" collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository returns a registration repository backed by the given collection.
func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// Find returns the registration for the (event, attendee) pair, or nil.
func (r *MongoRepository) Find(ctx context.Context, eventID, universityUID string) (*domain.Registration, error) {
	filter := bson.M{"event_id": eventID, "university_uid": universityUID}
	var reg domain.Registration
	if err := r.coll.FindOne(ctx, filter).Decode(&reg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

// Insert persists the registration.
func (r *MongoRepository) Insert(ctx context.Context, reg *domain.Registration) error {
	_, err := r.coll.InsertOne(ctx, reg)
	return err
}

// Delete removes the registration and reports whether one existed.
func (r *MongoRepository) Delete(ctx context.Context, eventID, universityUID string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"event_id": eventID, "university_uid": universityUID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
