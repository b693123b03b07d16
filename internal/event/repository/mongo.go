package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"horizon/backend/internal/event/domain"
)

// MongoRepository persists events in the "events" collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository returns an event repository backed by the given collection.
func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// Create inserts the event.
func (r *MongoRepository) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.coll.InsertOne(ctx, e)
	return err
}

// UpdateByID applies set to the event with the given id in one round trip and
// returns the updated document, or nil when the id is unknown.
func (r *MongoRepository) UpdateByID(ctx context.Context, id string, set map[string]any) (*domain.Event, error) {
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var e domain.Event
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		opts,
	).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// ListPublished returns published events ordered by start time.
func (r *MongoRepository) ListPublished(ctx context.Context) ([]domain.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"status": domain.StatusPublished}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []domain.Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// AdjustRegisteredCount adds delta to the event's registered_count.
func (r *MongoRepository) AdjustRegisteredCount(ctx context.Context, id string, delta int) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"registered_count": delta}},
	)
	return err
}

// GetPublished returns the published event with the given id, or nil.
func (r *MongoRepository) GetPublished(ctx context.Context, id string) (*domain.Event, error) {
	filter := bson.M{"_id": id, "status": domain.StatusPublished}
	var e domain.Event
	if err := r.coll.FindOne(ctx, filter).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
