package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"horizon/backend/internal/session/domain"
)

// MongoRepository persists refresh sessions in the "refresh_tokens" collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository returns a session repository backed by the given collection.
func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// FindActive returns the session matching tokenHash that is not revoked and not
// expired at query time, or nil. The expiry check is part of the filter; the TTL
// purge on expires_at is only a cleanup mechanism.
func (r *MongoRepository) FindActive(ctx context.Context, tokenHash string) (*domain.RefreshSession, error) {
	filter := bson.M{
		"token_hash": tokenHash,
		"revoked":    false,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}
	var s domain.RefreshSession
	if err := r.coll.FindOne(ctx, filter).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// FindByUserAndDevice returns a non-revoked session for the (user, device) pair, or nil.
func (r *MongoRepository) FindByUserAndDevice(ctx context.Context, userID, deviceID string) (*domain.RefreshSession, error) {
	filter := bson.M{
		"user_id":   userID,
		"device_id": deviceID,
		"revoked":   false,
	}
	var s domain.RefreshSession
	if err := r.coll.FindOne(ctx, filter).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Insert persists the session. The unique index on token_hash turns a digest
// collision into ErrDuplicateToken.
func (r *MongoRepository) Insert(ctx context.Context, s *domain.RefreshSession) error {
	_, err := r.coll.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateToken
	}
	return err
}

// Revoke marks the session with the given hash as revoked. Idempotent.
func (r *MongoRepository) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"token_hash": tokenHash},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	return err
}

// Touch sets the session's last_used_at timestamp.
func (r *MongoRepository) Touch(ctx context.Context, tokenHash string, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"token_hash": tokenHash},
		bson.M{"$set": bson.M{"last_used_at": at}},
	)
	return err
}
