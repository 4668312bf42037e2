package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoProfileRepository struct {
	collection *mongo.Collection
}

func NewMongoProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{
		collection: db.Collection("profiles"),
	}
}

func (m *MongoProfileRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	var profile domain.Profile

	err := m.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

func (m *MongoProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	_, err := m.collection.InsertOne(ctx, profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrProfileExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// SetCart replaces old_cart wholesale and bumps cart_revision. The revision
// is informational; concurrent writers are not rejected.
func (m *MongoProfileRepository) SetCart(ctx context.Context, userID int64, serialized string) (int64, error) {
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"old_cart":   serialized,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"cart_revision": 1},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"cart_revision": 1})

	var updated struct {
		CartRevision int64 `bson:"cart_revision"`
	}
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrProfileNotFound
		}
		return 0, fmt.Errorf("failed to save cart: %w", err)
	}
	return updated.CartRevision, nil
}

func (m *MongoProfileRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create profile indexes: %w", err)
	}

	return nil
}
