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

const userSequence = "users"

// MongoUserRepository keeps users in MongoDB with integer ids drawn from a
// counters collection, so ids can be used as order foreign keys.
type MongoUserRepository struct {
	users    *mongo.Collection
	counters *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		users:    db.Collection("users"),
		counters: db.Collection("counters"),
	}
}

func (m *MongoUserRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": userSequence},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate user id: %w", err)
	}
	return counter.Seq, nil
}

func (m *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	id, err := m.nextID(ctx)
	if err != nil {
		return err
	}
	user.ID = id
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	if _, err := m.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (m *MongoUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.findOne(ctx, bson.M{"username": username})
}

func (m *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := m.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (m *MongoUserRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.users.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	return nil
}
