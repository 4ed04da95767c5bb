package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barylstyle/contacts-api/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection    = "users"
	contactsCollection = "contacts"
)

// EnsureMongoIndexes creates the indexes the mongo repositories rely on.
// Uniqueness of emails is enforced by the database, not only by the
// registration check.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "verificationToken", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "tokenExpiresAt", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes, %w", err)
	}

	_, err = db.Collection(contactsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create contact indexes, %w", err)
	}

	return nil
}

type MongoUserRepository struct {
	c *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{c: db.Collection(usersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		id, err := NewID()
		if err != nil {
			return fmt.Errorf("failed to generate user ID, %w", err)
		}
		u.ID = id
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := r.c.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}

		return err
	}

	return nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"verificationToken": token})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User

	if err := r.c.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (r *MongoUserRepository) SetToken(ctx context.Context, id string, token *string, expiresAt *time.Time) error {
	if token == nil {
		return r.update(ctx, id, bson.M{
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
			"$unset": bson.M{"token": "", "tokenExpiresAt": ""},
		})
	}

	return r.update(ctx, id, bson.M{"$set": bson.M{
		"token":          *token,
		"tokenExpiresAt": expiresAt,
		"updatedAt":      time.Now().UTC(),
	}})
}

func (r *MongoUserRepository) SetAvatarURL(ctx context.Context, id, url string) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"avatarURL": url,
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *MongoUserRepository) SetSubscription(ctx context.Context, id string, s model.Subscription) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"subscription": s,
		"updatedAt":    time.Now().UTC(),
	}})
}

func (r *MongoUserRepository) MarkVerified(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{
		"$set":   bson.M{"verify": true, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"verificationToken": ""},
	})
}

func (r *MongoUserRepository) update(ctx context.Context, id string, update bson.M) error {
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *MongoUserRepository) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.c.UpdateMany(ctx,
		bson.M{"tokenExpiresAt": bson.M{"$lt": now}},
		bson.M{"$unset": bson.M{"token": "", "tokenExpiresAt": ""}},
	)
	if err != nil {
		return 0, err
	}

	return res.ModifiedCount, nil
}
