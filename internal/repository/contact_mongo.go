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

type MongoContactRepository struct {
	c *mongo.Collection
}

func NewMongoContactRepository(db *mongo.Database) *MongoContactRepository {
	return &MongoContactRepository{c: db.Collection(contactsCollection)}
}

func (r *MongoContactRepository) List(ctx context.Context, owner string, f model.ContactFilter) ([]model.Contact, error) {
	filter := bson.M{"owner": owner}
	if f.Favorite != nil {
		filter["favorite"] = *f.Favorite
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if f.Limit > 0 {
		opts.SetSkip(int64(f.Page * f.Limit)).SetLimit(int64(f.Limit))
	}

	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	contacts := []model.Contact{}
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, err
	}

	return contacts, nil
}

func (r *MongoContactRepository) Get(ctx context.Context, owner, id string) (*model.Contact, error) {
	var contact model.Contact

	err := r.c.FindOne(ctx, bson.M{"_id": id, "owner": owner}).Decode(&contact)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &contact, nil
}

func (r *MongoContactRepository) Create(ctx context.Context, c *model.Contact) error {
	if c.ID == "" {
		id, err := NewID()
		if err != nil {
			return fmt.Errorf("failed to generate contact ID, %w", err)
		}
		c.ID = id
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.c.InsertOne(ctx, c)
	return err
}

func (r *MongoContactRepository) Update(ctx context.Context, owner, id string, p model.ContactPatch) (*model.Contact, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}

	return r.findAndSet(ctx, owner, id, set)
}

func (r *MongoContactRepository) SetFavorite(ctx context.Context, owner, id string, favorite bool) (*model.Contact, error) {
	return r.findAndSet(ctx, owner, id, bson.M{
		"favorite":  favorite,
		"updatedAt": time.Now().UTC(),
	})
}

func (r *MongoContactRepository) findAndSet(ctx context.Context, owner, id string, set bson.M) (*model.Contact, error) {
	var contact model.Contact

	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner": owner},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&contact)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &contact, nil
}

func (r *MongoContactRepository) Delete(ctx context.Context, owner, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
