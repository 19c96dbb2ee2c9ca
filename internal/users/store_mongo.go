package users

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct{ Coll *mongo.Collection }

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.Coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoStore) Insert(ctx context.Context, u *User) error {
	_, err := s.Coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

func (s *MongoStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.get(ctx, bson.M{"email": email})
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*User, error) {
	return s.get(ctx, bson.M{"id": id})
}

func (s *MongoStore) get(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	err := s.Coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
