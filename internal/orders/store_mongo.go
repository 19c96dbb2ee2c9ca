package orders

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct{ Coll *mongo.Collection }

// EnsureIndexes creates the unique tracker id index. Call once at startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.Coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "trackerId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoStore) Insert(ctx context.Context, o *Order) error {
	_, err := s.Coll.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return ErrTrackerExists
	}
	return err
}

func (s *MongoStore) GetByTrackerID(ctx context.Context, trackerID string) (*Order, error) {
	var o Order
	err := s.Coll.FindOne(ctx, bson.M{"trackerId": trackerID}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Order, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoStore) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	return s.find(ctx, bson.M{"userEmail": email})
}

func (s *MongoStore) Update(ctx context.Context, o *Order, expectedVersion int64) error {
	res, err := s.Coll.UpdateOne(ctx,
		bson.M{"trackerId": o.TrackerID, "version": expectedVersion},
		bson.M{"$set": bson.M{
			"status":    o.Status,
			"timeline":  o.Timeline,
			"updatedAt": o.UpdatedAt,
			"version":   o.Version,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := s.Coll.CountDocuments(ctx, bson.M{"trackerId": o.TrackerID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (s *MongoStore) DeleteInvalid(ctx context.Context) (int64, error) {
	res, err := s.Coll.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"trackerId": nil},
		bson.M{"trackerId": bson.M{"$exists": false}},
		bson.M{"trackerId": ""},
	}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) find(ctx context.Context, filter bson.M) ([]Order, error) {
	cur, err := s.Coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "placedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]Order, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
