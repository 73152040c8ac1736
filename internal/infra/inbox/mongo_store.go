// Package inbox implements per-consumer event deduplication on the database
// backends.
package inbox

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appinbox "offerbook/internal/app/inbox"
)

// MongoStore records consumed event ids in app_inbox.
type MongoStore struct {
	col      *mongo.Collection
	consumer string
	now      func() time.Time
}

func NewMongoStore(ctx context.Context, db *mongo.Database, consumer string) (*MongoStore, error) {
	col := db.Collection("app_inbox")
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &MongoStore{col: col, consumer: consumer, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *MongoStore) Seen(ctx context.Context, eventID string) (bool, error) {
	doc := bson.M{"event_id": eventID, "consumer": s.consumer, "received_at": s.now().UnixMilli()}
	_, err := s.col.InsertOne(ctx, doc)
	if err == nil {
		return false, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	return false, err
}

func (s *MongoStore) Forget(ctx context.Context, eventID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"event_id": eventID, "consumer": s.consumer})
	return err
}

var _ appinbox.Store = (*MongoStore)(nil)
