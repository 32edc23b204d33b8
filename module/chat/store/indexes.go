package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pkg/errors"
)

const newsTTL = 24 * time.Hour

// EnsureIndexes creates the indexes the query paths rely on. Safe to call on
// every startup; mongo treats existing identical indexes as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		messageTable: {
			{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		userTable: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		friendshipTable: {
			{Keys: bson.D{{Key: "requester_id", Value: 1}, {Key: "recipient_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		notificationTable: {
			{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "is_read", Value: 1}}},
		},
		newsTable: {
			// posts expire without application code
			{Keys: bson.D{{Key: "created_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(int32(newsTTL / time.Second))},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for table, models := range specs {
		if _, err := db.Collection(table).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "ensure indexes on %s", table)
		}
	}
	return nil
}
