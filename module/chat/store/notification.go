package store

import (
	"context"

	"chatline/module/chat/model"
	"chatline/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationTable = "notifications"

type Notifications struct {
	c *mongo.Collection
}

func NewNotifications(db *mongo.Database) *Notifications {
	return &Notifications{c: db.Collection(notificationTable)}
}

func (s *Notifications) Insert(ctx context.Context, n *model.Notification) error {
	_, err := s.c.InsertOne(ctx, n)
	return err
}

func (s *Notifications) ListByRecipient(ctx context.Context, recipientID string, limit int64) ([]*model.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"recipient_id": recipientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Notifications) MarkRead(ctx context.Context, id, recipientID string) (*model.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n model.Notification
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"is_read": true}},
		opts,
	).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound.WithDetail("notification " + id)
		}
		return nil, err
	}
	return &n, nil
}

func (s *Notifications) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	return err
}

func (s *Notifications) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
}

func (s *Notifications) Delete(ctx context.Context, id, recipientID string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "recipient_id": recipientID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound.WithDetail("notification " + id)
	}
	return nil
}
