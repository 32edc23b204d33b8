// Package store holds the mongo-backed persistence for the chat domain.
// Every store maps mongo.ErrNoDocuments to errs.ErrNotFound so services
// never see driver sentinels.
package store

import (
	"context"

	"chatline/module/chat/model"
	"chatline/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageTable = "messages"

type Messages struct {
	c *mongo.Collection
}

func NewMessages(db *mongo.Database) *Messages {
	return &Messages{c: db.Collection(messageTable)}
}

func (s *Messages) Insert(ctx context.Context, m *model.Message) error {
	_, err := s.c.InsertOne(ctx, m)
	return err
}

func (s *Messages) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var m model.Message
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound.WithDetail("message " + id)
		}
		return nil, err
	}
	return &m, nil
}

func (s *Messages) Update(ctx context.Context, m *model.Message) error {
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound.WithDetail("message " + m.ID)
	}
	return nil
}

// pairFilter matches every message in either direction of the pair.
func pairFilter(a, b string) bson.M {
	return bson.M{"$or": []bson.M{
		{"sender_id": a, "receiver_id": b},
		{"sender_id": b, "receiver_id": a},
	}}
}

func (s *Messages) ListBetween(ctx context.Context, a, b string) ([]*model.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, pairFilter(a, b), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Messages) LatestBetween(ctx context.Context, a, b string, limit int) ([]*model.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.c.Find(ctx, pairFilter(a, b), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Partners lists the distinct counterparts userID has message history with.
func (s *Messages) Partners(ctx context.Context, userID string) ([]string, error) {
	seen := map[string]struct{}{}

	sent, err := s.c.Distinct(ctx, "receiver_id", bson.M{"sender_id": userID})
	if err != nil {
		return nil, err
	}
	received, err := s.c.Distinct(ctx, "sender_id", bson.M{"receiver_id": userID})
	if err != nil {
		return nil, err
	}

	var out []string
	for _, vals := range [][]interface{}{sent, received} {
		for _, v := range vals {
			id, ok := v.(string)
			if !ok || id == userID {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}
