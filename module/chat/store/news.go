package store

import (
	"context"

	"chatline/module/chat/model"
	"chatline/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const newsTable = "news"

type NewsPosts struct {
	c *mongo.Collection
}

func NewNewsPosts(db *mongo.Database) *NewsPosts {
	return &NewsPosts{c: db.Collection(newsTable)}
}

func (s *NewsPosts) Insert(ctx context.Context, n *model.News) error {
	_, err := s.c.InsertOne(ctx, n)
	return err
}

func (s *NewsPosts) GetByID(ctx context.Context, id string) (*model.News, error) {
	var n model.News
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound.WithDetail("news " + id)
		}
		return nil, err
	}
	return &n, nil
}

func (s *NewsPosts) Update(ctx context.Context, n *model.News) error {
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": n.ID}, n)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound.WithDetail("news " + n.ID)
	}
	return nil
}

func (s *NewsPosts) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound.WithDetail("news " + id)
	}
	return nil
}

// ListPublic returns the public feed, pinned posts first, then newest.
func (s *NewsPosts) ListPublic(ctx context.Context, limit int64) ([]*model.News, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "pinned", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(limit)
	return s.findAll(ctx, bson.M{"privacy": model.NewsPublic}, opts)
}

func (s *NewsPosts) ListByUser(ctx context.Context, userID string, page, perPage int64) ([]*model.News, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * perPage).
		SetLimit(perPage)
	return s.findAll(ctx, bson.M{"user_id": userID}, opts)
}

func (s *NewsPosts) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.News, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.News
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
