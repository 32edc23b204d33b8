package store

import (
	"context"

	"chatline/module/chat/model"
	"chatline/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const friendshipTable = "friendships"

type Friendships struct {
	c *mongo.Collection
}

func NewFriendships(db *mongo.Database) *Friendships {
	return &Friendships{c: db.Collection(friendshipTable)}
}

// unorderedPair matches the friendship row regardless of which side asked.
func unorderedPair(a, b string) bson.M {
	return bson.M{"$or": []bson.M{
		{"requester_id": a, "recipient_id": b},
		{"requester_id": b, "recipient_id": a},
	}}
}

func (s *Friendships) Insert(ctx context.Context, f *model.Friendship) error {
	_, err := s.c.InsertOne(ctx, f)
	return err
}

func (s *Friendships) Update(ctx context.Context, f *model.Friendship) error {
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": f.ID}, f)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound.WithDetail("friendship " + f.ID)
	}
	return nil
}

func (s *Friendships) FindBetween(ctx context.Context, a, b string) (*model.Friendship, error) {
	return s.findOne(ctx, unorderedPair(a, b))
}

func (s *Friendships) AcceptedBetween(ctx context.Context, a, b string) (bool, error) {
	filter := unorderedPair(a, b)
	filter["status"] = model.FriendshipAccepted
	count, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Friendships) FindPending(ctx context.Context, requesterID, recipientID string) (*model.Friendship, error) {
	return s.findOne(ctx, bson.M{
		"requester_id": requesterID,
		"recipient_id": recipientID,
		"status":       model.FriendshipPending,
	})
}

func (s *Friendships) DeletePending(ctx context.Context, requesterID, recipientID string) (*model.Friendship, error) {
	return s.findOneAndDelete(ctx, bson.M{
		"requester_id": requesterID,
		"recipient_id": recipientID,
		"status":       model.FriendshipPending,
	})
}

func (s *Friendships) DeleteAccepted(ctx context.Context, a, b string) (*model.Friendship, error) {
	filter := unorderedPair(a, b)
	filter["status"] = model.FriendshipAccepted
	return s.findOneAndDelete(ctx, filter)
}

func (s *Friendships) ListAccepted(ctx context.Context, userID string) ([]*model.Friendship, error) {
	return s.findAll(ctx, bson.M{
		"status": model.FriendshipAccepted,
		"$or": []bson.M{
			{"requester_id": userID},
			{"recipient_id": userID},
		},
	})
}

func (s *Friendships) ListPendingFrom(ctx context.Context, requesterID string) ([]*model.Friendship, error) {
	return s.findAll(ctx, bson.M{"requester_id": requesterID, "status": model.FriendshipPending})
}

func (s *Friendships) ListPendingTo(ctx context.Context, recipientID string) ([]*model.Friendship, error) {
	return s.findAll(ctx, bson.M{"recipient_id": recipientID, "status": model.FriendshipPending})
}

func (s *Friendships) findOne(ctx context.Context, filter bson.M) (*model.Friendship, error) {
	var f model.Friendship
	err := s.c.FindOne(ctx, filter).Decode(&f)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound.WithDetail("friendship")
		}
		return nil, err
	}
	return &f, nil
}

func (s *Friendships) findOneAndDelete(ctx context.Context, filter bson.M) (*model.Friendship, error) {
	var f model.Friendship
	err := s.c.FindOneAndDelete(ctx, filter).Decode(&f)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound.WithDetail("friendship")
		}
		return nil, err
	}
	return &f, nil
}

func (s *Friendships) findAll(ctx context.Context, filter bson.M) ([]*model.Friendship, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Friendship
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
