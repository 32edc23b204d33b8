package store

import (
	"context"
	"time"

	"chatline/module/chat/model"
	"chatline/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userTable = "users"

type Users struct {
	c *mongo.Collection
}

func NewUsers(db *mongo.Database) *Users {
	return &Users{c: db.Collection(userTable)}
}

func (s *Users) Insert(ctx context.Context, u *model.User) error {
	_, err := s.c.InsertOne(ctx, u)
	return err
}

func (s *Users) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound.WithDetail("user " + id)
		}
		return nil, err
	}
	return &u, nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound.WithDetail("email " + email)
		}
		return nil, err
	}
	return &u, nil
}

func (s *Users) ListByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Users) UpdateProfile(ctx context.Context, id string, fullName, profilePic string) (*model.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if fullName != "" {
		set["full_name"] = fullName
	}
	if profilePic != "" {
		set["profile_pic"] = profilePic
	}
	return s.findAndUpdate(ctx, id, bson.M{"$set": set})
}

func (s *Users) UpdateAllowStranger(ctx context.Context, id string, allow bool) (*model.User, error) {
	return s.findAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"allow_stranger_message": allow,
		"updated_at":             time.Now(),
	}})
}

func (s *Users) findAndUpdate(ctx context.Context, id string, update bson.M) (*model.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u model.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound.WithDetail("user " + id)
		}
		return nil, err
	}
	return &u, nil
}
