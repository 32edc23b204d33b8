package model

import "time"

type NewsPrivacy string

const (
	NewsPublic  NewsPrivacy = "public"
	NewsFriends NewsPrivacy = "friends"
	NewsPrivate NewsPrivacy = "private"
)

// News is an ephemeral post. The collection carries a TTL index on
// created_at, so posts expire 24h after creation without application code.
type News struct {
	ID       string        `bson:"_id" json:"_id"`
	UserID   string        `bson:"user_id" json:"userId"`
	UserName string        `bson:"user_name" json:"userName"`
	Content  string        `bson:"content" json:"content"`
	Media    []string      `bson:"media,omitempty" json:"media,omitempty"`
	Privacy  NewsPrivacy   `bson:"privacy" json:"privacy"`
	Likes    []string      `bson:"likes,omitempty" json:"likes,omitempty"`
	Comments []NewsComment `bson:"comments,omitempty" json:"comments,omitempty"`
	Pinned   bool          `bson:"pinned" json:"pinned"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

type NewsComment struct {
	UserID    string    `bson:"user_id" json:"userId"`
	UserName  string    `bson:"user_name" json:"userName"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
