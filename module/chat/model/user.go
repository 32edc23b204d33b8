package model

import "time"

type User struct {
	ID                   string    `bson:"_id" json:"_id"`
	Email                string    `bson:"email" json:"email"`
	FullName             string    `bson:"full_name" json:"fullName"`
	Password             string    `bson:"password" json:"-"`
	ProfilePic           string    `bson:"profile_pic,omitempty" json:"profilePic,omitempty"`
	AllowStrangerMessage bool      `bson:"allow_stranger_message" json:"allowStrangerMessage"`
	LastSeen             time.Time `bson:"last_seen,omitempty" json:"lastSeen,omitempty"`
	CreatedAt            time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time `bson:"updated_at" json:"updatedAt"`
}

// UserSummary is the slim projection embedded in friendship and
// notification payloads.
type UserSummary struct {
	ID         string `bson:"_id" json:"_id"`
	FullName   string `bson:"full_name" json:"fullName"`
	ProfilePic string `bson:"profile_pic,omitempty" json:"profilePic,omitempty"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, FullName: u.FullName, ProfilePic: u.ProfilePic}
}
