package model

import "time"

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
)

// Friendship is unique per unordered user pair. A declined record is reused
// when the requester asks again: status goes back to pending instead of
// inserting a duplicate.
type Friendship struct {
	ID          string           `bson:"_id" json:"_id"`
	RequesterID string           `bson:"requester_id" json:"requester"`
	RecipientID string           `bson:"recipient_id" json:"recipient"`
	Status      FriendshipStatus `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`

	// Populated user summaries for realtime payloads; never persisted.
	Requester *UserSummary `bson:"-" json:"requesterUser,omitempty"`
	Recipient *UserSummary `bson:"-" json:"recipientUser,omitempty"`
}

// OtherSide returns the pair member that is not userID.
func (f *Friendship) OtherSide(userID string) string {
	if f.RequesterID == userID {
		return f.RecipientID
	}
	return f.RequesterID
}
