package model

import "time"

type NotificationType string

const (
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccepted NotificationType = "friend_accepted"
)

type Notification struct {
	ID           string           `bson:"_id" json:"_id"`
	RecipientID  string           `bson:"recipient_id" json:"recipient"`
	SenderID     string           `bson:"sender_id" json:"sender"`
	Type         NotificationType `bson:"type" json:"type"`
	FriendshipID string           `bson:"friendship_id" json:"friendship"`
	Message      string           `bson:"message" json:"message"`
	IsRead       bool             `bson:"is_read" json:"isRead"`
	CreatedAt    time.Time        `bson:"created_at" json:"createdAt"`

	SenderUser *UserSummary `bson:"-" json:"senderUser,omitempty"`
}
