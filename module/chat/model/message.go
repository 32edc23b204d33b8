package model

import "time"

// SystemDenyText is the fixed body stored when a send is soft-denied.
const SystemDenyText = "This user doesn't accept messages from strangers."

// Preview texts for revoked messages, per viewer side.
const (
	RevokedBySelfText  = "You have revoked a message"
	RevokedByOtherText = "The other party has revoked a message"
)

// Message is a direct message between two users. Revoke blanks the content
// fields in place; the record itself is never removed.
type Message struct {
	ID            string `bson:"_id" json:"_id"`
	SenderID      string `bson:"sender_id" json:"senderId"`
	ReceiverID    string `bson:"receiver_id" json:"receiverId"`
	Text          string `bson:"text,omitempty" json:"text,omitempty"`
	Image         string `bson:"image,omitempty" json:"image,omitempty"`
	Sticker       string `bson:"sticker,omitempty" json:"sticker,omitempty"`
	System        bool   `bson:"system" json:"system"`
	OnlyForSender bool   `bson:"only_for_sender" json:"onlyForSender"`
	Revoked       bool   `bson:"revoked" json:"revoked"`
	RevokedBy     string `bson:"revoked_by,omitempty" json:"revokedBy,omitempty"`
	Edited        bool   `bson:"edited" json:"edited"`
	ReplyToID     string `bson:"reply_to_id,omitempty" json:"replyToId,omitempty"`

	// ReplyTo is resolved at read time from ReplyToID; never persisted.
	ReplyTo *ReplyPreview `bson:"-" json:"replyTo,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ReplyPreview is the denormalized slice of a quoted message carried on
// replies.
type ReplyPreview struct {
	ID       string `json:"_id"`
	SenderID string `json:"senderId"`
	Text     string `json:"text,omitempty"`
	Image    string `json:"image,omitempty"`
	Sticker  string `json:"sticker,omitempty"`
	Revoked  bool   `json:"revoked"`
}

// VisibleTo reports whether viewer may see this message. Sender-only system
// messages are hidden from everyone but their sender.
func (m *Message) VisibleTo(viewerID string) bool {
	if m.System && m.OnlyForSender {
		return m.SenderID == viewerID
	}
	return true
}

// CounterpartOf returns the other endpoint of the conversation from the
// viewer's perspective.
func (m *Message) CounterpartOf(viewerID string) string {
	if m.SenderID == viewerID {
		return m.ReceiverID
	}
	return m.SenderID
}
