package chat

import (
	"encoding/json"
	"fmt"
)

// Server -> client events.
const (
	EventNewMessage                = "newMessage"
	EventMessageRevoked            = "messageRevoked"
	EventMessageEdited             = "messageEdited"
	EventTyping                    = "typing"
	EventStopTyping                = "stopTyping"
	EventOnlineUsers               = "getOnlineUsers"
	EventFriendshipUpdate          = "friendshipUpdate"
	EventFriendRequestNotification = "friendRequestNotification"
	EventAllNotificationsRead      = "allNotificationsRead"
	EventUserSettingsUpdate        = "userSettingsUpdate"
)

// Client -> server signals. Anything else arriving on the socket is dropped.
const (
	SignalTyping     = "typing"
	SignalStopTyping = "stopTyping"
)

// Frame is the JSON envelope both directions use on the wire.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TypingSignal is the payload of inbound typing/stopTyping signals.
type TypingSignal struct {
	ReceiverID string `json:"receiverId"`
	SenderID   string `json:"senderId"`
}

// FriendshipUpdate is pushed to both sides of a friendship change.
type FriendshipUpdate struct {
	Type       string `json:"type"`
	Request    any    `json:"request,omitempty"`
	Friendship any    `json:"friendship,omitempty"`
}

// SettingsUpdate is broadcast when a user flips a messaging policy flag.
type SettingsUpdate struct {
	UserID               string `json:"userId"`
	AllowStrangerMessage bool   `json:"allowStrangerMessage"`
}

// EncodeFrame marshals an event with its payload into one wire frame.
func EncodeFrame(event string, payload any) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", event, err)
		}
		data = raw
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

func ParseFrame(raw []byte) (*Frame, error) {
	f := &Frame{}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, fmt.Errorf("unmarshal frame: %w", err)
	}
	if f.Event == "" {
		return nil, fmt.Errorf("frame without event")
	}
	return f, nil
}
