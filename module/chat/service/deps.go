package service

import (
	"context"

	"chatline/module/chat/model"
)

// Pusher is the event router surface the services fan out through.
// Pushes are best-effort; implementations never return errors.
type Pusher interface {
	SendToUser(userID, event string, payload any)
	SendToUsers(userIDs []string, event string, payload any)
	Broadcast(event string, payload any)
}

// NopPusher satisfies Pusher for callers that do not fan out.
type NopPusher struct{}

func (NopPusher) SendToUser(string, string, any)    {}
func (NopPusher) SendToUsers([]string, string, any) {}
func (NopPusher) Broadcast(string, any)             {}

// Store contracts. Mongo-backed implementations live in module/chat/store;
// tests substitute in-memory fakes. Absent records come back as
// errs.ErrNotFound, never as nil-nil.

type MessageStore interface {
	Insert(ctx context.Context, m *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	Update(ctx context.Context, m *model.Message) error
	// ListBetween returns the full history of an unordered pair, oldest first.
	ListBetween(ctx context.Context, a, b string) ([]*model.Message, error)
	// LatestBetween returns newest first, at most limit entries.
	LatestBetween(ctx context.Context, a, b string, limit int) ([]*model.Message, error)
	// Partners lists every counterpart the user has exchanged messages with.
	Partners(ctx context.Context, userID string) ([]string, error)
}

type UserStore interface {
	Insert(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	UpdateProfile(ctx context.Context, id string, fullName, profilePic string) (*model.User, error)
	UpdateAllowStranger(ctx context.Context, id string, allow bool) (*model.User, error)
}

type FriendshipStore interface {
	Insert(ctx context.Context, f *model.Friendship) error
	Update(ctx context.Context, f *model.Friendship) error
	// FindBetween matches the unordered pair regardless of status.
	FindBetween(ctx context.Context, a, b string) (*model.Friendship, error)
	// AcceptedBetween is the capability probe used by authorization.
	AcceptedBetween(ctx context.Context, a, b string) (bool, error)
	FindPending(ctx context.Context, requesterID, recipientID string) (*model.Friendship, error)
	DeletePending(ctx context.Context, requesterID, recipientID string) (*model.Friendship, error)
	DeleteAccepted(ctx context.Context, a, b string) (*model.Friendship, error)
	ListAccepted(ctx context.Context, userID string) ([]*model.Friendship, error)
	ListPendingFrom(ctx context.Context, requesterID string) ([]*model.Friendship, error)
	ListPendingTo(ctx context.Context, recipientID string) ([]*model.Friendship, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit int64) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) (*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) error
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id, recipientID string) error
}

type NewsStore interface {
	Insert(ctx context.Context, n *model.News) error
	GetByID(ctx context.Context, id string) (*model.News, error)
	Update(ctx context.Context, n *model.News) error
	Delete(ctx context.Context, id string) error
	ListPublic(ctx context.Context, limit int64) ([]*model.News, error)
	ListByUser(ctx context.Context, userID string, page, perPage int64) ([]*model.News, error)
}
