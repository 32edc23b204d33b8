package service

import (
	"context"
	"time"

	"chatline/logger"
	"chatline/module/chat/model"
	"chatline/tools/errs"
	"chatline/tools/ids"

	chatgw "chatline/service/chat"
)

const notificationListLimit = 50

type NotificationService struct {
	notifications NotificationStore
	users         UserStore
	pusher        Pusher
	clock         func() time.Time
}

func NewNotificationService(notifications NotificationStore, users UserStore, pusher Pusher, clock func() time.Time) *NotificationService {
	if clock == nil {
		clock = time.Now
	}
	if pusher == nil {
		pusher = NopPusher{}
	}
	return &NotificationService{
		notifications: notifications,
		users:         users,
		pusher:        pusher,
		clock:         clock,
	}
}

// CreateFriendship stores a friendship notification and pushes it to the
// recipient if online. Failures here never fail the triggering operation.
func (s *NotificationService) CreateFriendship(ctx context.Context, recipientID, senderID string, typ model.NotificationType, friendshipID string) {
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		logger.Warnf("[notify] sender lookup failed: %v", err)
		return
	}

	var message string
	switch typ {
	case model.NotificationFriendRequest:
		message = sender.FullName + " sent you a friend request"
	case model.NotificationFriendAccepted:
		message = sender.FullName + " accepted your friend request"
	default:
		message = "You have a new notification"
	}

	n := &model.Notification{
		ID:           ids.GenerateString(),
		RecipientID:  recipientID,
		SenderID:     senderID,
		Type:         typ,
		FriendshipID: friendshipID,
		Message:      message,
		CreatedAt:    s.clock(),
		SenderUser:   sender.Summary(),
	}
	if err := s.notifications.Insert(ctx, n); err != nil {
		logger.Warnf("[notify] insert failed: %v", err)
		return
	}
	s.pusher.SendToUser(recipientID, chatgw.EventFriendRequestNotification, n)
}

func (s *NotificationService) List(ctx context.Context, recipientID string) ([]*model.Notification, error) {
	list, err := s.notifications.ListByRecipient(ctx, recipientID, notificationListLimit)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	for _, n := range list {
		if u, err := s.users.GetByID(ctx, n.SenderID); err == nil {
			n.SenderUser = u.Summary()
		}
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) (*model.Notification, error) {
	return s.notifications.MarkRead(ctx, id, recipientID)
}

// MarkAllRead clears the unread state and tells the user's live connection
// so other tabs/devices converge.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	if err := s.notifications.MarkAllRead(ctx, recipientID); err != nil {
		return errs.ErrUpstream.WithDetail(err.Error())
	}
	s.pusher.SendToUser(recipientID, chatgw.EventAllNotificationsRead, nil)
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.notifications.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, errs.ErrUpstream.WithDetail(err.Error())
	}
	return count, nil
}

func (s *NotificationService) Delete(ctx context.Context, id, recipientID string) error {
	return s.notifications.Delete(ctx, id, recipientID)
}
