package service

import (
	"context"
	"time"

	"chatline/module/chat/model"
	"chatline/tools/errs"
	"chatline/tools/ids"

	chatgw "chatline/service/chat"
)

// Friendship update types carried on the friendshipUpdate push event.
const (
	UpdateNewFriendRequest = "new_friend_request"
	UpdateRequestAccepted  = "request_accepted"
	UpdateRequestDeclined  = "request_declined"
	UpdateRequestCancelled = "request_cancelled"
	UpdateUnfriended       = "unfriended"
)

type FriendshipService struct {
	friendships   FriendshipStore
	users         UserStore
	notifications *NotificationService
	pusher        Pusher
	clock         func() time.Time
}

func NewFriendshipService(
	friendships FriendshipStore,
	users UserStore,
	notifications *NotificationService,
	pusher Pusher,
	clock func() time.Time,
) *FriendshipService {
	if clock == nil {
		clock = time.Now
	}
	if pusher == nil {
		pusher = NopPusher{}
	}
	return &FriendshipService{
		friendships:   friendships,
		users:         users,
		notifications: notifications,
		pusher:        pusher,
		clock:         clock,
	}
}

// SendRequest creates (or revives) a pending request. A pair declined
// earlier flips back to pending instead of growing a duplicate record.
func (s *FriendshipService) SendRequest(ctx context.Context, requesterID, recipientID string) (*model.Friendship, error) {
	if requesterID == recipientID {
		return nil, errs.ErrForbidden.WithDetail("cannot send a friend request to yourself")
	}

	existing, err := s.friendships.FindBetween(ctx, requesterID, recipientID)
	switch {
	case err == nil:
		switch existing.Status {
		case model.FriendshipAccepted:
			return nil, errs.ErrForbidden.WithDetail("you are already friends with this user")
		case model.FriendshipPending:
			return nil, errs.ErrForbidden.WithDetail("a pending friend request already exists")
		case model.FriendshipDeclined:
			existing.RequesterID = requesterID
			existing.RecipientID = recipientID
			existing.Status = model.FriendshipPending
			existing.UpdatedAt = s.clock()
			if err := s.friendships.Update(ctx, existing); err != nil {
				return nil, errs.ErrUpstream.WithDetail(err.Error())
			}
			s.afterRequest(ctx, existing)
			return existing, nil
		}
	case !errs.ErrNotFound.Is(err):
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}

	now := s.clock()
	f := &model.Friendship{
		ID:          ids.GenerateString(),
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      model.FriendshipPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.friendships.Insert(ctx, f); err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	s.afterRequest(ctx, f)
	return f, nil
}

func (s *FriendshipService) afterRequest(ctx context.Context, f *model.Friendship) {
	s.populate(ctx, f)
	if s.notifications != nil {
		s.notifications.CreateFriendship(ctx, f.RecipientID, f.RequesterID, model.NotificationFriendRequest, f.ID)
	}
	s.pusher.SendToUsers([]string{f.RecipientID, f.RequesterID}, chatgw.EventFriendshipUpdate,
		chatgw.FriendshipUpdate{Type: UpdateNewFriendRequest, Request: f})
}

// Accept transitions requester->recipient pending into accepted.
func (s *FriendshipService) Accept(ctx context.Context, requesterID, recipientID string) (*model.Friendship, error) {
	f, err := s.friendships.FindPending(ctx, requesterID, recipientID)
	if err != nil {
		return nil, err
	}
	f.Status = model.FriendshipAccepted
	f.UpdatedAt = s.clock()
	if err := s.friendships.Update(ctx, f); err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	s.populate(ctx, f)
	if s.notifications != nil {
		s.notifications.CreateFriendship(ctx, requesterID, recipientID, model.NotificationFriendAccepted, f.ID)
	}
	s.pusher.SendToUsers([]string{requesterID, recipientID}, chatgw.EventFriendshipUpdate,
		chatgw.FriendshipUpdate{Type: UpdateRequestAccepted, Friendship: f})
	return f, nil
}

// Decline marks the pending request declined. No notification, just the
// realtime update.
func (s *FriendshipService) Decline(ctx context.Context, requesterID, recipientID string) (*model.Friendship, error) {
	f, err := s.friendships.FindPending(ctx, requesterID, recipientID)
	if err != nil {
		return nil, err
	}
	f.Status = model.FriendshipDeclined
	f.UpdatedAt = s.clock()
	if err := s.friendships.Update(ctx, f); err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	s.pusher.SendToUsers([]string{requesterID, recipientID}, chatgw.EventFriendshipUpdate,
		chatgw.FriendshipUpdate{Type: UpdateRequestDeclined, Friendship: f})
	return f, nil
}

// Cancel removes a pending request the requester sent.
func (s *FriendshipService) Cancel(ctx context.Context, requesterID, recipientID string) error {
	f, err := s.friendships.DeletePending(ctx, requesterID, recipientID)
	if err != nil {
		return err
	}
	s.pusher.SendToUsers([]string{requesterID, recipientID}, chatgw.EventFriendshipUpdate,
		chatgw.FriendshipUpdate{Type: UpdateRequestCancelled, Friendship: f})
	return nil
}

// Unfriend severs an accepted friendship in either direction.
func (s *FriendshipService) Unfriend(ctx context.Context, userID, friendID string) error {
	f, err := s.friendships.DeleteAccepted(ctx, userID, friendID)
	if err != nil {
		return err
	}
	s.pusher.SendToUsers([]string{userID, friendID}, chatgw.EventFriendshipUpdate,
		chatgw.FriendshipUpdate{Type: UpdateUnfriended, Friendship: f})
	return nil
}

// Friends lists the accepted counterparts as user records.
func (s *FriendshipService) Friends(ctx context.Context, userID string) ([]*model.User, error) {
	accepted, err := s.friendships.ListAccepted(ctx, userID)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	idSet := make([]string, 0, len(accepted))
	for _, f := range accepted {
		idSet = append(idSet, f.OtherSide(userID))
	}
	users, err := s.users.ListByIDs(ctx, idSet)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	return users, nil
}

// SentRequests lists the user's outstanding requests, recipient populated.
func (s *FriendshipService) SentRequests(ctx context.Context, userID string) ([]*model.Friendship, error) {
	list, err := s.friendships.ListPendingFrom(ctx, userID)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	for _, f := range list {
		s.populate(ctx, f)
	}
	return list, nil
}

// ReceivedRequests lists unhandled requests addressed to the user,
// requester populated.
func (s *FriendshipService) ReceivedRequests(ctx context.Context, userID string) ([]*model.Friendship, error) {
	list, err := s.friendships.ListPendingTo(ctx, userID)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	for _, f := range list {
		s.populate(ctx, f)
	}
	return list, nil
}

func (s *FriendshipService) populate(ctx context.Context, f *model.Friendship) {
	if u, err := s.users.GetByID(ctx, f.RequesterID); err == nil {
		f.Requester = u.Summary()
	}
	if u, err := s.users.GetByID(ctx, f.RecipientID); err == nil {
		f.Recipient = u.Summary()
	}
}
