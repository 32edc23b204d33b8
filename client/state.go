package client

import (
	"context"
	"sync"

	"chatline/logger"
	"chatline/module/chat/model"
	"chatline/module/chat/service"
)

// Store mirrors the server's view of the logged-in user's conversations and
// reconciles realtime events against it. All methods are safe for
// concurrent use; event handlers run on the session's read goroutine.
type Store struct {
	mu  sync.Mutex
	api *API

	selfID     string
	selectedID string

	messages  []*model.Message
	summaries []*service.ConversationSummary
	friends   []*model.User
	sent      []*model.Friendship
	received  []*model.Friendship

	onlineUsers []string
	typingUsers map[string]bool
}

func NewStore(api *API, selfID string) *Store {
	return &Store{
		api:         api,
		selfID:      selfID,
		typingUsers: map[string]bool{},
	}
}

// Bind subscribes the store's reconciliation handlers on the session.
// Calling it again after a reconnect replaces the previous subscriptions.
func (s *Store) Bind(sess *Session) {
	sess.OnNewMessage(s.applyNewMessage)
	sess.OnMessageRevoked(s.applyMutation)
	sess.OnMessageEdited(s.applyMutation)
	sess.OnTyping(s.setTyping)
	sess.OnStopTyping(s.clearTyping)
	sess.OnOnlineUsers(s.setOnlineUsers)
	sess.OnFriendshipUpdate(func(FriendshipUpdate) { s.refreshFriendState() })
	sess.OnSettingsUpdate(s.applySettingsUpdate)
	sess.OnDisconnect(s.clearAllTyping)
}

// SelectUser switches the open conversation: loads its history and drops
// any typing state left over from the previous one.
func (s *Store) SelectUser(ctx context.Context, otherID string) error {
	msgs, err := s.api.Conversation(ctx, otherID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = otherID
	s.messages = msgs
	s.typingUsers = map[string]bool{}
	return nil
}

func (s *Store) LoadSummaries(ctx context.Context) error {
	list, err := s.api.Summaries(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.summaries = list
	s.mu.Unlock()
	return nil
}

func (s *Store) Messages() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Summaries() []*service.ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*service.ConversationSummary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

func (s *Store) OnlineUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.onlineUsers))
	copy(out, s.onlineUsers)
	return out
}

// IsTyping reports whether the counterpart of the open conversation is
// typing. Signals from other users never surface.
func (s *Store) IsTyping(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typingUsers[userID]
}

// applyNewMessage appends to the open conversation when the message belongs
// to it, then refreshes the sidebar row for that counterpart. An arriving
// message implies the counterpart stopped typing.
func (s *Store) applyNewMessage(msg *model.Message) {
	s.mu.Lock()
	other := msg.CounterpartOf(s.selfID)
	if other == s.selectedID {
		s.messages = append(s.messages, msg)
	}
	delete(s.typingUsers, other)
	s.mu.Unlock()
	s.refreshSummaryFor(other)
}

// applyMutation patches a revoked or edited message in place: the open
// conversation, any reply previews quoting it, and the sidebar row.
func (s *Store) applyMutation(msg *model.Message) {
	s.mu.Lock()
	patchedSummary := false
	for i, m := range s.messages {
		if m.ID == msg.ID {
			s.messages[i] = msg
		}
		if m.ReplyTo != nil && m.ReplyTo.ID == msg.ID {
			m.ReplyTo.Text = msg.Text
			m.ReplyTo.Image = msg.Image
			m.ReplyTo.Sticker = msg.Sticker
			m.ReplyTo.Revoked = msg.Revoked
		}
	}
	for _, row := range s.summaries {
		if row.LastMessage != nil && row.LastMessage.ID == msg.ID {
			row.LastMessage.Revoked = msg.Revoked
			row.LastMessage.Edited = msg.Edited
			row.LastMessage.Text = previewText(msg, s.selfID)
			row.LastMessage.Image = msg.Image
			row.LastMessage.Sticker = msg.Sticker
			patchedSummary = true
		}
	}
	s.mu.Unlock()
	if !patchedSummary {
		// the mutated message may be the newest in a conversation whose
		// row we have not fetched yet
		if err := s.LoadSummaries(context.Background()); err != nil {
			logger.Warnf("[client] summary refetch: %v", err)
		}
	}
}

func previewText(m *model.Message, selfID string) string {
	if !m.Revoked {
		return m.Text
	}
	if m.SenderID == selfID {
		return model.RevokedBySelfText
	}
	return model.RevokedByOtherText
}

// refreshSummaryFor replaces one sidebar row from a single-user fetch and
// moves it to the front, since the sidebar stays ordered by latest activity.
// A full refetch is the fallback when the fetch fails.
func (s *Store) refreshSummaryFor(otherID string) {
	ctx := context.Background()
	row, err := s.api.SummaryFor(ctx, otherID)
	if err != nil {
		if err := s.LoadSummaries(ctx); err != nil {
			logger.Warnf("[client] summary refetch: %v", err)
		}
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.summaries {
		if r.User != nil && r.User.ID == otherID {
			s.summaries = append(s.summaries[:i], s.summaries[i+1:]...)
			break
		}
	}
	s.summaries = append([]*service.ConversationSummary{row}, s.summaries...)
}

func (s *Store) setTyping(senderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// only the open conversation shows the indicator
	if senderID != s.selectedID {
		return
	}
	s.typingUsers[senderID] = true
}

func (s *Store) clearTyping(senderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.typingUsers, senderID)
}

func (s *Store) clearAllTyping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typingUsers = map[string]bool{}
}

func (s *Store) setOnlineUsers(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onlineUsers = ids
}

// refreshFriendState refetches friends and both request directions; a
// friendship change invalidates all three at once.
func (s *Store) refreshFriendState() {
	ctx := context.Background()
	friends, err := s.api.Friends(ctx)
	if err != nil {
		logger.Warnf("[client] friends refetch: %v", err)
		return
	}
	sent, err := s.api.SentRequests(ctx)
	if err != nil {
		logger.Warnf("[client] sent requests refetch: %v", err)
		return
	}
	received, err := s.api.ReceivedRequests(ctx)
	if err != nil {
		logger.Warnf("[client] received requests refetch: %v", err)
		return
	}
	s.mu.Lock()
	s.friends, s.sent, s.received = friends, sent, received
	s.mu.Unlock()
}

func (s *Store) Friends() []*model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.User, len(s.friends))
	copy(out, s.friends)
	return out
}

func (s *Store) applySettingsUpdate(upd SettingsUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.summaries {
		if row.User != nil && row.User.ID == upd.UserID {
			row.User.AllowStrangerMessage = upd.AllowStrangerMessage
		}
	}
}
