package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"chatline/module/chat/model"
	"chatline/tools/errs"
)

// In-memory stores backing the service tests. They honor the same
// contracts as the mongo implementations, ErrNotFound included.

type memMessages struct {
	mu   sync.Mutex
	rows []*model.Message
}

func (s *memMessages) Insert(_ context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *memMessages) GetByID(_ context.Context, id string) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.rows {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *memMessages) Update(_ context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.rows {
		if cur.ID == m.ID {
			cp := *m
			s.rows[i] = &cp
			return nil
		}
	}
	return errs.ErrNotFound
}

func (s *memMessages) pair(a, b string) []*model.Message {
	var out []*model.Message
	for _, m := range s.rows {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out
}

func (s *memMessages) ListBetween(_ context.Context, a, b string) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pair(a, b)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memMessages) LatestBetween(_ context.Context, a, b string, limit int) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pair(a, b)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memMessages) Partners(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, m := range s.rows {
		other := ""
		if m.SenderID == userID {
			other = m.ReceiverID
		} else if m.ReceiverID == userID {
			other = m.SenderID
		}
		if other == "" || other == userID || seen[other] {
			continue
		}
		seen[other] = true
		out = append(out, other)
	}
	return out, nil
}

type memUsers struct {
	mu   sync.Mutex
	rows map[string]*model.User
}

func newMemUsers(users ...*model.User) *memUsers {
	s := &memUsers{rows: map[string]*model.User{}}
	for _, u := range users {
		cp := *u
		s.rows[u.ID] = &cp
	}
	return s
}

func (s *memUsers) Insert(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.rows[u.ID] = &cp
	return nil
}

func (s *memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *memUsers) ListByIDs(_ context.Context, ids []string) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.User
	for _, id := range ids {
		if u, ok := s.rows[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memUsers) UpdateProfile(_ context.Context, id string, fullName, profilePic string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if fullName != "" {
		u.FullName = fullName
	}
	if profilePic != "" {
		u.ProfilePic = profilePic
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) UpdateAllowStranger(_ context.Context, id string, allow bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	u.AllowStrangerMessage = allow
	cp := *u
	return &cp, nil
}

type memFriendships struct {
	mu   sync.Mutex
	rows []*model.Friendship
}

func (s *memFriendships) Insert(_ context.Context, f *model.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *f
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *memFriendships) Update(_ context.Context, f *model.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.rows {
		if cur.ID == f.ID {
			cp := *f
			s.rows[i] = &cp
			return nil
		}
	}
	return errs.ErrNotFound
}

func pairMatches(f *model.Friendship, a, b string) bool {
	return (f.RequesterID == a && f.RecipientID == b) || (f.RequesterID == b && f.RecipientID == a)
}

func (s *memFriendships) FindBetween(_ context.Context, a, b string) (*model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.rows {
		if pairMatches(f, a, b) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *memFriendships) AcceptedBetween(_ context.Context, a, b string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.rows {
		if pairMatches(f, a, b) && f.Status == model.FriendshipAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (s *memFriendships) FindPending(_ context.Context, requesterID, recipientID string) (*model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.rows {
		if f.RequesterID == requesterID && f.RecipientID == recipientID && f.Status == model.FriendshipPending {
			cp := *f
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *memFriendships) DeletePending(_ context.Context, requesterID, recipientID string) (*model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.rows {
		if f.RequesterID == requesterID && f.RecipientID == recipientID && f.Status == model.FriendshipPending {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return f, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *memFriendships) DeleteAccepted(_ context.Context, a, b string) (*model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.rows {
		if pairMatches(f, a, b) && f.Status == model.FriendshipAccepted {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return f, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *memFriendships) ListAccepted(_ context.Context, userID string) ([]*model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Friendship
	for _, f := range s.rows {
		if f.Status == model.FriendshipAccepted && (f.RequesterID == userID || f.RecipientID == userID) {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memFriendships) ListPendingFrom(_ context.Context, requesterID string) ([]*model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Friendship
	for _, f := range s.rows {
		if f.Status == model.FriendshipPending && f.RequesterID == requesterID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memFriendships) ListPendingTo(_ context.Context, recipientID string) ([]*model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Friendship
	for _, f := range s.rows {
		if f.Status == model.FriendshipPending && f.RecipientID == recipientID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memNotifications struct {
	mu   sync.Mutex
	rows []*model.Notification
}

func (s *memNotifications) Insert(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *memNotifications) ListByRecipient(_ context.Context, recipientID string, limit int64) ([]*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Notification
	for _, n := range s.rows {
		if n.RecipientID == recipientID {
			cp := *n
			out = append(out, &cp)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memNotifications) MarkRead(_ context.Context, id, recipientID string) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.rows {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			cp := *n
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *memNotifications) MarkAllRead(_ context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.rows {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func (s *memNotifications) CountUnread(_ context.Context, recipientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.rows {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *memNotifications) Delete(_ context.Context, id, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.rows {
		if n.ID == id && n.RecipientID == recipientID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

// recordingPusher captures every push for assertions.
type recordingPusher struct {
	mu     sync.Mutex
	pushes []pushRecord
}

type pushRecord struct {
	userID  string
	event   string
	payload any
}

func (p *recordingPusher) SendToUser(userID, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushRecord{userID: userID, event: event, payload: payload})
}

func (p *recordingPusher) SendToUsers(userIDs []string, event string, payload any) {
	for _, id := range userIDs {
		p.SendToUser(id, event, payload)
	}
}

func (p *recordingPusher) Broadcast(event string, payload any) {
	p.SendToUser("*", event, payload)
}

func (p *recordingPusher) recorded() []pushRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]pushRecord, len(p.pushes))
	copy(out, p.pushes)
	return out
}

func (p *recordingPusher) eventsFor(userID string) []string {
	var out []string
	for _, r := range p.recorded() {
		if r.userID == userID {
			out = append(out, r.event)
		}
	}
	return out
}

// fixedClock returns a settable clock starting at a stable instant.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
