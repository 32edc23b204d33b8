package service

import (
	"context"
	"sort"
	"time"

	"chatline/module/chat/model"
	"chatline/tools/errs"
)

// latestScan is the page size the summary pass uses when looking for a
// visible last message; sender-only system messages can bury one, so the
// scan widens until it finds a visible message or runs out of history.
const latestScan = 20

// LastMessage is the derived per-conversation preview.
type LastMessage struct {
	ID                     string    `json:"_id"`
	Text                   string    `json:"text"`
	Image                  string    `json:"image,omitempty"`
	Sticker                string    `json:"sticker,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
	Revoked                bool      `json:"revoked"`
	Edited                 bool      `json:"edited"`
	IsSentByLoggedInUser   bool      `json:"isSentByLoggedInUser"`
}

// ConversationSummary is one sidebar row: the counterpart plus the most
// recent message the viewer is allowed to see.
type ConversationSummary struct {
	User        *model.User  `json:"user"`
	IsFriend    bool         `json:"isFriend"`
	LastMessage *LastMessage `json:"lastMessage,omitempty"`
}

// Summaries builds the viewer's conversation list: all accepted friends,
// plus every stranger with message history. Strangers whose only history is
// invisible to the viewer are dropped.
func (s *MessageService) Summaries(ctx context.Context, viewerID string) ([]*ConversationSummary, error) {
	accepted, err := s.friendships.ListAccepted(ctx, viewerID)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	friendIDs := make(map[string]bool, len(accepted))
	order := make([]string, 0, len(accepted))
	for _, f := range accepted {
		id := f.OtherSide(viewerID)
		if !friendIDs[id] {
			friendIDs[id] = true
			order = append(order, id)
		}
	}

	partners, err := s.messages.Partners(ctx, viewerID)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	for _, id := range partners {
		if id == viewerID || friendIDs[id] {
			continue
		}
		order = append(order, id)
	}

	users, err := s.users.ListByIDs(ctx, order)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]*ConversationSummary, 0, len(order))
	for _, id := range order {
		u := byID[id]
		if u == nil {
			continue
		}
		last, err := s.lastVisible(ctx, viewerID, id)
		if err != nil {
			return nil, err
		}
		isFriend := friendIDs[id]
		if !isFriend && last == nil {
			continue
		}
		out = append(out, &ConversationSummary{User: u, IsFriend: isFriend, LastMessage: last})
	}

	sortSummaries(out)
	return out, nil
}

// SummaryFor builds the single sidebar row for one counterpart. Strangers
// with no visible history come back as ErrNotFound, same as a missing user.
func (s *MessageService) SummaryFor(ctx context.Context, viewerID, otherID string) (*ConversationSummary, error) {
	u, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	isFriend, err := s.friendships.AcceptedBetween(ctx, viewerID, otherID)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	last, err := s.lastVisible(ctx, viewerID, otherID)
	if err != nil {
		return nil, err
	}
	if !isFriend && last == nil {
		return nil, errs.ErrNotFound.WithDetail("no conversation with " + otherID)
	}
	return &ConversationSummary{User: u, IsFriend: isFriend, LastMessage: last}, nil
}

// lastVisible finds the newest message of the pair the viewer may see.
// Revoked messages count; sender-only system messages addressed at someone
// else are skipped, with no fallback past them to nothing-at-all.
func (s *MessageService) lastVisible(ctx context.Context, viewerID, otherID string) (*LastMessage, error) {
	for limit := latestScan; ; limit *= 2 {
		msgs, err := s.messages.LatestBetween(ctx, viewerID, otherID, limit)
		if err != nil {
			return nil, errs.ErrUpstream.WithDetail(err.Error())
		}
		for _, m := range msgs {
			if !m.VisibleTo(viewerID) {
				continue
			}
			return previewOf(m, viewerID), nil
		}
		if len(msgs) < limit {
			return nil, nil
		}
	}
}

func previewOf(m *model.Message, viewerID string) *LastMessage {
	sentBySelf := m.SenderID == viewerID
	lm := &LastMessage{
		ID:                   m.ID,
		Text:                 m.Text,
		Image:                m.Image,
		Sticker:              m.Sticker,
		CreatedAt:            m.CreatedAt,
		Revoked:              m.Revoked,
		Edited:               m.Edited,
		IsSentByLoggedInUser: sentBySelf,
	}
	if m.Revoked {
		if sentBySelf {
			lm.Text = model.RevokedBySelfText
		} else {
			lm.Text = model.RevokedByOtherText
		}
		lm.Image = ""
		lm.Sticker = ""
		lm.Edited = false
	}
	return lm
}

// sortSummaries orders by most recent activity, newest first; rows without
// any message sink to the bottom, ties broken by display name.
func sortSummaries(list []*ConversationSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		var ti, tj time.Time
		if list[i].LastMessage != nil {
			ti = list[i].LastMessage.CreatedAt
		}
		if list[j].LastMessage != nil {
			tj = list[j].LastMessage.CreatedAt
		}
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return list[i].User.FullName < list[j].User.FullName
	})
}
