package service

import (
	"context"
	"strings"
	"time"

	"chatline/logger"
	"chatline/media"
	"chatline/module/chat/model"
	"chatline/tools/errs"
	"chatline/tools/ids"

	"github.com/pkg/errors"

	chatgw "chatline/service/chat"
)

// MutationWindow bounds how long after creation a message may still be
// revoked or edited.
const MutationWindow = 2 * time.Minute

type MessageService struct {
	messages    MessageStore
	users       UserStore
	friendships FriendshipStore
	pusher      Pusher
	uploader    media.Uploader
	clock       func() time.Time
}

func NewMessageService(
	messages MessageStore,
	users UserStore,
	friendships FriendshipStore,
	pusher Pusher,
	uploader media.Uploader,
	clock func() time.Time,
) *MessageService {
	if clock == nil {
		clock = time.Now
	}
	if pusher == nil {
		pusher = NopPusher{}
	}
	return &MessageService{
		messages:    messages,
		users:       users,
		friendships: friendships,
		pusher:      pusher,
		uploader:    uploader,
		clock:       clock,
	}
}

// CanInteract is the single capability query behind send/edit/revoke
// authorization: self, accepted friendship in either direction, or the
// receiver's stranger-message policy.
func (s *MessageService) CanInteract(ctx context.Context, actorID, receiverID string) (bool, error) {
	if actorID == receiverID {
		return true, nil
	}
	accepted, err := s.friendships.AcceptedBetween(ctx, actorID, receiverID)
	if err != nil {
		return false, errors.Wrap(err, "friendship lookup")
	}
	if accepted {
		return true, nil
	}
	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		if errs.ErrNotFound.Is(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "receiver lookup")
	}
	return receiver.AllowStrangerMessage, nil
}

type SendInput struct {
	Text      string
	Image     string // data URI or URL
	Sticker   string
	ReplyToID string
}

// Send persists and fans out a direct message. An unauthorized send is a
// soft-deny: a sender-only system message is stored and returned instead
// of an error.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID string, in SendInput) (*model.Message, error) {
	allowed, err := s.CanInteract(ctx, senderID, receiverID)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}

	now := s.clock()
	if !allowed {
		system := &model.Message{
			ID:            ids.GenerateString(),
			SenderID:      senderID,
			ReceiverID:    receiverID,
			Text:          model.SystemDenyText,
			System:        true,
			OnlyForSender: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.messages.Insert(ctx, system); err != nil {
			return nil, errs.ErrUpstream.WithDetail(err.Error())
		}
		s.pusher.SendToUser(senderID, chatgw.EventNewMessage, system)
		return system, nil
	}

	imageURL := in.Image
	if strings.HasPrefix(in.Image, "data:") {
		// direct messages fail hard when the media store does; the raw
		// payload is never persisted on this path
		url, err := s.uploader.Upload(ctx, in.Image)
		if err != nil {
			return nil, errs.ErrUpstream.WithDetail("image upload: " + err.Error())
		}
		imageURL = url
	}

	msg := &model.Message{
		ID:         ids.GenerateString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       in.Text,
		Image:      imageURL,
		Sticker:    in.Sticker,
		ReplyToID:  in.ReplyToID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}

	s.resolveReply(ctx, msg)

	s.pusher.SendToUser(receiverID, chatgw.EventNewMessage, msg)
	s.pusher.SendToUser(senderID, chatgw.EventNewMessage, msg)
	return msg, nil
}

// Revoke blanks a message in place. Authorization is re-checked against the
// CURRENT friendship/policy state, not the state at send time: severing the
// relationship intentionally freezes past messages.
func (s *MessageService) Revoke(ctx context.Context, messageID, actorID string) (*model.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != actorID {
		return nil, errs.ErrForbidden.WithDetail("only the sender can revoke a message")
	}
	allowed, err := s.CanInteract(ctx, actorID, msg.ReceiverID)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	if !allowed {
		return nil, errs.ErrForbidden.WithDetail("the receiver no longer accepts messages from you")
	}
	if s.clock().Sub(msg.CreatedAt) > MutationWindow {
		return nil, errs.ErrExpired
	}
	if msg.Revoked {
		return nil, errs.ErrAlreadyRevoked
	}

	msg.Text = ""
	msg.Image = ""
	msg.Sticker = ""
	msg.Revoked = true
	msg.RevokedBy = actorID
	msg.Edited = false
	msg.UpdatedAt = s.clock()
	if err := s.messages.Update(ctx, msg); err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}

	s.pusher.SendToUser(msg.ReceiverID, chatgw.EventMessageRevoked, msg)
	s.pusher.SendToUser(msg.SenderID, chatgw.EventMessageRevoked, msg)
	return msg, nil
}

// Edit replaces the text of a message within the mutation window. A revoked
// message can never be edited, regardless of the window.
func (s *MessageService) Edit(ctx context.Context, messageID, actorID, newText string) (*model.Message, error) {
	if newText == "" {
		return nil, errs.ErrEmptyContent
	}
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != actorID {
		return nil, errs.ErrForbidden.WithDetail("only the sender can edit a message")
	}
	allowed, err := s.CanInteract(ctx, actorID, msg.ReceiverID)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	if !allowed {
		return nil, errs.ErrForbidden.WithDetail("the receiver no longer accepts messages from you")
	}
	if s.clock().Sub(msg.CreatedAt) > MutationWindow {
		return nil, errs.ErrExpired
	}
	if msg.Revoked {
		return nil, errs.ErrAlreadyRevoked
	}

	msg.Text = newText
	msg.Edited = true
	msg.UpdatedAt = s.clock()
	if err := s.messages.Update(ctx, msg); err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}

	s.pusher.SendToUser(msg.ReceiverID, chatgw.EventMessageEdited, msg)
	s.pusher.SendToUser(msg.SenderID, chatgw.EventMessageEdited, msg)
	return msg, nil
}

// Conversation returns the pair's history visible to viewerID, oldest
// first, with reply previews resolved.
func (s *MessageService) Conversation(ctx context.Context, viewerID, otherID string) ([]*model.Message, error) {
	msgs, err := s.messages.ListBetween(ctx, viewerID, otherID)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	out := make([]*model.Message, 0, len(msgs))
	for _, m := range msgs {
		if !m.VisibleTo(viewerID) {
			continue
		}
		s.resolveReply(ctx, m)
		out = append(out, m)
	}
	return out, nil
}

// resolveReply denormalizes the quoted message onto msg. A missing quote is
// not an error; the preview is simply absent.
func (s *MessageService) resolveReply(ctx context.Context, msg *model.Message) {
	if msg.ReplyToID == "" {
		return
	}
	quoted, err := s.messages.GetByID(ctx, msg.ReplyToID)
	if err != nil {
		logger.Debug("reply preview lookup failed: " + err.Error())
		return
	}
	msg.ReplyTo = &model.ReplyPreview{
		ID:       quoted.ID,
		SenderID: quoted.SenderID,
		Text:     quoted.Text,
		Image:    quoted.Image,
		Sticker:  quoted.Sticker,
		Revoked:  quoted.Revoked,
	}
}
