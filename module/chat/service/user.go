package service

import (
	"context"
	"strings"
	"time"

	"chatline/media"
	"chatline/module/chat/model"
	"chatline/tools/errs"
	"chatline/tools/ids"
	"chatline/tools/security"

	"golang.org/x/crypto/bcrypt"

	chatgw "chatline/service/chat"
)

const minPasswordLen = 6

// LastSeenReader resolves the last-seen instant for offline users.
type LastSeenReader interface {
	LastSeen(ctx context.Context, userID string) (time.Time, bool)
}

type UserService struct {
	users    UserStore
	auth     security.Options
	uploader media.Uploader
	pusher   Pusher
	lastSeen LastSeenReader
	clock    func() time.Time
}

func NewUserService(users UserStore, auth security.Options, uploader media.Uploader, pusher Pusher, lastSeen LastSeenReader, clock func() time.Time) *UserService {
	if clock == nil {
		clock = time.Now
	}
	if pusher == nil {
		pusher = NopPusher{}
	}
	return &UserService{
		users:    users,
		auth:     auth,
		uploader: uploader,
		pusher:   pusher,
		lastSeen: lastSeen,
		clock:    clock,
	}
}

type SignupInput struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type AuthResult struct {
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
	Expires time.Time   `json:"expires"`
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || strings.TrimSpace(in.FullName) == "" {
		return nil, errs.ErrEmptyContent.WithDetail("email and full name are required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, errs.ErrEmptyContent.WithDetail("password must be at least 6 characters")
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, errs.ErrForbidden.WithDetail("email already registered")
	} else if !errs.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	now := s.clock()
	u := &model.User{
		ID:                   ids.GenerateString(),
		Email:                email,
		FullName:             strings.TrimSpace(in.FullName),
		Password:             string(hash),
		AllowStrangerMessage: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	return s.issue(u)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errs.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrForbidden.WithDetail("invalid credentials")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, errs.ErrForbidden.WithDetail("invalid credentials")
	}
	return s.issue(u)
}

func (s *UserService) issue(u *model.User) (*AuthResult, error) {
	token, exp, err := security.Generate(s.auth, u.ID)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	return &AuthResult{User: u, Token: token, Expires: exp}, nil
}

// Get returns the profile with last-seen filled in from the presence mirror.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.lastSeen != nil {
		if at, ok := s.lastSeen.LastSeen(ctx, id); ok {
			u.LastSeen = at
		}
	}
	return u, nil
}

type ProfileInput struct {
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*model.User, error) {
	pic := in.ProfilePic
	if s.uploader != nil && strings.HasPrefix(pic, "data:") {
		url, err := s.uploader.Upload(ctx, pic)
		if err != nil {
			return nil, errs.ErrUpstream.WithDetail("avatar upload: " + err.Error())
		}
		pic = url
	}
	u, err := s.users.UpdateProfile(ctx, id, strings.TrimSpace(in.FullName), pic)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// SetAllowStranger flips the stranger-message policy and broadcasts the
// change so peers re-evaluate open composer windows immediately.
func (s *UserService) SetAllowStranger(ctx context.Context, id string, allow bool) (*model.User, error) {
	u, err := s.users.UpdateAllowStranger(ctx, id, allow)
	if err != nil {
		return nil, err
	}
	s.pusher.Broadcast(chatgw.EventUserSettingsUpdate, chatgw.SettingsUpdate{
		UserID:               id,
		AllowStrangerMessage: allow,
	})
	return u, nil
}
