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
)

const newsFeedLimit = 100

type NewsService struct {
	news     NewsStore
	users    UserStore
	uploader media.Uploader
	clock    func() time.Time
}

func NewNewsService(news NewsStore, users UserStore, uploader media.Uploader, clock func() time.Time) *NewsService {
	if clock == nil {
		clock = time.Now
	}
	return &NewsService{news: news, users: users, uploader: uploader, clock: clock}
}

type NewsInput struct {
	Content string            `json:"content"`
	Media   []string          `json:"media"`
	Privacy model.NewsPrivacy `json:"privacy"`
}

func (s *NewsService) Create(ctx context.Context, userID string, in NewsInput) (*model.News, error) {
	if strings.TrimSpace(in.Content) == "" && len(in.Media) == 0 {
		return nil, errs.ErrEmptyContent
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	privacy := in.Privacy
	switch privacy {
	case model.NewsPublic, model.NewsFriends, model.NewsPrivate:
	default:
		privacy = model.NewsPublic
	}
	now := s.clock()
	n := &model.News{
		ID:        ids.GenerateString(),
		UserID:    userID,
		UserName:  user.FullName,
		Content:   in.Content,
		Media:     s.resolveMedia(ctx, in.Media),
		Privacy:   privacy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.news.Insert(ctx, n); err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	return n, nil
}

// resolveMedia uploads any data-URI attachments. A failed upload keeps the
// original string rather than dropping the post.
func (s *NewsService) resolveMedia(ctx context.Context, items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s.uploader != nil && strings.HasPrefix(item, "data:") {
			if url, err := s.uploader.Upload(ctx, item); err == nil {
				out = append(out, url)
				continue
			} else {
				logger.Warnf("[news] media upload failed: %v", err)
			}
		}
		out = append(out, item)
	}
	return out
}

func (s *NewsService) Feed(ctx context.Context) ([]*model.News, error) {
	list, err := s.news.ListPublic(ctx, newsFeedLimit)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	return list, nil
}

func (s *NewsService) ByUser(ctx context.Context, userID string, page, perPage int64) ([]*model.News, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > newsFeedLimit {
		perPage = 20
	}
	list, err := s.news.ListByUser(ctx, userID, page, perPage)
	if err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	return list, nil
}

func (s *NewsService) Update(ctx context.Context, id, userID string, in NewsInput) (*model.News, error) {
	n, err := s.news.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, errs.ErrForbidden.WithDetail("only the author can edit a post")
	}
	if strings.TrimSpace(in.Content) == "" && len(in.Media) == 0 {
		return nil, errs.ErrEmptyContent
	}
	n.Content = in.Content
	n.Media = s.resolveMedia(ctx, in.Media)
	if in.Privacy != "" {
		n.Privacy = in.Privacy
	}
	n.UpdatedAt = s.clock()
	if err := s.news.Update(ctx, n); err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	return n, nil
}

func (s *NewsService) Delete(ctx context.Context, id, userID string) error {
	n, err := s.news.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return errs.ErrForbidden.WithDetail("only the author can delete a post")
	}
	if err := s.news.Delete(ctx, id); err != nil {
		return errs.ErrUpstream.WithDetail(err.Error())
	}
	return nil
}

// ToggleLike adds or removes the user's like and returns the updated post.
func (s *NewsService) ToggleLike(ctx context.Context, id, userID string) (*model.News, error) {
	n, err := s.news.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	found := false
	likes := n.Likes[:0]
	for _, l := range n.Likes {
		if l == userID {
			found = true
			continue
		}
		likes = append(likes, l)
	}
	if !found {
		likes = append(likes, userID)
	}
	n.Likes = likes
	n.UpdatedAt = s.clock()
	if err := s.news.Update(ctx, n); err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	return n, nil
}

func (s *NewsService) AddComment(ctx context.Context, id, userID, content string) (*model.News, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.ErrEmptyContent
	}
	n, err := s.news.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	n.Comments = append(n.Comments, model.NewsComment{
		UserID:    userID,
		UserName:  user.FullName,
		Content:   content,
		CreatedAt: s.clock(),
	})
	n.UpdatedAt = s.clock()
	if err := s.news.Update(ctx, n); err != nil {
		return nil, errs.ErrUpstream.WithDetail(err.Error())
	}
	return n, nil
}
