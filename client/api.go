// Package client is the Go counterpart of the browser app: a thin REST
// client, a websocket session with bounded reconnect, and a conversation
// store that reconciles realtime events against fetched state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"chatline/module/chat/model"
	"chatline/module/chat/service"
	"chatline/tools/errs"

	"github.com/pkg/errors"
)

type API struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.WithStack(err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, rd)
	if err != nil {
		return errors.WithStack(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	client := a.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// the server writes CodeError bodies; surface them as such
		var ce errs.CodeError
		if json.NewDecoder(resp.Body).Decode(&ce) == nil && ce.Code != 0 {
			return &ce
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return errors.WithStack(json.NewDecoder(resp.Body).Decode(out))
}

func (a *API) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	var res service.AuthResult
	err := a.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	a.Token = res.Token
	return &res, nil
}

func (a *API) Signup(ctx context.Context, in service.SignupInput) (*service.AuthResult, error) {
	var res service.AuthResult
	if err := a.do(ctx, http.MethodPost, "/api/auth/signup", in, &res); err != nil {
		return nil, err
	}
	a.Token = res.Token
	return &res, nil
}

func (a *API) User(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := a.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *API) Summaries(ctx context.Context) ([]*service.ConversationSummary, error) {
	var list []*service.ConversationSummary
	if err := a.do(ctx, http.MethodGet, "/api/messages/summaries", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (a *API) SummaryFor(ctx context.Context, otherID string) (*service.ConversationSummary, error) {
	var row service.ConversationSummary
	if err := a.do(ctx, http.MethodGet, "/api/messages/summaries/"+url.PathEscape(otherID), nil, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (a *API) Conversation(ctx context.Context, otherID string) ([]*model.Message, error) {
	var list []*model.Message
	if err := a.do(ctx, http.MethodGet, "/api/messages/"+url.PathEscape(otherID), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (a *API) SendMessage(ctx context.Context, receiverID string, in service.SendInput) (*model.Message, error) {
	var msg model.Message
	if err := a.do(ctx, http.MethodPost, "/api/messages/"+url.PathEscape(receiverID), in, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *API) RevokeMessage(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	if err := a.do(ctx, http.MethodPost, "/api/messages/revoke/"+url.PathEscape(id), nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *API) EditMessage(ctx context.Context, id, text string) (*model.Message, error) {
	var msg model.Message
	err := a.do(ctx, http.MethodPut, "/api/messages/"+url.PathEscape(id), map[string]string{"text": text}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *API) Friends(ctx context.Context) ([]*model.User, error) {
	var list []*model.User
	if err := a.do(ctx, http.MethodGet, "/api/friends", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (a *API) SentRequests(ctx context.Context) ([]*model.Friendship, error) {
	var list []*model.Friendship
	if err := a.do(ctx, http.MethodGet, "/api/friends/requests/sent", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (a *API) ReceivedRequests(ctx context.Context) ([]*model.Friendship, error) {
	var list []*model.Friendship
	if err := a.do(ctx, http.MethodGet, "/api/friends/requests/received", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
