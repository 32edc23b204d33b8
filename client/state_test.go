package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatline/module/chat/model"
	"chatline/module/chat/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(api *API) *Store {
	return NewStore(api, "self")
}

func msg(id, sender, receiver, text string) *model.Message {
	return &model.Message{
		ID: id, SenderID: sender, ReceiverID: receiver, Text: text,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestTypingGatedOnOpenConversation(t *testing.T) {
	s := newTestStore(nil)
	s.selectedID = "bob"

	s.setTyping("carol")
	assert.False(t, s.IsTyping("carol"))

	s.setTyping("bob")
	assert.True(t, s.IsTyping("bob"))

	s.clearTyping("bob")
	assert.False(t, s.IsTyping("bob"))
}

func TestDisconnectClearsTyping(t *testing.T) {
	s := newTestStore(nil)
	s.selectedID = "bob"
	s.setTyping("bob")

	s.clearAllTyping()
	assert.False(t, s.IsTyping("bob"))
}

func TestApplyMutationPatchesInPlace(t *testing.T) {
	s := newTestStore(nil)
	s.selectedID = "bob"
	target := msg("m1", "self", "bob", "secret")
	reply := msg("m2", "bob", "self", "quoting you")
	reply.ReplyTo = &model.ReplyPreview{ID: "m1", SenderID: "self", Text: "secret"}
	s.messages = []*model.Message{target, reply}
	s.summaries = []*service.ConversationSummary{{
		User:        &model.User{ID: "bob"},
		LastMessage: &service.LastMessage{ID: "m2", Text: "quoting you"},
	}, {
		User:        &model.User{ID: "carol"},
		LastMessage: &service.LastMessage{ID: "m1", Text: "secret"},
	}}

	revoked := msg("m1", "self", "bob", "")
	revoked.Revoked = true
	revoked.RevokedBy = "self"
	s.applyMutation(revoked)

	got := s.Messages()
	assert.True(t, got[0].Revoked)
	// the quoting message's preview follows the revoke
	require.NotNil(t, got[1].ReplyTo)
	assert.True(t, got[1].ReplyTo.Revoked)
	assert.Empty(t, got[1].ReplyTo.Text)

	rows := s.Summaries()
	assert.Equal(t, model.RevokedBySelfText, rows[1].LastMessage.Text)
	assert.True(t, rows[1].LastMessage.Revoked)
}

func TestApplyNewMessageAppendsAndPatchesRow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/messages/summaries/:userId", func(c *gin.Context) {
		c.JSON(http.StatusOK, service.ConversationSummary{
			User:        &model.User{ID: c.Param("userId")},
			LastMessage: &service.LastMessage{ID: "m9", Text: "fresh"},
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	s := newTestStore(NewAPI(srv.URL, "token"))
	s.selectedID = "bob"
	s.summaries = []*service.ConversationSummary{{User: &model.User{ID: "bob"}}}

	s.applyNewMessage(msg("m9", "bob", "self", "fresh"))

	got := s.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "m9", got[0].ID)

	rows := s.Summaries()
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].LastMessage)
	assert.Equal(t, "fresh", rows[0].LastMessage.Text)
}

func TestApplyNewMessageIgnoresOtherConversations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/messages/summaries/:userId", func(c *gin.Context) {
		c.JSON(http.StatusOK, service.ConversationSummary{User: &model.User{ID: c.Param("userId")}})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	s := newTestStore(NewAPI(srv.URL, "token"))
	s.selectedID = "bob"
	s.summaries = []*service.ConversationSummary{{User: &model.User{ID: "carol"}}}

	s.applyNewMessage(msg("m1", "carol", "self", "pst"))
	assert.Empty(t, s.Messages())
}

func TestRefreshSummaryFallsBackToFullRefetch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fullFetches := 0
	r := gin.New()
	r.GET("/api/messages/summaries/:userId", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 1004, "msg": "record not found"})
	})
	r.GET("/api/messages/summaries", func(c *gin.Context) {
		fullFetches++
		c.JSON(http.StatusOK, []*service.ConversationSummary{
			{User: &model.User{ID: "dave"}, LastMessage: &service.LastMessage{ID: "m1", Text: "hi"}},
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	s := newTestStore(NewAPI(srv.URL, "token"))
	s.refreshSummaryFor("dave")

	assert.Equal(t, 1, fullFetches)
	rows := s.Summaries()
	require.Len(t, rows, 1)
	assert.Equal(t, "dave", rows[0].User.ID)
}

func TestSettingsUpdatePatchesSummaryUser(t *testing.T) {
	s := newTestStore(nil)
	s.summaries = []*service.ConversationSummary{{
		User: &model.User{ID: "bob", AllowStrangerMessage: true},
	}}

	s.applySettingsUpdate(SettingsUpdate{UserID: "bob", AllowStrangerMessage: false})
	assert.False(t, s.Summaries()[0].User.AllowStrangerMessage)
}

func TestSelectUserLoadsConversationAndResetsTyping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/messages/:userId", func(c *gin.Context) {
		raw, _ := json.Marshal([]*model.Message{msg("m1", "bob", "self", "hello")})
		c.Data(http.StatusOK, "application/json", raw)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	s := newTestStore(NewAPI(srv.URL, "token"))
	s.selectedID = "carol"
	s.setTyping("carol")

	require.NoError(t, s.SelectUser(context.Background(), "bob"))
	assert.Equal(t, "bob", s.selectedID)
	assert.False(t, s.IsTyping("carol"))
	require.Len(t, s.Messages(), 1)
}

func TestApplyNewMessageClearsTypingIndicator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/messages/summaries/:userId", func(c *gin.Context) {
		c.JSON(http.StatusOK, service.ConversationSummary{User: &model.User{ID: c.Param("userId")}})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	s := newTestStore(NewAPI(srv.URL, "token"))
	s.selectedID = "bob"
	s.setTyping("bob")
	require.True(t, s.IsTyping("bob"))

	// the message itself means bob stopped typing
	s.applyNewMessage(msg("m1", "bob", "self", "done typing"))
	assert.False(t, s.IsTyping("bob"))
}

func TestApplyNewMessageMovesRowToFront(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/messages/summaries/:userId", func(c *gin.Context) {
		c.JSON(http.StatusOK, service.ConversationSummary{
			User:        &model.User{ID: c.Param("userId")},
			LastMessage: &service.LastMessage{ID: "m2", Text: "newest"},
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	s := newTestStore(NewAPI(srv.URL, "token"))
	s.selectedID = "bob"
	s.summaries = []*service.ConversationSummary{
		{User: &model.User{ID: "carol"}},
		{User: &model.User{ID: "bob"}},
	}

	s.applyNewMessage(msg("m2", "bob", "self", "newest"))

	rows := s.Summaries()
	require.Len(t, rows, 2)
	assert.Equal(t, "bob", rows[0].User.ID)
	assert.Equal(t, "carol", rows[1].User.ID)
	require.NotNil(t, rows[0].LastMessage)
	assert.Equal(t, "newest", rows[0].LastMessage.Text)
}

func TestRefreshSummaryPrependsNewCounterpart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fullFetches := 0
	r := gin.New()
	r.GET("/api/messages/summaries/:userId", func(c *gin.Context) {
		c.JSON(http.StatusOK, service.ConversationSummary{
			User:        &model.User{ID: c.Param("userId")},
			LastMessage: &service.LastMessage{ID: "m1", Text: "hi there"},
		})
	})
	r.GET("/api/messages/summaries", func(c *gin.Context) {
		fullFetches++
		c.JSON(http.StatusOK, []*service.ConversationSummary{})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	s := newTestStore(NewAPI(srv.URL, "token"))
	s.summaries = []*service.ConversationSummary{{User: &model.User{ID: "carol"}}}

	s.refreshSummaryFor("eve")

	assert.Equal(t, 0, fullFetches)
	rows := s.Summaries()
	require.Len(t, rows, 2)
	assert.Equal(t, "eve", rows[0].User.ID)
	assert.Equal(t, "carol", rows[1].User.ID)
}
