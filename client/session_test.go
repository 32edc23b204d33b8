package client

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chatgw "chatline/service/chat"
	"chatline/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReplacesHandler(t *testing.T) {
	s := NewSession("ws://unused", "alice", "token")

	var first, second int
	s.OnTyping(func(string) { first++ })
	s.OnTyping(func(string) { second++ })

	raw, err := json.Marshal("bob")
	require.NoError(t, err)
	s.dispatch(&chatgw.Frame{Event: chatgw.SignalTyping, Data: raw})

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestDispatchDropsUnknownEvents(t *testing.T) {
	s := NewSession("ws://unused", "alice", "token")
	s.dispatch(&chatgw.Frame{Event: "somethingElse"})
}

func newTestGateway(t *testing.T) (*httptest.Server, security.Options) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := security.DefaultOptions([]byte("session-test-secret"))
	gw := chatgw.NewServer(chatgw.Config{}, auth, nil)
	r := gin.New()
	r.GET("/ws", gw.HandleWS)
	return httptest.NewServer(r), auth
}

func connectUser(t *testing.T, srv *httptest.Server, auth security.Options, userID string) *Session {
	t.Helper()
	token, _, err := security.Generate(auth, userID)
	require.NoError(t, err)
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	sess := NewSession(endpoint, userID, token)
	return sess
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		var zero T
		return zero
	}
}

func TestSessionReceivesOnlineUsers(t *testing.T) {
	srv, auth := newTestGateway(t)
	defer srv.Close()

	sess := connectUser(t, srv, auth, "alice")
	got := make(chan []string, 4)
	sess.OnOnlineUsers(func(ids []string) { got <- ids })

	require.NoError(t, sess.Connect(context.Background()))
	defer sess.Close()

	ids := waitFor(t, got)
	assert.Contains(t, ids, "alice")
}

func TestSessionTypingRelay(t *testing.T) {
	srv, auth := newTestGateway(t)
	defer srv.Close()

	alice := connectUser(t, srv, auth, "alice")
	bob := connectUser(t, srv, auth, "bob")

	typed := make(chan string, 1)
	bob.OnTyping(func(senderID string) { typed <- senderID })

	bobOnline := make(chan []string, 8)
	alice.OnOnlineUsers(func(ids []string) { bobOnline <- ids })

	require.NoError(t, bob.Connect(context.Background()))
	defer bob.Close()
	require.NoError(t, alice.Connect(context.Background()))
	defer alice.Close()

	// wait until alice has seen bob come online before signalling
	for {
		ids := waitFor(t, bobOnline)
		found := false
		for _, id := range ids {
			if id == "bob" {
				found = true
			}
		}
		if found {
			break
		}
	}

	require.NoError(t, alice.SendTyping("bob"))
	assert.Equal(t, "alice", waitFor(t, typed))
}

func TestSessionRejectsBadToken(t *testing.T) {
	srv, _ := newTestGateway(t)
	defer srv.Close()

	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	sess := NewSession(endpoint, "alice", "not-a-token")
	err := sess.Connect(context.Background())
	assert.Error(t, err)
}
