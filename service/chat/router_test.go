package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvFrame(t *testing.T, c *client) *Frame {
	t.Helper()
	select {
	case raw := <-c.send:
		f, err := ParseFrame(raw)
		require.NoError(t, err)
		return f
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

func TestRouterSendToUser(t *testing.T) {
	reg := NewRegistry()
	c := newClient("conn-1", "bob", nil, 4)
	reg.register(c)

	NewRouter(reg).SendToUser("bob", EventNewMessage, map[string]string{"_id": "m1"})

	f := recvFrame(t, c)
	assert.Equal(t, EventNewMessage, f.Event)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(f.Data, &payload))
	assert.Equal(t, "m1", payload["_id"])
}

func TestRouterSendToOfflineUserIsNoop(t *testing.T) {
	reg := NewRegistry()
	NewRouter(reg).SendToUser("ghost", EventNewMessage, nil)
}

func TestRouterDropsWhenQueueFull(t *testing.T) {
	reg := NewRegistry()
	c := newClient("conn-1", "bob", nil, 1)
	reg.register(c)
	router := NewRouter(reg)

	router.SendToUser("bob", EventTyping, "alice")
	router.SendToUser("bob", EventTyping, "alice") // dropped, queue is full

	assert.Len(t, c.send, 1)
}

func TestRouterBroadcastReachesEveryConnection(t *testing.T) {
	reg := NewRegistry()
	a := newClient("conn-1", "alice", nil, 4)
	b := newClient("conn-2", "bob", nil, 4)
	reg.register(a)
	reg.register(b)

	NewRouter(reg).Broadcast(EventOnlineUsers, []string{"alice", "bob"})

	for _, c := range []*client{a, b} {
		f := recvFrame(t, c)
		assert.Equal(t, EventOnlineUsers, f.Event)
		var ids []string
		require.NoError(t, json.Unmarshal(f.Data, &ids))
		assert.ElementsMatch(t, []string{"alice", "bob"}, ids)
	}
}

func TestRouterSendToUsersSkipsOffline(t *testing.T) {
	reg := NewRegistry()
	a := newClient("conn-1", "alice", nil, 4)
	reg.register(a)

	NewRouter(reg).SendToUsers([]string{"alice", "ghost"}, EventFriendshipUpdate, FriendshipUpdate{Type: "unfriended"})

	f := recvFrame(t, a)
	assert.Equal(t, EventFriendshipUpdate, f.Event)
}

func TestParseFrameRejectsMissingEvent(t *testing.T) {
	_, err := ParseFrame([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = ParseFrame([]byte(`not json`))
	assert.Error(t, err)
}
