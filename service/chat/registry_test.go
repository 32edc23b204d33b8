package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	c := newClient("conn-1", "alice", nil, 4)

	evicted := r.register(c)
	assert.Nil(t, evicted)

	connID, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "conn-1", connID)
	assert.ElementsMatch(t, []string{"alice"}, r.OnlineUserIDs())
}

func TestRegistryLastWriterWins(t *testing.T) {
	r := NewRegistry()
	old := newClient("conn-1", "alice", nil, 4)
	fresh := newClient("conn-2", "alice", nil, 4)

	require.Nil(t, r.register(old))
	evicted := r.register(fresh)
	require.NotNil(t, evicted)
	assert.Equal(t, "conn-1", evicted.connID)

	connID, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "conn-2", connID)
	assert.Len(t, r.OnlineUserIDs(), 1)
}

func TestRegistryUnregisterChecksOwnership(t *testing.T) {
	r := NewRegistry()
	old := newClient("conn-1", "alice", nil, 4)
	fresh := newClient("conn-2", "alice", nil, 4)

	r.register(old)
	r.register(fresh)

	// the displaced connection's close path must not remove the new entry
	assert.False(t, r.unregister("alice", "conn-1"))
	_, ok := r.Lookup("alice")
	assert.True(t, ok)

	assert.True(t, r.unregister("alice", "conn-2"))
	_, ok = r.Lookup("alice")
	assert.False(t, ok)

	// second call is a no-op
	assert.False(t, r.unregister("alice", "conn-2"))
}

func TestRegistryUnregisterUnknownUser(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.unregister("ghost", "conn-9"))
	assert.Empty(t, r.OnlineUserIDs())
}
