package chat

import (
	"sync"

	"github.com/gorilla/websocket"
)

// client is one live websocket connection bound to a user at handshake time.
type client struct {
	connID string
	userID string
	ws     *websocket.Conn
	send   chan []byte // drained by a single writer goroutine

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(connID, userID string, ws *websocket.Conn, sendQueueSize int) *client {
	return &client{
		connID: connID,
		userID: userID,
		ws:     ws,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// shutdown is safe to call from any goroutine, any number of times.
func (c *client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// Registry is the presence map: at most one live connection per user,
// last-registered wins. It exposes no iteration over raw entries so the
// one-entry-per-user invariant is enforced in a single place.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]*client
	byConn map[string]*client
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]*client),
		byConn: make(map[string]*client),
	}
}

// register binds c to its user, returning any prior connection that was
// displaced so the caller can close it.
func (r *Registry) register(c *client) (evicted *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byUser[c.userID]; ok && prev != c {
		delete(r.byConn, prev.connID)
		evicted = prev
	}
	r.byUser[c.userID] = c
	r.byConn[c.connID] = c
	return evicted
}

// unregister removes the entry only if connID still owns it; a reconnect
// that already displaced this connection is left untouched. Idempotent.
func (r *Registry) unregister(userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byUser[userID]
	if !ok || cur.connID != connID {
		return false
	}
	delete(r.byUser, userID)
	delete(r.byConn, connID)
	return true
}

// Lookup reports the live connection id for userID, absent-safe.
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	if !ok {
		return "", false
	}
	return c.connID, true
}

// OnlineUserIDs snapshots the ids of all connected users.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		out = append(out, id)
	}
	return out
}

func (r *Registry) get(userID string) *client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byUser[userID]
}

func (r *Registry) all() []*client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*client, 0, len(r.byConn))
	for _, c := range r.byConn {
		out = append(out, c)
	}
	return out
}
