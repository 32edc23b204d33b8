package chat

import (
	"chatline/logger"
)

// Router pushes typed events to live connections. Every push is
// fire-and-forget: an offline recipient or a full send queue drops the
// event silently, because the REST path is the source of truth the client
// falls back to.
type Router struct {
	reg *Registry
}

func NewRouter(reg *Registry) *Router {
	return &Router{reg: reg}
}

// SendToUser pushes one event to the user's live connection, if any.
func (r *Router) SendToUser(userID, event string, payload any) {
	c := r.reg.get(userID)
	if c == nil {
		return
	}
	raw, err := EncodeFrame(event, payload)
	if err != nil {
		logger.Errorf("[router] encode %s: %v", event, err)
		return
	}
	push(c, raw)
}

// SendToUsers delivers to each id independently; one offline recipient
// never blocks the rest.
func (r *Router) SendToUsers(userIDs []string, event string, payload any) {
	raw, err := EncodeFrame(event, payload)
	if err != nil {
		logger.Errorf("[router] encode %s: %v", event, err)
		return
	}
	for _, id := range userIDs {
		if c := r.reg.get(id); c != nil {
			push(c, raw)
		}
	}
}

// Broadcast pushes to every live connection.
func (r *Router) Broadcast(event string, payload any) {
	raw, err := EncodeFrame(event, payload)
	if err != nil {
		logger.Errorf("[router] encode %s: %v", event, err)
		return
	}
	for _, c := range r.reg.all() {
		push(c, raw)
	}
}

// push enqueues without blocking; a slow client just loses the frame.
func push(c *client, raw []byte) {
	select {
	case c.send <- raw:
	default:
		logger.Warnf("[router] send queue full, drop frame user=%s conn=%s", c.userID, c.connID)
	}
}
