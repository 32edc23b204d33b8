package chat

import (
	"time"

	"chatline/tools/security"
)

type Config struct {
	SendQueueSize int              // per-connection outbound buffer
	WriteTimeout  time.Duration    // deadline per websocket write
	Clock         func() time.Time // injectable for tests; nil => time.Now
}

func (c *Config) norm() {
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// LastSeenRecorder mirrors presence transitions into a side store. Optional.
type LastSeenRecorder interface {
	Touch(userID string, at time.Time)
}

// Server owns the presence registry and the event router, and handles the
// websocket lifecycle for every connection.
type Server struct {
	cfg      Config
	reg      *Registry
	router   *Router
	auth     security.Options
	lastSeen LastSeenRecorder
}

func NewServer(cfg Config, auth security.Options, lastSeen LastSeenRecorder) *Server {
	cfg.norm()
	reg := NewRegistry()
	return &Server{
		cfg:      cfg,
		reg:      reg,
		router:   NewRouter(reg),
		auth:     auth,
		lastSeen: lastSeen,
	}
}

func (s *Server) Router() *Router { return s.router }

func (s *Server) Registry() *Registry { return s.reg }

// registerClient installs c as the user's live connection, closes any
// displaced one and announces the new online list to everybody.
func (s *Server) registerClient(c *client) {
	if evicted := s.reg.register(c); evicted != nil {
		evicted.shutdown()
	}
	s.router.Broadcast(EventOnlineUsers, s.reg.OnlineUserIDs())
}

// unregisterClient removes c if it still owns the presence entry and
// re-announces the online list. Safe to call when already displaced.
func (s *Server) unregisterClient(c *client) {
	if !s.reg.unregister(c.userID, c.connID) {
		return
	}
	if s.lastSeen != nil {
		s.lastSeen.Touch(c.userID, s.cfg.Clock())
	}
	s.router.Broadcast(EventOnlineUsers, s.reg.OnlineUserIDs())
}
