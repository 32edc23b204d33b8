package client

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"chatline/logger"
	"chatline/module/chat/model"
	chatgw "chatline/service/chat"
	"chatline/tools/decode"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	maxReconnectAttempts = 5
	reconnectDelay       = time.Second
)

// FriendshipUpdate is the typed client view of a friendshipUpdate frame.
type FriendshipUpdate struct {
	Type       string            `json:"type"`
	Request    *model.Friendship `json:"request"`
	Friendship *model.Friendship `json:"friendship"`
}

// SettingsUpdate mirrors the server's broadcast payload.
type SettingsUpdate struct {
	UserID               string `json:"userId"`
	AllowStrangerMessage bool   `json:"allowStrangerMessage"`
}

// Session is one authenticated websocket connection with bounded
// reconnect. Handlers are registered per event; re-registering an event
// replaces the previous handler, so re-binding after a reconnect never
// stacks duplicates.
type Session struct {
	endpoint string
	userID   string
	token    string
	dialer   *websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[string]func(json.RawMessage)

	onDisconnect func()
	closed       bool
}

// NewSession prepares a session against the gateway's /ws endpoint.
// endpoint is the base ws URL, e.g. "ws://localhost:5001/ws".
func NewSession(endpoint, userID, token string) *Session {
	return &Session{
		endpoint: endpoint,
		userID:   userID,
		token:    token,
		dialer:   websocket.DefaultDialer,
		handlers: map[string]func(json.RawMessage){},
	}
}

// Connect dials the gateway and starts the read loop. The loop reconnects
// on failure with a fixed delay until the attempt budget runs out.
func (s *Session) Connect(ctx context.Context) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.closed = false
	s.mu.Unlock()
	go s.readLoop()
	return nil
}

func (s *Session) dial(ctx context.Context) (*websocket.Conn, error) {
	q := url.Values{}
	q.Set("userId", s.userID)
	q.Set("token", s.token)
	conn, _, err := s.dialer.DialContext(ctx, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "dial gateway")
	}
	return conn, nil
}

// Close tears the session down and disables reconnect.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Session) readLoop() {
	for {
		s.mu.Lock()
		conn := s.conn
		closed := s.closed
		s.mu.Unlock()
		if closed || conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			s.notifyDisconnect()
			if !s.reconnect() {
				return
			}
			continue
		}
		frame, err := chatgw.ParseFrame(data)
		if err != nil {
			logger.Infof("[client] bad frame: %v", err)
			continue
		}
		s.dispatch(frame)
	}
}

// reconnect retries the handshake a fixed number of times with a constant
// delay. Reports whether a new connection is live.
func (s *Session) reconnect() bool {
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return false
		}
		s.mu.Unlock()

		time.Sleep(reconnectDelay)
		conn, err := s.dial(context.Background())
		if err != nil {
			logger.Infof("[client] reconnect %d/%d failed: %v", attempt, maxReconnectAttempts, err)
			continue
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		logger.Infof("[client] reconnected on attempt %d", attempt)
		return true
	}
	logger.Warnf("[client] giving up after %d reconnect attempts", maxReconnectAttempts)
	return false
}

func (s *Session) notifyDisconnect() {
	s.mu.Lock()
	fn := s.onDisconnect
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *Session) dispatch(frame *chatgw.Frame) {
	s.mu.Lock()
	fn := s.handlers[frame.Event]
	s.mu.Unlock()
	if fn == nil {
		// not part of the client vocabulary
		return
	}
	fn(frame.Data)
}

// subscribe replaces any previous handler for the event.
func (s *Session) subscribe(event string, fn func(json.RawMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = fn
}

func (s *Session) OnNewMessage(fn func(*model.Message)) {
	s.subscribe(chatgw.EventNewMessage, decodeTo(chatgw.EventNewMessage, fn))
}

func (s *Session) OnMessageRevoked(fn func(*model.Message)) {
	s.subscribe(chatgw.EventMessageRevoked, decodeTo(chatgw.EventMessageRevoked, fn))
}

func (s *Session) OnMessageEdited(fn func(*model.Message)) {
	s.subscribe(chatgw.EventMessageEdited, decodeTo(chatgw.EventMessageEdited, fn))
}

func (s *Session) OnTyping(fn func(senderID string)) {
	s.subscribe(chatgw.SignalTyping, decodeString(fn))
}

func (s *Session) OnStopTyping(fn func(senderID string)) {
	s.subscribe(chatgw.SignalStopTyping, decodeString(fn))
}

func (s *Session) OnOnlineUsers(fn func(ids []string)) {
	s.subscribe(chatgw.EventOnlineUsers, func(raw json.RawMessage) {
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			logger.Infof("[client] bad %s payload: %v", chatgw.EventOnlineUsers, err)
			return
		}
		fn(ids)
	})
}

func (s *Session) OnFriendshipUpdate(fn func(FriendshipUpdate)) {
	s.subscribe(chatgw.EventFriendshipUpdate, func(raw json.RawMessage) {
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			logger.Infof("[client] bad friendshipUpdate payload: %v", err)
			return
		}
		upd, err := decode.Map[FriendshipUpdate](payload)
		if err != nil {
			logger.Infof("[client] decode friendshipUpdate: %v", err)
			return
		}
		fn(*upd)
	})
}

func (s *Session) OnSettingsUpdate(fn func(SettingsUpdate)) {
	s.subscribe(chatgw.EventUserSettingsUpdate, func(raw json.RawMessage) {
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			logger.Infof("[client] bad settings payload: %v", err)
			return
		}
		upd, err := decode.Map[SettingsUpdate](payload)
		if err != nil {
			logger.Infof("[client] decode settings: %v", err)
			return
		}
		fn(*upd)
	})
}

// OnDisconnect fires when the connection drops, before any reconnect
// attempt.
func (s *Session) OnDisconnect(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDisconnect = fn
}

func decodeTo(event string, fn func(*model.Message)) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		var msg model.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Infof("[client] bad %s payload: %v", event, err)
			return
		}
		fn(&msg)
	}
}

func decodeString(fn func(string)) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return
		}
		fn(id)
	}
}

// SendTyping tells the counterpart a draft is in progress.
func (s *Session) SendTyping(receiverID string) error {
	return s.sendSignal(chatgw.SignalTyping, receiverID)
}

func (s *Session) SendStopTyping(receiverID string) error {
	return s.sendSignal(chatgw.SignalStopTyping, receiverID)
}

func (s *Session) sendSignal(event, receiverID string) error {
	raw, err := chatgw.EncodeFrame(event, chatgw.TypingSignal{
		ReceiverID: receiverID,
		SenderID:   s.userID,
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.closed {
		return errors.New("session not connected")
	}
	return s.conn.WriteMessage(websocket.TextMessage, raw)
}
