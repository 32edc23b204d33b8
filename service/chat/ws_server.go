package chat

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"chatline/logger"
	"chatline/tools/ids"
	"chatline/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and runs the connection until the peer
// goes away. Identity is taken from the handshake once; the close path
// uses that captured identity, never a re-read.
func (s *Server) HandleWS(c *gin.Context) {
	userID := c.Query("userId")
	token := c.Query("token")

	sub, err := security.Verify(s.auth, token)
	if err != nil || sub != userID || userID == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	conn := newClient(ids.GenerateString(), userID, ws, s.cfg.SendQueueSize)
	s.registerClient(conn)
	logger.Infof("[ws] user %s connected conn=%s", userID, conn.connID)

	go s.writePump(conn)
	s.readLoop(conn)

	s.unregisterClient(conn)
	conn.shutdown()
	logger.Infof("[ws] user %s disconnected conn=%s", userID, conn.connID)
}

// readLoop parses inbound frames and relays the ephemeral signals. Unknown
// events are dropped, not errors.
func (s *Server) readLoop(c *client) {
	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Debug("[ws] peer closed " + c.connID)
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s err=%v", c.connID, err)
			} else {
				logger.Infof("[ws] read err conn=%s err=%v", c.connID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		frame, err := ParseFrame(data)
		if err != nil {
			logger.Infof("[ws] bad frame conn=%s err=%v", c.connID, err)
			continue
		}
		switch frame.Event {
		case SignalTyping, SignalStopTyping:
			s.relaySignal(frame)
		default:
			// not part of the inbound vocabulary
		}
	}
}

// relaySignal forwards typing/stopTyping straight to the receiver's
// connection, carrying only the sender id. Never queued, never retried.
func (s *Server) relaySignal(frame *Frame) {
	var sig TypingSignal
	if err := json.Unmarshal(frame.Data, &sig); err != nil {
		logger.Infof("[ws] bad %s payload: %v", frame.Event, err)
		return
	}
	if sig.ReceiverID == "" || sig.SenderID == "" {
		return
	}
	s.router.SendToUser(sig.ReceiverID, frame.Event, sig.SenderID)
}

// writePump is the single writer for the connection; the router only ever
// enqueues onto c.send.
func (s *Server) writePump(c *client) {
	for {
		select {
		case <-c.done:
			return
		case raw, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, raw); err != nil {
				logger.Infof("[ws] write failed conn=%s err=%v", c.connID, err)
				c.shutdown()
				return
			}
		}
	}
}
