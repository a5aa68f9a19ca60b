package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/session"
	"github.com/corray333/backend-labs/pos/internal/transport/http/auth"
	"github.com/corray333/backend-labs/pos/internal/transport/http/response"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one connected observer.
type Client struct {
	id      uuid.UUID
	session session.Session
	conn    *websocket.Conn
	send    chan []byte
	// rooms is guarded by Hub.mu
	rooms map[session.Role]struct{}
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type verifier interface {
	Verify(token string) (session.Session, error)
}

// Handler upgrades authenticated requests and attaches them to the hub.
func (h *Hub) Handler(v verifier, allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}

			return slices.Contains(allowedOrigins, origin)
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		s, err := v.Verify(auth.TokenFromRequest(r))
		if err != nil {
			response.Error(w, http.StatusUnauthorized, err.Error())

			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("Websocket upgrade failed", "error", err)

			return
		}

		c := &Client{
			id:      uuid.New(),
			session: s,
			conn:    conn,
			send:    make(chan []byte, h.sendBuffer),
			rooms:   make(map[session.Role]struct{}),
		}
		h.register(c)

		slog.Info("Observer connected",
			"observer_id", c.id,
			"client_id", s.ClientID,
			"role", s.Role,
		)

		go c.writePump()
		go c.readPump(h)
	}
}

// readPump handles join:room frames until the connection drops.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		slog.Info("Observer disconnected", "observer_id", c.id, "client_id", c.session.ClientID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame inboundFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Websocket read error", "observer_id", c.id, "error", err)
			}

			return
		}

		if frame.Event != JoinRoom {
			continue
		}

		var room string
		if err := json.Unmarshal(frame.Data, &room); err != nil {
			slog.Warn("Malformed join:room frame", "observer_id", c.id, "error", err)

			continue
		}

		if h.join(c, session.Role(room)) {
			slog.Info("Observer joined room", "observer_id", c.id, "room", room)
		}
	}
}

// writePump is the only writer of conn.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
