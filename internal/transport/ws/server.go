package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Srinivas-559/chat-app/internal/relay"

	"github.com/gorilla/websocket"
)

// TokenValidator resolves an access token to the username it was issued
// for. Satisfied by the auth service.
type TokenValidator interface {
	ValidateToken(tokenString string) (string, error)
}

type Server struct {
	upgrader  websocket.Upgrader
	engine    *relay.Engine
	validator TokenValidator

	pingEvery time.Duration
}

func NewServer(engine *relay.Engine, validator TokenValidator) *Server {
	return &Server{
		engine:    engine,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws?access_token=...
// The token pins the session to one identity; every inbound event is
// checked against it so a session cannot speak for anyone else.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("access_token"))
	if token == "" {
		http.Error(w, "missing access_token", http.StatusUnauthorized)
		return
	}
	username, err := s.validator.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid access_token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "user", username, "err", err)
		return
	}

	c := newConn(conn, username)
	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	// The request context may already be winding down here; the offline
	// transition still has to be persisted.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()
	s.engine.Disconnect(dctx, c)

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "user", username, "err", err)
	}
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev relay.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			slog.Debug("ws bad frame", "user", c.username, "err", err)
			continue
		}
		s.dispatch(ctx, c, ev)
	}
}

func (s *Server) dispatch(ctx context.Context, c *wsConn, ev relay.Event) {
	switch ev.Type {
	case relay.TypeRegister:
		var p relay.RegisterPayload
		if relay.DecodePayload(ev.Payload, &p) != nil {
			return
		}
		if p.Identity == "" {
			p.Identity = c.username
		}
		if p.Identity != c.username {
			slog.Warn("ws register identity mismatch", "user", c.username, "claimed", p.Identity)
			return
		}
		if err := s.engine.Register(ctx, c, p.Identity); err != nil {
			slog.Warn("ws register failed", "user", c.username, "err", err)
		}

	case relay.TypePrivateMessage:
		var p relay.SendPayload
		if relay.DecodePayload(ev.Payload, &p) != nil {
			return
		}
		if p.From == "" {
			p.From = c.username
		}
		if p.From != c.username {
			slog.Warn("ws send identity mismatch", "user", c.username, "claimed", p.From)
			return
		}
		s.engine.Send(ctx, c, p)

	case relay.TypeTyping:
		var p relay.TypingPayload
		if relay.DecodePayload(ev.Payload, &p) != nil {
			return
		}
		p.From = c.username
		s.engine.Typing(ctx, p)

	case relay.TypeMarkRead:
		var p relay.MarkReadPayload
		if relay.DecodePayload(ev.Payload, &p) != nil {
			return
		}
		p.From = c.username
		s.engine.MarkRead(ctx, p)

	case relay.TypeGetAllStatuses:
		var p relay.StatusQueryPayload
		if relay.DecodePayload(ev.Payload, &p) != nil {
			return
		}
		s.engine.AllStatuses(ctx, c, p.Identities)

	case relay.TypeGetUserStatuses:
		var p relay.StatusQueryPayload
		if relay.DecodePayload(ev.Payload, &p) != nil {
			return
		}
		s.engine.UserStatuses(ctx, c, p.Identities)

	default:
		slog.Debug("ws unknown event", "user", c.username, "type", ev.Type)
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}
