package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	staffdomain "leadflow_backend/internal/staff/domain"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Keepalive heartbeats a user's presence while a session is open.
type Keepalive interface {
	Run(ctx context.Context, staffID uuid.UUID)
}

type Handler struct {
	hub       *Hub
	keepalive Keepalive
	upgrader  websocket.Upgrader
	log       *logger.Logger
}

// NewHandler builds the stream handlers. allowOrigin decides websocket
// origins; nil accepts any origin.
func NewHandler(hub *Hub, keepalive Keepalive, allowOrigin func(origin string) bool, log *logger.Logger) *Handler {
	return &Handler{
		hub:       hub,
		keepalive: keepalive,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowOrigin == nil || origin == "" || allowOrigin(origin)
			},
		},
		log: log,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stream", h.Stream)
	rg.GET("/ws", h.WebSocket)
}

func sessionFrom(c *gin.Context) (Session, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return Session{}, false
	}
	return Session{UserID: id.UserID(), Role: staffdomain.Role(id.Role())}, true
}

// open subscribes the session and starts its presence keepalive. The returned
// func tears both down.
func (h *Handler) open(parent context.Context, s Session) (*Subscription, context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	sub := h.hub.Subscribe(s)
	if h.keepalive != nil {
		go h.keepalive.Run(ctx, s.UserID)
	}
	return sub, ctx, func() {
		cancel()
		h.hub.Unsubscribe(sub)
	}
}

// Stream serves a server-sent event stream.
func (h *Handler) Stream(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	sub, ctx, closeSession := h.open(c.Request.Context(), session)
	defer closeSession()

	c.SSEvent("connected", gin.H{"userId": session.UserID})
	c.Writer.Flush()
	h.log.Debug("realtime: sse session opened", "userId", session.UserID)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug("realtime: sse session closed", "userId", session.UserID)
			return
		case <-ping.C:
			c.SSEvent("ping", "")
			c.Writer.Flush()
		case msg, ok := <-sub.Events():
			if !ok {
				return
			}
			data, _ := json.Marshal(msg)
			c.SSEvent(msg.Type, string(data))
			c.Writer.Flush()
		}
	}
}

// WebSocket serves the same hints over a websocket with ping/pong keepalive.
// Inbound frames are read only to observe pongs and the close handshake.
func (h *Handler) WebSocket(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("realtime: websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sub, ctx, closeSession := h.open(context.WithoutCancel(c.Request.Context()), session)
	defer closeSession()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Debug("realtime: websocket closed unexpectedly", "userId", session.UserID, "error", err)
				}
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-readDone:
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
