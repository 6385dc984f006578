package realtime

import (
	"sync"

	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"

	"github.com/google/uuid"
)

const bufferSize = 32

// Message is what a session receives.
type Message struct {
	Type     string    `json:"type"`
	Table    string    `json:"table"`
	Op       Op        `json:"op"`
	RecordID uuid.UUID `json:"recordId"`
}

// Subscription is one open session.
type Subscription struct {
	Session Session
	events  chan Message
}

// Events is closed when the subscription is removed.
func (s *Subscription) Events() <-chan Message { return s.events }

// Hub keeps the open sessions, keyed by user.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*Subscription
	log     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{clients: make(map[uuid.UUID][]*Subscription), log: log}
}

// Subscribe registers a session.
func (h *Hub) Subscribe(s Session) *Subscription {
	sub := &Subscription{Session: s, events: make(chan Message, bufferSize)}

	h.mu.Lock()
	h.clients[s.UserID] = append(h.clients[s.UserID], sub)
	h.mu.Unlock()

	metrics.SessionOpened()
	return sub
}

// Unsubscribe removes a session and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.clients[sub.Session.UserID]
	for i, s := range subs {
		if s != sub {
			continue
		}
		h.clients[sub.Session.UserID] = append(subs[:i], subs[i+1:]...)
		if len(h.clients[sub.Session.UserID]) == 0 {
			delete(h.clients, sub.Session.UserID)
		}
		close(sub.events)
		metrics.SessionClosed()
		return
	}
}

// Sessions returns the number of open sessions.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, subs := range h.clients {
		n += len(subs)
	}
	return n
}

// Dispatch sends a refresh hint to every session the change is relevant to.
// A full buffer drops the hint for that session rather than blocking.
// Returns the number of sessions notified.
func (h *Hub) Dispatch(c Change) int {
	msg := Message{Type: "refresh", Table: c.Table, Op: c.Op, RecordID: c.RecordID}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for userID, subs := range h.clients {
		for _, sub := range subs {
			if !Relevant(sub.Session, c) {
				continue
			}
			select {
			case sub.events <- msg:
				sent++
			default:
				metrics.MessageDropped()
				h.log.Warn("realtime: session buffer full, refresh dropped", "userId", userID, "table", c.Table)
			}
		}
	}
	return sent
}

// Resync asks every session to refetch all of its data. Sent after the
// change feed reconnects, since notifications raised while it was down are
// lost. Returns the number of sessions notified.
func (h *Hub) Resync() int {
	msg := Message{Type: "refresh", Table: TableAll}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for userID, subs := range h.clients {
		for _, sub := range subs {
			select {
			case sub.events <- msg:
				sent++
			default:
				metrics.MessageDropped()
				h.log.Warn("realtime: session buffer full, resync dropped", "userId", userID)
			}
		}
	}
	return sent
}

// Close ends every session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.clients {
		for _, sub := range subs {
			close(sub.events)
			metrics.SessionClosed()
		}
	}
	h.clients = make(map[uuid.UUID][]*Subscription)
}
