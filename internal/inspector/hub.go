// Package inspector streams live agent snapshots to websocket clients.
package inspector

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avolkhov/npcbrain/internal/sim"
)

// snapshotMessage is the wire envelope sent to subscribers.
type snapshotMessage struct {
	Type   string              `json:"type"`
	Time   int64               `json:"time"`
	Agents []sim.AgentSnapshot `json:"agents"`
}

// subscriber serializes writes to one websocket connection.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub owns the set of connected inspector clients.
// Broadcast never blocks the simulation: a failed write drops the client.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID atomic.Uint64
}

// NewHub creates a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers a connection and returns its subscriber ID.
// The read side is drained by the caller; the hub only writes.
func (h *Hub) Subscribe(conn *websocket.Conn) uint64 {
	id := h.nextID.Add(1)
	h.mu.Lock()
	h.subs[id] = &subscriber{conn: conn}
	h.mu.Unlock()

	slog.Info("inspector client connected", "subscriber", id)
	return id
}

// Unsubscribe removes and closes a connection.
func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	if ok {
		sub.conn.Close()
		slog.Info("inspector client disconnected", "subscriber", id)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcast sends a snapshot message to every subscriber.
// Subscribers whose write fails are dropped.
func (h *Hub) Broadcast(agents []sim.AgentSnapshot) {
	msg := snapshotMessage{
		Type:   "snapshot",
		Time:   time.Now().UnixMilli(),
		Agents: agents,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshaling inspector snapshot", "error", err)
		return
	}

	h.mu.Lock()
	targets := make(map[uint64]*subscriber, len(h.subs))
	for id, sub := range h.subs {
		targets[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range targets {
		sub.mu.Lock()
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			slog.Debug("inspector write failed, dropping client",
				"subscriber", id, "error", err)
			h.Unsubscribe(id)
		}
	}
}
