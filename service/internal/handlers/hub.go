// internal/handlers/hub.go
package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	engine "github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/engine"
	"github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/service/internal/game"
)

const (
	sendBufferSize = 64
	writeTimeout   = 5 * time.Second
)

// client is one websocket connection bound to a player in a game.
type client struct {
	gameID   string
	playerID engine.PlayerID
	conn     *websocket.Conn
	send     chan game.GameEvent
	done     chan struct{}
	once     sync.Once
}

func newClient(gameID string, playerID engine.PlayerID, conn *websocket.Conn) *client {
	return &client{
		gameID:   gameID,
		playerID: playerID,
		conn:     conn,
		send:     make(chan game.GameEvent, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// enqueue queues ev without blocking. It reports false if the client is
// closed or its buffer is full.
func (c *client) enqueue(ev game.GameEvent) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// writeLoop drains the send queue until the client or ctx is done.
func (c *client) writeLoop(ctx context.Context, log logrus.FieldLogger) {
	defer c.close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case ev := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c.conn, ev)
			cancel()
			if err != nil {
				log.WithError(err).WithField("event", ev.Type).Debug("Write failed, closing client")
				return
			}
		}
	}
}

// Hub tracks the live connections of every game and routes session events
// to them.
type Hub struct {
	mu    sync.RWMutex
	games map[string]map[engine.PlayerID]*client
	log   logrus.FieldLogger
}

// NewHub creates an empty hub.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		games: make(map[string]map[engine.PlayerID]*client),
		log:   log,
	}
}

// Attach routes s's broadcasts through the hub.
func (h *Hub) Attach(s *game.Session) {
	gameID := s.ID
	s.BroadcastFn = func(ev game.GameEvent) { h.Broadcast(gameID, ev) }
	s.BroadcastToPlayerFn = func(playerID engine.PlayerID, ev game.GameEvent) { h.SendTo(gameID, playerID, ev) }
}

// Broadcast sends ev to every connection of gameID.
func (h *Hub) Broadcast(gameID string, ev game.GameEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.games[gameID] {
		h.deliver(c, ev)
	}
}

// SendTo sends ev to playerID's connection in gameID, if any.
func (h *Hub) SendTo(gameID string, playerID engine.PlayerID, ev game.GameEvent) {
	h.mu.RLock()
	c := h.games[gameID][playerID]
	h.mu.RUnlock()
	if c != nil {
		h.deliver(c, ev)
	}
}

func (h *Hub) deliver(c *client, ev game.GameEvent) {
	if !c.enqueue(ev) {
		h.log.WithFields(logrus.Fields{
			"game_id":   c.gameID,
			"player_id": c.playerID,
			"event":     ev.Type,
		}).Warn("Dropping event for slow or closed client")
	}
}

// register binds c to its player, replacing and closing an older connection.
func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.games[c.gameID]
	if !ok {
		conns = make(map[engine.PlayerID]*client)
		h.games[c.gameID] = conns
	}
	if old := conns[c.playerID]; old != nil {
		old.close()
		if old.conn != nil {
			old.conn.CloseNow()
		}
	}
	conns[c.playerID] = c
}

// unregister removes c if it is still the player's current connection.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.games[c.gameID]
	if conns[c.playerID] == c {
		delete(conns, c.playerID)
	}
	if len(conns) == 0 {
		delete(h.games, c.gameID)
	}
	c.close()
}

// Connections returns the number of live connections in gameID.
func (h *Hub) Connections(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
