package httpapi

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

const (
	writeTimeout  = 10 * time.Second
	reloadTimeout = 5 * time.Second
)

type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// matchRoom holds the spectators of one match and its feed subscription.
type matchRoom struct {
	conns       map[*websocket.Conn]bool
	unsubscribe func()
	latest      *entities.Match
}

// Hub fans match changes out to WebSocket spectators. A match is subscribed
// to while at least one connection is watching it.
type Hub struct {
	mu      sync.Mutex
	matches MatchSource
	rooms   map[string]*matchRoom
	logger  *zap.Logger
}

func NewHub(matches MatchSource, logger *zap.Logger) *Hub {
	return &Hub{
		matches: matches,
		rooms:   make(map[string]*matchRoom),
		logger:  logger,
	}
}

// AddConnection registers conn as a spectator of matchID and sends it the
// current snapshot.
func (h *Hub) AddConnection(ctx context.Context, matchID string, conn *websocket.Conn) error {
	m, err := h.matches.Get(ctx, matchID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[matchID]
	if !ok {
		room = &matchRoom{conns: make(map[*websocket.Conn]bool), latest: m}
		h.rooms[matchID] = room
		room.unsubscribe = h.matches.Subscribe(matchID, func() {
			go h.reload(matchID)
		})
	}
	room.conns[conn] = true

	h.logger.Debug("ws: client connected",
		zap.String("match_id", matchID),
		zap.Int("total", len(room.conns)),
	)

	// A reload may have broadcast a newer version while m was being read.
	if m.Version > room.latest.Version {
		room.latest = m
		h.broadcast(matchID, room, WSMessage{Type: "match", Data: newMatchResponse(m)})
		return nil
	}
	return h.write(conn, WSMessage{Type: "match", Data: newMatchResponse(room.latest)})
}

func (h *Hub) RemoveConnection(matchID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[matchID]
	if !ok {
		return
	}
	if _, ok := room.conns[conn]; !ok {
		return
	}

	delete(room.conns, conn)
	conn.Close()
	if len(room.conns) == 0 {
		room.unsubscribe()
		delete(h.rooms, matchID)
	}
	h.logger.Debug("ws: client disconnected", zap.String("match_id", matchID))
}

// reload reads the match after a change and broadcasts it unless a newer
// version was already sent.
func (h *Hub) reload(matchID string) {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	m, err := h.matches.Get(ctx, matchID)
	if err != nil {
		h.logger.Warn("ws: failed to reload match", zap.String("match_id", matchID), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[matchID]
	if !ok || m.Version <= room.latest.Version {
		return
	}
	room.latest = m

	h.broadcast(matchID, room, WSMessage{Type: "match", Data: newMatchResponse(m)})
}

// broadcast is called with h.mu held.
func (h *Hub) broadcast(matchID string, room *matchRoom, message WSMessage) {
	for conn := range room.conns {
		if err := h.write(conn, message); err != nil {
			h.logger.Debug("ws: write error", zap.String("match_id", matchID), zap.Error(err))
			conn.Close()
			delete(room.conns, conn)
		}
	}
	if len(room.conns) == 0 {
		room.unsubscribe()
		delete(h.rooms, matchID)
	}
}

func (h *Hub) write(conn *websocket.Conn, message WSMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Close drops every connection and subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for matchID, room := range h.rooms {
		room.unsubscribe()
		for conn := range room.conns {
			conn.Close()
		}
		delete(h.rooms, matchID)
	}
}
