package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres/repository"
)

const maxLeaderboardLimit = 100

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	matches     MatchSource
	leaderboard LeaderboardSource
	hub         *Hub
	logger      *zap.Logger
}

func NewHandler(matches MatchSource, leaderboard LeaderboardSource, hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{matches: matches, leaderboard: leaderboard, hub: hub, logger: logger}
}

// GetLeaderboard returns the top players of a mode, optionally for one topic.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	mode, err := entities.ParseGameMode(c.Param("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var limit int64
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 || limit > maxLeaderboardLimit {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 100"})
			return
		}
	}

	entries, err := h.leaderboard.Top(c.Request.Context(), mode, c.Query("topic"), limit)
	if err != nil {
		if errors.Is(err, entities.ErrUnknownGameMode) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("failed to read leaderboard", zap.String("mode", string(mode)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mode": mode, "entries": entries})
}

func (h *Handler) GetMatch(c *gin.Context) {
	m, err := h.matches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.matchError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMatchResponse(m))
}

// WatchMatch upgrades to a WebSocket that receives the match on every change.
func (h *Handler) WatchMatch(c *gin.Context) {
	matchID := c.Param("id")
	if _, err := h.matches.Get(c.Request.Context(), matchID); err != nil {
		h.matchError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", zap.Error(err))
		return
	}

	defer h.hub.RemoveConnection(matchID, conn)
	if err := h.hub.AddConnection(c.Request.Context(), matchID, conn); err != nil {
		h.logger.Warn("failed to add websocket connection", zap.String("match_id", matchID), zap.Error(err))
		conn.Close()
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) matchError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrMatchNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	h.logger.Error("failed to read match", zap.String("match_id", c.Param("id")), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
