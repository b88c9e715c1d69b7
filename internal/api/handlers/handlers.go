package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/draftops/draft-engine/internal/models"
	"github.com/draftops/draft-engine/internal/providers"
	"github.com/draftops/draft-engine/internal/rooms"
	"github.com/draftops/draft-engine/internal/storage"
	"github.com/draftops/draft-engine/internal/strategy"
	ws "github.com/draftops/draft-engine/internal/websocket"
)

// Handlers wires the HTTP surface to the room manager and player pool.
type Handlers struct {
	manager      *rooms.Manager
	provider     *providers.PoolProvider
	hub          *ws.Hub
	historyStore *storage.HistoryStore
	logger       *logrus.Logger
	startedAt    time.Time
}

// NewHandlers creates the handler set. historyStore may be nil when
// persistence is disabled.
func NewHandlers(manager *rooms.Manager, provider *providers.PoolProvider, hub *ws.Hub, historyStore *storage.HistoryStore, logger *logrus.Logger) *Handlers {
	return &Handlers{
		manager:      manager,
		provider:     provider,
		hub:          hub,
		historyStore: historyStore,
		logger:       logger,
		startedAt:    time.Now(),
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "draft-engine",
		"uptime":  time.Since(h.startedAt).String(),
	})
}

// ReadinessCheck reports readiness, including pool freshness.
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ready",
		"rooms":             h.manager.RoomCount(),
		"pool_last_refresh": h.provider.LastRefresh(),
	})
}

// EvaluatePick runs one engine evaluation for a room. The body is the
// caller-supplied draft context; an empty available-players list falls back to
// the provider's current pool.
func (h *Handlers) EvaluatePick(c *gin.Context) {
	roomID := c.Param("room_id")

	var dctx models.DraftContext
	if err := c.ShouldBindJSON(&dctx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft context: " + err.Error()})
		return
	}

	if len(dctx.AvailablePlayers) == 0 {
		dctx.AvailablePlayers = h.provider.Players()
	}

	result, err := h.manager.Evaluate(c.Request.Context(), roomID, dctx)
	if err != nil {
		h.logger.WithError(err).WithField("room_id", roomID).Error("Evaluation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "evaluation failed"})
		return
	}

	h.hub.BroadcastEvaluation(roomID, result)

	c.JSON(http.StatusOK, result)
}

// GetEvaluation returns the cached latest evaluation for a room.
func (h *Handlers) GetEvaluation(c *gin.Context) {
	roomID := c.Param("room_id")

	snapshot, err := h.manager.LatestSnapshot(c.Request.Context(), roomID)
	if err != nil {
		h.logger.WithError(err).WithField("room_id", roomID).Error("Failed to load evaluation snapshot")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load snapshot"})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no evaluation cached for room"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetStrategies lists every strategy registered for a room.
func (h *Handlers) GetStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": h.manager.Strategies(c.Param("room_id"))})
}

// GetActiveStrategy returns the room's active strategy.
func (h *Handlers) GetActiveStrategy(c *gin.Context) {
	active := h.manager.ActiveStrategy(c.Param("room_id"))
	if active == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active strategy"})
		return
	}
	c.JSON(http.StatusOK, active)
}

// ActivateStrategy switches the room's active strategy.
func (h *Handlers) ActivateStrategy(c *gin.Context) {
	roomID := c.Param("room_id")
	strategyID := c.Param("strategy_id")

	if err := h.manager.SwitchStrategy(roomID, strategyID); err != nil {
		var unknown strategy.ErrUnknownStrategy
		if errors.As(err, &unknown) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).WithField("room_id", roomID).Error("Failed to switch strategy")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to switch strategy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": strategyID})
}

// GetHistory returns the room's in-memory adjustment log; pass
// ?persisted=true to read the audit rows instead.
func (h *Handlers) GetHistory(c *gin.Context) {
	roomID := c.Param("room_id")

	if c.Query("persisted") == "true" && h.historyStore != nil {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		records, err := h.historyStore.RecentAdjustments(c.Request.Context(), roomID, limit)
		if err != nil {
			h.logger.WithError(err).WithField("room_id", roomID).Error("Failed to load persisted history")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": records})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": h.manager.History(roomID)})
}

// GetStats returns the room engine's activity counters.
func (h *Handlers) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.Stats(c.Param("room_id")))
}

// GetPlayers returns the current player pool.
func (h *Handlers) GetPlayers(c *gin.Context) {
	players := h.provider.Players()
	c.JSON(http.StatusOK, gin.H{
		"players":      players,
		"count":        len(players),
		"last_refresh": h.provider.LastRefresh(),
	})
}

// HandleWebSocket upgrades the connection and subscribes it to room updates.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	h.hub.HandleConnection(c)
}
