package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/draftops/draft-engine/internal/inefficiency"
	"github.com/draftops/draft-engine/internal/models"
	"github.com/draftops/draft-engine/internal/storage"
	"github.com/draftops/draft-engine/internal/strategy"
)

// Room holds the engine state for one draft room. The mutex serializes
// evaluations: the registry is mutable shared state across consecutive pick
// events and must never be evaluated concurrently for the same room.
type Room struct {
	ID     string
	mu     sync.Mutex
	engine *strategy.Engine

	lastEvaluated time.Time
}

// Manager owns every live draft room. Rooms are independent and may evaluate
// in parallel with each other; within a room, one evaluation at a time.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	redisClient  *redis.Client
	historyStore *storage.HistoryStore
	logger       *logrus.Logger

	engineConfig strategy.Config
	snapshotTTL  time.Duration
}

// NewManager creates a room manager. historyStore may be nil when persistence
// is disabled.
func NewManager(redisClient *redis.Client, historyStore *storage.HistoryStore, logger *logrus.Logger, engineConfig strategy.Config, snapshotTTL time.Duration) *Manager {
	if snapshotTTL <= 0 {
		snapshotTTL = 5 * time.Minute
	}
	return &Manager{
		rooms:        make(map[string]*Room),
		redisClient:  redisClient,
		historyStore: historyStore,
		logger:       logger,
		engineConfig: engineConfig,
		snapshotTTL:  snapshotTTL,
	}
}

func (m *Manager) getOrCreate(roomID string) *Room {
	m.mu.RLock()
	room, ok := m.rooms[roomID]
	m.mu.RUnlock()
	if ok {
		return room
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok = m.rooms[roomID]; ok {
		return room
	}

	engine := strategy.NewEngineWithConfig(
		strategy.DefaultRegistry(),
		inefficiency.NewDetector(m.logger),
		m.logger,
		m.engineConfig,
	)
	room = &Room{ID: roomID, engine: engine, lastEvaluated: time.Now()}
	m.rooms[roomID] = room

	m.logger.WithFields(logrus.Fields{
		"room_id":     roomID,
		"total_rooms": len(m.rooms),
	}).Info("Created draft room")

	return room
}

// Evaluate runs one full engine evaluation for the room, caches the result
// snapshot in Redis, and persists the applied adjustments.
func (m *Manager) Evaluate(ctx context.Context, roomID string, dctx models.DraftContext) (models.EvaluationResult, error) {
	room := m.getOrCreate(roomID)

	room.mu.Lock()
	result := room.engine.AnalyzeAndAdjust(dctx)
	room.lastEvaluated = time.Now()
	room.mu.Unlock()

	m.cacheSnapshot(ctx, roomID, result)

	if m.historyStore != nil && len(result.Adjustments) > 0 {
		if err := m.historyStore.RecordAdjustments(ctx, roomID, result.Adjustments); err != nil {
			m.logger.WithError(err).WithField("room_id", roomID).Error("Failed to persist adjustment history")
		}
	}

	return result, nil
}

// cacheSnapshot stores the latest evaluation for dashboard polling. Cache
// failures are logged and swallowed; the evaluation already succeeded.
func (m *Manager) cacheSnapshot(ctx context.Context, roomID string, result models.EvaluationResult) {
	if m.redisClient == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		m.logger.WithError(err).Warn("Failed to marshal evaluation snapshot")
		return
	}
	key := snapshotKey(roomID)
	if err := m.redisClient.Set(ctx, key, payload, m.snapshotTTL).Err(); err != nil {
		m.logger.WithError(err).WithField("room_id", roomID).Warn("Failed to cache evaluation snapshot")
	}
}

// LatestSnapshot returns the cached last evaluation for a room, if any.
func (m *Manager) LatestSnapshot(ctx context.Context, roomID string) (*models.EvaluationResult, error) {
	if m.redisClient == nil {
		return nil, fmt.Errorf("snapshot cache not configured")
	}
	payload, err := m.redisClient.Get(ctx, snapshotKey(roomID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read evaluation snapshot: %w", err)
	}
	var result models.EvaluationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation snapshot: %w", err)
	}
	return &result, nil
}

// ActiveStrategy returns the room's active strategy snapshot.
func (m *Manager) ActiveStrategy(roomID string) *models.DraftStrategy {
	room := m.getOrCreate(roomID)
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.engine.ActiveStrategy()
}

// Strategies returns all strategy snapshots for a room.
func (m *Manager) Strategies(roomID string) []models.DraftStrategy {
	room := m.getOrCreate(roomID)
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.engine.Strategies()
}

// SwitchStrategy activates a strategy for a room.
func (m *Manager) SwitchStrategy(roomID, strategyID string) error {
	room := m.getOrCreate(roomID)
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.engine.SwitchStrategy(strategyID)
}

// History returns the room's in-memory adjustment log.
func (m *Manager) History(roomID string) []models.StrategyAdjustment {
	room := m.getOrCreate(roomID)
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.engine.History()
}

// Stats returns the room engine's activity counters.
func (m *Manager) Stats(roomID string) strategy.Stats {
	room := m.getOrCreate(roomID)
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.engine.Stats()
}

// RoomCount reports how many rooms are live.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// EvictIdle drops rooms that have not evaluated within the timeout and
// returns how many were removed.
func (m *Manager) EvictIdle(idleTimeout time.Duration) int {
	cutoff := time.Now().Add(-idleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, room := range m.rooms {
		room.mu.Lock()
		idle := room.lastEvaluated.Before(cutoff)
		room.mu.Unlock()
		if idle {
			delete(m.rooms, id)
			evicted++
		}
	}

	if evicted > 0 {
		m.logger.WithFields(logrus.Fields{
			"evicted":   evicted,
			"remaining": len(m.rooms),
		}).Info("Evicted idle draft rooms")
	}

	return evicted
}

func snapshotKey(roomID string) string {
	return fmt.Sprintf("draft:evaluation:%s", roomID)
}
