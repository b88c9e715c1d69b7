package rooms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftops/draft-engine/internal/models"
	"github.com/draftops/draft-engine/internal/strategy"
)

func newTestManager() *Manager {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return NewManager(nil, nil, log, strategy.DefaultConfig(), time.Minute)
}

func simpleContext() models.DraftContext {
	return models.DraftContext{
		CurrentRound: 2,
		CurrentPick:  15,
		AvailablePlayers: []models.Player{
			{ID: "rb1", Name: "Back One", Position: models.PositionRB, Tier: 1, ADP: 14, Projection: 290},
			{ID: "rb2", Name: "Back Two", Position: models.PositionRB, Tier: 1, ADP: 16, Projection: 285},
			{ID: "rb3", Name: "Back Three", Position: models.PositionRB, Tier: 2, ADP: 18, Projection: 275},
			{ID: "wr1", Name: "Wide One", Position: models.PositionWR, Tier: 1, ADP: 15, Projection: 280},
			{ID: "wr2", Name: "Wide Two", Position: models.PositionWR, Tier: 1, ADP: 17, Projection: 272},
			{ID: "wr3", Name: "Wide Three", Position: models.PositionWR, Tier: 2, ADP: 19, Projection: 266},
			{ID: "qb1", Name: "Arm One", Position: models.PositionQB, Tier: 1, ADP: 20, Projection: 360},
			{ID: "qb2", Name: "Arm Two", Position: models.PositionQB, Tier: 1, ADP: 22, Projection: 350},
			{ID: "te1", Name: "End One", Position: models.PositionTE, Tier: 2, ADP: 21, Projection: 220},
			{ID: "te2", Name: "End Two", Position: models.PositionTE, Tier: 2, ADP: 23, Projection: 214},
		},
		League: models.LeagueSettings{Teams: 12, Rounds: 16},
	}
}

func TestManager_EvaluateCreatesRoom(t *testing.T) {
	m := newTestManager()

	result, err := m.Evaluate(context.Background(), "room-1", simpleContext())

	require.NoError(t, err)
	assert.NotEmpty(t, result.Recommendations)
	assert.Len(t, result.StrategyUpdates, 3)
	assert.Equal(t, 1, m.RoomCount())
}

func TestManager_RoomsAreIsolated(t *testing.T) {
	m := newTestManager()

	require.NoError(t, m.SwitchStrategy("room-a", strategy.StrategyZeroRB))

	a := m.ActiveStrategy("room-a")
	b := m.ActiveStrategy("room-b")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, strategy.StrategyZeroRB, a.ID)
	assert.Equal(t, strategy.StrategyBalancedValue, b.ID, "switching one room must not leak into another")
	assert.Equal(t, 2, m.RoomCount())
}

func TestManager_SwitchStrategyUnknown(t *testing.T) {
	m := newTestManager()

	err := m.SwitchStrategy("room-1", "no-such-strategy")
	require.Error(t, err)

	active := m.ActiveStrategy("room-1")
	require.NotNil(t, active)
	assert.Equal(t, strategy.StrategyBalancedValue, active.ID)
}

func TestManager_StatsAndHistoryAccumulate(t *testing.T) {
	m := newTestManager()

	_, err := m.Evaluate(context.Background(), "room-1", simpleContext())
	require.NoError(t, err)
	_, err = m.Evaluate(context.Background(), "room-1", simpleContext())
	require.NoError(t, err)

	stats := m.Stats("room-1")
	assert.Equal(t, int64(2), stats.EvaluationsRun)
	assert.False(t, stats.LastEvaluatedAt.IsZero())
}

func TestManager_ConcurrentEvaluationsSerializePerRoom(t *testing.T) {
	m := newTestManager()

	const evaluations = 16
	var wg sync.WaitGroup
	for i := 0; i < evaluations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Evaluate(context.Background(), "room-1", simpleContext())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(evaluations), m.Stats("room-1").EvaluationsRun)
	assert.Equal(t, 1, m.RoomCount())
}

func TestManager_EvictIdle(t *testing.T) {
	m := newTestManager()

	_, err := m.Evaluate(context.Background(), "stale", simpleContext())
	require.NoError(t, err)
	_, err = m.Evaluate(context.Background(), "fresh", simpleContext())
	require.NoError(t, err)

	m.mu.Lock()
	m.rooms["stale"].lastEvaluated = time.Now().Add(-2 * time.Hour)
	m.mu.Unlock()

	evicted := m.EvictIdle(time.Hour)

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, m.RoomCount())

	// An evicted room comes back fresh on the next touch.
	assert.Equal(t, int64(0), m.Stats("stale").EvaluationsRun)
}

func TestManager_LatestSnapshotWithoutCache(t *testing.T) {
	m := newTestManager()

	_, err := m.LatestSnapshot(context.Background(), "room-1")
	assert.Error(t, err)
}
