package strategy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftops/draft-engine/internal/models"
)

func activeCount(r *Registry) int {
	count := 0
	for _, s := range r.Snapshots() {
		if s.Active {
			count++
		}
	}
	return count
}

func TestDefaultRegistry_ExactlyOneActive(t *testing.T) {
	r := DefaultRegistry()

	require.NotNil(t, r.Active())
	assert.Equal(t, StrategyBalancedValue, r.Active().ID)
	assert.Equal(t, 1, activeCount(r))
	assert.Len(t, r.All(), 3)
}

func TestNewRegistry_FirstBecomesActiveWhenNoneMarked(t *testing.T) {
	r := NewRegistry(
		&models.DraftStrategy{ID: "a", Name: "A"},
		&models.DraftStrategy{ID: "b", Name: "B"},
	)

	require.NotNil(t, r.Active())
	assert.Equal(t, "a", r.Active().ID)
	assert.Equal(t, 1, activeCount(r))
}

func TestNewRegistry_DuplicateIDsIgnored(t *testing.T) {
	r := NewRegistry(
		&models.DraftStrategy{ID: "a", Name: "First"},
		&models.DraftStrategy{ID: "a", Name: "Shadow"},
	)

	assert.Len(t, r.All(), 1)
	assert.Equal(t, "First", r.Active().Name)
}

func TestRegistry_Switch(t *testing.T) {
	r := DefaultRegistry()

	err := r.Switch(StrategyZeroRB)
	require.NoError(t, err)

	assert.Equal(t, StrategyZeroRB, r.Active().ID)
	assert.Equal(t, 1, activeCount(r))

	previous, err := r.Get(StrategyBalancedValue)
	require.NoError(t, err)
	assert.False(t, previous.Active, "previous active strategy must be deactivated")
}

func TestRegistry_SwitchUnknownLeavesStateUntouched(t *testing.T) {
	r := DefaultRegistry()
	before := r.Snapshots()

	err := r.Switch("does-not-exist")

	require.Error(t, err)
	var unknown ErrUnknownStrategy
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "does-not-exist", unknown.ID)

	assert.Equal(t, StrategyBalancedValue, r.Active().ID)
	assert.Equal(t, before, r.Snapshots())
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Get("nope")

	var unknown ErrUnknownStrategy
	require.True(t, errors.As(err, &unknown))
}

func TestRegistry_SnapshotsAreDeepCopies(t *testing.T) {
	r := DefaultRegistry()

	snapshots := r.Snapshots()
	snapshots[0].PositionPriorities[models.PositionRB] = 99
	snapshots[0].TargetPlayers = append(snapshots[0].TargetPlayers, "someone")

	live, err := r.Get(snapshots[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, 99.0, live.PositionPriorities[models.PositionRB])
	assert.Empty(t, live.TargetPlayers)
}
