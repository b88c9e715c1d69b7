package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftops/draft-engine/internal/models"
)

func TestEvaluateCondition_EliteCountBelow(t *testing.T) {
	cond := models.TriggerCondition{
		Kind:      models.TriggerEliteCountBelow,
		Position:  models.PositionRB,
		MaxTier:   2,
		Threshold: 3,
	}

	ctx := &models.DraftContext{
		AvailablePlayers: []models.Player{
			{ID: "rb1", Position: models.PositionRB, Tier: 1},
			{ID: "rb2", Position: models.PositionRB, Tier: 2},
			{ID: "rb3", Position: models.PositionRB, Tier: 4},
			{ID: "rb4", Position: models.PositionRB}, // missing tier is not elite
			{ID: "wr1", Position: models.PositionWR, Tier: 1},
		},
	}

	assert.True(t, evaluateCondition(cond, ctx), "2 elite RBs is below the threshold of 3")

	ctx.AvailablePlayers = append(ctx.AvailablePlayers,
		models.Player{ID: "rb5", Position: models.PositionRB, Tier: 2})
	assert.False(t, evaluateCondition(cond, ctx))
}

func TestEvaluateCondition_PositionRunAtLeast(t *testing.T) {
	cond := models.TriggerCondition{
		Kind:      models.TriggerPositionRunAtLeast,
		Position:  models.PositionWR,
		Threshold: 4,
	}

	ctx := &models.DraftContext{
		Flow: models.DraftFlow{PositionRuns: map[models.Position]int{models.PositionWR: 4}},
	}
	assert.True(t, evaluateCondition(cond, ctx))

	ctx.Flow.PositionRuns[models.PositionWR] = 3
	assert.False(t, evaluateCondition(cond, ctx))

	assert.False(t, evaluateCondition(cond, &models.DraftContext{}), "no flow data means no run")
}

func TestEvaluateCondition_TopValueAbove(t *testing.T) {
	cond := models.TriggerCondition{
		Kind:      models.TriggerTopValueAbove,
		Position:  models.PositionRB,
		Threshold: 10,
	}

	ctx := &models.DraftContext{
		CurrentPick: 20,
		AvailablePlayers: []models.Player{
			{ID: "rb1", Position: models.PositionRB, ADP: 35},
			{ID: "rb2", Position: models.PositionRB, ADP: 32},
			{ID: "rb3", Position: models.PositionRB, ADP: 29},
			{ID: "rb4", Position: models.PositionRB, ADP: 90}, // outside the top 3
		},
	}
	// Average discount of the top 3 is 12 picks.
	assert.True(t, evaluateCondition(cond, ctx))

	ctx.CurrentPick = 25
	assert.False(t, evaluateCondition(cond, ctx))

	assert.False(t, evaluateCondition(cond, &models.DraftContext{CurrentPick: 20}), "no players at position")
}

func TestEvaluateCondition_RoundAtLeast(t *testing.T) {
	cond := models.TriggerCondition{Kind: models.TriggerRoundAtLeast, Threshold: 8}

	assert.False(t, evaluateCondition(cond, &models.DraftContext{CurrentRound: 7}))
	assert.True(t, evaluateCondition(cond, &models.DraftContext{CurrentRound: 8}))
	assert.True(t, evaluateCondition(cond, &models.DraftContext{CurrentRound: 12}))
}

func TestEvaluateCondition_UnknownKindNeverFires(t *testing.T) {
	cond := models.TriggerCondition{Kind: "someday_maybe", Threshold: 0}

	assert.False(t, evaluateCondition(cond, &models.DraftContext{CurrentRound: 99}))
}

func TestAdjustmentForAction_Pivot(t *testing.T) {
	trigger := models.StrategyTrigger{ID: "test-pivot", Action: models.ActionPivotToRB}

	adj := adjustmentForAction(trigger, &models.DraftContext{})

	assert.Equal(t, "test-pivot", adj.Source)
	assert.Equal(t, 0.4, adj.PriorityDeltas[models.PositionRB])
	assert.Equal(t, -0.2, adj.PriorityDeltas[models.PositionWR])
	assert.NotEmpty(t, adj.ID)
	assert.False(t, adj.IsZero())
}

func TestAdjustmentForAction_TargetValue(t *testing.T) {
	trigger := models.StrategyTrigger{
		ID:        "test-value",
		Action:    models.ActionTargetValue,
		Condition: models.TriggerCondition{Position: models.PositionRB},
	}
	ctx := &models.DraftContext{
		AvailablePlayers: []models.Player{
			{ID: "rb-best", Name: "Best Back", Position: models.PositionRB, ADP: 40},
			{ID: "rb-next", Position: models.PositionRB, ADP: 44},
		},
	}

	adj := adjustmentForAction(trigger, ctx)

	require.Len(t, adj.AddTargets, 1)
	assert.Equal(t, "rb-best", adj.AddTargets[0])
	assert.Equal(t, 0.1, adj.RiskShift)
}
