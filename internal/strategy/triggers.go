package strategy

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/draftops/draft-engine/internal/models"
)

// evaluateCondition checks a trigger condition against the evaluation context.
// The switch is exhaustive over TriggerKind; an unrecognized kind never fires.
func evaluateCondition(cond models.TriggerCondition, ctx *models.DraftContext) bool {
	switch cond.Kind {
	case models.TriggerEliteCountBelow:
		count := 0
		for _, p := range ctx.AvailablePlayers {
			if p.Position == cond.Position && p.Tier > 0 && p.Tier <= cond.MaxTier {
				count++
			}
		}
		return float64(count) < cond.Threshold

	case models.TriggerPositionRunAtLeast:
		return float64(ctx.Flow.PositionRuns[cond.Position]) >= cond.Threshold

	case models.TriggerTopValueAbove:
		top := ctx.AvailableAtPosition(cond.Position, 3)
		if len(top) == 0 {
			return false
		}
		var sum float64
		for _, p := range top {
			sum += p.ADP - float64(ctx.CurrentPick)
		}
		return sum/float64(len(top)) > cond.Threshold

	case models.TriggerRoundAtLeast:
		return float64(ctx.CurrentRound) >= cond.Threshold

	default:
		return false
	}
}

// adjustmentForAction maps a fired trigger's action tag to the concrete delta
// it applies.
func adjustmentForAction(trigger models.StrategyTrigger, ctx *models.DraftContext) models.StrategyAdjustment {
	adj := models.StrategyAdjustment{
		ID:             uuid.NewString(),
		Source:         trigger.ID,
		PriorityDeltas: make(map[models.Position]float64),
		CreatedAt:      time.Now(),
	}

	switch trigger.Action {
	case models.ActionIncreaseRBPriority:
		adj.PriorityDeltas[models.PositionRB] = 0.3
		adj.Reasoning = append(adj.Reasoning, "Trigger fired: raise RB priority")

	case models.ActionIncreaseWRPriority:
		adj.PriorityDeltas[models.PositionWR] = 0.3
		adj.Reasoning = append(adj.Reasoning, "Trigger fired: raise WR priority")

	case models.ActionPivotToRB:
		adj.PriorityDeltas[models.PositionRB] = 0.4
		adj.PriorityDeltas[models.PositionWR] = -0.2
		adj.Reasoning = append(adj.Reasoning, "Trigger fired: pivot toward RB before the position empties")

	case models.ActionPivotToWR:
		adj.PriorityDeltas[models.PositionWR] = 0.4
		adj.PriorityDeltas[models.PositionRB] = -0.2
		adj.Reasoning = append(adj.Reasoning, "Trigger fired: pivot toward WR")

	case models.ActionBoostTE:
		adj.PriorityDeltas[models.PositionTE] = 0.3
		adj.Reasoning = append(adj.Reasoning, "Trigger fired: elite TE supply is nearly gone")

	case models.ActionSecureQB:
		adj.PriorityDeltas[models.PositionQB] = 0.3
		adj.Reasoning = append(adj.Reasoning, "Trigger fired: time to lock in a starting QB")

	case models.ActionTargetValue:
		for _, p := range ctx.AvailableAtPosition(trigger.Condition.Position, 1) {
			adj.AddTargets = append(adj.AddTargets, p.ID)
			adj.Reasoning = append(adj.Reasoning,
				fmt.Sprintf("Trigger fired: %s is the best falling value at %s", p.Name, trigger.Condition.Position))
		}
		adj.RiskShift = 0.1
	}

	return adj
}
