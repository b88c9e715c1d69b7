package strategy

import "github.com/draftops/draft-engine/internal/models"

// Seeded strategy archetype ids.
const (
	StrategyBalancedValue = "balanced-value"
	StrategyZeroRB        = "zero-rb"
	StrategyRobustRB      = "robust-rb"
)

// DefaultRegistry seeds a registry with the three stock archetypes.
// balanced-value starts active.
func DefaultRegistry() *Registry {
	return NewRegistry(balancedValue(), zeroRB(), robustRB())
}

func balancedValue() *models.DraftStrategy {
	return &models.DraftStrategy{
		ID:          StrategyBalancedValue,
		Name:        "Balanced Value",
		Description: "Take the best value on the board, lean slightly into RB/WR volume",
		Active:      true,
		Confidence:  75,
		PositionPriorities: map[models.Position]float64{
			models.PositionQB:  0.9,
			models.PositionRB:  1.1,
			models.PositionWR:  1.1,
			models.PositionTE:  1.0,
			models.PositionK:   0.5,
			models.PositionDST: 0.5,
		},
		RiskTolerance: models.RiskModerate,
		Triggers: []models.StrategyTrigger{
			{
				ID: "bv-rb-value",
				Condition: models.TriggerCondition{
					Kind:      models.TriggerTopValueAbove,
					Position:  models.PositionRB,
					Threshold: 10,
				},
				Action:   models.ActionTargetValue,
				Priority: 1,
			},
			{
				ID: "bv-te-cliff",
				Condition: models.TriggerCondition{
					Kind:      models.TriggerEliteCountBelow,
					Position:  models.PositionTE,
					MaxTier:   2,
					Threshold: 2,
				},
				Action:   models.ActionBoostTE,
				Priority: 2,
			},
		},
		Guidelines: []models.PickGuideline{
			{RoundStart: 1, RoundEnd: 4, Text: "Best player available, ignore positional panic", Weight: 1.0},
			{RoundStart: 5, RoundEnd: 9, Text: "Fill starter gaps with falling players", Weight: 0.8},
			{RoundStart: 10, RoundEnd: 16, Text: "Upside swings, then K/DST last", Weight: 0.6},
		},
	}
}

func zeroRB() *models.DraftStrategy {
	return &models.DraftStrategy{
		ID:          StrategyZeroRB,
		Name:        "Zero RB",
		Description: "Hammer WR/TE early, scoop RB volume in the middle rounds",
		Confidence:  70,
		PositionPriorities: map[models.Position]float64{
			models.PositionQB:  0.9,
			models.PositionRB:  0.5,
			models.PositionWR:  1.5,
			models.PositionTE:  1.2,
			models.PositionK:   0.5,
			models.PositionDST: 0.5,
		},
		RiskTolerance: models.RiskAggressive,
		Triggers: []models.StrategyTrigger{
			{
				ID: "zrb-rb-pivot",
				Condition: models.TriggerCondition{
					Kind:      models.TriggerEliteCountBelow,
					Position:  models.PositionRB,
					MaxTier:   2,
					Threshold: 3,
				},
				Action:   models.ActionPivotToRB,
				Priority: 1,
			},
			{
				ID: "zrb-wr-run",
				Condition: models.TriggerCondition{
					Kind:      models.TriggerPositionRunAtLeast,
					Position:  models.PositionWR,
					Threshold: 4,
				},
				Action:   models.ActionIncreaseRBPriority,
				Priority: 2,
			},
		},
		Guidelines: []models.PickGuideline{
			{RoundStart: 1, RoundEnd: 3, Text: "Elite WR or TE only", Weight: 1.0},
			{RoundStart: 4, RoundEnd: 8, Text: "Start stacking RB volume before the well runs dry", Weight: 0.9},
			{RoundStart: 9, RoundEnd: 16, Text: "Handcuffs and pass-catching backs", Weight: 0.7},
		},
	}
}

func robustRB() *models.DraftStrategy {
	return &models.DraftStrategy{
		ID:          StrategyRobustRB,
		Name:        "Robust RB",
		Description: "Lock down the RB room early, win on positional scarcity",
		Confidence:  72,
		PositionPriorities: map[models.Position]float64{
			models.PositionQB:  0.8,
			models.PositionRB:  1.5,
			models.PositionWR:  0.9,
			models.PositionTE:  0.9,
			models.PositionK:   0.5,
			models.PositionDST: 0.5,
		},
		RiskTolerance: models.RiskConservative,
		Triggers: []models.StrategyTrigger{
			{
				ID: "rrb-wr-run",
				Condition: models.TriggerCondition{
					Kind:      models.TriggerPositionRunAtLeast,
					Position:  models.PositionWR,
					Threshold: 4,
				},
				Action:   models.ActionIncreaseWRPriority,
				Priority: 1,
			},
			{
				ID: "rrb-late-qb",
				Condition: models.TriggerCondition{
					Kind:      models.TriggerRoundAtLeast,
					Threshold: 8,
				},
				Action:   models.ActionSecureQB,
				Priority: 3,
			},
		},
		Guidelines: []models.PickGuideline{
			{RoundStart: 1, RoundEnd: 4, Text: "RB-RB-RB unless a tier-1 WR falls a full round", Weight: 1.0},
			{RoundStart: 5, RoundEnd: 9, Text: "WR volume and a top-6 TE if available", Weight: 0.8},
			{RoundStart: 10, RoundEnd: 16, Text: "QB, handcuffs, then K/DST", Weight: 0.6},
		},
	}
}
