package models

import "time"

// RiskTolerance buckets a strategy's appetite for volatile picks.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// Numeric maps the tolerance bucket to its working value for adjustment folds.
func (r RiskTolerance) Numeric() float64 {
	switch r {
	case RiskConservative:
		return 0.3
	case RiskAggressive:
		return 0.9
	default:
		return 0.6
	}
}

// RiskToleranceFromNumeric buckets a folded value back to a named tolerance.
// Cut points are 0.4 and 0.7; every value in [0,1] maps to exactly one bucket.
func RiskToleranceFromNumeric(v float64) RiskTolerance {
	switch {
	case v < 0.4:
		return RiskConservative
	case v < 0.7:
		return RiskModerate
	default:
		return RiskAggressive
	}
}

// TriggerKind enumerates the condition variants a strategy trigger can carry.
// Conditions are typed variants rather than condition strings so evaluation is
// an exhaustive switch instead of a string dispatch.
type TriggerKind string

const (
	// TriggerEliteCountBelow fires when fewer than Threshold players with
	// Tier <= MaxTier remain available at Position.
	TriggerEliteCountBelow TriggerKind = "elite_count_below"
	// TriggerPositionRunAtLeast fires when the recent run at Position reaches
	// Threshold consecutive picks.
	TriggerPositionRunAtLeast TriggerKind = "position_run_at_least"
	// TriggerTopValueAbove fires when the top-3 available at Position carry an
	// average ADP discount greater than Threshold picks.
	TriggerTopValueAbove TriggerKind = "top_value_above"
	// TriggerRoundAtLeast fires from round Threshold onward.
	TriggerRoundAtLeast TriggerKind = "round_at_least"
)

// TriggerCondition is the tagged-variant condition attached to a trigger.
// Which operand fields are meaningful depends on Kind.
type TriggerCondition struct {
	Kind      TriggerKind `json:"kind"`
	Position  Position    `json:"position,omitempty"`
	MaxTier   int         `json:"max_tier,omitempty"`
	Threshold float64     `json:"threshold"`
}

// AdjustmentAction tags what a fired trigger does to the strategy state.
type AdjustmentAction string

const (
	ActionIncreaseRBPriority AdjustmentAction = "increase_rb_priority"
	ActionIncreaseWRPriority AdjustmentAction = "increase_wr_priority"
	ActionPivotToRB          AdjustmentAction = "pivot_to_rb"
	ActionPivotToWR          AdjustmentAction = "pivot_to_wr"
	ActionBoostTE            AdjustmentAction = "boost_te"
	ActionSecureQB           AdjustmentAction = "secure_qb"
	ActionTargetValue        AdjustmentAction = "target_value"
)

// StrategyTrigger is a condition/action rule attached to a strategy.
// EvaluationsSinceFired is diagnostic only and never causes failure.
type StrategyTrigger struct {
	ID                    string           `json:"id"`
	Condition             TriggerCondition `json:"condition"`
	Action                AdjustmentAction `json:"action"`
	Priority              int              `json:"priority"` // tie-break ordering
	EvaluationsSinceFired int              `json:"evaluations_since_fired"`
}

// PickGuideline is round-scoped textual guidance carried by a strategy.
type PickGuideline struct {
	RoundStart int     `json:"round_start"`
	RoundEnd   int     `json:"round_end"`
	Text       string  `json:"text"`
	Weight     float64 `json:"weight"`
}

// DraftStrategy is a long-lived named strategy template, mutated in place by
// adjustments. Exactly one strategy in a registry is active at a time.
type DraftStrategy struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Description        string               `json:"description"`
	Active             bool                 `json:"active"`
	Confidence         float64              `json:"confidence"`
	PositionPriorities map[Position]float64 `json:"position_priorities"` // baseline 1.0, clamped >= 0
	RiskTolerance      RiskTolerance        `json:"risk_tolerance"`
	Triggers           []StrategyTrigger    `json:"triggers"`
	Guidelines         []PickGuideline      `json:"guidelines,omitempty"`
	TargetPlayers      []string             `json:"target_players,omitempty"`
	AvoidPlayers       []string             `json:"avoid_players,omitempty"`
}

// Clone returns a deep copy suitable for returning to callers as a snapshot.
func (s DraftStrategy) Clone() DraftStrategy {
	out := s
	out.PositionPriorities = make(map[Position]float64, len(s.PositionPriorities))
	for pos, p := range s.PositionPriorities {
		out.PositionPriorities[pos] = p
	}
	out.Triggers = append([]StrategyTrigger(nil), s.Triggers...)
	out.Guidelines = append([]PickGuideline(nil), s.Guidelines...)
	out.TargetPlayers = append([]string(nil), s.TargetPlayers...)
	out.AvoidPlayers = append([]string(nil), s.AvoidPlayers...)
	return out
}

// Priority returns the priority multiplier for a position, defaulting to the
// 1.0 baseline when the strategy has no opinion.
func (s DraftStrategy) Priority(pos Position) float64 {
	if p, ok := s.PositionPriorities[pos]; ok {
		return p
	}
	return 1.0
}

// StrategyAdjustment is a transient, composable delta folded additively into
// every strategy in the registry and appended to the audit history.
type StrategyAdjustment struct {
	ID             string               `json:"id"`
	Source         string               `json:"source"` // trigger id or contextual rule name
	PriorityDeltas map[Position]float64 `json:"priority_deltas,omitempty"`
	RiskShift      float64              `json:"risk_shift"`
	AddTargets     []string             `json:"add_targets,omitempty"`
	AddAvoids      []string             `json:"add_avoids,omitempty"`
	Reasoning      []string             `json:"reasoning"`
	CreatedAt      time.Time            `json:"created_at"`
}

// IsZero reports whether applying the adjustment would change nothing.
func (a StrategyAdjustment) IsZero() bool {
	if a.RiskShift != 0 || len(a.AddTargets) > 0 || len(a.AddAvoids) > 0 {
		return false
	}
	for _, d := range a.PriorityDeltas {
		if d != 0 {
			return false
		}
	}
	return true
}

// RecommendationType classifies an actionable recommendation.
type RecommendationType string

const (
	RecommendationPositionPivot RecommendationType = "position_pivot"
	RecommendationValueHunt     RecommendationType = "value_hunt"
	RecommendationSafePick      RecommendationType = "safe_pick"
	RecommendationContrarian    RecommendationType = "contrarian"
	RecommendationNeedFill      RecommendationType = "need_fill"
)

// StrategyRecommendation is a derived, immutable recommendation; a fresh list
// is produced on every evaluation.
type StrategyRecommendation struct {
	ID               string             `json:"id"`
	Type             RecommendationType `json:"type"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Confidence       float64            `json:"confidence"` // 0-100
	Urgency          float64            `json:"urgency"`    // 0-100
	Reasoning        []string           `json:"reasoning"`
	SuggestedPlayers []Player           `json:"suggested_players"`
	RiskLevel        float64            `json:"risk_level"`
	PotentialImpact  float64            `json:"potential_impact"`
}

// EvaluationResult is the full output of one AnalyzeAndAdjust call.
type EvaluationResult struct {
	Adjustments     []StrategyAdjustment     `json:"adjustments"`
	Recommendations []StrategyRecommendation `json:"recommendations"`
	StrategyUpdates []DraftStrategy          `json:"strategy_updates"`
	Inefficiencies  []MarketInefficiency     `json:"inefficiencies"`
	Flow            DraftFlow                `json:"flow"`
}
