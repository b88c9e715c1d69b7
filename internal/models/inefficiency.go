package models

// InefficiencyType classifies a detected market inefficiency.
type InefficiencyType string

const (
	InefficiencyUndervalued InefficiencyType = "undervalued"
	InefficiencyOvervalued  InefficiencyType = "overvalued"
	InefficiencyRun         InefficiencyType = "run_opportunity"
	InefficiencyTierBreak   InefficiencyType = "tier_break"
	InefficiencyScarcity    InefficiencyType = "positional_scarcity"
	InefficiencyByeWeek     InefficiencyType = "bye_week_value"
)

// Severity grades how actionable an inefficiency is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight maps severity to its numeric weight for priority scoring.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// MarketInefficiency is one typed signal emitted by the detector. ID is stable
// per detection type and subject so consumers can dedupe across evaluations.
type MarketInefficiency struct {
	ID              string           `json:"id"`
	Type            InefficiencyType `json:"type"`
	Severity        Severity         `json:"severity"`
	Player          *Player          `json:"player,omitempty"`
	Position        Position         `json:"position,omitempty"`
	Description     string           `json:"description"`
	Value           float64          `json:"value"`            // magnitude, units vary by type
	Confidence      float64          `json:"confidence"`       // 0-100
	TimeWindow      int              `json:"time_window"`      // picks before the signal is stale
	Reasoning       []string         `json:"reasoning"`
	ActionRequired  string           `json:"action_required"`
	PotentialImpact float64          `json:"potential_impact"` // expected point swing
}

// PriorityScore ranks inefficiencies for display. Higher is more urgent.
func (m MarketInefficiency) PriorityScore() float64 {
	window := float64(10 - m.TimeWindow)
	if window < 0 {
		window = 0
	}
	return m.Severity.Weight()*25 + m.Confidence*0.5 + window*3 + m.PotentialImpact*0.3
}

// TrendDirection describes how quickly a position is being drafted lately.
type TrendDirection string

const (
	TrendAccelerating TrendDirection = "accelerating"
	TrendStable       TrendDirection = "stable"
	TrendDeclining    TrendDirection = "declining"
)

// PositionTrend is the detector's rolling per-position state, recomputed in
// full from the recent-picks window on every invocation.
type PositionTrend struct {
	Position            Position       `json:"position"`
	AvgPickPosition     float64        `json:"avg_pick_position"`
	RecentAvgPick       float64        `json:"recent_avg_pick"` // last-5 window
	Direction           TrendDirection `json:"direction"`
	ScarcityLevel       float64        `json:"scarcity_level"` // 0-1
	PicksUntilTierBreak int            `json:"picks_until_tier_break"`
}
