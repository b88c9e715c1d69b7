package models

import "time"

// Position identifies a fantasy roster position.
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDST Position = "DST"
)

// AllPositions lists every draftable position in display order.
var AllPositions = []Position{PositionQB, PositionRB, PositionWR, PositionTE, PositionK, PositionDST}

// SkillPositions are the positions that matter for run and scarcity analysis.
var SkillPositions = []Position{PositionQB, PositionRB, PositionWR, PositionTE}

// PositionMaxSlots is the roster capacity reference table used for need-fill
// and run-join decisions.
var PositionMaxSlots = map[Position]int{
	PositionQB:  2,
	PositionRB:  4,
	PositionWR:  5,
	PositionTE:  2,
	PositionK:   1,
	PositionDST: 1,
}

// Player is a read-only snapshot of a draftable player supplied by the caller.
// A zero ADP, tier or projection means the upstream feed had no data; the
// detector substitutes conservative defaults rather than failing.
type Player struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Position   Position `json:"position"`
	Team       string   `json:"team,omitempty"`
	Tier       int      `json:"tier"`       // ordinal, lower = better
	ADP        float64  `json:"adp"`        // average draft position
	Projection float64  `json:"projection"` // season point projection
	ByeWeek    int      `json:"bye_week"`
	IsSleeper  bool     `json:"is_sleeper,omitempty"`
	IsRisky    bool     `json:"is_risky,omitempty"`
}

// RecentPick is one entry of the bounded recent-picks window, newest last.
// ADPDeviation is player ADP minus pick number: positive means the room
// reached for the player, negative means he fell for value.
type RecentPick struct {
	Player       Player    `json:"player"`
	PickNumber   int       `json:"pick_number"`
	ADPDeviation float64   `json:"adp_deviation"`
	TimeTakenSec float64   `json:"time_taken_sec"`
	PickedAt     time.Time `json:"picked_at"`
}

// LeagueSettings carries the league context the engine needs.
type LeagueSettings struct {
	Teams          int              `json:"teams"`
	Rounds         int              `json:"rounds"`
	PositionLimits map[Position]int `json:"position_limits,omitempty"`
	ScoringFormat  string           `json:"scoring_format,omitempty"`
}

// PositionLimit returns the configured roster limit for a position, falling
// back to the standard capacity table.
func (ls LeagueSettings) PositionLimit(pos Position) int {
	if limit, ok := ls.PositionLimits[pos]; ok && limit > 0 {
		return limit
	}
	return PositionMaxSlots[pos]
}

// TeamRoster is the user's current roster snapshot.
type TeamRoster struct {
	TeamID  string   `json:"team_id,omitempty"`
	Players []Player `json:"players"`
}

// CountByPosition returns how many rostered players occupy a position.
func (r TeamRoster) CountByPosition(pos Position) int {
	count := 0
	for _, p := range r.Players {
		if p.Position == pos {
			count++
		}
	}
	return count
}

// MarketSentiment summarizes whether the room is reaching or letting value fall.
type MarketSentiment string

const (
	SentimentBullish MarketSentiment = "bullish" // value falling, picks going past ADP
	SentimentBearish MarketSentiment = "bearish" // room reaching ahead of ADP
	SentimentNeutral MarketSentiment = "neutral"
)

// Draft flow pattern tags.
const (
	PatternPositionalRun  = "positional_run_detected"
	PatternHighVolatility = "high_volatility"
	PatternSlowPace       = "slow_draft_pace"
)

// DraftFlow is the derived summary of recent draft behavior. It is recomputed
// on every evaluation; the recent-picks window is the only memory it has.
type DraftFlow struct {
	PositionRuns        map[Position]int `json:"position_runs"`
	RecentADPDeviations []float64        `json:"recent_adp_deviations"`
	AvgTimePerPick      float64          `json:"avg_time_per_pick"`
	Patterns            []string         `json:"patterns"`
	MarketSentiment     MarketSentiment  `json:"market_sentiment"`
}

// HasPattern reports whether a named pattern emerged from the recent window.
func (f DraftFlow) HasPattern(name string) bool {
	for _, p := range f.Patterns {
		if p == name {
			return true
		}
	}
	return false
}

// DraftContext is the input envelope for one evaluation, fully supplied by the
// caller except for Inefficiencies and Flow, which the engine fills in.
type DraftContext struct {
	CurrentRound     int                  `json:"current_round"`
	CurrentPick      int                  `json:"current_pick"`
	PicksRemaining   int                  `json:"picks_remaining"`
	AvailablePlayers []Player             `json:"available_players"`
	UserRoster       TeamRoster           `json:"user_roster"`
	League           LeagueSettings       `json:"league"`
	RecentPicks      []RecentPick         `json:"recent_picks"` // newest last
	Inefficiencies   []MarketInefficiency `json:"inefficiencies,omitempty"`
	TimeRemaining    float64              `json:"time_remaining"` // seconds on the active pick
	IsUserTurn       bool                 `json:"is_user_turn"`
	Flow             DraftFlow            `json:"flow,omitempty"`
}

// AvailableAtPosition returns available players at a position in pool order,
// capped at limit (0 means no cap). Pool order is rank order.
func (c DraftContext) AvailableAtPosition(pos Position, limit int) []Player {
	players := make([]Player, 0, limit)
	for _, p := range c.AvailablePlayers {
		if p.Position != pos {
			continue
		}
		players = append(players, p)
		if limit > 0 && len(players) == limit {
			break
		}
	}
	return players
}
