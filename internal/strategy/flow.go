package strategy

import (
	"math"

	"github.com/draftops/draft-engine/internal/models"
)

const (
	runWindow       = 5
	deviationWindow = 10

	volatilityDeviation = 10.0
	volatilityMinPicks  = 3
	slowPaceSeconds     = 90.0

	sentimentReachSum = 15.0
)

// ComputeDraftFlow derives the recent-behavior summary from the recent-picks
// window. The window is the flow's only memory; it is rebuilt every call.
func ComputeDraftFlow(recent []models.RecentPick) models.DraftFlow {
	flow := models.DraftFlow{
		PositionRuns:        make(map[models.Position]int),
		RecentADPDeviations: make([]float64, 0, deviationWindow),
		Patterns:            make([]string, 0),
		MarketSentiment:     models.SentimentNeutral,
	}
	if len(recent) == 0 {
		return flow
	}

	last5 := tail(recent, runWindow)
	last10 := tail(recent, deviationWindow)

	// Longest consecutive same-position streak per position within the last
	// five picks.
	for _, pos := range models.SkillPositions {
		flow.PositionRuns[pos] = longestStreak(last5, pos)
	}

	var timeSum float64
	var timeCount int
	for _, pick := range last10 {
		flow.RecentADPDeviations = append(flow.RecentADPDeviations, pick.ADPDeviation)
		if pick.TimeTakenSec > 0 {
			timeSum += pick.TimeTakenSec
			timeCount++
		}
	}
	if timeCount > 0 {
		flow.AvgTimePerPick = timeSum / float64(timeCount)
	}

	for _, run := range flow.PositionRuns {
		if run >= 3 {
			flow.Patterns = append(flow.Patterns, models.PatternPositionalRun)
			break
		}
	}

	volatile := 0
	for _, dev := range flow.RecentADPDeviations {
		if math.Abs(dev) > volatilityDeviation {
			volatile++
		}
	}
	if volatile >= volatilityMinPicks {
		flow.Patterns = append(flow.Patterns, models.PatternHighVolatility)
	}

	if flow.AvgTimePerPick > slowPaceSeconds {
		flow.Patterns = append(flow.Patterns, models.PatternSlowPace)
	}

	var deviationSum float64
	for _, pick := range last5 {
		deviationSum += pick.ADPDeviation
	}
	switch {
	case deviationSum > sentimentReachSum:
		flow.MarketSentiment = models.SentimentBearish // room is reaching
	case deviationSum < -sentimentReachSum:
		flow.MarketSentiment = models.SentimentBullish // value is falling
	}

	return flow
}

// longestStreak finds the longest run of consecutive picks at a position
// within the window.
func longestStreak(window []models.RecentPick, pos models.Position) int {
	best, current := 0, 0
	for _, pick := range window {
		if pick.Player.Position == pos {
			current++
			if current > best {
				best = current
			}
		} else {
			current = 0
		}
	}
	return best
}

func tail(picks []models.RecentPick, n int) []models.RecentPick {
	if len(picks) <= n {
		return picks
	}
	return picks[len(picks)-n:]
}
