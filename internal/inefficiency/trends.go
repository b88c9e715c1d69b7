package inefficiency

import (
	"math"

	"github.com/draftops/draft-engine/internal/models"
)

// expectedEliteCounts is the fixed reference count of tier-1/2 players a
// position is expected to carry in a full pool. Scarcity is measured against
// these, not against the live league size.
var expectedEliteCounts = map[models.Position]int{
	models.PositionQB: 4,
	models.PositionRB: 8,
	models.PositionWR: 8,
	models.PositionTE: 4,
}

// trendDirectionEpsilon is how many picks the last-5 average must move off the
// historical average before the trend leaves "stable".
const trendDirectionEpsilon = 2.0

// computeTrends rebuilds the per-position trend map from scratch. The
// recent-picks window is the only memory the detector has; nothing survives
// across engine instances.
func (d *Detector) computeTrends(available []models.Player, recent []models.RecentPick) map[models.Position]*models.PositionTrend {
	trends := make(map[models.Position]*models.PositionTrend, len(models.SkillPositions))

	for _, pos := range models.SkillPositions {
		trend := &models.PositionTrend{
			Position:  pos,
			Direction: models.TrendStable,
		}

		var pickSum float64
		var pickCount int
		var recentSum float64
		var recentCount int

		recentCutoff := len(recent) - trendWindow
		for i, pick := range recent {
			if pick.Player.Position != pos {
				continue
			}
			pickSum += float64(pick.PickNumber)
			pickCount++
			if i >= recentCutoff {
				recentSum += float64(pick.PickNumber)
				recentCount++
			}
		}

		if pickCount > 0 {
			trend.AvgPickPosition = pickSum / float64(pickCount)
		}
		if recentCount > 0 {
			trend.RecentAvgPick = recentSum / float64(recentCount)
		}

		// Lower recent average means the position is going earlier than its
		// historical norm in this draft.
		if pickCount > 0 && recentCount > 0 {
			diff := trend.RecentAvgPick - trend.AvgPickPosition
			switch {
			case diff < -trendDirectionEpsilon:
				trend.Direction = models.TrendAccelerating
			case diff > trendDirectionEpsilon:
				trend.Direction = models.TrendDeclining
			}
		}

		trend.ScarcityLevel = scarcityLevel(pos, available)
		trend.PicksUntilTierBreak = picksUntilTierBreak(pos, available)

		trends[pos] = trend
	}

	return trends
}

// scarcityLevel is the fraction of expected elite players already gone:
// 1 - eliteAvailable/expectedElite, clamped to [0,1].
func scarcityLevel(pos models.Position, available []models.Player) float64 {
	expected, ok := expectedEliteCounts[pos]
	if !ok || expected == 0 {
		return 0
	}
	level := 1 - float64(eliteCount(pos, available))/float64(expected)
	return math.Max(0, math.Min(1, level))
}

// eliteCount counts available players at a position with tier <= 2. Players
// missing tier data count as non-elite via the conservative default.
func eliteCount(pos models.Position, available []models.Player) int {
	count := 0
	for _, p := range available {
		if p.Position == pos && playerTier(p) <= eliteTierCeiling {
			count++
		}
	}
	return count
}

// picksUntilTierBreak counts how many players at a position share the top
// player's tier before the quality cliff.
func picksUntilTierBreak(pos models.Position, available []models.Player) int {
	topTier := 0
	count := 0
	for _, p := range available {
		if p.Position != pos {
			continue
		}
		tier := playerTier(p)
		if topTier == 0 {
			topTier = tier
		}
		if tier != topTier {
			break
		}
		count++
	}
	return count
}
