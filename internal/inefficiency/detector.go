package inefficiency

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/draftops/draft-engine/internal/models"
)

// Conservative defaults substituted for missing player fields. A missing tier
// deliberately reads as a deep tier and a missing ADP as undraftable, so bad
// feed data biases signals toward "nothing interesting here".
const (
	DefaultADP        = 999.0
	DefaultTier       = 10
	DefaultProjection = 0.0
)

const (
	// eliteTierCeiling is the highest tier that still counts as elite.
	eliteTierCeiling = 2

	// trendWindow is the last-N picks considered "recent" for run intensity
	// and trend direction. Widening it requires retuning every threshold below.
	trendWindow = 5

	// undervaluedScanDepth caps how deep into the ranked pool we look for
	// falling players.
	undervaluedScanDepth = 20
	undervaluedMinDiff   = 10.0

	minRunLength = 3

	tierBreakProjectionGap  = 20.0
	tierBreakFallbackImpact = 22.5

	scarcityTriggerLevel = 0.7
	scarcityMaxElite     = 2

	byeWeekMinRound   = 8
	byeWeekClusterMul = 1.2

	// panicWindow is how many trailing picks the market-panic check inspects.
	// Deliberately short; tune here for larger leagues rather than widening
	// silently.
	panicWindow         = 3
	panicReachThreshold = 10.0
	panicMinReaches     = 2
)

var undervaluedSeverityThresholds = [3]float64{10, 20, 30}
var runSeverityThresholds = [3]float64{3, 4, 6}

// Detector finds market inefficiencies in the currently available player pool.
// It keeps a per-position trend cache that is rebuilt from the supplied
// recent-picks window on every call, so detection is deterministic given the
// same inputs.
type Detector struct {
	logger *logrus.Logger
	trends map[models.Position]*models.PositionTrend
}

// NewDetector creates a detector.
func NewDetector(logger *logrus.Logger) *Detector {
	return &Detector{
		logger: logger,
		trends: make(map[models.Position]*models.PositionTrend),
	}
}

// Trends exposes the trend state from the most recent detection.
func (d *Detector) Trends() map[models.Position]*models.PositionTrend {
	return d.trends
}

// DetectInefficiencies scans the available pool plus the recent-picks window
// and returns every detected signal, sorted by descending priority score.
// Empty inputs degrade to an empty list; nothing here fails.
func (d *Detector) DetectInefficiencies(available []models.Player, currentPick int, recent []models.RecentPick, ctx models.DraftContext) []models.MarketInefficiency {
	d.trends = d.computeTrends(available, recent)

	signals := make([]models.MarketInefficiency, 0)
	signals = append(signals, d.detectUndervalued(available, currentPick)...)
	signals = append(signals, d.detectPositionRuns(recent)...)
	signals = append(signals, d.detectTierBreaks(available)...)
	signals = append(signals, d.detectScarcity(available)...)
	signals = append(signals, d.detectByeWeekValue(available, currentPick, ctx.CurrentRound)...)
	signals = append(signals, d.detectMarketPanic(recent)...)

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].PriorityScore() > signals[j].PriorityScore()
	})

	if len(signals) > 0 {
		d.logger.WithFields(logrus.Fields{
			"current_pick": currentPick,
			"signals":      len(signals),
			"top_type":     signals[0].Type,
		}).Debug("Detected market inefficiencies")
	}

	return signals
}

// detectUndervalued emits a signal for every top-ranked available player whose
// ADP trails the current pick by at least undervaluedMinDiff.
func (d *Detector) detectUndervalued(available []models.Player, currentPick int) []models.MarketInefficiency {
	signals := make([]models.MarketInefficiency, 0)

	depth := len(available)
	if depth > undervaluedScanDepth {
		depth = undervaluedScanDepth
	}

	for i := 0; i < depth; i++ {
		player := available[i]
		adpDiff := playerADP(player) - float64(currentPick)
		if adpDiff < undervaluedMinDiff {
			continue
		}

		signals = append(signals, models.MarketInefficiency{
			ID:       fmt.Sprintf("undervalued:%s", player.ID),
			Type:     models.InefficiencyUndervalued,
			Severity: bucketSeverity(adpDiff, undervaluedSeverityThresholds),
			Player:   &player,
			Position: player.Position,
			Description: fmt.Sprintf("%s (%s) has fallen %.0f picks past his ADP of %.0f",
				player.Name, player.Position, adpDiff, playerADP(player)),
			Value:      adpDiff,
			Confidence: math.Min(95, 60+adpDiff*2),
			TimeWindow: int(math.Min(10, math.Floor(adpDiff/2))),
			Reasoning: []string{
				fmt.Sprintf("ADP %.0f vs current pick %d", playerADP(player), currentPick),
				fmt.Sprintf("%.0f picks of discount available", adpDiff),
			},
			ActionRequired:  fmt.Sprintf("Consider drafting %s before the discount closes", player.Name),
			PotentialImpact: adpDiff * 2,
		})
	}

	return signals
}

// detectPositionRuns emits one run_opportunity per position whose trailing
// consecutive-pick run reaches minRunLength.
func (d *Detector) detectPositionRuns(recent []models.RecentPick) []models.MarketInefficiency {
	signals := make([]models.MarketInefficiency, 0)
	if len(recent) == 0 {
		return signals
	}

	for _, pos := range models.SkillPositions {
		runLength := trailingRunLength(recent, pos)
		if runLength < minRunLength {
			continue
		}

		intensity := runIntensity(recent, pos)
		likelyToContinue := intensity > 0.4 && runLength >= 2

		timeWindow := 1
		if likelyToContinue {
			timeWindow = 3
		}

		signals = append(signals, models.MarketInefficiency{
			ID:       fmt.Sprintf("run_opportunity:%s", pos),
			Type:     models.InefficiencyRun,
			Severity: bucketSeverity(float64(runLength), runSeverityThresholds),
			Position: pos,
			Description: fmt.Sprintf("%d consecutive %s picks - a run is underway",
				runLength, pos),
			Value:      float64(runLength),
			Confidence: math.Min(90, 50+float64(runLength)*10),
			TimeWindow: timeWindow,
			Reasoning: []string{
				fmt.Sprintf("Last %d picks were all %s", runLength, pos),
				fmt.Sprintf("%.0f%% of the last %d picks hit this position", intensity*100, trendWindow),
			},
			ActionRequired:  fmt.Sprintf("Decide whether to join or fade the %s run now", pos),
			PotentialImpact: intensity * 25,
		})
	}

	return signals
}

// detectTierBreaks compares the top two available players per position and
// flags quality cliffs.
func (d *Detector) detectTierBreaks(available []models.Player) []models.MarketInefficiency {
	signals := make([]models.MarketInefficiency, 0)

	for _, pos := range models.SkillPositions {
		top := topAtPosition(available, pos, 2)
		if len(top) < 2 {
			continue
		}

		first, second := top[0], top[1]
		tierDiffers := playerTier(first) != playerTier(second)
		projectionGap := first.Projection - second.Projection
		gapExceeds := projectionGap > tierBreakProjectionGap

		if !tierDiffers && !gapExceeds {
			continue
		}

		severity := models.SeverityHigh
		if tierDiffers && gapExceeds {
			severity = models.SeverityCritical
		}

		confidence := 75.0
		if tierDiffers {
			confidence = 90
		}

		impact := projectionGap
		if impact <= 0 {
			impact = tierBreakFallbackImpact
		}

		playerRef := first
		signals = append(signals, models.MarketInefficiency{
			ID:       fmt.Sprintf("tier_break:%s", pos),
			Type:     models.InefficiencyTierBreak,
			Severity: severity,
			Player:   &playerRef,
			Position: pos,
			Description: fmt.Sprintf("Tier cliff at %s: %s is the last of his tier",
				pos, first.Name),
			Value:      projectionGap,
			Confidence: confidence,
			TimeWindow: 2,
			Reasoning: []string{
				fmt.Sprintf("%s tier %d vs %s tier %d", first.Name, playerTier(first), second.Name, playerTier(second)),
				fmt.Sprintf("Projection gap of %.1f points to the next man up", projectionGap),
			},
			ActionRequired:  fmt.Sprintf("Take %s before the %s tier collapses", first.Name, pos),
			PotentialImpact: impact,
		})
	}

	return signals
}

// detectScarcity flags positions where most expected elite players are gone
// and only a couple remain.
func (d *Detector) detectScarcity(available []models.Player) []models.MarketInefficiency {
	signals := make([]models.MarketInefficiency, 0)

	for _, pos := range models.SkillPositions {
		trend, ok := d.trends[pos]
		if !ok || trend.ScarcityLevel <= scarcityTriggerLevel {
			continue
		}

		elite := eliteCount(pos, available)
		if elite == 0 || elite > scarcityMaxElite {
			// Once the last elite player is gone there is nothing left to act on.
			continue
		}

		severity := models.SeverityHigh
		if elite == 1 {
			severity = models.SeverityCritical
		}

		signals = append(signals, models.MarketInefficiency{
			ID:       fmt.Sprintf("positional_scarcity:%s", pos),
			Type:     models.InefficiencyScarcity,
			Severity: severity,
			Position: pos,
			Description: fmt.Sprintf("Only %d elite %s left (%.0f%% of expected supply drafted)",
				elite, pos, trend.ScarcityLevel*100),
			Value:      trend.ScarcityLevel,
			Confidence: 85,
			TimeWindow: elite + 1,
			Reasoning: []string{
				fmt.Sprintf("%d of %d expected elite %s already off the board", expectedEliteCounts[pos]-elite, expectedEliteCounts[pos], pos),
				fmt.Sprintf("Scarcity level %.2f exceeds the %.1f trigger", trend.ScarcityLevel, scarcityTriggerLevel),
			},
			ActionRequired:  fmt.Sprintf("Secure an elite %s now or plan around the drought", pos),
			PotentialImpact: trend.ScarcityLevel * 30,
		})
	}

	return signals
}

// detectByeWeekValue looks for bye weeks with an oversized cluster of falling
// players. Only meaningful in the later rounds.
func (d *Detector) detectByeWeekValue(available []models.Player, currentPick, currentRound int) []models.MarketInefficiency {
	signals := make([]models.MarketInefficiency, 0)
	if currentRound < byeWeekMinRound || len(available) == 0 {
		return signals
	}

	byWeek := make(map[int][]models.Player)
	for _, p := range available {
		if p.ByeWeek > 0 {
			byWeek[p.ByeWeek] = append(byWeek[p.ByeWeek], p)
		}
	}
	if len(byWeek) == 0 {
		return signals
	}

	total := 0
	for _, players := range byWeek {
		total += len(players)
	}
	mean := float64(total) / float64(len(byWeek))

	weeks := make([]int, 0, len(byWeek))
	for week := range byWeek {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)

	for _, week := range weeks {
		players := byWeek[week]
		if float64(len(players)) <= byeWeekClusterMul*mean {
			continue
		}

		falling := 0
		for _, p := range players {
			if playerADP(p) > float64(currentPick) {
				falling++
			}
		}
		if falling == 0 {
			continue
		}

		signals = append(signals, models.MarketInefficiency{
			ID:       fmt.Sprintf("bye_week_value:week%d", week),
			Type:     models.InefficiencyByeWeek,
			Severity: models.SeverityLow,
			Description: fmt.Sprintf("Week %d bye cluster holds %d available players, %d falling past ADP",
				week, len(players), falling),
			Value:      float64(len(players)),
			Confidence: 70,
			TimeWindow: 5,
			Reasoning: []string{
				fmt.Sprintf("%d players share the week %d bye vs %.1f average per week", len(players), week, mean),
				"Drafters avoiding the stacked bye are letting value slide",
			},
			ActionRequired:  fmt.Sprintf("Mine the week %d bye group if your roster can absorb it", week),
			PotentialImpact: 10,
		})
	}

	return signals
}

// detectMarketPanic flags a reaching market: most of the last few picks going
// well ahead of ADP.
func (d *Detector) detectMarketPanic(recent []models.RecentPick) []models.MarketInefficiency {
	signals := make([]models.MarketInefficiency, 0)
	if len(recent) == 0 {
		return signals
	}

	window := recent
	if len(window) > panicWindow {
		window = window[len(window)-panicWindow:]
	}

	reaches := 0
	for _, pick := range window {
		if playerADP(pick.Player)-float64(pick.PickNumber) > panicReachThreshold {
			reaches++
		}
	}

	if reaches < panicMinReaches {
		return signals
	}

	signals = append(signals, models.MarketInefficiency{
		ID:          "overvalued:market_panic",
		Type:        models.InefficiencyOvervalued,
		Severity:    models.SeverityMedium,
		Description: fmt.Sprintf("Market panic: %d of the last %d picks reached well ahead of ADP", reaches, len(window)),
		Value:       float64(reaches),
		Confidence:  80,
		TimeWindow:  3,
		Reasoning: []string{
			fmt.Sprintf("%d recent picks went %d+ picks before their ADP", reaches, int(panicReachThreshold)),
			"Reaching markets leave value on the board for patient drafters",
		},
		ActionRequired:  "Stay disciplined and let the value come back to you",
		PotentialImpact: 15,
	})

	return signals
}

// bucketSeverity maps a magnitude onto the four severity grades using three
// ascending thresholds.
func bucketSeverity(value float64, thresholds [3]float64) models.Severity {
	switch {
	case value < thresholds[0]:
		return models.SeverityLow
	case value < thresholds[1]:
		return models.SeverityMedium
	case value < thresholds[2]:
		return models.SeverityHigh
	default:
		return models.SeverityCritical
	}
}

// trailingRunLength counts consecutive same-position picks backward from the
// most recent pick.
func trailingRunLength(recent []models.RecentPick, pos models.Position) int {
	length := 0
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Player.Position != pos {
			break
		}
		length++
	}
	return length
}

// runIntensity is the share of the last-5 picks that hit a position.
func runIntensity(recent []models.RecentPick, pos models.Position) float64 {
	if len(recent) == 0 {
		return 0
	}
	window := recent
	if len(window) > trendWindow {
		window = window[len(window)-trendWindow:]
	}
	count := 0
	for _, pick := range window {
		if pick.Player.Position == pos {
			count++
		}
	}
	return float64(count) / float64(len(window))
}

// topAtPosition returns the first n available players at a position in pool
// (rank) order.
func topAtPosition(available []models.Player, pos models.Position, n int) []models.Player {
	top := make([]models.Player, 0, n)
	for _, p := range available {
		if p.Position != pos {
			continue
		}
		top = append(top, p)
		if len(top) == n {
			break
		}
	}
	return top
}

func playerADP(p models.Player) float64 {
	if p.ADP <= 0 {
		return DefaultADP
	}
	return p.ADP
}

func playerTier(p models.Player) int {
	if p.Tier <= 0 {
		return DefaultTier
	}
	return p.Tier
}
