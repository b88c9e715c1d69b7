package strategy

import (
	"fmt"
	"math"
	"sort"

	"github.com/draftops/draft-engine/internal/models"
)

const (
	needFillMinLevel    = 0.5
	needFillRiskLevel   = 35.0
	pivotMinRun         = 2
	pivotMinPriority    = 0.8
	valueHuntMaxPlayers = 5
)

// buildRecommendations derives the ranked recommendation list from the active
// strategy after adjustments have been applied. Recommendation ids are stable
// per type and subject so identical contexts produce identical output.
func (e *Engine) buildRecommendations(ctx *models.DraftContext) []models.StrategyRecommendation {
	active := e.registry.Active()
	if active == nil {
		return []models.StrategyRecommendation{}
	}

	recs := make([]models.StrategyRecommendation, 0)
	recs = append(recs, e.needFillRecommendations(ctx, active)...)
	recs = append(recs, e.valueHuntRecommendations(ctx)...)
	recs = append(recs, e.positionPivotRecommendations(ctx, active)...)
	recs = append(recs, e.safePickRecommendations(ctx, active)...)

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Urgency*recs[i].Confidence > recs[j].Urgency*recs[j].Confidence
	})

	if len(recs) > e.config.MaxRecommendations {
		recs = recs[:e.config.MaxRecommendations]
	}

	return recs
}

// needFillRecommendations covers prioritized positions the roster is still
// missing more than half of.
func (e *Engine) needFillRecommendations(ctx *models.DraftContext, active *models.DraftStrategy) []models.StrategyRecommendation {
	recs := make([]models.StrategyRecommendation, 0)

	for _, pos := range models.AllPositions {
		priority := active.Priority(pos)
		if priority <= 1.0 {
			continue
		}

		max := ctx.League.PositionLimit(pos)
		if max == 0 {
			continue
		}
		needLevel := math.Max(0, float64(max-ctx.UserRoster.CountByPosition(pos))) / float64(max)
		if needLevel <= needFillMinLevel {
			continue
		}

		candidates := ctx.AvailableAtPosition(pos, 3)
		if len(candidates) == 0 {
			continue
		}

		recs = append(recs, models.StrategyRecommendation{
			ID:          fmt.Sprintf("need_fill:%s", pos),
			Type:        models.RecommendationNeedFill,
			Title:       fmt.Sprintf("Fill your %s need", pos),
			Description: fmt.Sprintf("Your roster is light at %s and the strategy is prioritizing it", pos),
			Confidence:  math.Min(95, 60+needLevel*30),
			Urgency:     math.Min(100, needLevel*80+priority*10),
			Reasoning: []string{
				fmt.Sprintf("%s need level %.0f%% with strategy priority %.2f", pos, needLevel*100, priority),
			},
			SuggestedPlayers: candidates,
			RiskLevel:        needFillRiskLevel,
			PotentialImpact:  needLevel * 25,
		})
	}

	return recs
}

// valueHuntRecommendations surfaces players falling well past their ADP. In a
// reaching market the same play reads as contrarian.
func (e *Engine) valueHuntRecommendations(ctx *models.DraftContext) []models.StrategyRecommendation {
	falling := make([]models.Player, 0)
	for _, p := range ctx.AvailablePlayers {
		if p.ADP > 0 && p.ADP-float64(ctx.CurrentPick) > e.config.ValueThreshold {
			falling = append(falling, p)
		}
	}
	if len(falling) == 0 {
		return nil
	}

	sort.SliceStable(falling, func(i, j int) bool {
		return falling[i].ADP-float64(ctx.CurrentPick) > falling[j].ADP-float64(ctx.CurrentPick)
	})
	if len(falling) > valueHuntMaxPlayers {
		falling = falling[:valueHuntMaxPlayers]
	}

	rec := models.StrategyRecommendation{
		ID:          "value_hunt",
		Type:        models.RecommendationValueHunt,
		Title:       "Value on the board",
		Description: fmt.Sprintf("%d players are available well past their ADP", len(falling)),
		Confidence:  80,
		Urgency:     70,
		Reasoning: []string{
			fmt.Sprintf("Best discount: %s at %.0f picks past ADP", falling[0].Name, falling[0].ADP-float64(ctx.CurrentPick)),
		},
		SuggestedPlayers: falling,
		RiskLevel:        30,
		PotentialImpact:  20,
	}

	if ctx.Flow.MarketSentiment == models.SentimentBearish {
		rec.ID = "contrarian"
		rec.Type = models.RecommendationContrarian
		rec.Title = "Zag while the room reaches"
		rec.Reasoning = append(rec.Reasoning, "The room is reaching ahead of ADP; discipline pays here")
	}

	return []models.StrategyRecommendation{rec}
}

// positionPivotRecommendations suggests joining active runs at positions the
// strategy still cares about.
func (e *Engine) positionPivotRecommendations(ctx *models.DraftContext, active *models.DraftStrategy) []models.StrategyRecommendation {
	recs := make([]models.StrategyRecommendation, 0)

	for _, pos := range models.SkillPositions {
		run := ctx.Flow.PositionRuns[pos]
		if run < pivotMinRun || active.Priority(pos) <= pivotMinPriority {
			continue
		}

		candidates := ctx.AvailableAtPosition(pos, 2)
		if len(candidates) == 0 {
			continue
		}

		recs = append(recs, models.StrategyRecommendation{
			ID:          fmt.Sprintf("position_pivot:%s", pos),
			Type:        models.RecommendationPositionPivot,
			Title:       fmt.Sprintf("Join the %s run", pos),
			Description: fmt.Sprintf("A %d-pick %s run is draining the position", run, pos),
			Confidence:  75,
			Urgency:     85,
			Reasoning: []string{
				fmt.Sprintf("%d consecutive %s picks in the recent window", run, pos),
				fmt.Sprintf("Strategy priority %.2f keeps %s in play", active.Priority(pos), pos),
			},
			SuggestedPlayers: candidates,
			RiskLevel:        50,
			PotentialImpact:  18,
		})
	}

	return recs
}

// safePickRecommendations fires only under clock pressure on the user's own
// pick: take the highest-projected player at the thinnest position.
func (e *Engine) safePickRecommendations(ctx *models.DraftContext, active *models.DraftStrategy) []models.StrategyRecommendation {
	if !ctx.IsUserTurn || ctx.TimeRemaining <= 0 || ctx.TimeRemaining >= timePressureSeconds {
		return nil
	}

	var best *models.Player
	for i := range ctx.AvailablePlayers {
		p := &ctx.AvailablePlayers[i]
		if p.IsRisky {
			continue
		}
		if best == nil || p.Projection > best.Projection {
			best = p
		}
	}
	if best == nil {
		return nil
	}

	return []models.StrategyRecommendation{{
		ID:          "safe_pick",
		Type:        models.RecommendationSafePick,
		Title:       "Clock is short, take the safe pick",
		Description: fmt.Sprintf("%s is the highest-projected stable option available", best.Name),
		Confidence:  85,
		Urgency:     95,
		Reasoning: []string{
			fmt.Sprintf("%.0f seconds left on your pick", ctx.TimeRemaining),
		},
		SuggestedPlayers: []models.Player{*best},
		RiskLevel:        15,
		PotentialImpact:  12,
	}}
}
