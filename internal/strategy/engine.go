package strategy

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/draftops/draft-engine/internal/inefficiency"
	"github.com/draftops/draft-engine/internal/models"
)

const (
	timePressureSeconds  = 30.0
	timePressureShift    = -0.2
	lateRoundStart       = 10
	lateRoundKDSTBoost   = 0.5
	lateRoundRiskShift   = 0.1
	scarcityPriorityBump = 0.3
	tierBreakRiskShift   = 0.1
	runJoinBump          = 0.2
	runFadePenalty       = -0.1
)

// Config tunes the engine's recommendation output.
type Config struct {
	MaxRecommendations int
	ValueThreshold     float64 // ADP picks of discount before a player counts as value
}

// DefaultConfig mirrors production settings.
func DefaultConfig() Config {
	return Config{
		MaxRecommendations: 10,
		ValueThreshold:     10,
	}
}

// Stats tracks engine activity for diagnostics.
type Stats struct {
	EvaluationsRun     int64     `json:"evaluations_run"`
	AdjustmentsApplied int64     `json:"adjustments_applied"`
	TriggersFired      int64     `json:"triggers_fired"`
	AvgConfidence      float64   `json:"avg_confidence"`
	LastEvaluatedAt    time.Time `json:"last_evaluated_at"`
}

// Engine converts detected inefficiencies plus situational context into
// strategy adjustments and ranked recommendations. It is synchronous and owns
// no I/O; one call runs the full pipeline before returning. Callers embedding
// it in a concurrent host must serialize calls per instance.
type Engine struct {
	registry *Registry
	detector *inefficiency.Detector
	logger   *logrus.Logger
	config   Config

	history []models.StrategyAdjustment
	stats   Stats
}

// NewEngine wires an engine around a registry and detector.
func NewEngine(registry *Registry, detector *inefficiency.Detector, logger *logrus.Logger) *Engine {
	return NewEngineWithConfig(registry, detector, logger, DefaultConfig())
}

// NewEngineWithConfig wires an engine with explicit tuning.
func NewEngineWithConfig(registry *Registry, detector *inefficiency.Detector, logger *logrus.Logger, config Config) *Engine {
	if config.MaxRecommendations <= 0 {
		config.MaxRecommendations = DefaultConfig().MaxRecommendations
	}
	if config.ValueThreshold <= 0 {
		config.ValueThreshold = DefaultConfig().ValueThreshold
	}
	return &Engine{
		registry: registry,
		detector: detector,
		logger:   logger,
		config:   config,
		history:  make([]models.StrategyAdjustment, 0),
	}
}

// AnalyzeAndAdjust runs the full evaluation pipeline for one pick event:
// detect inefficiencies, rebuild the draft flow, evaluate triggers and
// contextual rules, fold the resulting adjustments into every strategy, and
// derive ranked recommendations from the active strategy.
func (e *Engine) AnalyzeAndAdjust(ctx models.DraftContext) models.EvaluationResult {
	ctx.Inefficiencies = e.detector.DetectInefficiencies(
		ctx.AvailablePlayers, ctx.CurrentPick, ctx.RecentPicks, ctx)
	ctx.Flow = ComputeDraftFlow(ctx.RecentPicks)

	adjustments := e.evaluateTriggers(&ctx)
	adjustments = append(adjustments, e.contextualAdjustments(&ctx)...)

	e.applyAdjustments(adjustments)

	recommendations := e.buildRecommendations(&ctx)

	e.stats.EvaluationsRun++
	e.stats.AdjustmentsApplied += int64(len(adjustments))
	e.stats.LastEvaluatedAt = time.Now()
	if len(recommendations) > 0 {
		var sum float64
		for _, rec := range recommendations {
			sum += rec.Confidence
		}
		e.stats.AvgConfidence = sum / float64(len(recommendations))
	}

	e.logger.WithFields(logrus.Fields{
		"round":           ctx.CurrentRound,
		"pick":            ctx.CurrentPick,
		"inefficiencies":  len(ctx.Inefficiencies),
		"adjustments":     len(adjustments),
		"recommendations": len(recommendations),
		"sentiment":       ctx.Flow.MarketSentiment,
	}).Info("Evaluated draft context")

	return models.EvaluationResult{
		Adjustments:     adjustments,
		Recommendations: recommendations,
		StrategyUpdates: e.registry.Snapshots(),
		Inefficiencies:  ctx.Inefficiencies,
		Flow:            ctx.Flow,
	}
}

// evaluateTriggers walks every trigger on every registered strategy. A match
// produces an adjustment and resets the trigger's diagnostic counter; a miss
// only increments it.
func (e *Engine) evaluateTriggers(ctx *models.DraftContext) []models.StrategyAdjustment {
	adjustments := make([]models.StrategyAdjustment, 0)

	for _, s := range e.registry.All() {
		for i := range s.Triggers {
			trigger := &s.Triggers[i]
			if evaluateCondition(trigger.Condition, ctx) {
				adjustments = append(adjustments, adjustmentForAction(*trigger, ctx))
				trigger.EvaluationsSinceFired = 0
				e.stats.TriggersFired++
			} else {
				trigger.EvaluationsSinceFired++
			}
		}
	}

	return adjustments
}

// contextualAdjustments derives adjustments straight from high-severity
// inefficiencies and from draft-clock and late-round pressure, independent of
// any strategy's triggers.
func (e *Engine) contextualAdjustments(ctx *models.DraftContext) []models.StrategyAdjustment {
	adjustments := make([]models.StrategyAdjustment, 0)

	for _, signal := range ctx.Inefficiencies {
		if signal.Severity != models.SeverityHigh && signal.Severity != models.SeverityCritical {
			continue
		}

		adj := models.StrategyAdjustment{
			ID:             uuid.NewString(),
			Source:         "contextual:" + signal.ID,
			PriorityDeltas: make(map[models.Position]float64),
			CreatedAt:      time.Now(),
		}

		switch signal.Type {
		case models.InefficiencyUndervalued:
			if signal.Player == nil {
				continue
			}
			adj.AddTargets = append(adj.AddTargets, signal.Player.ID)
			adj.Reasoning = append(adj.Reasoning, signal.Player.Name+" is falling well past ADP")

		case models.InefficiencyScarcity:
			adj.PriorityDeltas[signal.Position] = scarcityPriorityBump
			adj.Reasoning = append(adj.Reasoning, string(signal.Position)+" supply is nearly exhausted")

		case models.InefficiencyTierBreak:
			if signal.Player != nil {
				adj.AddTargets = append(adj.AddTargets, signal.Player.ID)
			}
			adj.RiskShift = tierBreakRiskShift
			adj.Reasoning = append(adj.Reasoning, "Tier cliff at "+string(signal.Position)+" justifies stretching")

		case models.InefficiencyRun:
			max := ctx.League.PositionLimit(signal.Position)
			filled := ctx.UserRoster.CountByPosition(signal.Position)
			if max > 0 && float64(filled) < float64(max)/2 {
				adj.PriorityDeltas[signal.Position] = runJoinBump
				adj.Reasoning = append(adj.Reasoning, "Join the "+string(signal.Position)+" run, roster still needs the position")
			} else {
				adj.PriorityDeltas[signal.Position] = runFadePenalty
				adj.Reasoning = append(adj.Reasoning, "Fade the "+string(signal.Position)+" run, position already covered")
			}

		default:
			continue
		}

		adjustments = append(adjustments, adj)
	}

	if ctx.IsUserTurn && ctx.TimeRemaining > 0 && ctx.TimeRemaining < timePressureSeconds {
		adjustments = append(adjustments, models.StrategyAdjustment{
			ID:        uuid.NewString(),
			Source:    "contextual:time_pressure",
			RiskShift: timePressureShift,
			Reasoning: []string{"Under 30 seconds on the clock, reduce risk"},
			CreatedAt: time.Now(),
		})
	}

	if ctx.CurrentRound >= lateRoundStart {
		adjustments = append(adjustments, models.StrategyAdjustment{
			ID:     uuid.NewString(),
			Source: "contextual:late_rounds",
			PriorityDeltas: map[models.Position]float64{
				models.PositionK:   lateRoundKDSTBoost,
				models.PositionDST: lateRoundKDSTBoost,
			},
			RiskShift: lateRoundRiskShift,
			Reasoning: []string{"Late rounds: start valuing K/DST and take upside swings"},
			CreatedAt: time.Now(),
		})
	}

	return adjustments
}

// applyAdjustments folds every adjustment into every registered strategy and
// appends them to the audit history. All folds saturate: priorities never go
// negative and risk tolerance always lands in a named bucket.
func (e *Engine) applyAdjustments(adjustments []models.StrategyAdjustment) {
	for _, s := range e.registry.All() {
		for _, adj := range adjustments {
			for pos, delta := range adj.PriorityDeltas {
				s.PositionPriorities[pos] = math.Max(0, s.Priority(pos)+delta)
			}

			if adj.RiskShift != 0 {
				value := s.RiskTolerance.Numeric() + adj.RiskShift
				value = math.Max(0, math.Min(1, value))
				s.RiskTolerance = models.RiskToleranceFromNumeric(value)
			}

			s.TargetPlayers = appendUnique(s.TargetPlayers, adj.AddTargets)
			s.AvoidPlayers = appendUnique(s.AvoidPlayers, adj.AddAvoids)
		}
	}

	e.history = append(e.history, adjustments...)
}

// ActiveStrategy returns a snapshot of the active strategy, or nil.
func (e *Engine) ActiveStrategy() *models.DraftStrategy {
	active := e.registry.Active()
	if active == nil {
		return nil
	}
	snapshot := active.Clone()
	return &snapshot
}

// SwitchStrategy activates the named strategy atomically; an unknown id is an
// error and leaves the registry untouched.
func (e *Engine) SwitchStrategy(id string) error {
	if err := e.registry.Switch(id); err != nil {
		return err
	}
	e.logger.WithField("strategy_id", id).Info("Switched active strategy")
	return nil
}

// Strategies returns snapshots of every registered strategy.
func (e *Engine) Strategies() []models.DraftStrategy {
	return e.registry.Snapshots()
}

// History returns a copy of the append-only adjustment log.
func (e *Engine) History() []models.StrategyAdjustment {
	out := make([]models.StrategyAdjustment, len(e.history))
	copy(out, e.history)
	return out
}

// Stats returns a copy of the engine's activity counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

func appendUnique(existing []string, additions []string) []string {
	for _, add := range additions {
		seen := false
		for _, have := range existing {
			if have == add {
				seen = true
				break
			}
		}
		if !seen {
			existing = append(existing, add)
		}
	}
	return existing
}
