package inefficiency

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftops/draft-engine/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func player(id string, pos models.Position, tier int, adp, projection float64) models.Player {
	return models.Player{
		ID:         id,
		Name:       "Player " + id,
		Position:   pos,
		Tier:       tier,
		ADP:        adp,
		Projection: projection,
	}
}

func pickAt(p models.Player, pickNumber int) models.RecentPick {
	return models.RecentPick{
		Player:       p,
		PickNumber:   pickNumber,
		ADPDeviation: p.ADP - float64(pickNumber),
		TimeTakenSec: 45,
		PickedAt:     time.Now(),
	}
}

func TestDetectInefficiencies_EmptyInputs(t *testing.T) {
	d := NewDetector(testLogger())

	signals := d.DetectInefficiencies(nil, 1, nil, models.DraftContext{CurrentRound: 1})

	assert.Empty(t, signals)
}

func TestDetectInefficiencies_SortedByPriority(t *testing.T) {
	d := NewDetector(testLogger())

	available := []models.Player{
		player("rb1", models.PositionRB, 1, 45, 300), // big faller
		player("rb2", models.PositionRB, 2, 20, 270),
		player("wr1", models.PositionWR, 1, 25, 280),
		player("wr2", models.PositionWR, 1, 28, 275),
	}
	recent := []models.RecentPick{
		pickAt(player("x1", models.PositionWR, 2, 10, 200), 5),
		pickAt(player("x2", models.PositionWR, 2, 11, 195), 6),
		pickAt(player("x3", models.PositionWR, 3, 12, 190), 7),
		pickAt(player("x4", models.PositionWR, 3, 13, 185), 8),
	}

	signals := d.DetectInefficiencies(available, 9, recent, models.DraftContext{CurrentRound: 1})
	require.NotEmpty(t, signals)

	for i := 1; i < len(signals); i++ {
		assert.GreaterOrEqual(t, signals[i-1].PriorityScore(), signals[i].PriorityScore(),
			"signals must be sorted by non-increasing priority")
	}
}

func TestDetectUndervalued(t *testing.T) {
	tests := []struct {
		name         string
		adp          float64
		currentPick  int
		wantSignal   bool
		wantSeverity models.Severity
	}{
		{"below threshold", 17, 8, false, ""},
		{"medium at threshold", 18, 8, true, models.SeverityMedium},
		{"high past 20", 30, 8, true, models.SeverityHigh},
		{"critical past 30", 42, 8, true, models.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(testLogger())
			available := []models.Player{player("p1", models.PositionWR, 2, tt.adp, 250)}

			signals := d.DetectInefficiencies(available, tt.currentPick, nil, models.DraftContext{CurrentRound: 1})

			var found *models.MarketInefficiency
			for i, s := range signals {
				if s.Type == models.InefficiencyUndervalued {
					found = &signals[i]
				}
			}

			if !tt.wantSignal {
				assert.Nil(t, found)
				return
			}

			require.NotNil(t, found)
			assert.Equal(t, tt.wantSeverity, found.Severity)
			assert.Equal(t, "undervalued:p1", found.ID)

			adpDiff := tt.adp - float64(tt.currentPick)
			assert.InDelta(t, min95(60+adpDiff*2), found.Confidence, 0.001)
			assert.Equal(t, adpDiff*2, found.PotentialImpact)
			assert.LessOrEqual(t, found.TimeWindow, 10)
		})
	}
}

func min95(v float64) float64 {
	if v > 95 {
		return 95
	}
	return v
}

func TestDetectUndervalued_SeverityMonotonicInADPDiff(t *testing.T) {
	d := NewDetector(testLogger())

	available := make([]models.Player, 0, 15)
	for i := 0; i < 15; i++ {
		available = append(available, player(fmt.Sprintf("p%d", i), models.PositionWR, 2, 15+float64(i*3), 200))
	}

	signals := d.DetectInefficiencies(available, 1, nil, models.DraftContext{CurrentRound: 1})

	weightByID := make(map[string]float64)
	for _, s := range signals {
		if s.Type == models.InefficiencyUndervalued {
			weightByID[s.Player.ID] = s.Severity.Weight()
		}
	}

	prev := 0.0
	for i := 0; i < 15; i++ {
		w, ok := weightByID[fmt.Sprintf("p%d", i)]
		if !ok {
			continue
		}
		assert.GreaterOrEqual(t, w, prev, "severity must not decrease as adpDiff grows")
		prev = w
	}
}

func TestDetectPositionRuns(t *testing.T) {
	tests := []struct {
		name       string
		positions  []models.Position
		wantRun    bool
		wantLength float64
		wantSev    models.Severity
	}{
		{
			name:      "two picks is not a run",
			positions: []models.Position{models.PositionRB, models.PositionWR, models.PositionWR},
			wantRun:   false,
		},
		{
			name:       "three picks is a medium run",
			positions:  []models.Position{models.PositionWR, models.PositionRB, models.PositionRB, models.PositionRB},
			wantRun:    true,
			wantLength: 3,
			wantSev:    models.SeverityMedium,
		},
		{
			name:       "four picks is a high run",
			positions:  []models.Position{models.PositionWR, models.PositionWR, models.PositionWR, models.PositionWR},
			wantRun:    true,
			wantLength: 4,
			wantSev:    models.SeverityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(testLogger())

			recent := make([]models.RecentPick, 0, len(tt.positions))
			for i, pos := range tt.positions {
				recent = append(recent, pickAt(player(fmt.Sprintf("r%d", i), pos, 3, float64(i+10), 180), 16+i))
			}
			available := []models.Player{
				player("a1", models.PositionWR, 2, 21, 220),
				player("a2", models.PositionWR, 2, 23, 215),
			}

			signals := d.DetectInefficiencies(available, 20, recent, models.DraftContext{CurrentRound: 2})

			runs := make([]models.MarketInefficiency, 0)
			for _, s := range signals {
				if s.Type == models.InefficiencyRun {
					runs = append(runs, s)
				}
			}

			if !tt.wantRun {
				assert.Empty(t, runs)
				return
			}

			require.Len(t, runs, 1, "exactly one run signal per position per call")
			assert.Equal(t, tt.wantLength, runs[0].Value)
			assert.Equal(t, tt.wantSev, runs[0].Severity)
			// Full-intensity runs are likely to continue and get the longer window.
			assert.Equal(t, 3, runs[0].TimeWindow)
		})
	}
}

func TestDetectTierBreaks_RBScenario(t *testing.T) {
	d := NewDetector(testLogger())

	// 22 RBs, top at tier 1 / ADP 5, second at tier 2 / ADP 9.
	available := []models.Player{
		player("rb-top", models.PositionRB, 1, 5, 300),
		player("rb-2", models.PositionRB, 2, 9, 290),
	}
	for i := 2; i < 22; i++ {
		available = append(available, player(fmt.Sprintf("rb-%d", i+1), models.PositionRB, 3+i/5, float64(10+i), 250-float64(i*5)))
	}

	signals := d.DetectInefficiencies(available, 8, nil, models.DraftContext{CurrentRound: 1})

	var tierBreak *models.MarketInefficiency
	for i, s := range signals {
		if s.Type == models.InefficiencyTierBreak && s.Position == models.PositionRB {
			tierBreak = &signals[i]
		}
		if s.Type == models.InefficiencyUndervalued {
			assert.NotEqual(t, "rb-top", s.Player.ID, "top RB has not fallen past ADP")
		}
	}

	require.NotNil(t, tierBreak)
	assert.Equal(t, models.SeverityHigh, tierBreak.Severity, "tier differs but projection gap is small")
	assert.Equal(t, float64(90), tierBreak.Confidence)
	assert.Equal(t, 2, tierBreak.TimeWindow)
	assert.Equal(t, "rb-top", tierBreak.Player.ID)
}

func TestDetectTierBreaks_CriticalWhenBothConditionsHold(t *testing.T) {
	d := NewDetector(testLogger())

	available := []models.Player{
		player("te1", models.PositionTE, 1, 20, 240),
		player("te2", models.PositionTE, 3, 40, 180), // different tier AND 60-point gap
	}

	signals := d.DetectInefficiencies(available, 18, nil, models.DraftContext{CurrentRound: 2})

	var tierBreak *models.MarketInefficiency
	for i, s := range signals {
		if s.Type == models.InefficiencyTierBreak {
			tierBreak = &signals[i]
		}
	}

	require.NotNil(t, tierBreak)
	assert.Equal(t, models.SeverityCritical, tierBreak.Severity)
	assert.Equal(t, float64(60), tierBreak.PotentialImpact)
}

func TestDetectScarcity(t *testing.T) {
	tests := []struct {
		name    string
		elite   int
		wantSig bool
		wantSev models.Severity
		wantTW  int
	}{
		{"plenty of elite", 4, false, "", 0},
		{"two elite left", 2, true, models.SeverityHigh, 3},
		{"one elite left", 1, true, models.SeverityCritical, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(testLogger())

			available := make([]models.Player, 0)
			for i := 0; i < tt.elite; i++ {
				available = append(available, player(fmt.Sprintf("rb-e%d", i), models.PositionRB, 1, float64(10+i), 290))
			}
			for i := 0; i < 10; i++ {
				available = append(available, player(fmt.Sprintf("rb-d%d", i), models.PositionRB, 5, float64(60+i), 150))
			}

			signals := d.DetectInefficiencies(available, 30, nil, models.DraftContext{CurrentRound: 3})

			var scarcity *models.MarketInefficiency
			for i, s := range signals {
				if s.Type == models.InefficiencyScarcity && s.Position == models.PositionRB {
					scarcity = &signals[i]
				}
			}

			if !tt.wantSig {
				assert.Nil(t, scarcity)
				return
			}

			require.NotNil(t, scarcity)
			assert.Equal(t, tt.wantSev, scarcity.Severity)
			assert.Equal(t, float64(85), scarcity.Confidence)
			assert.Equal(t, tt.wantTW, scarcity.TimeWindow)
		})
	}
}

func TestDetectByeWeekValue_OnlyLateRounds(t *testing.T) {
	buildPool := func() []models.Player {
		pool := make([]models.Player, 0)
		// Week 9 holds a cluster of falling players; weeks 5-7 one player each.
		for i := 0; i < 6; i++ {
			p := player(fmt.Sprintf("c%d", i), models.PositionWR, 4, float64(120+i), 140)
			p.ByeWeek = 9
			pool = append(pool, p)
		}
		for i, week := range []int{5, 6, 7} {
			p := player(fmt.Sprintf("o%d", i), models.PositionRB, 4, float64(80+i), 150)
			p.ByeWeek = week
			pool = append(pool, p)
		}
		return pool
	}

	d := NewDetector(testLogger())
	early := d.DetectInefficiencies(buildPool(), 90, nil, models.DraftContext{CurrentRound: 5})
	for _, s := range early {
		assert.NotEqual(t, models.InefficiencyByeWeek, s.Type, "no bye-week signals before round 8")
	}

	late := d.DetectInefficiencies(buildPool(), 90, nil, models.DraftContext{CurrentRound: 9})
	var bye *models.MarketInefficiency
	for i, s := range late {
		if s.Type == models.InefficiencyByeWeek {
			bye = &late[i]
		}
	}
	require.NotNil(t, bye)
	assert.Equal(t, "bye_week_value:week9", bye.ID)
	assert.Equal(t, models.SeverityLow, bye.Severity)
	assert.Equal(t, float64(70), bye.Confidence)
}

func TestDetectMarketPanic(t *testing.T) {
	d := NewDetector(testLogger())

	// Two of the last three picks reached 15+ picks ahead of ADP.
	recent := []models.RecentPick{
		pickAt(player("n1", models.PositionWR, 2, 21, 220), 20),
		pickAt(player("n2", models.PositionRB, 2, 40, 230), 21),
		pickAt(player("n3", models.PositionQB, 2, 38, 300), 22),
	}

	signals := d.DetectInefficiencies(nil, 23, recent, models.DraftContext{CurrentRound: 2})

	var panic_ *models.MarketInefficiency
	for i, s := range signals {
		if s.Type == models.InefficiencyOvervalued {
			panic_ = &signals[i]
		}
	}

	require.NotNil(t, panic_)
	assert.Equal(t, "overvalued:market_panic", panic_.ID)
	assert.Equal(t, models.SeverityMedium, panic_.Severity)
	assert.Equal(t, float64(80), panic_.Confidence)
}

func TestDetector_MissingFieldsUseDefaults(t *testing.T) {
	d := NewDetector(testLogger())

	// No ADP, tier, or projection anywhere; the detector must not fail and a
	// missing ADP reads as undraftable, producing an undervalued signal.
	available := []models.Player{
		{ID: "u1", Name: "No Data", Position: models.PositionWR},
		{ID: "u2", Name: "No Data Either", Position: models.PositionWR},
	}

	signals := d.DetectInefficiencies(available, 10, nil, models.DraftContext{CurrentRound: 1})

	found := false
	for _, s := range signals {
		if s.Type == models.InefficiencyUndervalued && s.Player.ID == "u1" {
			found = true
			assert.Equal(t, DefaultADP-10, s.Value)
		}
	}
	assert.True(t, found)
}
