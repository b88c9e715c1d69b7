package providers

import (
	"fmt"
	"sort"

	"github.com/draftops/draft-engine/internal/models"
)

// positionShape controls how the synthesized pool distributes players at one
// position: how many, where their ADP curve starts, and how fast projections
// fall off.
type positionShape struct {
	position       models.Position
	count          int
	firstADP       float64
	adpStep        float64
	topProjection  float64
	projectionStep float64
	tierSize       int
}

var poolShapes = []positionShape{
	{models.PositionRB, 40, 2, 4.2, 320, 5.5, 5},
	{models.PositionWR, 45, 3, 3.8, 310, 5.0, 6},
	{models.PositionQB, 20, 18, 7.5, 380, 8.0, 4},
	{models.PositionTE, 18, 22, 8.0, 230, 7.0, 3},
	{models.PositionK, 12, 140, 3.0, 150, 2.0, 6},
	{models.PositionDST, 12, 135, 3.0, 140, 2.5, 6},
}

// SynthesizePool builds a deterministic mock player pool shaped like a real
// preseason board. It stands in for the upstream feed in development and when
// the circuit breaker is open.
func SynthesizePool() []models.Player {
	pool := make([]models.Player, 0, 160)

	for _, shape := range poolShapes {
		for i := 0; i < shape.count; i++ {
			adp := shape.firstADP + float64(i)*shape.adpStep
			player := models.Player{
				ID:         fmt.Sprintf("%s-%02d", shape.position, i+1),
				Name:       fmt.Sprintf("%s %s %d", poolFirstNames[i%len(poolFirstNames)], poolLastNames[(i*3)%len(poolLastNames)], i+1),
				Position:   shape.position,
				Team:       poolTeams[i%len(poolTeams)],
				Tier:       i/shape.tierSize + 1,
				ADP:        adp,
				Projection: shape.topProjection - float64(i)*shape.projectionStep,
				ByeWeek:    5 + (i*7)%10,
				IsSleeper:  i%9 == 7,
				IsRisky:    i%7 == 5,
			}
			pool = append(pool, player)
		}
	}

	// Rank order = ascending ADP, the order the engine expects.
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].ADP < pool[j].ADP
	})

	return pool
}

var poolFirstNames = []string{
	"Jalen", "Marcus", "Devon", "Tyler", "Chris", "Jordan", "Austin", "Blake",
	"Cam", "Derek", "Evan", "Felix", "Grant", "Hayden", "Isaiah", "Kellen",
}

var poolLastNames = []string{
	"Walker", "Brooks", "Carter", "Dalton", "Ellis", "Foster", "Greene",
	"Hayes", "Irving", "Jenkins", "Keller", "Lawson", "Mercer", "Nolan",
}

var poolTeams = []string{
	"BUF", "KC", "PHI", "SF", "DAL", "MIA", "CIN", "DET",
	"BAL", "LAC", "NYJ", "MIN", "SEA", "GB", "JAX", "ATL",
}
