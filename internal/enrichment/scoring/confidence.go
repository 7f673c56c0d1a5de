package scoring

import (
	"math"

	"copro-workers/internal/models"
)

type confidenceField struct {
	weight  int
	present func(*models.EntitySnapshot) bool
}

// the risk flag only counts when explicitly known, true or false
var confidenceFields = [...]confidenceField{
	{2, func(s *models.EntitySnapshot) bool { return s.ConstructionPeriod.Known() }},
	{3, (*models.EntitySnapshot).SyndicKnown},
	{3, func(s *models.EntitySnapshot) bool { return s.EnergyClass.Known() }},
	{2, func(s *models.EntitySnapshot) bool { return s.InRiskPreventionPlan.IsKnown() }},
	{2, MarketDataUsable},
	{1, func(s *models.EntitySnapshot) bool { return s.TotalLots != nil }},
}

// Confidence is the weighted share (0-100) of scoring inputs actually
// populated. It does not depend on the score values.
func Confidence(s *models.EntitySnapshot) int {
	present, total := 0, 0
	for _, f := range confidenceFields {
		total += f.weight
		if f.present(s) {
			present += f.weight
		}
	}
	return int(math.Round(100 * float64(present) / float64(total)))
}
