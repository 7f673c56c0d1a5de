// Package renovation derives probable works items and their cost ranges
// from the age, energy label, size and risk state of a condominium.
package renovation

import (
	"fmt"

	"copro-workers/internal/models"
)

const (
	roofSqmPerLot   = 60
	elevatorMinLots = 15
)

// per-lot ranges in euros unless noted
var (
	insulationHigh   = costRange{8000, 15000}
	insulationLow    = costRange{3000, 8000}
	facadeOld        = costRange{4000, 8000}
	facadeMid        = costRange{2500, 5000}
	facadeRecent     = costRange{1000, 3000}
	electricalOld    = costRange{3000, 7000}
	electricalMid    = costRange{1500, 4000}
	elevatorFlat     = costRange{30000, 60000}
	roofOldPerSqm    = costRange{150, 300}
	roofMidPerSqm    = costRange{80, 150}
	fireSafetyPerLot = costRange{5000, 15000}
)

type costRange struct {
	min, max int64
}

func (c costRange) times(n int64) costRange {
	return costRange{c.min * n, c.max * n}
}

type estimator struct {
	snapshot *models.EntitySnapshot
	lots     int64
	items    []models.RenovationLineItem
}

func (e *estimator) add(name, description string, cost costRange) {
	e.items = append(e.items, models.RenovationLineItem{
		Name:        name,
		Description: description,
		MinCost:     cost.min,
		MaxCost:     cost.max,
	})
}

// Estimate evaluates every works rule in a fixed order. An empty item list
// means no major works were identified.
func Estimate(s *models.EntitySnapshot) models.RenovationEstimate {
	e := &estimator{
		snapshot: s,
		lots:     1,
		items:    []models.RenovationLineItem{},
	}
	// unknown lot count costs as a single lot
	if s.TotalLots != nil {
		e.lots = int64(*s.TotalLots)
	}

	e.insulation()
	e.facade()
	e.electrical()
	e.elevator()
	e.roof()
	e.fireSafety()

	estimate := models.RenovationEstimate{
		Items:       e.items,
		Reliability: Reliability(s),
	}
	for _, item := range e.items {
		estimate.TotalMin += item.MinCost
		estimate.TotalMax += item.MaxCost
	}
	return estimate
}

// Reliability reflects how much of the estimator's input is known.
func Reliability(s *models.EntitySnapshot) models.Reliability {
	switch {
	case s.ConstructionPeriod.Known() && s.EnergyClass.Known():
		return models.ReliabilityHigh
	case s.ConstructionPeriod.Known():
		return models.ReliabilityMedium
	default:
		return models.ReliabilityLow
	}
}

// at most one insulation item; the lower tier only fires when the high tier
// did not
func (e *estimator) insulation() {
	s := e.snapshot
	highTierAdded := false

	switch {
	case s.EnergyClass.In(models.EnergyE, models.EnergyF, models.EnergyG):
		e.add("Thermal insulation",
			"Priority insulation work: energy label "+string(s.EnergyClass),
			insulationHigh.times(e.lots))
		highTierAdded = true
	case s.ConstructionPeriod.EndsBy(1974) &&
		(!s.EnergyClass.Known() || s.EnergyClass.In(models.EnergyA, models.EnergyB)):
		e.add("Thermal insulation",
			"Likely insufficient insulation for a building erected before 1975",
			insulationHigh.times(e.lots))
		highTierAdded = true
	}

	if !highTierAdded && s.EnergyClass.In(models.EnergyC, models.EnergyD) {
		e.add("Energy improvements",
			"Recommended energy improvements: energy label "+string(s.EnergyClass),
			insulationLow.times(e.lots))
	}
}

func (e *estimator) facade() {
	p := e.snapshot.ConstructionPeriod
	switch {
	case !p.Known():
		return
	case p.EndsBy(1960):
		e.add("Facade renovation", "Facade renovation likely needed", facadeOld.times(e.lots))
	case p.EndsBy(1993):
		e.add("Facade renovation", "Facade renovation to anticipate", facadeMid.times(e.lots))
	default:
		e.add("Facade upkeep", "Routine facade upkeep", facadeRecent.times(e.lots))
	}
}

func (e *estimator) electrical() {
	p := e.snapshot.ConstructionPeriod
	switch {
	case p.EndsBy(1974):
		e.add("Electrical and plumbing compliance",
			"Full upgrade of common electrical and plumbing networks",
			electricalOld.times(e.lots))
	case p.EndsBy(1993):
		e.add("Electrical and plumbing compliance",
			"Partial upgrade of common electrical and plumbing networks",
			electricalMid.times(e.lots))
	}
}

// inferred from lot count only, unrelated to the hasElevator flag
func (e *estimator) elevator() {
	s := e.snapshot
	if s.TotalLots == nil || *s.TotalLots < elevatorMinLots || !s.ConstructionPeriod.EndsBy(2000) {
		return
	}
	e.add("Elevator replacement", "Modernisation or replacement of the elevator", elevatorFlat)
}

func (e *estimator) roof() {
	surface := e.lots * roofSqmPerLot
	p := e.snapshot.ConstructionPeriod
	switch {
	case p.EndsBy(1974):
		e.add("Roof renovation",
			fmt.Sprintf("Full roof renovation over an estimated %d m²", surface),
			roofOldPerSqm.times(surface))
	case p.EndsBy(2010):
		e.add("Roof renovation",
			fmt.Sprintf("Roof waterproofing and repairs over an estimated %d m²", surface),
			roofMidPerSqm.times(surface))
	}
}

func (e *estimator) fireSafety() {
	if !e.snapshot.InRiskPreventionPlan.IsTrue() {
		return
	}
	e.add("Fire safety compliance",
		"Safety works required by the risk prevention plan",
		fireSafetyPerLot.times(e.lots))
}
