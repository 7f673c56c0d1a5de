// Package scoring computes the five-dimension health score of a
// condominium and the confidence index attached to it.
//
// Everything here is pure: no I/O, no clock, no shared state. Weights and
// thresholds are fixed constants so scores stay comparable over time.
package scoring

import (
	"math"

	"github.com/shopspring/decimal"

	"copro-workers/internal/models"
)

const (
	MaxTechnical  = 25
	MaxRisk       = 30
	MaxGovernance = 25
	MaxEnergy     = 20
	MaxMarket     = 20

	// sum of the five maxima; never derived at runtime
	globalDenominator = 120

	neutralMarket           = 10
	minMarketTransactions   = 3
	unknownPeriodTechnical  = 15
	unknownPeriodEnergy     = 10
	unknownSyndicGovernance = 8
	elevatorMinFloors       = 3
	professionalMinLots     = 10
)

// indexed by models.Periods
var technicalByPeriod = [...]int{10, 13, 13, 18, 22, 25, 25}

// indexed by models.EnergyClasses
var energyByClass = [...]int{20, 17, 14, 11, 8, 4, 2}

type riskPenalty struct {
	flag    func(*models.EntitySnapshot) models.TriState
	penalty int
}

// penalties are cumulative; several procedures can be open at once
var riskPenalties = [...]riskPenalty{
	{func(s *models.EntitySnapshot) models.TriState { return s.ProvisionalAdministration }, 20},
	{func(s *models.EntitySnapshot) models.TriState { return s.ImminentPerilOrder }, 18},
	{func(s *models.EntitySnapshot) models.TriState { return s.InRiskPreventionPlan }, 15},
	{func(s *models.EntitySnapshot) models.TriState { return s.UnsanitaryProcedure }, 12},
	{func(s *models.EntitySnapshot) models.TriState { return s.OrdinaryPerilOrder }, 10},
	{func(s *models.EntitySnapshot) models.TriState { return s.CommonEquipmentProcedure }, 8},
	{func(s *models.EntitySnapshot) models.TriState { return s.AdHocMandate }, 5},
}

var (
	pct10      = decimal.NewFromInt(10)
	pct5       = decimal.NewFromInt(5)
	pctMinus5  = decimal.NewFromInt(-5)
	pctMinus10 = decimal.NewFromInt(-10)
)

// ComputeScore scores one snapshot. It never fails: every missing field
// has a defined fallback.
func ComputeScore(s *models.EntitySnapshot) models.ScoreResult {
	result := models.ScoreResult{
		Technical:  Technical(s),
		Risk:       Risk(s),
		Governance: Governance(s),
		Energy:     Energy(s),
		Market:     Market(s),
		Confidence: Confidence(s),
	}
	sum := result.Technical + result.Risk + result.Governance + result.Energy + result.Market
	result.Global = int(math.Round(float64(sum) / globalDenominator * 100))
	return result
}

// Technical scores building age plus equipment bonuses, capped at 25.
func Technical(s *models.EntitySnapshot) int {
	score := unknownPeriodTechnical
	if r := s.ConstructionPeriod.Rank(); r >= 0 {
		score = technicalByPeriod[r]
	}
	if s.HasElevator.IsTrue() && s.FloorCount != nil && *s.FloorCount > elevatorMinFloors {
		score += 2
	}
	if s.HasCaretaker.IsTrue() {
		score += 3
	}
	return min(score, MaxTechnical)
}

// Risk starts from the maximum and subtracts every open procedure. Unknown
// flags are not penalized.
func Risk(s *models.EntitySnapshot) int {
	score := MaxRisk
	for _, p := range riskPenalties {
		if p.flag(s).IsTrue() {
			score -= p.penalty
		}
	}
	return max(score, 0)
}

// Governance scores the management structure. The cooperative flag is
// checked before the syndic type.
func Governance(s *models.EntitySnapshot) int {
	var score int
	switch {
	case s.IsCooperative.IsTrue():
		score = 20
	case s.SyndicType == models.SyndicProfessional:
		score = 22
	case s.SyndicType == models.SyndicVolunteer:
		score = 15
	default:
		score = unknownSyndicGovernance
	}
	if s.SyndicType == models.SyndicProfessional && s.TotalLots != nil && *s.TotalLots > professionalMinLots {
		score += 3
	}
	if s.WorksFundContribution.Valid && s.WorksFundContribution.Decimal.IsPositive() {
		score += 2
	}
	return min(score, MaxGovernance)
}

// Energy uses the DPE class when known and falls back to building age.
func Energy(s *models.EntitySnapshot) int {
	if r := s.EnergyClass.Rank(); r >= 0 {
		score := energyByClass[r]
		if s.CollectiveHeating.IsTrue() {
			score++
		}
		return min(score, MaxEnergy)
	}

	switch s.ConstructionPeriod {
	case models.Period2011Onward:
		return 14
	case models.PeriodBefore1949, models.Period1949To1960, models.Period1961To1974:
		return 6
	default:
		// other known periods and unknown share the neutral value
		return unknownPeriodEnergy
	}
}

// MarketDataUsable reports whether the local market has enough recorded
// sales to be scored.
func MarketDataUsable(s *models.EntitySnapshot) bool {
	return s.MarketAnnualPriceChangePct.Valid &&
		s.MarketTransactionCount != nil &&
		*s.MarketTransactionCount >= minMarketTransactions
}

// Market scores the yearly price evolution. Thin markets get the neutral
// value instead of a penalty.
func Market(s *models.EntitySnapshot) int {
	if !MarketDataUsable(s) {
		return neutralMarket
	}
	evolution := s.MarketAnnualPriceChangePct.Decimal

	var score int
	switch {
	case evolution.GreaterThanOrEqual(pct10):
		score = 20
	case evolution.GreaterThanOrEqual(pct5):
		score = 17
	case !evolution.IsNegative():
		score = 14
	case evolution.GreaterThanOrEqual(pctMinus5):
		score = 11
	case evolution.GreaterThanOrEqual(pctMinus10):
		score = 8
	default:
		score = 4
	}

	// strict thresholds: exactly +5% or -5% gets no adjustment
	if evolution.GreaterThan(pct5) {
		score += 2
	}
	if evolution.LessThan(pctMinus5) {
		score -= 2
	}
	return max(0, min(score, MaxMarket))
}
