package renovation

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copro-workers/internal/models"
)

func itemNames(est models.RenovationEstimate) []string {
	names := make([]string, 0, len(est.Items))
	for _, item := range est.Items {
		names = append(names, item.Name)
	}
	return names
}

func findItem(t *testing.T, est models.RenovationEstimate, name string) models.RenovationLineItem {
	t.Helper()
	for _, item := range est.Items {
		if item.Name == name {
			return item
		}
	}
	require.Failf(t, "item not found", "%q not in %v", name, itemNames(est))
	return models.RenovationLineItem{}
}

// ==========================
// Scenario Tests
// ==========================

func TestEstimate_OldBuildingUnderRiskPlan(t *testing.T) {
	s := &models.EntitySnapshot{
		ConstructionPeriod:   models.PeriodBefore1949,
		TotalLots:            models.IntPtr(20),
		EnergyClass:          models.EnergyF,
		InRiskPreventionPlan: models.True,
	}

	est := Estimate(s)

	assert.Equal(t, []string{
		"Thermal insulation",
		"Facade renovation",
		"Electrical and plumbing compliance",
		"Elevator replacement",
		"Roof renovation",
		"Fire safety compliance",
	}, itemNames(est))

	expected := map[string][2]int64{
		"Thermal insulation":                 {160000, 300000},
		"Facade renovation":                  {80000, 160000},
		"Electrical and plumbing compliance": {60000, 140000},
		"Elevator replacement":               {30000, 60000},
		"Roof renovation":                    {180000, 360000},
		"Fire safety compliance":             {100000, 300000},
	}
	for name, costs := range expected {
		item := findItem(t, est, name)
		assert.Equal(t, costs[0], item.MinCost, name)
		assert.Equal(t, costs[1], item.MaxCost, name)
	}

	assert.Equal(t, int64(610000), est.TotalMin)
	assert.Equal(t, int64(1320000), est.TotalMax)
	assert.Equal(t, models.ReliabilityHigh, est.Reliability)
}

func TestEstimate_NoWorksIdentified(t *testing.T) {
	s := &models.EntitySnapshot{}

	est := Estimate(s)

	require.NotNil(t, est.Items)
	assert.Empty(t, est.Items)
	assert.Zero(t, est.TotalMin)
	assert.Zero(t, est.TotalMax)
	assert.Equal(t, models.ReliabilityLow, est.Reliability)
}

func TestEstimate_RecentEfficientBuilding(t *testing.T) {
	s := &models.EntitySnapshot{
		ConstructionPeriod: models.Period2011Onward,
		EnergyClass:        models.EnergyA,
		TotalLots:          models.IntPtr(30),
	}

	est := Estimate(s)

	assert.Equal(t, []string{"Facade upkeep"}, itemNames(est))
	assert.Equal(t, int64(30000), est.TotalMin)
	assert.Equal(t, int64(90000), est.TotalMax)
}

// ==========================
// Insulation
// ==========================

func TestEstimate_InsulationTiers(t *testing.T) {
	tests := []struct {
		name        string
		period      models.ConstructionPeriod
		class       models.EnergyClass
		expected    string
		expectedMin int64
	}{
		{"poor label", models.Period2001To2010, models.EnergyE, "Thermal insulation", 8000},
		{"old building without label", models.Period1961To1974, models.EnergyUnknown, "Thermal insulation", 8000},
		{"old building with suspiciously good label", models.PeriodBefore1949, models.EnergyB, "Thermal insulation", 8000},
		{"old building with average label", models.Period1949To1960, models.EnergyD, "Energy improvements", 3000},
		{"recent building with average label", models.Period1994To2000, models.EnergyC, "Energy improvements", 3000},
		{"unknown period with average label", models.PeriodUnknown, models.EnergyD, "Energy improvements", 3000},
		{"1975 building without label", models.Period1975To1993, models.EnergyUnknown, "", 0},
		{"recent good label", models.Period2011Onward, models.EnergyB, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &estimator{
				snapshot: &models.EntitySnapshot{ConstructionPeriod: tt.period, EnergyClass: tt.class},
				lots:     1,
			}
			e.insulation()

			if tt.expected == "" {
				assert.Empty(t, e.items)
				return
			}
			require.Len(t, e.items, 1, "never both tiers")
			assert.Equal(t, tt.expected, e.items[0].Name)
			assert.Equal(t, tt.expectedMin, e.items[0].MinCost)
		})
	}
}

// ==========================
// Per-rule thresholds
// ==========================

func TestEstimate_FacadeAndElectricalByPeriod(t *testing.T) {
	tests := []struct {
		period        models.ConstructionPeriod
		facadeMin     int64
		electricalMin int64
	}{
		{models.PeriodBefore1949, 4000, 3000},
		{models.Period1949To1960, 4000, 3000},
		{models.Period1961To1974, 2500, 3000},
		{models.Period1975To1993, 2500, 1500},
		{models.Period1994To2000, 1000, 0},
		{models.Period2011Onward, 1000, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			e := &estimator{snapshot: &models.EntitySnapshot{ConstructionPeriod: tt.period}, lots: 1}
			e.facade()
			e.electrical()

			require.NotEmpty(t, e.items)
			assert.Equal(t, tt.facadeMin, e.items[0].MinCost)
			if tt.electricalMin == 0 {
				assert.Len(t, e.items, 1)
				return
			}
			require.Len(t, e.items, 2)
			assert.Equal(t, tt.electricalMin, e.items[1].MinCost)
		})
	}
}

func TestEstimate_Elevator(t *testing.T) {
	tests := []struct {
		name     string
		lots     *int
		period   models.ConstructionPeriod
		expected bool
	}{
		{"large pre-2000 building", models.IntPtr(15), models.Period1994To2000, true},
		{"small building", models.IntPtr(14), models.Period1975To1993, false},
		{"recent building", models.IntPtr(40), models.Period2001To2010, false},
		{"unknown lots", nil, models.PeriodBefore1949, false},
		{"unknown period", models.IntPtr(40), models.PeriodUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := Estimate(&models.EntitySnapshot{ConstructionPeriod: tt.period, TotalLots: tt.lots})
			assert.Equal(t, tt.expected, slices.Contains(itemNames(est), "Elevator replacement"))
		})
	}
}

func TestEstimate_RoofUsesLotBasedSurface(t *testing.T) {
	est := Estimate(&models.EntitySnapshot{
		ConstructionPeriod: models.Period2001To2010,
		TotalLots:          models.IntPtr(10),
	})
	roof := findItem(t, est, "Roof renovation")
	assert.Equal(t, int64(600*80), roof.MinCost)
	assert.Equal(t, int64(600*150), roof.MaxCost)
	assert.Contains(t, roof.Description, "600 m²")

	est = Estimate(&models.EntitySnapshot{ConstructionPeriod: models.Period1961To1974})
	roof = findItem(t, est, "Roof renovation")
	assert.Equal(t, int64(60*150), roof.MinCost, "unknown lot count uses a single lot")
}

func TestEstimate_FireSafetyNeedsConfirmedPlan(t *testing.T) {
	for _, flag := range []models.TriState{models.Unknown, models.False} {
		est := Estimate(&models.EntitySnapshot{InRiskPreventionPlan: flag})
		assert.NotContains(t, itemNames(est), "Fire safety compliance")
	}
	est := Estimate(&models.EntitySnapshot{InRiskPreventionPlan: models.True, TotalLots: models.IntPtr(3)})
	item := findItem(t, est, "Fire safety compliance")
	assert.Equal(t, int64(15000), item.MinCost)
	assert.Equal(t, int64(45000), item.MaxCost)
}

// ==========================
// Properties
// ==========================

func TestReliability(t *testing.T) {
	assert.Equal(t, models.ReliabilityHigh, Reliability(&models.EntitySnapshot{ConstructionPeriod: models.Period1975To1993, EnergyClass: models.EnergyC}))
	assert.Equal(t, models.ReliabilityMedium, Reliability(&models.EntitySnapshot{ConstructionPeriod: models.Period1975To1993}))
	assert.Equal(t, models.ReliabilityLow, Reliability(&models.EntitySnapshot{EnergyClass: models.EnergyC}))
}

func TestEstimate_CostRangesAreOrderedAndSummed(t *testing.T) {
	periods := append([]models.ConstructionPeriod{models.PeriodUnknown}, models.Periods[:]...)
	classes := append([]models.EnergyClass{models.EnergyUnknown}, models.EnergyClasses[:]...)

	for _, period := range periods {
		for _, class := range classes {
			est := Estimate(&models.EntitySnapshot{
				ConstructionPeriod:   period,
				EnergyClass:          class,
				TotalLots:            models.IntPtr(25),
				InRiskPreventionPlan: models.True,
			})

			var sumMin, sumMax int64
			for _, item := range est.Items {
				assert.GreaterOrEqual(t, item.MinCost, int64(0))
				assert.LessOrEqual(t, item.MinCost, item.MaxCost)
				sumMin += item.MinCost
				sumMax += item.MaxCost
			}
			assert.Equal(t, sumMin, est.TotalMin)
			assert.Equal(t, sumMax, est.TotalMax)
			assert.Contains(t, []models.Reliability{models.ReliabilityHigh, models.ReliabilityMedium, models.ReliabilityLow}, est.Reliability)
		}
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	s := &models.EntitySnapshot{
		ConstructionPeriod: models.Period1961To1974,
		TotalLots:          models.IntPtr(18),
		EnergyClass:        models.EnergyD,
	}
	assert.Equal(t, Estimate(s), Estimate(s))
}
