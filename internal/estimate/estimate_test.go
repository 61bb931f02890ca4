package estimate_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/straye-as/estimator/internal/domain"
	"github.com/straye-as/estimator/internal/estimate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-6

func allocation(salary, overhead float64, onsite, travel bool, phases domain.PhaseAllocations) domain.ResourceAllocation {
	return domain.ResourceAllocation{
		SkillName:          "Developer",
		ProficiencyLevel:   "Senior",
		AvgMonthlySalary:   salary,
		OverheadPercentage: overhead,
		IsOnsite:           onsite,
		TravelRequired:     travel,
		PhaseAllocations:   phases,
	}
}

func threeMonthWave(allocs ...domain.ResourceAllocation) domain.Wave {
	cfg := domain.DefaultLogisticsConfig
	return domain.Wave{
		Name:            "Wave 1",
		DurationMonths:  3,
		PhaseNames:      []string{"Month 1", "Month 2", "Month 3"},
		LogisticsConfig: &cfg,
		Allocations:     allocs,
	}
}

// =============================================================================
// Man-months
// =============================================================================

func TestTotalManMonths(t *testing.T) {
	tests := []struct {
		name     string
		phases   domain.PhaseAllocations
		expected float64
	}{
		{"nil map", nil, 0},
		{"empty map", domain.PhaseAllocations{}, 0},
		{"sparse phases", domain.PhaseAllocations{0: 1.5, 3: 2}, 3.5},
		{"fractional values", domain.PhaseAllocations{0: 0.25, 1: 0.3333}, 0.5833},
		{"negative clamps to zero", domain.PhaseAllocations{0: 2, 1: -5}, 2},
		{"NaN clamps to zero", domain.PhaseAllocations{0: math.NaN(), 1: 1}, 1},
		{"infinity clamps to zero", domain.PhaseAllocations{0: math.Inf(1), 1: 1}, 1},
		{"negative index ignored", domain.PhaseAllocations{-1: 4, 0: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := allocation(1000, 0, false, false, tt.phases)
			assert.InDelta(t, tt.expected, estimate.TotalManMonths(&a), tolerance)
		})
	}
}

func TestTotalManMonths_NilAllocation(t *testing.T) {
	assert.Equal(t, 0.0, estimate.TotalManMonths(nil))
}

func TestManMonthsWithin_IgnoresOutOfRangePhases(t *testing.T) {
	a := allocation(1000, 0, false, false, domain.PhaseAllocations{0: 1, 2: 1, 3: 7, 10: 2})

	assert.InDelta(t, 2.0, estimate.ManMonthsWithin(&a, 3), tolerance)
	assert.InDelta(t, 11.0, estimate.ManMonthsWithin(&a, 0), tolerance)
}

// =============================================================================
// Resource cost
// =============================================================================

func TestResourceCost_Formulas(t *testing.T) {
	a := allocation(8000, 30, false, true, domain.PhaseAllocations{0: 1, 1: 1, 2: 1})

	got := estimate.ResourceCost(&a, 35)

	assert.InDelta(t, 3.0, got.TotalManMonths, tolerance)
	assert.InDelta(t, 24000.0, got.BaseSalaryCost, tolerance)
	assert.InDelta(t, 7200.0, got.OverheadCost, tolerance)
	assert.InDelta(t, 31200.0, got.TotalCost, tolerance)
	assert.InDelta(t, 48000.0, got.SellingPrice, tolerance)
	assert.False(t, got.MarginInvalid)
}

func TestResourceCost_MarginRoundTrip(t *testing.T) {
	a := allocation(7321.45, 17.5, true, false, domain.PhaseAllocations{0: 0.5, 1: 1.5, 4: 2.25})

	for _, margin := range []float64{0, 1, 15, 35, 50, 87.5, 99.9} {
		got := estimate.ResourceCost(&a, margin)
		assert.InDelta(t, got.TotalCost, got.SellingPrice*(1-margin/100), 1e-6, "margin %v", margin)
	}
}

func TestResourceCost_DegenerateMargin(t *testing.T) {
	a := allocation(5000, 20, false, false, domain.PhaseAllocations{0: 2})

	for _, margin := range []float64{100, 120, math.NaN()} {
		got := estimate.ResourceCost(&a, margin)
		assert.True(t, got.MarginInvalid)
		assert.Equal(t, got.TotalCost, got.SellingPrice)
		assert.False(t, math.IsInf(got.SellingPrice, 0))
		assert.False(t, math.IsNaN(got.SellingPrice))
	}
}

func TestResourceCost_NegativeInputsClamp(t *testing.T) {
	a := allocation(-5000, -20, false, false, domain.PhaseAllocations{0: 2})

	got := estimate.ResourceCost(&a, 10)

	assert.Equal(t, 0.0, got.BaseSalaryCost)
	assert.Equal(t, 0.0, got.OverheadCost)
	assert.Equal(t, 0.0, got.SellingPrice)
}

func TestSellingPrice(t *testing.T) {
	price, ok := estimate.SellingPrice(850, 15)
	assert.True(t, ok)
	assert.InDelta(t, 1000.0, price, tolerance)

	price, ok = estimate.SellingPrice(850, -10)
	assert.True(t, ok, "negative margin is treated as zero")
	assert.InDelta(t, 850.0, price, tolerance)

	price, ok = estimate.SellingPrice(850, 100)
	assert.False(t, ok)
	assert.Equal(t, 850.0, price)
}

// =============================================================================
// Logistics
// =============================================================================

func TestWaveLogistics_WorkedExample(t *testing.T) {
	w := threeMonthWave(allocation(8000, 30, false, true, domain.PhaseAllocations{0: 1, 1: 1, 2: 1}))
	w.LogisticsConfig = &domain.LogisticsConfig{
		PerDiemDaily:          50,
		PerDiemDays:           30,
		AccommodationDaily:    80,
		AccommodationDays:     30,
		LocalConveyanceDaily:  15,
		LocalConveyanceDays:   21,
		FlightCostPerTrip:     450,
		VisaMedicalPerTrip:    400,
		NumTrips:              6,
		ContingencyPercentage: 5,
	}

	got := estimate.WaveLogistics(&w)

	assert.InDelta(t, 3.0, got.TotalTravelingMM, tolerance)
	assert.Equal(t, 1, got.TravelingResourceCount)
	assert.InDelta(t, 4500.0, got.PerDiemCost, tolerance)
	assert.InDelta(t, 7200.0, got.AccommodationCost, tolerance)
	assert.InDelta(t, 945.0, got.ConveyanceCost, tolerance)
	assert.InDelta(t, 2700.0, got.FlightCost, tolerance)
	assert.InDelta(t, 2400.0, got.VisaMedicalCost, tolerance)
	assert.InDelta(t, 17745.0, got.Subtotal, tolerance)
	assert.InDelta(t, 887.25, got.ContingencyCost, tolerance)
	assert.InDelta(t, 18632.25, got.TotalLogistics, tolerance)
}

func TestWaveLogistics_TravelRequiredDrivesCostNotOnsite(t *testing.T) {
	onsiteOnly := allocation(6000, 25, true, false, domain.PhaseAllocations{0: 2, 1: 2})
	travelOnly := allocation(6000, 25, false, true, domain.PhaseAllocations{0: 1})
	both := allocation(6000, 25, true, true, domain.PhaseAllocations{1: 0.5})
	w := threeMonthWave(onsiteOnly, travelOnly, both)

	got := estimate.WaveLogistics(&w)

	assert.InDelta(t, 1.5, got.TotalTravelingMM, tolerance)
	assert.Equal(t, 2, got.TravelingResourceCount)
	assert.InDelta(t, 4.5, got.TotalOnsiteMM, tolerance)
	assert.Equal(t, 2, got.OnsiteResourceCount)
	assert.InDelta(t, 2*450.0*6, got.FlightCost, tolerance)
	assert.InDelta(t, 1.5*50*30, got.PerDiemCost, tolerance)
}

func TestWaveLogistics_NoTravelersCostsNothing(t *testing.T) {
	w := threeMonthWave(allocation(6000, 25, true, false, domain.PhaseAllocations{0: 3}))

	got := estimate.WaveLogistics(&w)

	assert.Equal(t, 0.0, got.TotalLogistics)
	assert.InDelta(t, 3.0, got.TotalOnsiteMM, tolerance)
}

func TestWaveLogistics_MissingConfigUsesDefaults(t *testing.T) {
	w := threeMonthWave(allocation(8000, 30, false, true, domain.PhaseAllocations{0: 1, 1: 1, 2: 1}))
	w.LogisticsConfig = nil

	got := estimate.WaveLogistics(&w)

	assert.Equal(t, domain.DefaultLogisticsConfig, got.Config)
	assert.InDelta(t, 18632.25, got.TotalLogistics, tolerance)
}

func TestWaveLogistics_ExplicitZeroContingencyIsKept(t *testing.T) {
	w := threeMonthWave(allocation(8000, 30, false, true, domain.PhaseAllocations{0: 1, 1: 1, 2: 1}))
	w.LogisticsConfig.ContingencyPercentage = 0

	got := estimate.WaveLogistics(&w)

	assert.Equal(t, 0.0, got.ContingencyCost)
	assert.InDelta(t, 17745.0, got.TotalLogistics, tolerance)
}

func TestWaveLogistics_NegativeRatesClamp(t *testing.T) {
	w := threeMonthWave(allocation(8000, 30, false, true, domain.PhaseAllocations{0: 1}))
	w.LogisticsConfig.FlightCostPerTrip = -450

	got := estimate.WaveLogistics(&w)

	assert.Equal(t, 0.0, got.FlightCost)
	assert.Equal(t, 0.0, got.Config.FlightCostPerTrip)
}

// =============================================================================
// Wave summary
// =============================================================================

func TestSummarizeWave(t *testing.T) {
	traveler := allocation(8000, 30, false, true, domain.PhaseAllocations{0: 1, 1: 1, 2: 1})
	onsite := allocation(5000, 20, true, false, domain.PhaseAllocations{0: 2, 5: 9})
	w := threeMonthWave(traveler, onsite)
	w.NegoBufferPercentage = 10

	got := estimate.SummarizeWave(&w, 35)

	onsiteCost := 5000.0*2 + 5000.0*2*0.2
	onsitePrice := onsiteCost / 0.65

	assert.InDelta(t, 5.0, got.TotalMM, tolerance, "phase 5 is outside the wave and ignored")
	assert.InDelta(t, 2.0, got.OnsiteMM, tolerance)
	assert.InDelta(t, 3.0, got.OffshoreMM, tolerance)
	assert.InDelta(t, 3.0, got.TravelingMM, tolerance)
	assert.Equal(t, 2, got.ResourceCount)
	assert.Equal(t, 1, got.OnsiteResourceCount)
	assert.Equal(t, 1, got.TravelingResourceCount)

	assert.InDelta(t, 24000.0, got.OffshoreSalaryCost, tolerance)
	assert.InDelta(t, 10000.0, got.OnsiteSalaryCost, tolerance)
	assert.InDelta(t, 48000.0, got.OffshoreSellingPrice, tolerance)
	assert.InDelta(t, onsitePrice, got.OnsiteSellingPrice, tolerance)

	assert.InDelta(t, 31200.0+onsiteCost, got.CostToCompany, tolerance)
	assert.InDelta(t, 18632.25, got.TotalLogisticsCost, tolerance)
	assert.InDelta(t, got.CostToCompany+got.TotalLogisticsCost, got.TotalCost, tolerance)
	assert.InDelta(t, 48000.0+onsitePrice, got.TotalRowsSellingPrice, tolerance)
	assert.InDelta(t, 48000.0+onsitePrice+18632.25, got.SellingPrice, tolerance)
	assert.InDelta(t, got.SellingPrice*0.1, got.NegoBufferAmount, tolerance)
	assert.InDelta(t, got.SellingPrice*1.1, got.FinalPrice, tolerance)
	assert.Len(t, got.Resources, 2)
	assert.Empty(t, got.Warnings)
}

func TestSummarizeWave_CostToCompanyExcludesLogistics(t *testing.T) {
	w := threeMonthWave(allocation(8000, 30, false, true, domain.PhaseAllocations{0: 1, 1: 1, 2: 1}))

	got := estimate.SummarizeWave(&w, 35)

	assert.InDelta(t, 31200.0, got.CostToCompany, tolerance)
	assert.InDelta(t, 48000.0+18632.25, got.SellingPrice, tolerance)
	assert.Equal(t, got.SellingPrice, got.FinalPrice, "no buffer means final equals selling price")
}

func TestSummarizeWave_PartitionCompleteness(t *testing.T) {
	w := threeMonthWave(
		allocation(4000, 10, true, true, domain.PhaseAllocations{0: 1.5}),
		allocation(4000, 10, false, false, domain.PhaseAllocations{1: 2.5}),
		allocation(4000, 10, true, false, domain.PhaseAllocations{2: 0.5}),
		allocation(4000, 10, false, true, domain.PhaseAllocations{0: 1, 2: 1}),
	)

	got := estimate.SummarizeWave(&w, 20)

	assert.InDelta(t, got.TotalMM, got.OnsiteMM+got.OffshoreMM, tolerance)
	assert.LessOrEqual(t, got.TravelingMM, got.TotalMM)
	assert.InDelta(t, got.TotalRowsSellingPrice, got.OnsiteSellingPrice+got.OffshoreSellingPrice, tolerance)
}

func TestSummarizeWave_InvalidMarginWarns(t *testing.T) {
	w := threeMonthWave(allocation(8000, 30, false, false, domain.PhaseAllocations{0: 1}))

	got := estimate.SummarizeWave(&w, 100)

	assert.True(t, estimate.HasWarning(got.Warnings, estimate.WarningInvalidProfitMargin))
	assert.InDelta(t, 10400.0, got.SellingPrice, tolerance)
	assert.False(t, math.IsInf(got.FinalPrice, 0))
}

func TestSummarizeWave_NegativeBufferClamps(t *testing.T) {
	w := threeMonthWave(allocation(8000, 30, false, false, domain.PhaseAllocations{0: 1}))
	w.NegoBufferPercentage = -15

	got := estimate.SummarizeWave(&w, 10)

	assert.Equal(t, 0.0, got.NegoBufferAmount)
	assert.Equal(t, got.SellingPrice, got.FinalPrice)
	assert.True(t, estimate.HasWarning(got.Warnings, estimate.WarningNegativeInputClamped))
}

func TestSummarizeWave_EmptyWave(t *testing.T) {
	w := domain.Wave{Name: "Empty"}

	got := estimate.SummarizeWave(&w, 35)

	assert.Equal(t, 0.0, got.TotalMM)
	assert.Equal(t, 0.0, got.SellingPrice)
	assert.Equal(t, 0.0, got.FinalPrice)
	assert.Equal(t, domain.DefaultLogisticsConfig, got.Logistics.Config)
}

// =============================================================================
// Project summary
// =============================================================================

func sampleProject() *domain.Project {
	first := threeMonthWave(
		allocation(8000, 30, false, true, domain.PhaseAllocations{0: 1, 1: 1, 2: 1}),
		allocation(5000, 20, true, false, domain.PhaseAllocations{0: 2}),
	)
	first.NegoBufferPercentage = 5

	secondCfg := domain.LogisticsConfig{PerDiemDaily: 60, PerDiemDays: 20, NumTrips: 2, FlightCostPerTrip: 900}
	second := domain.Wave{
		Name:            "Wave 2",
		DurationMonths:  1.5,
		LogisticsConfig: &secondCfg,
		Allocations: []domain.ResourceAllocation{
			allocation(3000, 15, true, true, domain.PhaseAllocations{0: 1, 1: 0.5}),
		},
	}

	return &domain.Project{
		ProjectNumber:          "PRJ-0001",
		Name:                   "Core banking rollout",
		ProfitMarginPercentage: 35,
		Version:                1,
		IsLatestVersion:        true,
		Status:                 domain.ProjectStatusDraft,
		Waves:                  []domain.Wave{first, second},
	}
}

func TestSummarizeProject_Additivity(t *testing.T) {
	p := sampleProject()

	got := estimate.SummarizeProject(p)
	require.Len(t, got.Waves, 2)

	var totalMM, onsiteMM, logistics, ctc, selling, buffer, final float64
	var resources, travelers int
	for i := range p.Waves {
		ws := estimate.SummarizeWave(&p.Waves[i], p.ProfitMarginPercentage)
		totalMM += ws.TotalMM
		onsiteMM += ws.OnsiteMM
		logistics += ws.TotalLogisticsCost
		ctc += ws.CostToCompany
		selling += ws.SellingPrice
		buffer += ws.NegoBufferAmount
		final += ws.FinalPrice
		resources += ws.ResourceCount
		travelers += ws.TravelingResourceCount
	}

	assert.InDelta(t, totalMM, got.TotalMM, tolerance)
	assert.InDelta(t, onsiteMM, got.OnsiteMM, tolerance)
	assert.InDelta(t, logistics, got.TotalLogisticsCost, tolerance)
	assert.InDelta(t, ctc, got.CostToCompany, tolerance)
	assert.InDelta(t, selling, got.SellingPrice, tolerance)
	assert.InDelta(t, buffer, got.NegoBufferAmount, tolerance)
	assert.InDelta(t, final, got.FinalPrice, tolerance)
	assert.Equal(t, resources, got.ResourceCount)
	assert.Equal(t, travelers, got.TravelingResourceCount)
	assert.InDelta(t, got.TotalMM, got.OnsiteMM+got.OffshoreMM, tolerance)
}

func TestSummarizeProject_SecondWaveUsesDurationForPhaseCount(t *testing.T) {
	p := sampleProject()
	p.Waves[1].Allocations[0].PhaseAllocations[2] = 4

	got := estimate.SummarizeProject(p)

	// ceil(1.5) = 2 phases, so the phase 2 entry is ignored
	assert.InDelta(t, 1.5, got.Waves[1].TotalMM, tolerance)
}

func TestSummarizeProject_AveragePerMM(t *testing.T) {
	got := estimate.SummarizeProject(sampleProject())

	assert.InDelta(t, got.OnsiteSellingPrice/got.OnsiteMM, got.OnsiteAvgPerMM, tolerance)
	assert.InDelta(t, got.OffshoreSellingPrice/got.OffshoreMM, got.OffshoreAvgPerMM, tolerance)
}

func TestSummarizeProject_ZeroWaves(t *testing.T) {
	p := &domain.Project{Name: "Empty", ProfitMarginPercentage: 35}

	got := estimate.SummarizeProject(p)

	assert.Equal(t, 0.0, got.TotalMM)
	assert.Equal(t, 0.0, got.SellingPrice)
	assert.Equal(t, 0.0, got.FinalPrice)
	assert.Equal(t, 0.0, got.OnsiteAvgPerMM)
	assert.Empty(t, got.Waves)
	assert.Empty(t, got.Warnings)
}

func TestSummarizeProject_MarginOfHundred(t *testing.T) {
	p := sampleProject()
	p.ProfitMarginPercentage = 100

	got := estimate.SummarizeProject(p)

	assert.True(t, estimate.HasWarning(got.Warnings, estimate.WarningInvalidProfitMargin))
	assert.False(t, math.IsInf(got.SellingPrice, 0) || math.IsNaN(got.SellingPrice))
	assert.InDelta(t, got.CostToCompany+got.TotalLogisticsCost, got.SellingPrice, tolerance)
}

func TestSummarizeProject_InvalidMarginWarnsWithoutWaves(t *testing.T) {
	got := estimate.SummarizeProject(&domain.Project{ProfitMarginPercentage: 150})

	assert.True(t, estimate.HasWarning(got.Warnings, estimate.WarningInvalidProfitMargin))
}

func TestSummarizeProject_Idempotent(t *testing.T) {
	p := sampleProject()

	first := estimate.SummarizeProject(p)
	second := estimate.SummarizeProject(p)

	assert.Equal(t, first, second)
}

func TestSummarizeProject_DoesNotMutateInput(t *testing.T) {
	p := sampleProject()
	p.Waves[0].Allocations[0].PhaseAllocations[1] = -3
	p.Waves[0].LogisticsConfig.NumTrips = -1

	_ = estimate.SummarizeProject(p)

	assert.Equal(t, -3.0, p.Waves[0].Allocations[0].PhaseAllocations[1])
	assert.Equal(t, -1.0, p.Waves[0].LogisticsConfig.NumTrips)
}

// =============================================================================
// Version comparison
// =============================================================================

func TestDelta(t *testing.T) {
	tests := []struct {
		name      string
		from, to  float64
		diff, pct float64
		increased bool
		decreased bool
	}{
		{"increase", 10, 15, 5, 50, true, false},
		{"decrease", 20, 15, -5, -25, false, true},
		{"no change", 12, 12, 0, 0, false, false},
		{"from zero to value", 0, 7, 7, 100, true, false},
		{"zero to zero", 0, 0, 0, 0, false, false},
		{"value to zero", 8, 0, -8, -100, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := estimate.Delta(estimate.MetricTotalMM, tt.from, tt.to)
			assert.InDelta(t, tt.diff, d.Diff, tolerance)
			assert.InDelta(t, tt.pct, d.Pct, tolerance)
			assert.Equal(t, tt.increased, d.Increased)
			assert.Equal(t, tt.decreased, d.Decreased)
			assert.Equal(t, !tt.increased && !tt.decreased, d.Unchanged())
		})
	}
}

func TestCompareVersions(t *testing.T) {
	a := estimate.ProjectSummary{TotalMM: 10, ResourceCount: 4, SellingPrice: 200000}
	b := estimate.ProjectSummary{TotalMM: 15, ResourceCount: 4, SellingPrice: 150000, TotalLogisticsCost: 1200}

	cmp := estimate.CompareVersions(a, b)

	mm, ok := cmp.Get(estimate.MetricTotalMM)
	require.True(t, ok)
	assert.Equal(t, 5.0, mm.Diff)
	assert.Equal(t, 50.0, mm.Pct)
	assert.True(t, mm.Increased)

	resources, ok := cmp.Get(estimate.MetricResourceCount)
	require.True(t, ok)
	assert.True(t, resources.Unchanged())

	price, ok := cmp.Get(estimate.MetricSellingPrice)
	require.True(t, ok)
	assert.True(t, price.Decreased)
	assert.InDelta(t, -25.0, price.Pct, tolerance)

	logistics, ok := cmp.Get(estimate.MetricLogisticsCost)
	require.True(t, ok)
	assert.Equal(t, 100.0, logistics.Pct)

	_, ok = cmp.Get(estimate.Metric("unknown"))
	assert.False(t, ok)
	assert.Len(t, cmp.Metrics, 11)
}

func TestCompareVersions_IndependentSnapshots(t *testing.T) {
	v1 := sampleProject()
	v2 := v1.NextVersion("add a traveler")
	v2.Waves[0].Allocations = append(v2.Waves[0].Allocations,
		allocation(4000, 10, false, true, domain.PhaseAllocations{0: 1}))

	cmp := estimate.CompareVersions(estimate.SummarizeProject(v1), estimate.SummarizeProject(v2))

	travelers, ok := cmp.Get(estimate.MetricTravelingResourceCount)
	require.True(t, ok)
	assert.Equal(t, 1.0, travelers.Diff)
	assert.Len(t, v1.Waves[0].Allocations, 2, "the earlier version is untouched")
}

// =============================================================================
// Overflow
// =============================================================================

func assertFinite(t *testing.T, values ...float64) {
	t.Helper()
	for i, v := range values {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "value %d is %v", i, v)
	}
}

func TestSummarizeWave_HugeSalaryIsCapped(t *testing.T) {
	wave := threeMonthWave(allocation(1e308, 30, false, false, domain.PhaseAllocations{0: 1, 1: 1}))

	got := estimate.SummarizeWave(&wave, 35)

	assertFinite(t,
		got.TotalBaseSalaryCost, got.TotalOverheadCost, got.CostToCompany, got.TotalCost,
		got.TotalRowsSellingPrice, got.SellingPrice, got.NegoBufferAmount, got.FinalPrice,
	)
	assert.Equal(t, math.MaxFloat64, got.SellingPrice)
	assert.Equal(t, math.MaxFloat64, got.FinalPrice)
	assert.Equal(t, 0.0, got.NegoBufferAmount)
	assert.True(t, estimate.HasWarning(got.Warnings, estimate.WarningValueOverflow))

	_, err := json.Marshal(got)
	assert.NoError(t, err)
}

func TestSummarizeWave_HugeLogisticsRateTimesZeroDays(t *testing.T) {
	cfg := domain.DefaultLogisticsConfig
	cfg.PerDiemDaily = 1e308
	cfg.PerDiemDays = 0
	wave := threeMonthWave(allocation(8000, 30, true, true, domain.PhaseAllocations{0: 1, 1: 1, 2: 1}))
	wave.LogisticsConfig = &cfg

	got := estimate.SummarizeWave(&wave, 35)

	assert.Equal(t, 0.0, got.Logistics.PerDiemCost)
	assertFinite(t, got.Logistics.Subtotal, got.TotalLogisticsCost, got.SellingPrice, got.FinalPrice)
	assert.True(t, estimate.HasWarning(got.Warnings, estimate.WarningValueOverflow))
}

func TestSummarizeProject_OverflowAcrossWaves(t *testing.T) {
	big := threeMonthWave(allocation(1e308, 0, true, false, domain.PhaseAllocations{0: 1}))
	big.NegoBufferPercentage = 10
	project := &domain.Project{
		ProfitMarginPercentage: 50,
		Waves:                  []domain.Wave{big, big},
	}

	got := estimate.SummarizeProject(project)

	assertFinite(t, got.SellingPrice, got.NegoBufferAmount, got.FinalPrice, got.OnsiteAvgPerMM, got.TotalCost)
	assert.Equal(t, math.MaxFloat64, got.FinalPrice)
	assert.True(t, estimate.HasWarning(got.Warnings, estimate.WarningValueOverflow))

	_, err := json.Marshal(got)
	assert.NoError(t, err)
}

func TestSummarizeWave_OrdinaryInputsRaiseNoOverflow(t *testing.T) {
	wave := threeMonthWave(allocation(8000, 30, true, true, domain.PhaseAllocations{0: 1, 1: 1, 2: 1}))

	got := estimate.SummarizeWave(&wave, 35)

	assert.False(t, estimate.HasWarning(got.Warnings, estimate.WarningValueOverflow))
}

func TestDelta_CapsPercentage(t *testing.T) {
	d := estimate.Delta(estimate.MetricSellingPrice, 1e-300, 1e308)

	assertFinite(t, d.Diff, d.Pct)
	assert.True(t, d.Increased)
}
