package estimate

import (
	"github.com/google/uuid"
	"github.com/straye-as/estimator/internal/domain"
)

// ResourceLine is the priced view of one allocation inside a wave summary
type ResourceLine struct {
	AllocationID     uuid.UUID `json:"allocation_id"`
	SkillName        string    `json:"skill_name"`
	ProficiencyLevel string    `json:"proficiency_level"`
	BaseLocationName string    `json:"base_location_name"`
	IsOnsite         bool      `json:"is_onsite"`
	TravelRequired   bool      `json:"travel_required"`
	ResourceCostBreakdown
}

// WaveSummary aggregates every allocation of a wave together with its logistics.
// SellingPrice is before the negotiation buffer, FinalPrice after it.
type WaveSummary struct {
	WaveID   uuid.UUID `json:"wave_id"`
	WaveName string    `json:"wave_name"`

	TotalMM     float64 `json:"total_mm"`
	OnsiteMM    float64 `json:"onsite_mm"`
	OffshoreMM  float64 `json:"offshore_mm"`
	TravelingMM float64 `json:"traveling_mm"`

	ResourceCount          int `json:"resource_count"`
	OnsiteResourceCount    int `json:"onsite_resource_count"`
	TravelingResourceCount int `json:"traveling_resource_count"`

	OnsiteSalaryCost     float64 `json:"onsite_salary_cost"`
	OffshoreSalaryCost   float64 `json:"offshore_salary_cost"`
	OnsiteSellingPrice   float64 `json:"onsite_selling_price"`
	OffshoreSellingPrice float64 `json:"offshore_selling_price"`

	TotalBaseSalaryCost   float64 `json:"total_base_salary_cost"`
	TotalOverheadCost     float64 `json:"total_overhead_cost"`
	TotalRowsSellingPrice float64 `json:"total_rows_selling_price"`
	TotalLogisticsCost    float64 `json:"total_logistics_cost"`
	// TotalCost is cost to company plus logistics, kept for display only
	TotalCost     float64 `json:"total_cost"`
	CostToCompany float64 `json:"cost_to_company"`

	SellingPrice         float64 `json:"selling_price"`
	NegoBufferPercentage float64 `json:"nego_buffer_percentage"`
	NegoBufferAmount     float64 `json:"nego_buffer_amount"`
	FinalPrice           float64 `json:"final_price"`

	Logistics LogisticsBreakdown `json:"logistics"`
	Resources []ResourceLine     `json:"resources"`
	Warnings  []Warning          `json:"warnings,omitempty"`
}

// SummarizeWave prices every allocation of the wave with the project margin and
// folds in the wave's logistics.
//
//	costToCompany = salary + overhead (logistics excluded)
//	sellingPrice  = sum of row selling prices + logistics
//	finalPrice    = sellingPrice * (1 + nego_buffer_percentage / 100)
func SummarizeWave(w *domain.Wave, profitMarginPercentage float64) WaveSummary {
	var s WaveSummary
	var warns warningSet
	var g overflowGuard
	if w == nil {
		s.Logistics = WaveLogistics(nil)
		return s
	}

	s.WaveID = w.ID
	s.WaveName = w.Name
	s.ResourceCount = len(w.Allocations)
	s.Resources = make([]ResourceLine, 0, len(w.Allocations))

	phaseCount := w.PhaseCount()
	for i := range w.Allocations {
		a := &w.Allocations[i]
		row, rw := resourceCost(a, profitMarginPercentage, phaseCount)
		if rw.marginInvalid {
			warns.add(WarningInvalidProfitMargin, invalidMarginMessage(profitMarginPercentage))
		}
		if rw.clamped {
			warns.add(WarningNegativeInputClamped, "negative or non-finite resource values were treated as zero")
		}
		if rw.overflow {
			warns.add(WarningValueOverflow, overflowMessage("resource"))
		}

		s.TotalMM = g.add(s.TotalMM, row.TotalManMonths)
		s.TotalBaseSalaryCost = g.add(s.TotalBaseSalaryCost, row.BaseSalaryCost)
		s.TotalOverheadCost = g.add(s.TotalOverheadCost, row.OverheadCost)
		s.TotalRowsSellingPrice = g.add(s.TotalRowsSellingPrice, row.SellingPrice)

		if a.IsOnsite {
			s.OnsiteMM = g.add(s.OnsiteMM, row.TotalManMonths)
			s.OnsiteSalaryCost = g.add(s.OnsiteSalaryCost, row.BaseSalaryCost)
			s.OnsiteSellingPrice = g.add(s.OnsiteSellingPrice, row.SellingPrice)
		} else {
			s.OffshoreMM = g.add(s.OffshoreMM, row.TotalManMonths)
			s.OffshoreSalaryCost = g.add(s.OffshoreSalaryCost, row.BaseSalaryCost)
			s.OffshoreSellingPrice = g.add(s.OffshoreSellingPrice, row.SellingPrice)
		}

		s.Resources = append(s.Resources, ResourceLine{
			AllocationID:          a.ID,
			SkillName:             a.SkillName,
			ProficiencyLevel:      a.ProficiencyLevel,
			BaseLocationName:      a.BaseLocationName,
			IsOnsite:              a.IsOnsite,
			TravelRequired:        a.TravelRequired,
			ResourceCostBreakdown: row,
		})
	}

	logistics, lw := waveLogistics(w)
	if lw.clamped {
		warns.add(WarningNegativeInputClamped, "negative or non-finite logistics values were treated as zero")
	}
	if lw.overflow {
		warns.add(WarningValueOverflow, overflowMessage("logistics"))
	}
	s.Logistics = logistics
	s.TotalLogisticsCost = logistics.TotalLogistics
	s.TravelingMM = logistics.TotalTravelingMM
	s.TravelingResourceCount = logistics.TravelingResourceCount
	s.OnsiteResourceCount = logistics.OnsiteResourceCount

	s.CostToCompany = g.add(s.TotalBaseSalaryCost, s.TotalOverheadCost)
	s.TotalCost = g.add(s.CostToCompany, s.TotalLogisticsCost)
	s.SellingPrice = g.add(s.TotalRowsSellingPrice, s.TotalLogisticsCost)

	buffer, c := clamp(w.NegoBufferPercentage)
	if c {
		warns.add(WarningNegativeInputClamped, "negative negotiation buffer was treated as zero")
	}
	s.NegoBufferPercentage = buffer
	s.NegoBufferAmount = g.mul(s.SellingPrice, buffer/100)
	s.FinalPrice = g.add(s.SellingPrice, s.NegoBufferAmount)

	if g.hit {
		warns.add(WarningValueOverflow, overflowMessage("wave"))
	}
	s.Warnings = warns.result()
	return s
}
