package estimate

import (
	"github.com/google/uuid"
	"github.com/straye-as/estimator/internal/domain"
)

// ProjectSummary is the sum of every wave summary of a project version
type ProjectSummary struct {
	ProjectID              uuid.UUID `json:"project_id"`
	ProjectNumber          string    `json:"project_number"`
	Version                int       `json:"version"`
	ProfitMarginPercentage float64   `json:"profit_margin_percentage"`

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
	OnsiteAvgPerMM       float64 `json:"onsite_avg_per_mm"`
	OffshoreAvgPerMM     float64 `json:"offshore_avg_per_mm"`

	TotalBaseSalaryCost   float64 `json:"total_base_salary_cost"`
	TotalOverheadCost     float64 `json:"total_overhead_cost"`
	TotalRowsSellingPrice float64 `json:"total_rows_selling_price"`
	TotalLogisticsCost    float64 `json:"total_logistics_cost"`
	TotalCost             float64 `json:"total_cost"`
	CostToCompany         float64 `json:"cost_to_company"`

	SellingPrice     float64 `json:"selling_price"`
	NegoBufferAmount float64 `json:"nego_buffer_amount"`
	FinalPrice       float64 `json:"final_price"`

	Waves    []WaveSummary `json:"waves"`
	Warnings []Warning     `json:"warnings,omitempty"`
}

// SummarizeProject runs SummarizeWave for every wave with the project's profit
// margin and adds the results field by field. A project without waves yields
// a zeroed summary.
func SummarizeProject(p *domain.Project) ProjectSummary {
	var s ProjectSummary
	if p == nil {
		return s
	}

	s.ProjectID = p.ID
	s.ProjectNumber = p.ProjectNumber
	s.Version = p.Version
	s.ProfitMarginPercentage = p.ProfitMarginPercentage
	s.Waves = make([]WaveSummary, 0, len(p.Waves))

	var warns warningSet
	if _, ok := normalizeMargin(p.ProfitMarginPercentage); !ok {
		warns.add(WarningInvalidProfitMargin, invalidMarginMessage(p.ProfitMarginPercentage))
	}

	var g overflowGuard
	for i := range p.Waves {
		ws := SummarizeWave(&p.Waves[i], p.ProfitMarginPercentage)
		s.add(&ws, &g)
		warns.merge(ws.Warnings)
		s.Waves = append(s.Waves, ws)
	}

	if s.OnsiteMM > 0 {
		s.OnsiteAvgPerMM = g.div(s.OnsiteSellingPrice, s.OnsiteMM)
	}
	if s.OffshoreMM > 0 {
		s.OffshoreAvgPerMM = g.div(s.OffshoreSellingPrice, s.OffshoreMM)
	}

	if g.hit {
		warns.add(WarningValueOverflow, overflowMessage("project"))
	}
	s.Warnings = warns.result()
	return s
}

func (s *ProjectSummary) add(w *WaveSummary, g *overflowGuard) {
	s.TotalMM = g.add(s.TotalMM, w.TotalMM)
	s.OnsiteMM = g.add(s.OnsiteMM, w.OnsiteMM)
	s.OffshoreMM = g.add(s.OffshoreMM, w.OffshoreMM)
	s.TravelingMM = g.add(s.TravelingMM, w.TravelingMM)

	s.ResourceCount += w.ResourceCount
	s.OnsiteResourceCount += w.OnsiteResourceCount
	s.TravelingResourceCount += w.TravelingResourceCount

	s.OnsiteSalaryCost = g.add(s.OnsiteSalaryCost, w.OnsiteSalaryCost)
	s.OffshoreSalaryCost = g.add(s.OffshoreSalaryCost, w.OffshoreSalaryCost)
	s.OnsiteSellingPrice = g.add(s.OnsiteSellingPrice, w.OnsiteSellingPrice)
	s.OffshoreSellingPrice = g.add(s.OffshoreSellingPrice, w.OffshoreSellingPrice)

	s.TotalBaseSalaryCost = g.add(s.TotalBaseSalaryCost, w.TotalBaseSalaryCost)
	s.TotalOverheadCost = g.add(s.TotalOverheadCost, w.TotalOverheadCost)
	s.TotalRowsSellingPrice = g.add(s.TotalRowsSellingPrice, w.TotalRowsSellingPrice)
	s.TotalLogisticsCost = g.add(s.TotalLogisticsCost, w.TotalLogisticsCost)
	s.TotalCost = g.add(s.TotalCost, w.TotalCost)
	s.CostToCompany = g.add(s.CostToCompany, w.CostToCompany)

	s.SellingPrice = g.add(s.SellingPrice, w.SellingPrice)
	s.NegoBufferAmount = g.add(s.NegoBufferAmount, w.NegoBufferAmount)
	s.FinalPrice = g.add(s.FinalPrice, w.FinalPrice)
}
