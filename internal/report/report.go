// Package report turns an estimate summary into a stable, rounded document
// suitable for archiving and sharing.
package report

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/estimator/internal/domain"
	"github.com/straye-as/estimator/internal/estimate"
)

// Places is the number of decimal places every amount is rounded to
const Places = 2

// Document is the archived form of one project version's estimate
type Document struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Project     ProjectInfo        `json:"project"`
	Totals      Totals             `json:"totals"`
	Waves       []WaveReport       `json:"waves"`
	Warnings    []estimate.Warning `json:"warnings"`
}

// ProjectInfo identifies the estimated version
type ProjectInfo struct {
	ID                     uuid.UUID            `json:"id"`
	ProjectNumber          string               `json:"project_number"`
	Name                   string               `json:"name"`
	CustomerName           string               `json:"customer_name"`
	ProjectLocationNames   []string             `json:"project_location_names"`
	Version                int                  `json:"version"`
	VersionNotes           string               `json:"version_notes"`
	Status                 domain.ProjectStatus `json:"status"`
	ProfitMarginPercentage decimal.Decimal      `json:"profit_margin_percentage"`
}

// Totals holds the rounded man-month, cost and price figures of a project or wave
type Totals struct {
	TotalMM                decimal.Decimal `json:"total_mm"`
	OnsiteMM               decimal.Decimal `json:"onsite_mm"`
	OffshoreMM             decimal.Decimal `json:"offshore_mm"`
	TravelingMM            decimal.Decimal `json:"traveling_mm"`
	ResourceCount          int             `json:"resource_count"`
	OnsiteResourceCount    int             `json:"onsite_resource_count"`
	TravelingResourceCount int             `json:"traveling_resource_count"`
	BaseSalaryCost         decimal.Decimal `json:"base_salary_cost"`
	OverheadCost           decimal.Decimal `json:"overhead_cost"`
	CostToCompany          decimal.Decimal `json:"cost_to_company"`
	LogisticsCost          decimal.Decimal `json:"logistics_cost"`
	RowsSellingPrice       decimal.Decimal `json:"rows_selling_price"`
	OnsiteSellingPrice     decimal.Decimal `json:"onsite_selling_price"`
	OffshoreSellingPrice   decimal.Decimal `json:"offshore_selling_price"`
	SellingPrice           decimal.Decimal `json:"selling_price"`
	NegoBufferAmount       decimal.Decimal `json:"nego_buffer_amount"`
	FinalPrice             decimal.Decimal `json:"final_price"`
}

// WaveReport is one wave of the document
type WaveReport struct {
	Name                 string           `json:"name"`
	PhaseNames           []string         `json:"phase_names"`
	NegoBufferPercentage decimal.Decimal  `json:"nego_buffer_percentage"`
	Totals               Totals           `json:"totals"`
	Logistics            LogisticsReport  `json:"logistics"`
	Resources            []ResourceReport `json:"resources"`
}

// LogisticsReport is the rounded logistics breakdown of a wave
type LogisticsReport struct {
	PerDiem       decimal.Decimal `json:"per_diem"`
	Accommodation decimal.Decimal `json:"accommodation"`
	Conveyance    decimal.Decimal `json:"conveyance"`
	Flights       decimal.Decimal `json:"flights"`
	VisaMedical   decimal.Decimal `json:"visa_medical"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Contingency   decimal.Decimal `json:"contingency"`
	Total         decimal.Decimal `json:"total"`
}

// ResourceReport is one priced allocation row
type ResourceReport struct {
	SkillName        string          `json:"skill_name"`
	ProficiencyLevel string          `json:"proficiency_level"`
	BaseLocationName string          `json:"base_location_name"`
	IsOnsite         bool            `json:"is_onsite"`
	TravelRequired   bool            `json:"travel_required"`
	ManMonths        decimal.Decimal `json:"man_months"`
	BaseSalaryCost   decimal.Decimal `json:"base_salary_cost"`
	OverheadCost     decimal.Decimal `json:"overhead_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	SellingPrice     decimal.Decimal `json:"selling_price"`
}

// Round converts an engine figure to a decimal rounded half away from zero.
// NaN becomes zero and infinities are capped at the largest finite float64.
func Round(v float64) decimal.Decimal {
	switch {
	case math.IsNaN(v):
		return decimal.Zero
	case math.IsInf(v, 1):
		v = math.MaxFloat64
	case math.IsInf(v, -1):
		v = -math.MaxFloat64
	}
	return decimal.NewFromFloat(v).Round(Places)
}

// Build assembles the document for a project version from its summary.
// Rounding happens only here; the summary keeps full precision.
func Build(project *domain.Project, summary estimate.ProjectSummary) Document {
	doc := Document{
		Project: ProjectInfo{
			ID:                     project.ID,
			ProjectNumber:          project.ProjectNumber,
			Name:                   project.Name,
			CustomerName:           project.CustomerName,
			ProjectLocationNames:   nonNil(project.ProjectLocationNames),
			Version:                project.Version,
			VersionNotes:           project.VersionNotes,
			Status:                 project.Status,
			ProfitMarginPercentage: Round(project.ProfitMarginPercentage),
		},
		Totals:   projectTotals(summary),
		Waves:    make([]WaveReport, 0, len(summary.Waves)),
		Warnings: append([]estimate.Warning{}, summary.Warnings...),
	}

	for i, ws := range summary.Waves {
		var phaseNames []string
		if i < len(project.Waves) {
			phaseNames = project.Waves[i].PhaseNames
		}
		doc.Waves = append(doc.Waves, waveReport(ws, phaseNames))
	}
	return doc
}

func projectTotals(s estimate.ProjectSummary) Totals {
	return Totals{
		TotalMM:                Round(s.TotalMM),
		OnsiteMM:               Round(s.OnsiteMM),
		OffshoreMM:             Round(s.OffshoreMM),
		TravelingMM:            Round(s.TravelingMM),
		ResourceCount:          s.ResourceCount,
		OnsiteResourceCount:    s.OnsiteResourceCount,
		TravelingResourceCount: s.TravelingResourceCount,
		BaseSalaryCost:         Round(s.TotalBaseSalaryCost),
		OverheadCost:           Round(s.TotalOverheadCost),
		CostToCompany:          Round(s.CostToCompany),
		LogisticsCost:          Round(s.TotalLogisticsCost),
		RowsSellingPrice:       Round(s.TotalRowsSellingPrice),
		OnsiteSellingPrice:     Round(s.OnsiteSellingPrice),
		OffshoreSellingPrice:   Round(s.OffshoreSellingPrice),
		SellingPrice:           Round(s.SellingPrice),
		NegoBufferAmount:       Round(s.NegoBufferAmount),
		FinalPrice:             Round(s.FinalPrice),
	}
}

func waveReport(ws estimate.WaveSummary, phaseNames []string) WaveReport {
	l := ws.Logistics
	wr := WaveReport{
		Name:                 ws.WaveName,
		PhaseNames:           nonNil(phaseNames),
		NegoBufferPercentage: Round(ws.NegoBufferPercentage),
		Totals: Totals{
			TotalMM:                Round(ws.TotalMM),
			OnsiteMM:               Round(ws.OnsiteMM),
			OffshoreMM:             Round(ws.OffshoreMM),
			TravelingMM:            Round(ws.TravelingMM),
			ResourceCount:          ws.ResourceCount,
			OnsiteResourceCount:    ws.OnsiteResourceCount,
			TravelingResourceCount: ws.TravelingResourceCount,
			BaseSalaryCost:         Round(ws.TotalBaseSalaryCost),
			OverheadCost:           Round(ws.TotalOverheadCost),
			CostToCompany:          Round(ws.CostToCompany),
			LogisticsCost:          Round(ws.TotalLogisticsCost),
			RowsSellingPrice:       Round(ws.TotalRowsSellingPrice),
			OnsiteSellingPrice:     Round(ws.OnsiteSellingPrice),
			OffshoreSellingPrice:   Round(ws.OffshoreSellingPrice),
			SellingPrice:           Round(ws.SellingPrice),
			NegoBufferAmount:       Round(ws.NegoBufferAmount),
			FinalPrice:             Round(ws.FinalPrice),
		},
		Logistics: LogisticsReport{
			PerDiem:       Round(l.PerDiemCost),
			Accommodation: Round(l.AccommodationCost),
			Conveyance:    Round(l.ConveyanceCost),
			Flights:       Round(l.FlightCost),
			VisaMedical:   Round(l.VisaMedicalCost),
			Subtotal:      Round(l.Subtotal),
			Contingency:   Round(l.ContingencyCost),
			Total:         Round(l.TotalLogistics),
		},
		Resources: make([]ResourceReport, 0, len(ws.Resources)),
	}

	for _, r := range ws.Resources {
		wr.Resources = append(wr.Resources, ResourceReport{
			SkillName:        r.SkillName,
			ProficiencyLevel: r.ProficiencyLevel,
			BaseLocationName: r.BaseLocationName,
			IsOnsite:         r.IsOnsite,
			TravelRequired:   r.TravelRequired,
			ManMonths:        Round(r.TotalManMonths),
			BaseSalaryCost:   Round(r.BaseSalaryCost),
			OverheadCost:     Round(r.OverheadCost),
			TotalCost:        Round(r.TotalCost),
			SellingPrice:     Round(r.SellingPrice),
		})
	}
	return wr
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
