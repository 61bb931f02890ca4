package estimate

import (
	"fmt"
	"math"

	"github.com/straye-as/estimator/internal/domain"
)

// ResourceCostBreakdown is the cost and price of a single allocation row
type ResourceCostBreakdown struct {
	TotalManMonths float64 `json:"total_man_months"`
	BaseSalaryCost float64 `json:"base_salary_cost"`
	OverheadCost   float64 `json:"overhead_cost"`
	TotalCost      float64 `json:"total_cost"`
	SellingPrice   float64 `json:"selling_price"`
	// MarginInvalid is set when the profit margin could not be applied and
	// SellingPrice equals TotalCost
	MarginInvalid bool `json:"margin_invalid,omitempty"`
}

// ResourceCost computes salary, overhead and the per-row selling price of an allocation.
//
//	baseSalaryCost = avg_monthly_salary * totalManMonths
//	overheadCost   = baseSalaryCost * overhead_percentage / 100
//	sellingPrice   = (baseSalaryCost + overheadCost) / (1 - margin / 100)
func ResourceCost(a *domain.ResourceAllocation, profitMarginPercentage float64) ResourceCostBreakdown {
	breakdown, _ := resourceCost(a, profitMarginPercentage, 0)
	return breakdown
}

// SellingPrice marks totalCost up by the profit margin. The second result is
// false when the margin is 100% or more (or NaN), in which case totalCost is
// returned unchanged. A price beyond the float64 range is capped at math.MaxFloat64.
func SellingPrice(totalCost, profitMarginPercentage float64) (float64, bool) {
	var g overflowGuard
	return sellingPrice(totalCost, profitMarginPercentage, &g)
}

func sellingPrice(totalCost, profitMarginPercentage float64, g *overflowGuard) (float64, bool) {
	margin, ok := normalizeMargin(profitMarginPercentage)
	if !ok {
		return totalCost, false
	}
	return g.div(totalCost, 1-margin/100), true
}

// normalizeMargin treats a negative margin as zero. Margins that would divide
// by zero or flip the sign of the price are reported as unusable.
func normalizeMargin(m float64) (float64, bool) {
	if math.IsNaN(m) || m >= 100 {
		return 0, false
	}
	if m < 0 {
		return 0, true
	}
	return m, true
}

type rowWarnings struct {
	marginInvalid bool
	clamped       bool
	overflow      bool
}

func resourceCost(a *domain.ResourceAllocation, margin float64, phaseCount int) (ResourceCostBreakdown, rowWarnings) {
	var w rowWarnings
	if a == nil {
		return ResourceCostBreakdown{}, w
	}

	mm, clampedMM, overflowMM := sumPhases(a, phaseCount)
	salary, clampedSalary := clamp(a.AvgMonthlySalary)
	overheadPct, clampedOverhead := clamp(a.OverheadPercentage)
	w.clamped = clampedMM || clampedSalary || clampedOverhead || margin < 0

	var g overflowGuard
	base := g.mul(salary, mm)
	overhead := g.mul(base, overheadPct/100)
	total := g.add(base, overhead)

	price, ok := sellingPrice(total, margin, &g)
	w.marginInvalid = !ok
	w.overflow = overflowMM || g.hit

	return ResourceCostBreakdown{
		TotalManMonths: mm,
		BaseSalaryCost: base,
		OverheadCost:   overhead,
		TotalCost:      total,
		SellingPrice:   price,
		MarginInvalid:  !ok,
	}, w
}

func invalidMarginMessage(margin float64) string {
	return fmt.Sprintf("profit margin %.2f%% cannot be applied; selling price equals cost", margin)
}
