package estimate

import (
	"math"
	"sort"

	"github.com/straye-as/estimator/internal/domain"
)

// TotalManMonths sums every phase allocation of a resource.
// Negative and non-finite entries count as zero.
func TotalManMonths(a *domain.ResourceAllocation) float64 {
	mm, _, _ := sumPhases(a, 0)
	return mm
}

// ManMonthsWithin sums the phase allocations whose index lies in [0, phaseCount).
// A phaseCount of zero or less places no upper bound on the index.
func ManMonthsWithin(a *domain.ResourceAllocation, phaseCount int) float64 {
	mm, _, _ := sumPhases(a, phaseCount)
	return mm
}

// sumPhases adds phases in index order so repeated runs give bit-identical totals.
// It also reports whether any value had to be clamped and whether the total overflowed.
func sumPhases(a *domain.ResourceAllocation, phaseCount int) (total float64, clamped bool, overflow bool) {
	if a == nil || len(a.PhaseAllocations) == 0 {
		return 0, false, false
	}

	phases := make([]int, 0, len(a.PhaseAllocations))
	for phase := range a.PhaseAllocations {
		if phase < 0 || (phaseCount > 0 && phase >= phaseCount) {
			continue
		}
		phases = append(phases, phase)
	}
	sort.Ints(phases)

	var g overflowGuard
	for _, phase := range phases {
		v, c := clamp(a.PhaseAllocations[phase])
		clamped = clamped || c
		total = g.add(total, v)
	}
	return total, clamped, g.hit
}

// clamp maps negative, NaN and infinite values to zero
func clamp(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, true
	}
	return v, false
}
