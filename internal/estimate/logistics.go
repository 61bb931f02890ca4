package estimate

import "github.com/straye-as/estimator/internal/domain"

// LogisticsBreakdown is the travel cost of a wave.
//
// Per-diem, accommodation and conveyance scale with the man-months of
// travel-required resources; flights and visa/medical scale with their headcount.
// The onsite totals are informational and never feed the cost.
type LogisticsBreakdown struct {
	TotalTravelingMM       float64                `json:"total_traveling_mm"`
	TravelingResourceCount int                    `json:"traveling_resource_count"`
	TotalOnsiteMM          float64                `json:"total_onsite_mm"`
	OnsiteResourceCount    int                    `json:"onsite_resource_count"`
	PerDiemCost            float64                `json:"per_diem_cost"`
	AccommodationCost      float64                `json:"accommodation_cost"`
	ConveyanceCost         float64                `json:"conveyance_cost"`
	FlightCost             float64                `json:"flight_cost"`
	VisaMedicalCost        float64                `json:"visa_medical_cost"`
	Subtotal               float64                `json:"subtotal"`
	ContingencyCost        float64                `json:"contingency_cost"`
	TotalLogistics         float64                `json:"total_logistics"`
	Config                 domain.LogisticsConfig `json:"config"`
}

// WaveLogistics computes the logistics cost of a wave from its travel-required allocations
func WaveLogistics(w *domain.Wave) LogisticsBreakdown {
	breakdown, _ := waveLogistics(w)
	return breakdown
}

func waveLogistics(w *domain.Wave) (LogisticsBreakdown, rowWarnings) {
	var flags rowWarnings
	if w == nil {
		cfg, _ := sanitizeConfig(domain.DefaultLogisticsConfig)
		return LogisticsBreakdown{Config: cfg}, flags
	}

	cfg, clamped := sanitizeConfig(w.EffectiveLogisticsConfig())
	flags.clamped = clamped
	phaseCount := w.PhaseCount()

	var g overflowGuard
	var b LogisticsBreakdown
	b.Config = cfg
	for i := range w.Allocations {
		a := &w.Allocations[i]
		mm, c, o := sumPhases(a, phaseCount)
		flags.clamped = flags.clamped || c
		flags.overflow = flags.overflow || o

		if a.IsOnsite {
			b.TotalOnsiteMM = g.add(b.TotalOnsiteMM, mm)
			b.OnsiteResourceCount++
		}
		if a.TravelRequired {
			b.TotalTravelingMM = g.add(b.TotalTravelingMM, mm)
			b.TravelingResourceCount++
		}
	}

	travelers := float64(b.TravelingResourceCount)
	b.PerDiemCost = g.mul(b.TotalTravelingMM, cfg.PerDiemDaily, cfg.PerDiemDays)
	b.AccommodationCost = g.mul(b.TotalTravelingMM, cfg.AccommodationDaily, cfg.AccommodationDays)
	b.ConveyanceCost = g.mul(b.TotalTravelingMM, cfg.LocalConveyanceDaily, cfg.LocalConveyanceDays)
	b.FlightCost = g.mul(travelers, cfg.FlightCostPerTrip, cfg.NumTrips)
	b.VisaMedicalCost = g.mul(travelers, cfg.VisaMedicalPerTrip, cfg.NumTrips)

	b.Subtotal = g.add(b.PerDiemCost, b.AccommodationCost, b.ConveyanceCost, b.FlightCost, b.VisaMedicalCost)
	b.ContingencyCost = g.mul(b.Subtotal, cfg.ContingencyPercentage/100)
	b.TotalLogistics = g.add(b.Subtotal, b.ContingencyCost)

	flags.overflow = flags.overflow || g.hit
	return b, flags
}

func sanitizeConfig(cfg domain.LogisticsConfig) (domain.LogisticsConfig, bool) {
	clamped := false
	fields := []*float64{
		&cfg.PerDiemDaily, &cfg.PerDiemDays,
		&cfg.AccommodationDaily, &cfg.AccommodationDays,
		&cfg.LocalConveyanceDaily, &cfg.LocalConveyanceDays,
		&cfg.FlightCostPerTrip, &cfg.VisaMedicalPerTrip,
		&cfg.NumTrips, &cfg.ContingencyPercentage,
	}
	for _, f := range fields {
		v, c := clamp(*f)
		*f = v
		clamped = clamped || c
	}
	return cfg, clamped
}
