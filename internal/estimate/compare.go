package estimate

// Metric names a value tracked when comparing two project versions
type Metric string

const (
	MetricTotalMM                Metric = "total_mm"
	MetricOnsiteMM               Metric = "onsite_mm"
	MetricOffshoreMM             Metric = "offshore_mm"
	MetricTravelingMM            Metric = "traveling_mm"
	MetricTravelingResourceCount Metric = "traveling_resource_count"
	MetricResourceCount          Metric = "resource_count"
	MetricLogisticsCost          Metric = "logistics_cost"
	MetricOnsiteSellingPrice     Metric = "onsite_selling_price"
	MetricOffshoreSellingPrice   Metric = "offshore_selling_price"
	MetricSellingPrice           Metric = "selling_price"
	MetricFinalPrice             Metric = "final_price"
)

// MetricDelta is the change of one metric from version A to version B
type MetricDelta struct {
	Metric    Metric  `json:"metric"`
	From      float64 `json:"from"`
	To        float64 `json:"to"`
	Diff      float64 `json:"diff"`
	Pct       float64 `json:"pct"`
	Increased bool    `json:"increased"`
	Decreased bool    `json:"decreased"`
}

// Unchanged reports a zero difference
func (d MetricDelta) Unchanged() bool {
	return !d.Increased && !d.Decreased
}

// Comparison holds the deltas of every tracked metric in display order
type Comparison struct {
	Metrics []MetricDelta `json:"metrics"`
}

// Get returns the delta for a metric
func (c Comparison) Get(m Metric) (MetricDelta, bool) {
	for _, d := range c.Metrics {
		if d.Metric == m {
			return d, true
		}
	}
	return MetricDelta{}, false
}

// Delta computes diff = to - from and the percentage change relative to from.
// When from is zero the percentage is 100 if to is non-zero, otherwise 0.
// Results beyond the float64 range are capped.
func Delta(m Metric, from, to float64) MetricDelta {
	var g overflowGuard
	diff := g.add(to, -from)

	var pct float64
	switch {
	case from != 0:
		pct = g.mul(g.div(diff, from), 100)
	case to != 0:
		pct = 100
	}

	return MetricDelta{
		Metric:    m,
		From:      from,
		To:        to,
		Diff:      diff,
		Pct:       pct,
		Increased: diff > 0,
		Decreased: diff < 0,
	}
}

// CompareVersions returns the deltas from summary a to summary b
func CompareVersions(a, b ProjectSummary) Comparison {
	return Comparison{Metrics: []MetricDelta{
		Delta(MetricTotalMM, a.TotalMM, b.TotalMM),
		Delta(MetricOnsiteMM, a.OnsiteMM, b.OnsiteMM),
		Delta(MetricOffshoreMM, a.OffshoreMM, b.OffshoreMM),
		Delta(MetricTravelingMM, a.TravelingMM, b.TravelingMM),
		Delta(MetricTravelingResourceCount, float64(a.TravelingResourceCount), float64(b.TravelingResourceCount)),
		Delta(MetricResourceCount, float64(a.ResourceCount), float64(b.ResourceCount)),
		Delta(MetricLogisticsCost, a.TotalLogisticsCost, b.TotalLogisticsCost),
		Delta(MetricOnsiteSellingPrice, a.OnsiteSellingPrice, b.OnsiteSellingPrice),
		Delta(MetricOffshoreSellingPrice, a.OffshoreSellingPrice, b.OffshoreSellingPrice),
		Delta(MetricSellingPrice, a.SellingPrice, b.SellingPrice),
		Delta(MetricFinalPrice, a.FinalPrice, b.FinalPrice),
	}}
}
