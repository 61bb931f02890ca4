package estimate

import "math"

// overflowGuard caps results that would overflow float64 at the largest finite
// value and remembers that it did. With non-negative finite operands a capped
// product or sum can never turn into NaN.
type overflowGuard struct {
	hit bool
}

func (g *overflowGuard) cap(v float64) float64 {
	if math.IsInf(v, 1) || math.IsNaN(v) {
		g.hit = true
		return math.MaxFloat64
	}
	if math.IsInf(v, -1) {
		g.hit = true
		return -math.MaxFloat64
	}
	return v
}

func (g *overflowGuard) mul(factors ...float64) float64 {
	p := 1.0
	for _, f := range factors {
		p = g.cap(p * f)
	}
	return p
}

func (g *overflowGuard) add(terms ...float64) float64 {
	s := 0.0
	for _, t := range terms {
		s = g.cap(s + t)
	}
	return s
}

func (g *overflowGuard) div(a, b float64) float64 {
	return g.cap(a / b)
}

func overflowMessage(scope string) string {
	return scope + " values exceeded the representable range and were capped"
}
