package sim

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// StrategyStats is one bank's learning state for one catalog entry.
type StrategyStats struct {
	Attraction           float64 // cumulative, decayed attraction A
	Probability          float64 // softmax choice probability P
	Cumulative           float64 // running sum of P in catalog order F
	Profit               float64 // last realised profit
	ProfitFraction       float64 // last realised return on equity
	DampedProfitFraction float64 // ProfitFraction scaled by the damping factor
}

// Selector implements experience-weighted attraction learning over a Catalog.
// Each bank owns one Selector; its statistics persist for the bank's lifetime.
type Selector struct {
	catalog *Catalog
	stats   []StrategyStats
	buf     []float64
}

// NewSelector creates a Selector with zero attraction for every strategy.
func NewSelector(catalog *Catalog) *Selector {
	return &Selector{
		catalog: catalog,
		stats:   make([]StrategyStats, catalog.Len()),
		buf:     make([]float64, catalog.Len()),
	}
}

// Catalog returns the catalog the selector learns over.
func (s *Selector) Catalog() *Catalog { return s.catalog }

// Stats returns the learning state of strategy i.
func (s *Selector) Stats(i int) StrategyStats { return s.stats[i] }

// Update decays every attraction, adds the damped return last fed back to it,
// and recomputes the choice distribution and its CDF.
//
// The softmax is evaluated as exp(A - logsumexp(A)), so arbitrarily large
// attractions never overflow.
func (s *Selector) Update(decay float64) {
	a := s.buf
	for i := range s.stats {
		a[i] = decay*s.stats[i].Attraction + s.stats[i].DampedProfitFraction
	}
	lse := floats.LogSumExp(a)
	for i := range s.stats {
		s.stats[i].Attraction = a[i]
	}
	for i := range a {
		a[i] = math.Exp(a[i] - lse)
	}
	for i := range s.stats {
		s.stats[i].Probability = a[i]
	}
	floats.CumSum(a, a)
	for i := range s.stats {
		s.stats[i].Cumulative = a[i]
	}
}

// Sample returns the first strategy in catalog order whose cumulative
// probability is strictly greater than u. A u landing exactly on a boundary
// selects the strategy above it. When rounding leaves every F <= u (u close
// to 1), the last strategy is returned.
func (s *Selector) Sample(u float64) int {
	n := len(s.stats)
	i := sort.Search(n, func(i int) bool { return s.stats[i].Cumulative > u })
	if i == n {
		return n - 1
	}
	return i
}

// Choose updates the distribution and samples one strategy using rng.
func (s *Selector) Choose(decay float64, rng *rand.Rand) int {
	s.Update(decay)
	return s.Sample(rng.Float64())
}

// RecordOutcome stores the realised profit of strategy i and the return that
// feeds its attraction on the next Update.
func (s *Selector) RecordOutcome(i int, profit, profitFraction, damping float64) {
	st := &s.stats[i]
	st.Profit = profit
	st.ProfitFraction = profitFraction
	st.DampedProfitFraction = profitFraction * damping
}

// ProbabilitySum returns the total choice probability (1 after Update).
func (s *Selector) ProbabilitySum() float64 {
	sum := 0.0
	for i := range s.stats {
		sum += s.stats[i].Probability
	}
	return sum
}
