package sim

import (
	"fmt"
	"math"
)

// tierBook is one risk tier's fixed candidate arena. pool[:active] is the
// set of clients currently borrowing from the bank.
type tierBook struct {
	pool   []CorporateClient
	active int
}

// LoanBook holds a bank's corporate borrowers, one arena per risk tier,
// ordered from lowest to highest risk. Reselecting the active clients only
// moves an index; the arenas never change after construction.
type LoanBook struct {
	tiers    [MaxRiskTiers]tierBook
	numTiers int
}

// NewLoanBook creates a loan book over the given candidate pools.
// Panics unless 1 <= len(pools) <= MaxRiskTiers.
func NewLoanBook(pools ...[]CorporateClient) *LoanBook {
	if len(pools) < 1 || len(pools) > MaxRiskTiers {
		panic(fmt.Sprintf("NewLoanBook: need 1..%d tiers, got %d", MaxRiskTiers, len(pools)))
	}
	lb := &LoanBook{numTiers: len(pools)}
	for i, p := range pools {
		lb.tiers[i] = tierBook{pool: p, active: len(p)}
	}
	return lb
}

// NumTiers returns the number of risk tiers.
func (lb *LoanBook) NumTiers() int { return lb.numTiers }

// Active returns the active clients of tier t.
func (lb *LoanBook) Active(t int) []CorporateClient {
	tb := &lb.tiers[t]
	return tb.pool[:tb.active]
}

// Select sizes the active set for risk appetite gamma. With two tiers the
// high-risk tier takes round(poolSize*gamma) clients from the front of its
// pool and the low-risk tier takes the remainder from the front of its own;
// poolSize is the high-risk arena size. When the pool allows it, each tier
// with a positive share of principal gets at least one client. A single tier
// is always fully active.
func (lb *LoanBook) Select(gamma float64) {
	if lb.numTiers == 1 {
		lb.tiers[0].active = len(lb.tiers[0].pool)
		return
	}
	low, high := &lb.tiers[0], &lb.tiers[1]
	poolSize := len(high.pool)
	n := int(math.Round(float64(poolSize) * gamma))
	// A tier that is lent a positive share keeps at least one borrower.
	if gamma > 0 {
		n = max(n, 1)
	}
	if gamma < 1 {
		n = min(n, poolSize-1)
	}
	n = min(max(n, 0), poolSize)
	high.active = n
	low.active = min(poolSize-n, len(low.pool))
}

// Split divides total loan principal across tiers for risk appetite gamma:
// the high-risk tier gets total*gamma and the low-risk tier the remainder.
func (lb *LoanBook) Split(total, gamma float64) [MaxRiskTiers]float64 {
	var s [MaxRiskTiers]float64
	if lb.numTiers == 1 {
		s[0] = total
		return s
	}
	s[1] = total * gamma
	s[0] = total - s[1]
	return s
}

// Disburse spreads total evenly over tier t's active clients.
// With no active clients nothing is lent.
func (lb *LoanBook) Disburse(t int, total float64) {
	clients := lb.Active(t)
	perClient := 0.0
	if len(clients) != 0 {
		perClient = total / float64(len(clients))
	}
	for _, c := range clients {
		c.SetLoanAmount(perClient)
	}
}

// Scale multiplies every active loan in tier t by factor.
func (lb *LoanBook) Scale(t int, factor float64) {
	for _, c := range lb.Active(t) {
		c.SetLoanAmount(c.LoanAmount() * factor)
	}
}

// Sum returns the outstanding principal of tier t's active clients.
func (lb *LoanBook) Sum(t int) float64 {
	total := 0.0
	for _, c := range lb.Active(t) {
		total += c.LoanAmount()
	}
	return total
}

// Collect settles every active client of tier t and returns the new total.
func (lb *LoanBook) Collect(t int) float64 {
	total := 0.0
	for _, c := range lb.Active(t) {
		total += c.PayLoanBack()
	}
	return total
}
