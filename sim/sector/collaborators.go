package sector

import (
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/banksim/banksim/sim"
)

// WithdrawalProcess decides how much each depositor withdraws in PERIOD_1.
// Withdraw runs inside the per-bank fan-out: it may touch only b, b's
// depositors and b.RNG().
type WithdrawalProcess interface {
	Withdraw(b *sim.Bank)
}

// ClearingHouse settles the interbank market after the liquid-asset draw.
// Clear receives the active banks in id order and returns the volume lent.
type ClearingHouse interface {
	Clear(banks []*sim.Bank) float64
}

// CentralBank lends to banks that are still short after interbank clearing.
// Lend returns the volume lent through the discount window.
type CentralBank interface {
	Lend(banks []*sim.Bank) float64
}

// DepositInsurer compensates depositors of a liquidated bank. claims holds
// each depositor's balance from before the payout, in depositor order.
// Cover returns the outlay.
type DepositInsurer interface {
	Cover(b *sim.Bank, claims []float64) float64
}

// === Withdrawals ===

// RandomWithdrawals makes each depositor withdraw a fixed fraction of its
// balance with a fixed probability.
type RandomWithdrawals struct {
	Probability float64
	Fraction    float64
}

func (w RandomWithdrawals) Withdraw(b *sim.Bank) {
	rng := b.RNG()
	for _, d := range b.Depositors() {
		if rng.Float64() < w.Probability {
			b.WithdrawDeposit(d, d.Balance*w.Fraction)
		}
	}
}

// === Clearing house ===

// Interbank priority policies.
const (
	PriorityRandom     = "random"
	PriorityRiskSorted = "risk-sorted"
)

// InterbankMarket matches surplus banks with short banks. Borrowers are
// served one at a time in priority order; each borrows from lenders in id
// order until its need is met or the surplus is exhausted.
//
// Without a clearing guarantee, insolvent borrowers are refused credit.
type InterbankMarket struct {
	Priority  string
	Guarantee bool
	rng       *rand.Rand
}

// NewInterbankMarket creates a clearing house. rng orders borrowers under
// the random priority policy.
func NewInterbankMarket(priority string, guarantee bool, rng *rand.Rand) *InterbankMarket {
	return &InterbankMarket{Priority: priority, Guarantee: guarantee, rng: rng}
}

func (m *InterbankMarket) Clear(banks []*sim.Bank) float64 {
	var lenders, borrowers []*sim.Bank
	for _, b := range banks {
		switch {
		case b.OffersLiquidity():
			lenders = append(lenders, b)
		case b.IsShort():
			if m.Guarantee || b.Sheet().IsSolvent() {
				borrowers = append(borrowers, b)
			}
		}
	}
	if len(lenders) == 0 || len(borrowers) == 0 {
		return 0
	}
	m.order(borrowers)

	volume := 0.0
	next := 0
	for _, borrower := range borrowers {
		for borrower.IsShort() && next < len(lenders) {
			lender := lenders[next]
			amount := min(-borrower.LiquidityNeeds(), lender.LiquidityNeeds())
			lender.ApplyInterbankLoan(amount)
			borrower.ApplyInterbankLoan(-amount)
			volume += amount
			if !lender.OffersLiquidity() {
				next++
			}
		}
		if next == len(lenders) {
			break
		}
	}
	return volume
}

// order sorts borrowers by the configured priority. Risk-sorted serves the
// best-capitalised borrowers first, ties by id.
func (m *InterbankMarket) order(borrowers []*sim.Bank) {
	switch m.Priority {
	case PriorityRiskSorted:
		ratios := make(map[int]float64, len(borrowers))
		for _, b := range borrowers {
			ratios[b.ID] = b.CapitalRatio()
		}
		sort.SliceStable(borrowers, func(i, j int) bool {
			ri, rj := ratios[borrowers[i].ID], ratios[borrowers[j].ID]
			if ri != rj {
				return ri > rj
			}
			return borrowers[i].ID < borrowers[j].ID
		})
	default:
		m.rng.Shuffle(len(borrowers), func(i, j int) {
			borrowers[i], borrowers[j] = borrowers[j], borrowers[i]
		})
	}
}

// === Central bank ===

// DiscountWindow lends the full remaining shortfall to solvent banks. When
// the capital requirement is active, a bank must also meet the minimum
// capital ratio.
type DiscountWindow struct {
	Offered                  bool
	CapitalRequirementActive bool
	MinimumCapitalRatio      float64
}

func (cb DiscountWindow) Lend(banks []*sim.Bank) float64 {
	if !cb.Offered {
		return 0
	}
	volume := 0.0
	for _, b := range banks {
		if !b.IsShort() || !b.Sheet().IsSolvent() {
			continue
		}
		if cb.CapitalRequirementActive && b.CapitalRatio() < cb.MinimumCapitalRatio {
			continue
		}
		amount := -b.LiquidityNeeds()
		b.ReceiveDiscountWindowLoan(amount)
		volume += amount
		logrus.Debugf("bank %d: discount window loan %.6f", b.ID, amount)
	}
	return volume
}

// === Deposit insurance ===

// FullInsurance restores every depositor of a liquidated bank to its
// pre-payout balance.
type FullInsurance struct{}

func (FullInsurance) Cover(b *sim.Bank, claims []float64) float64 {
	outlay := 0.0
	for i, d := range b.Depositors() {
		if topUp := claims[i] - d.Balance; topUp > 0 {
			d.Balance += topUp
			outlay += topUp
		}
	}
	return outlay
}

// NoInsurance leaves depositors with the liquidation payout.
type NoInsurance struct{}

func (NoInsurance) Cover(*sim.Bank, []float64) float64 { return 0 }
