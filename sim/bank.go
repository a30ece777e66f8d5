package sim

import (
	"fmt"
	"math/rand"
)

// Bank is one balance-sheet agent. It owns its depositors, its corporate loan
// book, its strategy learning state and its RNG stream, so a sector can step
// banks concurrently between phase barriers.
//
// Liquidity needs follow the ledger sign convention: negative means the bank
// is short and must raise funds, positive is a surplus it can lend.
type Bank struct {
	ID          int
	InitialSize float64
	MarketShare float64

	cfg      *Config
	tiers    []RiskTier
	rng      *rand.Rand
	catalog  *Catalog
	selector *Selector // nil for a zero-intelligence bank

	depositors []*Depositor
	loans      *LoanBook

	sheet    BalanceSheet
	snapshot BalanceSheet
	phase    Phase

	strategy       int
	riskAppetite   float64
	liquidityNeeds float64
	withdrawals    int
	bankRun        bool
	fireSale       bool
	outcome        CycleOutcome
}

// NewBank creates a bank of the given initial size. The loan book must carry
// one pool per tier of cfg.Tiers(). Adaptive banks learn over catalog with
// EWA; zero-intelligence banks draw uniformly from it every cycle.
func NewBank(id int, initialSize float64, cfg *Config, catalog *Catalog, rng *rand.Rand,
	depositors []*Depositor, loans *LoanBook, adaptive bool) *Bank {
	tiers := cfg.Tiers()
	if loans.NumTiers() != len(tiers) {
		panic(fmt.Sprintf("NewBank: loan book has %d tiers, config has %d", loans.NumTiers(), len(tiers)))
	}
	b := &Bank{
		ID:          id,
		InitialSize: initialSize,
		cfg:         cfg,
		tiers:       tiers,
		rng:         rng,
		catalog:     catalog,
		depositors:  depositors,
		loans:       loans,
		phase:       PhaseCycleEnd,
		strategy:    -1,
	}
	b.sheet.NumTiers = len(tiers)
	b.snapshot.NumTiers = len(tiers)
	if adaptive {
		b.selector = NewSelector(catalog)
	}
	return b
}

// Sheet returns a copy of the current balance sheet.
func (b *Bank) Sheet() BalanceSheet { return b.sheet }

// Snapshot returns the balance sheet as it stood at the end of PERIOD_0.
func (b *Bank) Snapshot() BalanceSheet { return b.snapshot }

// Phase returns the bank's current phase.
func (b *Bank) Phase() Phase { return b.phase }

// Depositors returns the bank's depositors. Callers may modify balances.
func (b *Bank) Depositors() []*Depositor { return b.depositors }

// RNG returns the bank's own random stream. Draws that concern only this
// bank, such as its depositors' withdrawals, must come from it.
func (b *Bank) RNG() *rand.Rand { return b.rng }

// Loans returns the bank's loan book.
func (b *Bank) Loans() *LoanBook { return b.loans }

// Selector returns the bank's learning state, or nil for a zero-intelligence bank.
func (b *Bank) Selector() *Selector { return b.selector }

// IsAdaptive reports whether the bank learns its strategy with EWA.
func (b *Bank) IsAdaptive() bool { return b.selector != nil }

// Strategy returns the strategy chosen in the current cycle.
// Panics if no strategy has been chosen yet.
func (b *Bank) Strategy() Strategy {
	if b.strategy < 0 {
		panic(fmt.Sprintf("bank %d: no strategy chosen", b.ID))
	}
	return b.catalog.At(b.strategy)
}

// StrategyIndex returns the catalog index chosen this cycle, or -1.
func (b *Bank) StrategyIndex() int { return b.strategy }

// RiskAppetite returns the gamma of the current strategy.
func (b *Bank) RiskAppetite() float64 { return b.riskAppetite }

// LiquidityNeeds returns the signed liquidity position for the cycle.
func (b *Bank) LiquidityNeeds() float64 { return b.liquidityNeeds }

// Withdrawals returns the number of withdrawals this cycle.
func (b *Bank) Withdrawals() int { return b.withdrawals }

// BankRun reports whether a bank run was detected at the end of the cycle.
func (b *Bank) BankRun() bool { return b.bankRun }

// FireSale reports whether the bank sold loans this cycle.
func (b *Bank) FireSale() bool { return b.fireSale }

// OffersLiquidity reports a surplus available to the interbank market.
func (b *Bank) OffersLiquidity() bool { return b.liquidityNeeds > 0 }

// IsShort reports an unmet liquidity need.
func (b *Bank) IsShort() bool { return b.liquidityNeeds < 0 }

// IsLiquid reports that the bank has no unmet liquidity need.
func (b *Bank) IsLiquid() bool { return b.liquidityNeeds >= 0 }

// CheckLedger returns an error if any balance-sheet field is not finite.
func (b *Bank) CheckLedger() error {
	if err := b.sheet.check(); err != nil {
		return fmt.Errorf("bank %d in %s: %w", b.ID, b.phase, err)
	}
	return nil
}

// enter moves the bank to phase p, panicking on an out-of-order transition.
func (b *Bank) enter(p Phase) {
	if !CanEnter(b.phase, p) {
		panic(fmt.Sprintf("bank %d: illegal phase transition %s -> %s", b.ID, b.phase, p))
	}
	b.phase = p
}

// Reset clears the per-cycle counters.
func (b *Bank) Reset() {
	b.enter(PhaseReset)
	b.liquidityNeeds = 0
	b.withdrawals = 0
	for _, d := range b.depositors {
		d.pending = 0
	}
	b.bankRun = false
	b.fireSale = false
	b.riskAppetite = 0
	b.outcome = CycleOutcome{}
}

// Period0 chooses a strategy, builds a fresh balance sheet from it, enforces
// the capital requirement when active and records the snapshot profit is
// measured against.
func (b *Bank) Period0() {
	b.enter(PhasePeriod0)
	b.chooseStrategy()
	b.constructBalanceSheet(b.catalog.At(b.strategy))
	if b.cfg.CentralBank.CapitalRequirementActive {
		b.AdjustCapitalRatio(b.cfg.CentralBank.MinimumCapitalRatio)
	}
	b.snapshot = b.sheet
}

// Period1 draws down liquid assets against the withdrawals recorded so far.
// Depositor withdrawals must be applied before calling it.
func (b *Bank) Period1() {
	b.enter(PhasePeriod1)
	b.UseLiquidAssets()
}

// Period2 accrues interest and collects the loan book.
func (b *Bank) Period2() {
	b.enter(PhasePeriod2)
	b.accrueInterest()
	b.collectLoans()
}

// EndCycle computes profit, feeds it back to the selector and returns the
// cycle's outcome.
func (b *Bank) EndCycle() CycleOutcome {
	b.enter(PhaseCycleEnd)
	b.outcome = b.calculateProfit()
	return b.outcome
}

// Outcome returns the most recent cycle outcome.
func (b *Bank) Outcome() CycleOutcome { return b.outcome }

func (b *Bank) chooseStrategy() {
	if b.selector != nil {
		b.strategy = b.selector.Choose(b.cfg.Learning.Decay, b.rng)
	} else {
		b.strategy = b.rng.Intn(b.catalog.Len())
	}
	b.riskAppetite = b.catalog.At(b.strategy).Gamma()
	b.loans.Select(b.riskAppetite)
}

// constructBalanceSheet sizes the ledger from strategy (alpha, beta, gamma):
// deposits fund (1-alpha) of the bank, beta of the bank is held liquid and the
// rest is lent, gamma of it to the high-risk tier.
func (b *Bank) constructBalanceSheet(s Strategy) {
	size := b.InitialSize
	b.sheet = BalanceSheet{NumTiers: len(b.tiers)}
	b.sheet.LiquidAssets = size * s.Beta()
	b.sheet.Deposits = size * (s.Alpha() - 1)

	split := b.loans.Split(size-b.sheet.LiquidAssets, s.Gamma())
	for t := range b.tiers {
		b.sheet.Loans[t] = split[t]
		b.loans.Disburse(t, split[t])
	}

	perDepositor := 0.0
	if len(b.depositors) != 0 {
		perDepositor = -b.sheet.Deposits / float64(len(b.depositors))
	}
	for _, d := range b.depositors {
		d.MakeDeposit(perDepositor)
	}
	b.liquidityNeeds = 0
}

// accrueInterest compounds every interest-bearing ledger line except loans,
// which accrue through collection.
func (b *Bank) accrueInterest() {
	r := b.cfg.Rates
	b.sheet.DiscountWindow *= 1 + r.CentralBankLending
	b.sheet.LiquidAssets *= 1 + r.LiquidAssets
	b.sheet.Interbank *= 1 + r.Interbank
	b.sheet.Deposits *= 1 + r.Deposit
	for _, d := range b.depositors {
		d.Balance *= 1 + r.Deposit
	}
}

func (b *Bank) collectLoans() {
	for t := range b.tiers {
		b.sheet.Loans[t] = b.loans.Collect(t)
	}
}

// writeDown removes amount of principal from tier t, scaling its active
// clients in proportion. An amount at or above the tier total empties it.
func (b *Bank) writeDown(t int, amount float64) {
	held := b.sheet.Loans[t]
	if amount <= 0 {
		return
	}
	if amount >= held {
		b.sheet.Loans[t] = 0
		b.loans.Scale(t, 0)
		return
	}
	b.sheet.Loans[t] = held - amount
	b.loans.Scale(t, 1-amount/held)
}
