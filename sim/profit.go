package sim

// CycleOutcome summarizes one bank's cycle for reporting and feedback.
type CycleOutcome struct {
	BankID         int
	StrategyIndex  int
	Strategy       Strategy
	Profit         float64
	ProfitFraction float64
	CapitalRatio   float64
	CapitalPenalty float64
	LiquidityNeeds float64
	Withdrawals    int
	BankRun        bool
	FireSale       bool
	Sheet          BalanceSheet
}

// Insolvent reports whether the bank ended the cycle with a capital deficit.
func (o CycleOutcome) Insolvent() bool { return o.Sheet.IsInsolvent() }

// Profit returns the change in equity since the snapshot. Under limited
// liability the closing equity is floored at 0.
func (b *Bank) Profit() float64 {
	after := b.sheet.Assets() + b.sheet.Liabilities()
	before := b.snapshot.Assets() + b.snapshot.Liabilities()
	if b.cfg.LimitedLiability {
		after = max(after, 0)
	}
	return after - before
}

// IsBankRun reports whether more than half the depositors withdrew this
// cycle. Always false when bank runs are disabled.
func (b *Bank) IsBankRun() bool {
	if !b.cfg.Depositors.BankRunsPossible {
		return false
	}
	return float64(b.withdrawals) > float64(len(b.depositors))/2
}

// applyBankRunLosses writes each tier down by its bank-run fraction of the
// loan reduction since the snapshot.
func (b *Bank) applyBankRunLosses() {
	delta := b.snapshot.TotalLoans() - b.sheet.TotalLoans()
	if delta <= 0 {
		return
	}
	for t, tier := range b.tiers {
		b.writeDown(t, delta*tier.BankRunWriteDown)
	}
}

func (b *Bank) calculateProfit() CycleOutcome {
	b.bankRun = b.IsBankRun()
	if b.bankRun {
		b.applyBankRunLosses()
	}

	profit := b.Profit()
	ratio := b.CapitalRatio()
	penalty := 0.0
	cb := b.cfg.CentralBank
	if cb.CapitalRequirementActive && ratio < cb.MinimumCapitalRatio {
		penalty = cb.MinimumCapitalRatio - ratio
		profit -= penalty
	}

	fraction := 0.0
	if deficit := b.snapshot.CapitalDeficit(); deficit != 0 {
		fraction = -profit / deficit
	}
	if b.selector != nil {
		b.selector.RecordOutcome(b.strategy, profit, fraction, b.cfg.Learning.Damping)
	}

	return CycleOutcome{
		BankID:         b.ID,
		StrategyIndex:  b.strategy,
		Strategy:       b.catalog.At(b.strategy),
		Profit:         profit,
		ProfitFraction: fraction,
		CapitalRatio:   ratio,
		CapitalPenalty: penalty,
		LiquidityNeeds: b.liquidityNeeds,
		Withdrawals:    b.withdrawals,
		BankRun:        b.bankRun,
		FireSale:       b.fireSale,
		Sheet:          b.sheet,
	}
}
