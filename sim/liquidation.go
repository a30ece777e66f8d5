package sim

// LiquidationResult records how an insolvent bank's estate was distributed.
type LiquidationResult struct {
	BankID int
	// Estate is the liquid value after loans and any interbank claim were
	// converted, before any creditor was paid.
	Estate float64
	// DiscountWindowPaid and InterbankPaid are the amounts repaid (>= 0).
	DiscountWindowPaid float64
	InterbankPaid      float64
	// ResidualDiscountWindow and ResidualInterbank are unpaid debt (<= 0).
	ResidualDiscountWindow float64
	ResidualInterbank      float64
	// DepositClaims is the deposit liability before payout (>= 0).
	DepositClaims float64
	PayoutRatio   float64
	// ShareholderResidual is liquid value left after depositors were paid in full.
	ShareholderResidual float64
}

// DepositorLoss returns the deposit value not recovered.
func (r LiquidationResult) DepositorLoss() float64 {
	return r.DepositClaims * (1 - r.PayoutRatio)
}

// Liquidate winds the bank up in creditor seniority: loans and an interbank
// claim are converted to cash at par, the discount window is repaid, then
// interbank creditors, and depositors share what remains pro rata.
// The bank enters the terminal LIQUIDATED phase.
func (b *Bank) Liquidate() LiquidationResult {
	b.enter(PhaseLiquidated)
	res := LiquidationResult{BankID: b.ID}

	for t := range b.tiers {
		b.sheet.LiquidAssets += b.sheet.Loans[t]
		b.sheet.Loans[t] = 0
		b.loans.Scale(t, 0)
	}
	if b.sheet.IsInterbankCreditor() {
		b.sheet.LiquidAssets += b.sheet.Interbank
		b.sheet.Interbank = 0
	}
	res.Estate = b.sheet.LiquidAssets

	res.DiscountWindowPaid = b.repay(&b.sheet.DiscountWindow)
	if b.sheet.IsInterbankDebtor() {
		res.InterbankPaid = b.repay(&b.sheet.Interbank)
	}
	res.ResidualDiscountWindow = b.sheet.DiscountWindow
	res.ResidualInterbank = b.sheet.Interbank

	res.DepositClaims = -b.sheet.Deposits
	if res.DepositClaims > 0 {
		res.PayoutRatio = min(b.sheet.LiquidAssets/res.DepositClaims, 1)
		res.ShareholderResidual = b.sheet.LiquidAssets - res.PayoutRatio*res.DepositClaims
	} else {
		res.ShareholderResidual = b.sheet.LiquidAssets
	}
	b.sheet.Deposits *= res.PayoutRatio
	for _, d := range b.depositors {
		d.Balance *= res.PayoutRatio
		d.pending = 0
	}
	b.sheet.LiquidAssets = 0
	b.liquidityNeeds = 0
	return res
}

// repay settles the debt at *debt (<= 0) from liquid assets, in full if they
// cover it, otherwise until they are exhausted. Returns the amount paid.
func (b *Bank) repay(debt *float64) float64 {
	paid := min(-*debt, b.sheet.LiquidAssets)
	if paid <= 0 {
		return 0
	}
	b.sheet.LiquidAssets -= paid
	*debt += paid
	return paid
}
