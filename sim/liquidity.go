package sim

// WithdrawDeposit records a request by d to withdraw amount, capped at the
// part of d's balance not already requested. The request is added to the
// bank's liquidity needs; d is debited only as cash is paid out, so an unpaid
// remainder is still a deposit claim at liquidation. Only positive requests
// count towards a bank run.
func (b *Bank) WithdrawDeposit(d *Depositor, amount float64) {
	amount = min(amount, d.Balance-d.pending)
	if !(amount > 0) {
		return
	}
	b.withdrawals++
	d.pending += amount
	b.liquidityNeeds -= amount
}

// payWithdrawals debits paid from the open requests, pro rata to their size.
func (b *Bank) payWithdrawals(paid float64) {
	open := 0.0
	for _, d := range b.depositors {
		open += d.pending
	}
	if paid <= 0 || open <= 0 {
		return
	}
	f := min(paid/open, 1)
	for _, d := range b.depositors {
		share := d.pending * f
		d.Withdraw(share)
		d.pending -= share
	}
}

// UseLiquidAssets covers a shortfall from liquid assets. Cash paid out
// reduces the deposit liability one for one; a positive need afterwards is
// the surplus the bank offers to the interbank market. Calling it again is a
// no-op.
func (b *Bank) UseLiquidAssets() {
	if b.liquidityNeeds > 0 {
		return
	}
	before := b.sheet.LiquidAssets
	b.liquidityNeeds += before
	b.sheet.LiquidAssets = max(b.liquidityNeeds, 0)
	paid := before - b.sheet.LiquidAssets
	b.sheet.Deposits += paid
	b.payWithdrawals(paid)
}

// ReceiveDiscountWindowLoan books a central-bank loan of amount (> 0) that
// is paid straight through to depositors.
func (b *Bank) ReceiveDiscountWindowLoan(amount float64) {
	if amount <= 0 {
		return
	}
	b.sheet.DiscountWindow -= amount
	b.sheet.Deposits += amount
	b.liquidityNeeds += amount
	b.payWithdrawals(amount)
}

// ApplyInterbankLoan books a signed interbank settlement: positive when the
// bank lends amount from its liquid assets, negative when it borrows -amount
// to pay depositors.
func (b *Bank) ApplyInterbankLoan(amount float64) {
	b.sheet.Interbank += amount
	switch {
	case amount > 0:
		b.sheet.LiquidAssets -= amount
	case amount < 0:
		b.sheet.Deposits -= amount
		b.payWithdrawals(-amount)
	}
	b.liquidityNeeds -= amount
}

// SellIlliquidAssets raises the outstanding shortfall by selling loans at the
// configured discount, lowest-risk tier first, and returns the cash paid to
// depositors. When the loan book cannot cover the discounted requirement it
// is sold in full and the bank stays short.
func (b *Bank) SellIlliquidAssets() float64 {
	if b.liquidityNeeds >= 0 {
		return 0
	}
	need := -b.liquidityNeeds
	discount := b.cfg.IlliquidAssetDiscountRate
	required := need * (1 + discount)
	total := b.sheet.TotalLoans()
	b.fireSale = true

	if total > required {
		remaining := required
		for t := range b.tiers {
			if remaining <= 0 {
				break
			}
			held := b.sheet.Loans[t]
			if held <= 0 {
				continue
			}
			sold := min(held, remaining)
			b.writeDown(t, sold)
			remaining -= sold
		}
		b.sheet.Deposits += need
		b.liquidityNeeds = 0
		b.payWithdrawals(need)
		return need
	}

	for t := range b.tiers {
		b.writeDown(t, b.sheet.Loans[t])
	}
	recovered := total / (1 + discount)
	b.sheet.Deposits += recovered
	b.liquidityNeeds += recovered
	b.payWithdrawals(recovered)
	return recovered
}
