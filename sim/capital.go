package sim

import "math"

// RiskWeightedAssets returns liquid assets, loans and a creditor interbank
// position weighted by their configured risk weights.
func (b *Bank) RiskWeightedAssets() float64 {
	rwa := b.sheet.LiquidAssets * b.cfg.CashRiskWeight
	for t, tier := range b.tiers {
		rwa += b.sheet.Loans[t] * tier.RiskWeight
	}
	if b.sheet.IsInterbankCreditor() {
		rwa += b.sheet.Interbank * b.cfg.InterbankRiskWeight
	}
	return rwa
}

// CapitalRatio returns equity over risk-weighted assets. An insolvent bank or
// one with no risk-weighted assets has ratio 0.
func (b *Bank) CapitalRatio() float64 {
	if b.sheet.IsInsolvent() {
		return 0
	}
	rwa := b.RiskWeightedAssets()
	if rwa == 0 {
		return 0
	}
	return -b.sheet.CapitalDeficit() / rwa
}

// DeleverageFactor returns the fraction of loans a bank at ratio keeps to
// meet minimum, clamped to [0, 1].
func DeleverageFactor(ratio, minimum float64) float64 {
	f := ratio / minimum
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return min(f, 1)
}

// AdjustCapitalRatio deleverages when the capital ratio is at or below
// minimum and returns the factor applied to the loan book (1 if untouched).
func (b *Bank) AdjustCapitalRatio(minimum float64) float64 {
	ratio := b.CapitalRatio()
	if ratio > minimum {
		return 1
	}
	f := DeleverageFactor(ratio, minimum)
	b.Deleverage(f)
	return f
}

// Deleverage scales every active loan by factor and moves the freed
// principal into liquid assets. Tier totals are recomputed from the clients.
func (b *Bank) Deleverage(factor float64) {
	for t := range b.tiers {
		before := b.loans.Sum(t)
		b.loans.Scale(t, factor)
		after := b.loans.Sum(t)
		b.sheet.LiquidAssets += before - after
		b.sheet.Loans[t] = after
	}
}
