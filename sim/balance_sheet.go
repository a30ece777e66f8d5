package sim

import (
	"fmt"
	"math"
)

// BalanceSheet is a bank's signed ledger. Assets are stored positive and
// liabilities negative, so the sum of every field is the bank's equity and
// CapitalDeficit (its negation) is positive exactly when the bank is insolvent.
//
// The struct is a plain value: assigning it copies the whole ledger, which is
// how snapshots are taken.
type BalanceSheet struct {
	LiquidAssets   float64               // >= 0
	Loans          [MaxRiskTiers]float64 // per risk tier, lowest risk first
	NumTiers       int                   // number of Loans slots in use
	Interbank      float64               // > 0 net creditor, < 0 net debtor
	DiscountWindow float64               // central-bank debt, <= 0
	Deposits       float64               // <= 0
}

// TotalLoans returns the loan principal across all tiers.
func (bs BalanceSheet) TotalLoans() float64 {
	total := 0.0
	for i := 0; i < bs.NumTiers; i++ {
		total += bs.Loans[i]
	}
	return total
}

// Assets returns liquid assets, loans and the interbank position when it is a claim.
func (bs BalanceSheet) Assets() float64 {
	return bs.LiquidAssets + bs.TotalLoans() + math.Max(bs.Interbank, 0)
}

// Liabilities returns deposits, discount-window debt and the interbank position
// when it is a debt. The result is <= 0.
func (bs BalanceSheet) Liabilities() float64 {
	return bs.Deposits + bs.DiscountWindow + math.Min(bs.Interbank, 0)
}

// CapitalDeficit returns the negated sum of every ledger field.
// Positive means liabilities exceed assets.
func (bs BalanceSheet) CapitalDeficit() float64 {
	return -(bs.LiquidAssets + bs.TotalLoans() + bs.Interbank + bs.DiscountWindow + bs.Deposits)
}

// IsInsolvent reports CapitalDeficit > 0.
func (bs BalanceSheet) IsInsolvent() bool { return bs.CapitalDeficit() > 0 }

// IsSolvent reports CapitalDeficit <= 0.
func (bs BalanceSheet) IsSolvent() bool { return bs.CapitalDeficit() <= 0 }

// IsInterbankCreditor reports a non-negative interbank position.
func (bs BalanceSheet) IsInterbankCreditor() bool { return bs.Interbank >= 0 }

// IsInterbankDebtor reports a negative interbank position.
func (bs BalanceSheet) IsInterbankDebtor() bool { return bs.Interbank < 0 }

// check returns an error if any ledger field is NaN or infinite.
func (bs BalanceSheet) check() error {
	if err := checkLedgerField("liquid assets", bs.LiquidAssets); err != nil {
		return err
	}
	for i := 0; i < bs.NumTiers; i++ {
		if err := checkLedgerField(fmt.Sprintf("loans[%d]", i), bs.Loans[i]); err != nil {
			return err
		}
	}
	if err := checkLedgerField("interbank", bs.Interbank); err != nil {
		return err
	}
	if err := checkLedgerField("discount window", bs.DiscountWindow); err != nil {
		return err
	}
	return checkLedgerField("deposits", bs.Deposits)
}

func checkLedgerField(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("ledger field %s is not finite: %v", name, v)
	}
	return nil
}
