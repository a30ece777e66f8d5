package sim

import "math/rand"

// Depositor holds a deposit at exactly one bank. The bank overwrites the
// balance at construction and scales it for interest and liquidation payouts.
// A withdrawal request stays part of the balance until the bank pays it.
type Depositor struct {
	ID      int
	Balance float64

	pending float64 // requested this cycle, not yet paid
}

// MakeDeposit sets the depositor's balance and drops any open request.
func (d *Depositor) MakeDeposit(amount float64) {
	d.Balance = amount
	d.pending = 0
}

// Pending returns the part of the balance requested but not yet paid.
func (d *Depositor) Pending() float64 { return d.pending }

// Withdraw removes up to amount from the balance and returns what was removed.
func (d *Depositor) Withdraw(amount float64) float64 {
	amount = min(max(amount, 0), d.Balance)
	d.Balance -= amount
	return amount
}

// CorporateClient is a borrower in one of a bank's risk tiers.
// The bank writes the outstanding principal on disbursement, fire sale and
// deleveraging, and calls PayLoanBack once per cycle during collection.
type CorporateClient interface {
	LoanAmount() float64
	SetLoanAmount(amount float64)
	// PayLoanBack settles the cycle and returns the new outstanding balance
	// (principal plus interest if repaid, principal net of losses if defaulted).
	PayLoanBack() float64
	ProbabilityOfDefault() float64
}

// Firm is the default CorporateClient: it defaults with the tier's default
// rate, drawing from the owning bank's RNG stream.
type Firm struct {
	tier RiskTier
	rng  *rand.Rand
	loan float64
}

// NewFirm creates a Firm in the given tier.
func NewFirm(tier RiskTier, rng *rand.Rand) *Firm {
	return &Firm{tier: tier, rng: rng}
}

func (f *Firm) LoanAmount() float64 { return f.loan }

func (f *Firm) SetLoanAmount(amount float64) { f.loan = amount }

func (f *Firm) ProbabilityOfDefault() float64 { return f.tier.DefaultRate }

// PayLoanBack draws once per call, even for a zero balance, so that the
// stream position depends only on the number of clients.
func (f *Firm) PayLoanBack() float64 {
	if f.rng.Float64() < f.tier.DefaultRate {
		f.loan *= 1 - f.tier.LossGivenDefault
	} else {
		f.loan *= 1 + f.tier.LoanInterestRate
	}
	return f.loan
}
