package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBank_Liquidate_Waterfall(t *testing.T) {
	// GIVEN 4 liquid and 6 of loans, discount window -4, interbank -3, deposits -20
	b := newTestBank(t, testConfig(), 1)
	b.sheet.LiquidAssets = 4
	setLoans(b, 2, 4)
	b.sheet.DiscountWindow = -4
	b.sheet.Interbank = -3
	setDeposits(b, -20)

	// WHEN the bank is liquidated
	res := b.Liquidate()

	// THEN the central bank and interbank creditors are paid first and
	// depositors share the remaining 3 of 20
	assert.InDelta(t, 10, res.Estate, 1e-12)
	assert.InDelta(t, 4, res.DiscountWindowPaid, 1e-12)
	assert.InDelta(t, 3, res.InterbankPaid, 1e-12)
	assert.InDelta(t, 0.15, res.PayoutRatio, 1e-12)
	assert.InDelta(t, 17, res.DepositorLoss(), 1e-12)
	assert.InDelta(t, 0, res.ShareholderResidual, 1e-12)
	for _, d := range b.Depositors() {
		assert.InDelta(t, 0.75, d.Balance, 1e-12)
	}

	bs := b.Sheet()
	assert.Zero(t, bs.LiquidAssets)
	assert.Zero(t, bs.TotalLoans())
	assert.Zero(t, bs.DiscountWindow)
	assert.Zero(t, bs.Interbank)
	assert.InDelta(t, -3, bs.Deposits, 1e-12)
	assert.InDelta(t, 0, b.loans.Sum(0)+b.loans.Sum(1), 1e-15)
	assert.Equal(t, PhaseLiquidated, b.Phase())
}

func TestBank_Liquidate_CreditorClaimJoinsEstate(t *testing.T) {
	b := newTestBank(t, testConfig(), 1)
	b.sheet.LiquidAssets = 1
	b.sheet.Interbank = 4
	b.sheet.DiscountWindow = -2
	setDeposits(b, -6)

	res := b.Liquidate()

	assert.InDelta(t, 5, res.Estate, 1e-12)
	assert.Zero(t, res.InterbankPaid)
	assert.InDelta(t, 0.5, res.PayoutRatio, 1e-12)
}

func TestBank_Liquidate_SeniorDebtExhaustsEstate(t *testing.T) {
	// GIVEN an estate of 2 against 4 owed to the central bank
	b := newTestBank(t, testConfig(), 1)
	b.sheet.LiquidAssets = 2
	b.sheet.DiscountWindow = -4
	b.sheet.Interbank = -3
	setDeposits(b, -20)

	res := b.Liquidate()

	// THEN junior creditors and depositors get nothing
	assert.InDelta(t, -2, res.ResidualDiscountWindow, 1e-12)
	assert.InDelta(t, -3, res.ResidualInterbank, 1e-12)
	assert.Zero(t, res.InterbankPaid)
	assert.Zero(t, res.PayoutRatio)
	for _, d := range b.Depositors() {
		assert.Zero(t, d.Balance)
	}
}

func TestBank_Liquidate_SurplusCapsPayoutAtOne(t *testing.T) {
	b := newTestBank(t, testConfig(), 1)
	b.sheet.LiquidAssets = 30
	setDeposits(b, -20)

	res := b.Liquidate()

	assert.Equal(t, 1.0, res.PayoutRatio)
	assert.InDelta(t, 10, res.ShareholderResidual, 1e-12)
	assert.InDelta(t, -20, b.Sheet().Deposits, 1e-12)
}

func TestBank_Liquidate_NoDeposits_NoDivisionByZero(t *testing.T) {
	b := newTestBank(t, testConfig(), 1)
	b.sheet.LiquidAssets = 3

	res := b.Liquidate()

	require.Zero(t, res.PayoutRatio)
	assert.InDelta(t, 3, res.ShareholderResidual, 1e-12)
	require.NoError(t, b.CheckLedger())
}
