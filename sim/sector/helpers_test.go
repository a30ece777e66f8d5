package sector

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banksim/banksim/sim"
)

// testConfig is a six-bank economy on a 4x4x4 catalog, so alpha and beta
// never exceed 0.4.
func testConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.NumBanks = 6
	cfg.NumDepositorsPerBank = 10
	cfg.NumCorporateClientsPerBank = 10
	cfg.Cycles = 15
	cfg.Learning.AlphaOptions = 4
	cfg.Learning.BetaOptions = 4
	cfg.Learning.GammaOptions = 4
	cfg.Learning.Resolution = 10
	return cfg
}

// periodZeroBank returns a unit-sized bank that has completed PERIOD_0.
func periodZeroBank(t *testing.T, cfg sim.Config, id int) *sim.Bank {
	t.Helper()
	require.NoError(t, cfg.Validate())
	rng := rand.New(rand.NewSource(int64(id) + 1))

	depositors := make([]*sim.Depositor, cfg.NumDepositorsPerBank)
	for i := range depositors {
		depositors[i] = &sim.Depositor{ID: i}
	}
	tiers := cfg.Tiers()
	pools := make([][]sim.CorporateClient, len(tiers))
	for ti, tier := range tiers {
		pools[ti] = make([]sim.CorporateClient, cfg.NumCorporateClientsPerBank)
		for j := range pools[ti] {
			pools[ti][j] = sim.NewFirm(tier, rng)
		}
	}

	b := sim.NewBank(id, 1, &cfg, sim.NewCatalog(cfg.Learning), rng, depositors,
		sim.NewLoanBook(pools...), cfg.AdaptiveBanks)
	b.Reset()
	b.Period0()
	return b
}

// primedBank returns a bank that has drawn on its liquid assets and is left
// with the given liquidity needs (negative = short).
func primedBank(t *testing.T, cfg sim.Config, id int, needs float64) *sim.Bank {
	t.Helper()
	b := periodZeroBank(t, cfg, id)
	requestWithdrawals(b, b.Sheet().LiquidAssets-needs)
	b.Period1()
	require.InDelta(t, needs, b.LiquidityNeeds(), 1e-12)
	return b
}

// requestWithdrawals has depositors, in order, request total between them.
func requestWithdrawals(b *sim.Bank, total float64) {
	for _, d := range b.Depositors() {
		if total <= 0 {
			return
		}
		amount := min(total, d.Balance)
		b.WithdrawDeposit(d, amount)
		total -= amount
	}
}

// insolventShortBank returns a bank that fire-sold its whole loan book at a
// ruinous discount and is still short.
func insolventShortBank(t *testing.T, cfg sim.Config, id int) *sim.Bank {
	t.Helper()
	cfg.IlliquidAssetDiscountRate = 10
	b := primedBank(t, cfg, id, -0.15)
	b.SellIlliquidAssets()
	require.True(t, b.Sheet().IsInsolvent())
	require.True(t, b.IsShort())
	return b
}
