package sector

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/banksim/banksim/sim"
)

// Bank size distributions.
const (
	SizeVanilla   = "vanilla"
	SizeLognormal = "lognormal"
)

// Lognormal size parameters of the underlying normal.
const (
	lognormalMu    = -0.5
	lognormalSigma = 1.0
)

// drawBankSizes returns n raw bank sizes from the configured distribution.
func drawBankSizes(n int, distribution string, rng *rand.Rand) []float64 {
	sizes := make([]float64, n)
	for i := range sizes {
		switch distribution {
		case SizeLognormal:
			sizes[i] = math.Exp(lognormalMu + lognormalSigma*rng.NormFloat64())
		default:
			sizes[i] = 1
		}
	}
	return sizes
}

// normalizeSizes rescales sizes in place so they sum to len(sizes) and
// returns each bank's share of the total.
func normalizeSizes(sizes []float64) []float64 {
	total := floats.Sum(sizes)
	shares := make([]float64, len(sizes))
	floats.ScaleTo(shares, 1/total, sizes)
	floats.Scale(float64(len(sizes))/total, sizes)
	return shares
}

// buildBanks creates the bank population in id order. Each bank's
// depositors and corporate clients draw from that bank's own stream.
func buildBanks(cfg *sim.Config, catalog *sim.Catalog, rng *sim.PartitionedRNG) []*sim.Bank {
	sizes := drawBankSizes(cfg.NumBanks, cfg.BankSizeDistribution, rng.ForSubsystem(sim.SubsystemPopulation))
	shares := normalizeSizes(sizes)
	tiers := cfg.Tiers()

	banks := make([]*sim.Bank, cfg.NumBanks)
	for i := range banks {
		bankRNG := rng.ForSubsystem(sim.SubsystemBank(i))

		depositors := make([]*sim.Depositor, cfg.NumDepositorsPerBank)
		for j := range depositors {
			depositors[j] = &sim.Depositor{ID: i*cfg.NumDepositorsPerBank + j}
		}

		pools := make([][]sim.CorporateClient, len(tiers))
		for t, tier := range tiers {
			pool := make([]sim.CorporateClient, cfg.NumCorporateClientsPerBank)
			for j := range pool {
				pool[j] = sim.NewFirm(tier, bankRNG)
			}
			pools[t] = pool
		}

		b := sim.NewBank(i, sizes[i], cfg, catalog, bankRNG, depositors, sim.NewLoanBook(pools...), cfg.AdaptiveBanks)
		b.MarketShare = shares[i]
		banks[i] = b
	}
	return banks
}
