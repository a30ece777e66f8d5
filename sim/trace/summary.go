package trace

// TraceSummary aggregates statistics from a SectorTrace.
type TraceSummary struct {
	BankCycles       int
	BankRuns         int
	FireSales        int
	InsolventCycles  int
	Liquidations     int
	MeanROE          float64
	MeanPayoutRatio  float64
	TotalDepositLoss float64
	TotalInsurance   float64
	// StrategyDistribution counts how often each catalog index was chosen.
	StrategyDistribution map[int]int
}

// Summarize computes aggregate statistics from a SectorTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SectorTrace) *TraceSummary {
	summary := &TraceSummary{
		StrategyDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.BankCycles = len(st.Banks)
	if len(st.Banks) > 0 {
		totalROE := 0.0
		for _, r := range st.Banks {
			summary.StrategyDistribution[r.StrategyIndex]++
			totalROE += r.ROE
			if r.BankRun {
				summary.BankRuns++
			}
			if r.FireSale {
				summary.FireSales++
			}
			if r.Insolvent {
				summary.InsolventCycles++
			}
		}
		summary.MeanROE = totalROE / float64(len(st.Banks))
	}

	summary.Liquidations = len(st.Liquidations)
	if len(st.Liquidations) > 0 {
		totalPayout := 0.0
		for _, l := range st.Liquidations {
			totalPayout += l.PayoutRatio
			summary.TotalDepositLoss += l.DepositorLoss
			summary.TotalInsurance += l.InsuranceOutlay
		}
		summary.MeanPayoutRatio = totalPayout / float64(len(st.Liquidations))
	}

	return summary
}
