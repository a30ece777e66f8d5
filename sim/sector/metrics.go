package sector

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/stat"

	"github.com/banksim/banksim/sim"
	"github.com/banksim/banksim/sim/trace"
)

// Metrics holds the sector aggregates of every completed cycle.
type Metrics struct {
	Cycles []trace.CycleRecord
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{Cycles: make([]trace.CycleRecord, 0)}
}

// observeOutcomes fills the distribution fields of rec from the cycle
// outcomes of the active banks.
func observeOutcomes(rec *trace.CycleRecord, outcomes []sim.CycleOutcome) {
	if len(outcomes) == 0 {
		return
	}
	ratios := make([]float64, len(outcomes))
	roe := make([]float64, len(outcomes))
	for i, o := range outcomes {
		ratios[i] = o.CapitalRatio
		roe[i] = o.ProfitFraction
		if o.BankRun {
			rec.BankRuns++
		}
		if o.FireSale {
			rec.FireSales++
		}
	}
	if len(ratios) > 1 {
		rec.MeanCapitalRatio, rec.StdCapitalRatio = stat.MeanStdDev(ratios, nil)
	} else {
		rec.MeanCapitalRatio = ratios[0]
	}
	rec.MeanROE = stat.Mean(roe, nil)
}

// Totals sums the counters and volumes across cycles. Distribution fields
// are averaged over cycles.
func (m *Metrics) Totals() trace.CycleRecord {
	var t trace.CycleRecord
	if len(m.Cycles) == 0 {
		return t
	}
	ratios := make([]float64, len(m.Cycles))
	roe := make([]float64, len(m.Cycles))
	for i, c := range m.Cycles {
		t.Liquidations += c.Liquidations
		t.BankRuns += c.BankRuns
		t.FireSales += c.FireSales
		t.ShortBanks += c.ShortBanks
		t.InterbankVolume += c.InterbankVolume
		t.DiscountWindowVolume += c.DiscountWindowVolume
		t.FireSaleProceeds += c.FireSaleProceeds
		t.InsuranceOutlay += c.InsuranceOutlay
		ratios[i] = c.MeanCapitalRatio
		roe[i] = c.MeanROE
	}
	last := m.Cycles[len(m.Cycles)-1]
	t.Cycle = last.Cycle
	t.ActiveBanks = last.ActiveBanks - last.Liquidations
	t.MeanCapitalRatio = stat.Mean(ratios, nil)
	t.MeanROE = stat.Mean(roe, nil)
	return t
}

// Print displays the run summary on stdout.
func (m *Metrics) Print() {
	m.Fprint(os.Stdout)
}

// Fprint writes the run summary to w.
func (m *Metrics) Fprint(w io.Writer) {
	t := m.Totals()
	fmt.Fprintln(w, "=== Sector Metrics ===")
	fmt.Fprintf(w, "Cycles               : %d\n", len(m.Cycles))
	fmt.Fprintf(w, "Surviving Banks      : %d\n", t.ActiveBanks)
	fmt.Fprintf(w, "Liquidations         : %d\n", t.Liquidations)
	fmt.Fprintf(w, "Bank Runs            : %d\n", t.BankRuns)
	fmt.Fprintf(w, "Fire Sales           : %d\n", t.FireSales)
	fmt.Fprintf(w, "Unmet Shortfalls     : %d\n", t.ShortBanks)
	if len(m.Cycles) > 0 {
		fmt.Fprintf(w, "Interbank Volume     : %.4f\n", t.InterbankVolume)
		fmt.Fprintf(w, "Discount Window      : %.4f\n", t.DiscountWindowVolume)
		fmt.Fprintf(w, "Fire Sale Proceeds   : %.4f\n", t.FireSaleProceeds)
		fmt.Fprintf(w, "Insurance Outlay     : %.4f\n", t.InsuranceOutlay)
		fmt.Fprintf(w, "Mean Capital Ratio   : %.4f\n", t.MeanCapitalRatio)
		fmt.Fprintf(w, "Mean ROE             : %.4f\n", t.MeanROE)
	}
}
