// Package trace provides per-cycle decision records for sector analysis.
// This package has no dependencies on sim/ or sim/sector/: it stores pure data types.
package trace

// BankCycleRecord captures one bank's strategy choice and its result for one cycle.
type BankCycleRecord struct {
	Cycle          int
	BankID         int
	StrategyIndex  int
	Alpha          float64
	Beta           float64
	Gamma          float64
	CapitalRatio   float64
	Profit         float64
	ROE            float64 // profit as a fraction of snapshot equity
	LiquidityNeeds float64 // signed; < 0 means the shortfall was not covered
	InterbankLoan  float64 // signed net position after clearing
	DiscountWindow float64 // <= 0
	BankRun        bool
	FireSale       bool
	Insolvent      bool
}

// LiquidationRecord captures the distribution of an insolvent bank's estate.
type LiquidationRecord struct {
	Cycle                  int
	BankID                 int
	Estate                 float64
	PayoutRatio            float64
	ResidualDiscountWindow float64
	ResidualInterbank      float64
	DepositorLoss          float64
	InsuranceOutlay        float64
}

// CycleRecord captures sector-wide aggregates for one cycle.
type CycleRecord struct {
	Cycle                int
	ActiveBanks          int
	Liquidations         int
	BankRuns             int
	FireSales            int
	ShortBanks           int // banks still short after every funding source
	InterbankVolume      float64
	DiscountWindowVolume float64
	FireSaleProceeds     float64
	InsuranceOutlay      float64
	MeanCapitalRatio     float64
	StdCapitalRatio      float64
	MeanROE              float64
}
