package trace

// TraceLevel controls the verbosity of cycle tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelBanks captures every bank's cycle outcome and every liquidation.
	TraceLevelBanks TraceLevel = "banks"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelBanks: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SectorTrace collects decision records during a sector run.
type SectorTrace struct {
	Level        TraceLevel
	Banks        []BankCycleRecord
	Liquidations []LiquidationRecord
}

// NewSectorTrace creates a SectorTrace ready for recording.
func NewSectorTrace(level TraceLevel) *SectorTrace {
	return &SectorTrace{
		Level:        level,
		Banks:        make([]BankCycleRecord, 0),
		Liquidations: make([]LiquidationRecord, 0),
	}
}

// Enabled reports whether records should be collected.
// Safe to call on a nil trace.
func (st *SectorTrace) Enabled() bool {
	return st != nil && st.Level == TraceLevelBanks
}

// RecordBank appends a bank cycle record.
func (st *SectorTrace) RecordBank(record BankCycleRecord) {
	st.Banks = append(st.Banks, record)
}

// RecordLiquidation appends a liquidation record.
func (st *SectorTrace) RecordLiquidation(record LiquidationRecord) {
	st.Liquidations = append(st.Liquidations, record)
}
