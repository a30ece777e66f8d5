// Package recorder persists sector runs for later analysis.
package recorder

import (
	"time"

	"github.com/banksim/banksim/sim/trace"
)

// RunInfo describes one sector run.
type RunInfo struct {
	Preset    string
	Seed      int64
	Cycles    int
	NumBanks  int
	StartedAt time.Time
	// Config is the full configuration, serialized as YAML.
	Config []byte
}

// Recorder persists run results. BeginRun must be called before any Record
// method; it returns the identifier every later row is stored under.
type Recorder interface {
	BeginRun(info RunInfo) (string, error)
	RecordCycle(cycle *trace.CycleRecord, banks []trace.BankCycleRecord) error
	RecordLiquidation(liq *trace.LiquidationRecord) error
	Close() error
}
