package recorder

import "github.com/banksim/banksim/sim/trace"

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) BeginRun(_ RunInfo) (string, error) { return "", nil }

func (n *NoopRecorder) RecordCycle(_ *trace.CycleRecord, _ []trace.BankCycleRecord) error {
	return nil
}

func (n *NoopRecorder) RecordLiquidation(_ *trace.LiquidationRecord) error { return nil }

func (n *NoopRecorder) Close() error { return nil }
