package sim

import "fmt"

// Phase is a bank's position in the settlement cycle.
type Phase int

const (
	PhaseReset Phase = iota
	PhasePeriod0
	PhasePeriod1
	PhasePeriod2
	PhaseCycleEnd
	PhaseLiquidated
)

var phaseNames = map[Phase]string{
	PhaseReset:      "RESET",
	PhasePeriod0:    "PERIOD_0",
	PhasePeriod1:    "PERIOD_1",
	PhasePeriod2:    "PERIOD_2",
	PhaseCycleEnd:   "CYCLE_END",
	PhaseLiquidated: "LIQUIDATED",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// phaseOrder maps each phase to the one it must follow.
// A new bank starts at CYCLE_END.
var phaseOrder = map[Phase]Phase{
	PhaseReset:    PhaseCycleEnd,
	PhasePeriod0:  PhaseReset,
	PhasePeriod1:  PhasePeriod0,
	PhasePeriod2:  PhasePeriod1,
	PhaseCycleEnd: PhasePeriod2,
}

// CanEnter reports whether a bank in phase from may move to phase to.
// LIQUIDATED is reachable from every phase but itself and is terminal.
func CanEnter(from, to Phase) bool {
	if from == PhaseLiquidated {
		return false
	}
	if to == PhaseLiquidated {
		return true
	}
	prev, ok := phaseOrder[to]
	return ok && prev == from
}
