package watchdog

import (
	"time"
)

// RunState is the loop's belief about the remote miner. It always matches
// the last command that succeeded.
type RunState int

const (
	// StateUnknown is the state before the first successful command; it
	// differs from both targets so the first iteration always issues one.
	StateUnknown RunState = iota
	StatePaused
	StateRunning
)

func (s RunState) String() string {
	switch s {
	case StatePaused:
		return "PAUSED"
	case StateRunning:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}

// Decide classifies an idle sample. While the user is active the miner
// should be paused and the next check is due exactly when the threshold
// would be crossed; once idle it should run and be re-checked every interval.
func Decide(idle, threshold, interval time.Duration) (RunState, time.Duration) {
	if idle < threshold {
		return StatePaused, threshold - idle
	}
	return StateRunning, interval
}
