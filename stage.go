package parsec

// Stage represents a scheduling stage for system execution within a pass.
// Systems are executed in stage order: Before → Default → After. Ordering
// inside a stage is unspecified beyond conflict avoidance.
type Stage int

const (
	// Before stage runs first. Use for input handling and setup logic
	// that other systems depend on.
	Before Stage = iota

	// Default stage runs second. Use for the main simulation logic.
	Default

	// After stage runs last. Use for cleanup, synchronization and
	// bookkeeping.
	After

	// stageCount is the total number of stages.
	stageCount
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case Before:
		return "Before"
	case Default:
		return "Default"
	case After:
		return "After"
	default:
		return "Unknown"
	}
}
