package parsec

// Runnable is the schedulable surface a system exposes to a multi-system
// scheduler: its declared reads and writes for conflict-graph construction,
// a per-pass archetype filter hook, and the run entry point.
//
// Prepare for every runnable must complete before the scheduler dispatches
// the pass, since archetypes can appear or disappear between passes as
// deferred mutations are replayed.
type Runnable interface {
	// Name identifies the system in diagnostics and deterministic ordering.
	Name() string

	// Reads returns the declared shared-read identities per category.
	Reads() (resources []ResourceID, components []ComponentID)

	// Writes returns the declared exclusive-write identities per category.
	Writes() (resources []ResourceID, components []ComponentID)

	// Access returns the aggregated permission set pair.
	Access() *SystemAccess

	// Prepare recomputes the archetype filter against the current world
	// snapshot, refreshing AccessedArchetypes.
	Prepare(w *World)

	// AccessedArchetypes returns the archetypes the system may touch this
	// pass, or the "all" sentinel.
	AccessedArchetypes() *ArchetypeSet

	// Run executes the system against the world with resources fetched
	// under the declared permissions. Access violations and missing
	// resources abort this system's run and are returned; other systems
	// are unaffected since every runnable owns its own view and buffer.
	Run(w *World, res *Resources) error

	// CommandBuffer returns the deferred-mutation buffer for a world, or
	// nil if the system has not yet run against it. Exposed post-run for
	// the replay step.
	CommandBuffer(id WorldID) *CommandBuffer
}
