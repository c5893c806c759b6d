package parsec

import (
	"errors"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Schedule dispatches registered systems once per Execute call (a pass).
// Systems whose declared permission sets cannot conflict are packed into the
// same batch and run in parallel; any write-involving overlap forces them
// into separate batches. Correctness depends only on the identity-level
// permission sets, never on archetype-filter granularity.
//
// Systems themselves do not create goroutines; all coordination lives here.
type Schedule struct {
	mu      sync.RWMutex
	systems [stageCount][]Runnable
	batches [stageCount][][]Runnable

	workers int
	log     *zap.Logger
	pass    atomic.Uint64
}

// ScheduleOption configures a Schedule.
type ScheduleOption func(*Schedule)

// WithWorkers caps how many systems of a batch run concurrently.
// Defaults to GOMAXPROCS.
func WithWorkers(n int) ScheduleOption {
	return func(s *Schedule) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger for pass diagnostics and system failures.
// Defaults to a no-op logger.
func WithLogger(log *zap.Logger) ScheduleOption {
	return func(s *Schedule) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSchedule creates an empty schedule.
func NewSchedule(opts ...ScheduleOption) *Schedule {
	s := &Schedule{
		workers: runtime.GOMAXPROCS(0),
		log:     zap.NewNop(),
	}
	if s.workers < 1 {
		s.workers = 1
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddSystem registers a system with the given stage and rebuilds that
// stage's batches.
func (s *Schedule) AddSystem(sys Runnable, stage Stage) *Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.systems[stage] = append(s.systems[stage], sys)
	s.rebuildBatches(stage)
	return s
}

// rebuildBatches recomputes the conflict-free batches for a stage.
// Caller must hold s.mu.
func (s *Schedule) rebuildBatches(stage Stage) {
	systems := s.systems[stage]
	if len(systems) == 0 {
		s.batches[stage] = nil
		return
	}

	// Sort by name to ensure deterministic batching
	sort.Slice(systems, func(i, j int) bool {
		return systems[i].Name() < systems[j].Name()
	})

	var batches [][]Runnable

	remaining := make([]Runnable, len(systems))
	copy(remaining, systems)

	for len(remaining) > 0 {
		var batch []Runnable
		var nextRemaining []Runnable

		for _, candidate := range remaining {
			conflict := false
			for _, existing := range batch {
				if candidate.Access().Conflicts(existing.Access()) {
					conflict = true
					break
				}
			}

			if !conflict {
				batch = append(batch, candidate)
			} else {
				nextRemaining = append(nextRemaining, candidate)
			}
		}

		batches = append(batches, batch)
		remaining = nextRemaining
	}

	s.batches[stage] = batches
}

// Batches returns the system names of each conflict-free batch in a stage,
// in dispatch order. Diagnostic surface; the grouping is stable between
// registrations.
func (s *Schedule) Batches(stage Stage) [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]string, len(s.batches[stage]))
	for i, batch := range s.batches[stage] {
		names := make([]string, len(batch))
		for j, sys := range batch {
			names[j] = sys.Name()
		}
		out[i] = names
	}
	return out
}

// Execute runs one pass: every system's archetype filter is recomputed
// against the current world, stages run in order with each batch's systems
// dispatched in parallel, and finally each system's command buffer is
// replayed into the world.
//
// A failing system (access violation, missing resource, panic) aborts only
// its own run; its error is logged, the rest of the pass proceeds, and the
// joined errors are returned.
func (s *Schedule) Execute(w *World, res *Resources) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pass := s.pass.Add(1)

	// Every Prepare completes before any dispatch: archetype-level access
	// can change after the prior pass's drained mutations.
	total := 0
	for stage := Before; stage < stageCount; stage++ {
		for _, sys := range s.systems[stage] {
			sys.Prepare(w)
			total++
		}
	}

	var (
		errMu sync.Mutex
		errs  []error
	)

	for stage := Before; stage < stageCount; stage++ {
		for _, batch := range s.batches[stage] {
			var g errgroup.Group
			g.SetLimit(s.workers)
			for _, sys := range batch {
				sys := sys
				g.Go(func() error {
					if err := sys.Run(w, res); err != nil {
						s.log.Error("system failed",
							zap.String("system", sys.Name()),
							zap.Stringer("stage", stage),
							zap.Error(err),
						)
						errMu.Lock()
						errs = append(errs, err)
						errMu.Unlock()
					}
					return nil
				})
			}
			g.Wait()
		}
	}

	// Replay step: drain every buffer into the world after the pass.
	for stage := Before; stage < stageCount; stage++ {
		for _, sys := range s.systems[stage] {
			if st, ok := sys.(*systemState); ok {
				st.drain(w, res)
				continue
			}
			if buf := sys.CommandBuffer(w.ID()); buf != nil {
				buf.Flush(w, res)
			}
		}
	}

	s.log.Debug("pass complete",
		zap.Uint64("pass", pass),
		zap.Int("systems", total),
		zap.Int("entities", w.EntityCount()),
	)

	return errors.Join(errs...)
}
