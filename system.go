package parsec

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

// System is a unit of per-frame logic. Run receives resources and world data
// restricted to the declarations the system was built with, its queries with
// per-pass refreshed archetype filters, and its private command buffer for
// deferred mutations.
//
// Everything passed to Run is owned by the adapter for exactly the duration
// of the call and must not be retained.
type System interface {
	Run(res *ResourceView, queries []*Query, cmd *CommandBuffer, view *View)
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc func(res *ResourceView, queries []*Query, cmd *CommandBuffer, view *View)

// Run implements System.
func (f SystemFunc) Run(res *ResourceView, queries []*Query, cmd *CommandBuffer, view *View) {
	f(res, queries, cmd, view)
}

// SystemBuilder assembles a system's declarations and produces a Runnable.
//
//	sys, err := parsec.NewSystem("movement").
//	    WithQuery(q).
//	    WithAccess(parsec.ReadRes[Config]()).
//	    Build(fn)
type SystemBuilder struct {
	name     string
	accesses []Access
	queries  []*Query
}

// NewSystem starts building a system with the given name.
func NewSystem(name string) *SystemBuilder {
	return &SystemBuilder{name: name}
}

// WithQuery adds a query. Its component declarations contribute to the
// system's permission set and its predicate to the per-pass archetype
// filter. The query must not be shared with another system.
func (b *SystemBuilder) WithQuery(q *Query) *SystemBuilder {
	b.queries = append(b.queries, q)
	return b
}

// WithAccess adds bare access declarations, typically resource reads and
// writes that have no query to live on.
func (b *SystemBuilder) WithAccess(accesses ...Access) *SystemBuilder {
	b.accesses = append(b.accesses, accesses...)
	return b
}

// Build composes the declarations and wraps fn as a Runnable. It fails with
// ErrDeclarationConflict if independent declarations claim conflicting
// access to the same type; such conflicts are a property of the system's
// shape and never surface mid-pass.
func (b *SystemBuilder) Build(fn SystemFunc) (Runnable, error) {
	return b.BuildSystem(fn)
}

// BuildSystem is Build for systems implemented as types rather than closures.
func (b *SystemBuilder) BuildSystem(sys System) (Runnable, error) {
	if sys == nil {
		return nil, fmt.Errorf("parsec: system %q has no body", b.name)
	}
	access, err := composeAccess(b.name, b.accesses, b.queries)
	if err != nil {
		return nil, err
	}
	return &systemState{
		name:    b.name,
		system:  sys,
		queries: b.queries,
		access:  access,
		buffers: make(map[WorldID]*CommandBuffer),
	}, nil
}

// Adapter phases, one cycle per pass.
const (
	phaseIdle int32 = iota
	phasePreparing
	phaseRunning
	phaseDraining
)

// systemState adapts a permission-bearing System to the Runnable surface.
// Each instance owns its queries' archetype filters and one command buffer
// per world it has run against.
type systemState struct {
	name    string
	system  System
	queries []*Query
	access  SystemAccess

	// archetypes is the union of the queries' matched sets, refreshed by
	// Prepare every pass. Never shared across systems.
	archetypes ArchetypeSet

	// buffers holds this system's private command buffer per world,
	// created lazily and retained across passes.
	buffers map[WorldID]*CommandBuffer

	phase atomic.Int32
}

// Name implements Runnable.
func (s *systemState) Name() string {
	return s.name
}

// Reads implements Runnable.
func (s *systemState) Reads() ([]ResourceID, []ComponentID) {
	return s.access.Resources.Reads(), s.access.Components.Reads()
}

// Writes implements Runnable.
func (s *systemState) Writes() ([]ResourceID, []ComponentID) {
	return s.access.Resources.Writes(), s.access.Components.Writes()
}

// Access implements Runnable.
func (s *systemState) Access() *SystemAccess {
	return &s.access
}

// AccessedArchetypes implements Runnable.
func (s *systemState) AccessedArchetypes() *ArchetypeSet {
	return &s.archetypes
}

// Prepare implements Runnable. A system without queries resolves to the
// "all" sentinel: it still needs an opaque filter, and an enumerated set
// would grow without bound as archetypes scale.
func (s *systemState) Prepare(w *World) {
	s.phase.Store(phasePreparing)
	defer s.phase.Store(phaseIdle)

	s.archetypes.Reset()
	if len(s.queries) == 0 {
		s.archetypes.SetAll()
		return
	}
	for _, q := range s.queries {
		q.prepare(w)
		s.archetypes.Or(&q.matched)
	}
}

// Run implements Runnable. Declared resources are validated up front, then
// the wrapped logic is invoked synchronously with handles scoped to this
// call frame; nothing it is given outlives the pass except the command
// buffer, which is drained by the replay step and retained.
func (s *systemState) Run(w *World, res *Resources) (err error) {
	s.phase.Store(phaseRunning)
	defer s.phase.Store(phaseIdle)

	for _, id := range s.access.Resources.Reads() {
		if _, ok := res.fetch(id); !ok {
			return &MissingResourceError{System: s.name, Name: ResourceName(id)}
		}
	}
	for _, id := range s.access.Resources.Writes() {
		if _, ok := res.fetch(id); !ok {
			return &MissingResourceError{System: s.name, Name: ResourceName(id)}
		}
	}

	view := &View{
		world:      w,
		components: &s.access.Components,
		archetypes: &s.archetypes,
	}
	rv := &ResourceView{res: res, perm: &s.access.Resources}

	buf, ok := s.buffers[w.ID()]
	if !ok {
		buf = newCommandBuffer(w.ID())
		s.buffers[w.ID()] = buf
	}

	defer func() {
		if r := recover(); r != nil {
			if ae, ok := r.(*AccessError); ok {
				ae.System = s.name
				err = ae
				return
			}
			err = fmt.Errorf("parsec: panic in system %s: %v\n%s", s.name, r, debug.Stack())
		}
	}()
	s.system.Run(rv, s.queries, buf, view)
	return nil
}

// CommandBuffer implements Runnable.
func (s *systemState) CommandBuffer(id WorldID) *CommandBuffer {
	return s.buffers[id]
}

// drain hands the buffered mutations for a world to the replay step. The
// buffer is retained for the next pass against the same world.
func (s *systemState) drain(w *World, res *Resources) {
	s.phase.Store(phaseDraining)
	defer s.phase.Store(phaseIdle)

	if buf, ok := s.buffers[w.ID()]; ok {
		buf.Flush(w, res)
	}
}
