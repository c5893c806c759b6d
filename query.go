package parsec

import (
	"fmt"
)

// ArchetypeSource is the storage engine boundary the archetype filter
// consumes: an enumeration of the archetypes currently known, each
// answering which component types it owns. *World implements it.
type ArchetypeSource interface {
	// ArchetypeCount returns the number of archetypes currently known.
	// Identifiers 0..ArchetypeCount()-1 are valid.
	ArchetypeCount() int

	// ArchetypeMask returns the component-type set of an archetype.
	ArchetypeMask(id ArchetypeID) Bitmask
}

// Query is a declared predicate over component types plus the access mode a
// system requires for matching entities' components. Clauses are conjunctive:
// every Read/Write/With component must be present and every Without
// component absent.
//
// A query belongs to exactly one system. Its shape is immutable after
// construction; its matched archetype set is recomputed once per scheduling
// pass, so archetypes created or destroyed between passes are picked up or
// dropped automatically and never retroactively within a pass.
type Query struct {
	require  Bitmask
	exclude  Bitmask
	empty    bool
	accesses []Access
	matched  ArchetypeSet
}

// NewQuery constructs a query from component access declarations and filter
// clauses. Resource declarations do not belong in queries and panic here;
// queries are built once at registration time, so misuse surfaces
// immediately.
func NewQuery(accesses ...Access) *Query {
	q := &Query{}
	for _, acc := range accesses {
		if acc.Category == CategoryResource {
			panic(fmt.Sprintf("parsec: queries accept component declarations only, got resource %s", acc.Name()))
		}
		switch {
		case acc.Kind == AccessNone && !acc.filter:
			// Pass-through marker, contributes nothing.
		case acc.Exclude:
			q.exclude.Set(acc.component)
		default:
			q.require.Set(acc.component)
			if acc.Kind != AccessNone {
				q.accesses = append(q.accesses, acc)
			}
		}
	}
	q.empty = q.require.IsZero() && q.exclude.IsZero()
	return q
}

// Match evaluates the predicate against one archetype's component-type set.
// An empty predicate matches every archetype.
func (q *Query) Match(mask Bitmask) bool {
	return mask.ContainsAll(q.require) && !mask.ContainsAny(q.exclude)
}

// Archetypes returns the set of archetypes matched at the last prepare.
// The set is owned by this query and refreshed every pass.
func (q *Query) Archetypes() *ArchetypeSet {
	return &q.matched
}

// prepare recomputes the matched archetype set against the current storage
// snapshot. Pure in the snapshot: re-running it against unchanged storage
// yields the same set. An empty predicate resolves to the "all" sentinel
// rather than enumerating, so resource-only and unfiltered queries stay
// allocation-free as archetype counts grow.
func (q *Query) prepare(src ArchetypeSource) {
	q.matched.Reset()
	if q.empty {
		q.matched.SetAll()
		return
	}
	n := src.ArchetypeCount()
	for id := 0; id < n; id++ {
		if q.Match(src.ArchetypeMask(ArchetypeID(id))) {
			q.matched.Set(ArchetypeID(id))
		}
	}
}

// Each calls fn for every entity in the query's matched archetypes, through
// the restricted view the system was handed. Entities spawned during the
// current pass are deferred and therefore never observed here.
func (q *Query) Each(v *View, fn func(Entity)) {
	w := v.world
	if q.matched.All() {
		n := w.ArchetypeCount()
		for id := 0; id < n; id++ {
			for _, e := range w.archetypeEntities(ArchetypeID(id)) {
				fn(e)
			}
		}
		return
	}
	for _, id := range q.matched.IDs() {
		for _, e := range w.archetypeEntities(id) {
			fn(e)
		}
	}
}
