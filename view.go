package parsec

import "unsafe"

// View is a read/write-gated facade over the world, scoped to one system's
// declared component permissions and its current archetype filter. It never
// outlives one pass.
//
// Accessors fail fast on undeclared component types: a system must never
// observe or mutate data it did not declare. Entities in archetypes outside
// the filter are treated as not found rather than as errors, since a query
// legitimately only sees matching entities.
type View struct {
	world      *World
	components *Permissions[ComponentID]
	archetypes *ArchetypeSet
}

// World returns the world identity this view is scoped to.
func (v *View) World() WorldID {
	return v.world.ID()
}

// Visible reports whether the entity's archetype is inside the view's
// current archetype filter.
func (v *View) Visible(e Entity) bool {
	arch, ok := v.world.ArchetypeOf(e)
	return ok && v.archetypes.Has(arch)
}

// Get returns a shared read handle to an entity's component of type T, or
// nil if the entity is not visible through the view or lacks the component.
// The run aborts with an access violation if the system did not declare
// read or write access to T.
func Get[T any](v *View, e Entity) *T {
	id := componentID[T]()
	if !v.components.HasRead(id) {
		panic(&AccessError{
			Category:  CategoryComponent,
			Name:      ComponentName(id),
			Attempted: AccessRead,
			Declared:  v.components.Kind(id),
		})
	}
	return (*T)(v.slot(e, id))
}

// GetMut returns an exclusive write handle to an entity's component of type
// T, or nil if the entity is not visible through the view or lacks the
// component. The run aborts with an access violation if the system did not
// declare write access to T.
func GetMut[T any](v *View, e Entity) *T {
	id := componentID[T]()
	if !v.components.HasWrite(id) {
		panic(&AccessError{
			Category:  CategoryComponent,
			Name:      ComponentName(id),
			Attempted: AccessWrite,
			Declared:  v.components.Kind(id),
		})
	}
	return (*T)(v.slot(e, id))
}

// slot resolves an entity's component slot through the archetype filter.
func (v *View) slot(e Entity, id ComponentID) unsafe.Pointer {
	arch, ok := v.world.ArchetypeOf(e)
	if !ok || !v.archetypes.Has(arch) {
		return nil
	}
	p, ok := v.world.Component(e, id)
	if !ok {
		return nil
	}
	return p
}
