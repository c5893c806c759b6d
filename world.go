package parsec

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/google/uuid"
)

// WorldID uniquely identifies a world within the process. Deferred mutation
// commands are tagged with it so a replay step can route them.
type WorldID uuid.UUID

// String returns the canonical string form of the world identity.
func (id WorldID) String() string {
	return uuid.UUID(id).String()
}

// Entity is a unique identifier denoting one logical object with zero or
// more associated components.
type Entity uint64

// archetype groups the entities sharing an identical component-type set.
// Entity order within an archetype is not significant; removal swaps with
// the last element.
type archetype struct {
	id       ArchetypeID
	mask     Bitmask
	entities []Entity
	index    map[Entity]int
}

func (a *archetype) add(e Entity) {
	a.index[e] = len(a.entities)
	a.entities = append(a.entities, e)
}

func (a *archetype) remove(e Entity) {
	i, ok := a.index[e]
	if !ok {
		return
	}
	last := len(a.entities) - 1
	if i != last {
		moved := a.entities[last]
		a.entities[i] = moved
		a.index[moved] = i
	}
	a.entities = a.entities[:last]
	delete(a.index, e)
}

// entityRecord tracks one entity's archetype membership and component slots.
type entityRecord struct {
	arch  *archetype
	slots map[ComponentID]unsafe.Pointer
}

// World is an in-memory archetype storage engine. Archetypes appear on
// demand as entities take on new component-type sets and are identified by
// stable sequential IDs.
//
// The scheduling core consumes it only through the ArchetypeSource boundary
// and per-entity slot lookups; mutations during a pass go through command
// buffers, never directly.
type World struct {
	id uuid.UUID

	mu         sync.RWMutex
	archetypes []*archetype
	byMask     map[Bitmask]*archetype
	entities   map[Entity]*entityRecord
	nextEntity Entity
}

// NewWorld creates an empty world with a fresh identity.
func NewWorld() *World {
	return &World{
		id:       uuid.New(),
		byMask:   make(map[Bitmask]*archetype),
		entities: make(map[Entity]*entityRecord),
	}
}

// ID returns the world's identity.
func (w *World) ID() WorldID {
	return WorldID(w.id)
}

// componentPointer extracts the component ID and raw slot pointer from a
// component value, which must be a non-nil pointer.
func componentPointer(component any) (ComponentID, unsafe.Pointer) {
	v := reflect.ValueOf(component)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic(fmt.Sprintf("parsec: components must be non-nil pointers, got %T", component))
	}
	id := ComponentID(componentTypes.register(v.Type().Elem()))
	return id, v.UnsafePointer()
}

// archetypeFor returns the archetype for a component-type set, creating it
// if this set has not been seen before. Caller must hold w.mu.
func (w *World) archetypeFor(mask Bitmask) *archetype {
	if a, ok := w.byMask[mask]; ok {
		return a
	}
	a := &archetype{
		id:    ArchetypeID(len(w.archetypes)),
		mask:  mask,
		index: make(map[Entity]int),
	}
	w.archetypes = append(w.archetypes, a)
	w.byMask[mask] = a
	return a
}

// Spawn creates an entity owning the given components, each a non-nil
// pointer. The entity lands in the archetype matching its component-type
// set, which is created on first use.
func (w *World) Spawn(components ...any) Entity {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextEntity++
	e := w.nextEntity

	rec := &entityRecord{slots: make(map[ComponentID]unsafe.Pointer, len(components))}
	var mask Bitmask
	for _, c := range components {
		id, ptr := componentPointer(c)
		rec.slots[id] = ptr
		mask.Set(id)
	}
	rec.arch = w.archetypeFor(mask)
	rec.arch.add(e)
	w.entities[e] = rec
	return e
}

// Despawn destroys an entity and all its components.
// Returns false if the entity does not exist.
func (w *World) Despawn(e Entity) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, ok := w.entities[e]
	if !ok {
		return false
	}
	rec.arch.remove(e)
	delete(w.entities, e)
	return true
}

// Insert attaches components to an existing entity, replacing any of the
// same type, and migrates the entity to the matching archetype.
// Returns false if the entity does not exist.
func (w *World) Insert(e Entity, components ...any) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, ok := w.entities[e]
	if !ok {
		return false
	}
	mask := rec.arch.mask
	for _, c := range components {
		id, ptr := componentPointer(c)
		rec.slots[id] = ptr
		mask.Set(id)
	}
	w.migrate(e, rec, mask)
	return true
}

// Remove detaches a component from an entity and migrates it to the
// matching archetype. Returns false if the entity does not exist or does
// not own the component.
func (w *World) Remove(e Entity, id ComponentID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, ok := w.entities[e]
	if !ok {
		return false
	}
	if _, owned := rec.slots[id]; !owned {
		return false
	}
	delete(rec.slots, id)
	mask := rec.arch.mask
	mask.Clear(id)
	w.migrate(e, rec, mask)
	return true
}

// migrate moves an entity to the archetype for mask. Caller must hold w.mu.
func (w *World) migrate(e Entity, rec *entityRecord, mask Bitmask) {
	if rec.arch.mask == mask {
		return
	}
	rec.arch.remove(e)
	rec.arch = w.archetypeFor(mask)
	rec.arch.add(e)
}

// Component returns the raw slot for an entity's component, or false if the
// entity does not exist or does not own the component.
func (w *World) Component(e Entity, id ComponentID) (unsafe.Pointer, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rec, ok := w.entities[e]
	if !ok {
		return nil, false
	}
	ptr, ok := rec.slots[id]
	return ptr, ok
}

// ArchetypeOf returns the archetype an entity currently belongs to.
func (w *World) ArchetypeOf(e Entity) (ArchetypeID, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rec, ok := w.entities[e]
	if !ok {
		return 0, false
	}
	return rec.arch.id, true
}

// ArchetypeCount implements ArchetypeSource.
func (w *World) ArchetypeCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.archetypes)
}

// ArchetypeMask implements ArchetypeSource.
func (w *World) ArchetypeMask(id ArchetypeID) Bitmask {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if int(id) >= len(w.archetypes) {
		return Bitmask{}
	}
	return w.archetypes[id].mask
}

// archetypeEntities returns a snapshot of the entities in an archetype.
func (w *World) archetypeEntities(id ArchetypeID) []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if int(id) >= len(w.archetypes) {
		return nil
	}
	a := w.archetypes[id]
	if len(a.entities) == 0 {
		return nil
	}
	out := make([]Entity, len(a.entities))
	copy(out, a.entities)
	return out
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}
