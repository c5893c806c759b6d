package parsec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldSpawnGroupsByArchetype(t *testing.T) {
	w := NewWorld()

	e1 := w.Spawn(&Position{X: 1}, &Velocity{DX: 1})
	e2 := w.Spawn(&Position{X: 2}, &Velocity{DX: 2})
	e3 := w.Spawn(&Position{X: 3})

	a1, ok := w.ArchetypeOf(e1)
	require.True(t, ok)
	a2, ok := w.ArchetypeOf(e2)
	require.True(t, ok)
	a3, ok := w.ArchetypeOf(e3)
	require.True(t, ok)

	assert.Equal(t, a1, a2, "same component-type set shares one archetype")
	assert.NotEqual(t, a1, a3)
	assert.Equal(t, 2, w.ArchetypeCount())
	assert.Equal(t, 3, w.EntityCount())

	mask := w.ArchetypeMask(a1)
	assert.True(t, mask.Has(componentID[Position]()))
	assert.True(t, mask.Has(componentID[Velocity]()))
	mask = w.ArchetypeMask(a3)
	assert.True(t, mask.Has(componentID[Position]()))
	assert.False(t, mask.Has(componentID[Velocity]()))
}

func TestWorldComponentLookup(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(&Position{X: 4, Y: 2})

	ptr, ok := w.Component(e, componentID[Position]())
	require.True(t, ok)
	pos := (*Position)(ptr)
	assert.Equal(t, 4.0, pos.X)
	assert.Equal(t, 2.0, pos.Y)

	_, ok = w.Component(e, componentID[Velocity]())
	assert.False(t, ok)
	_, ok = w.Component(Entity(9999), componentID[Position]())
	assert.False(t, ok)
}

func TestWorldInsertMigratesArchetype(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(&Position{})
	before, _ := w.ArchetypeOf(e)

	require.True(t, w.Insert(e, &Velocity{DX: 1}))
	after, _ := w.ArchetypeOf(e)
	assert.NotEqual(t, before, after)

	mask := w.ArchetypeMask(after)
	assert.True(t, mask.Has(componentID[Position]()))
	assert.True(t, mask.Has(componentID[Velocity]()))

	// Old archetype no longer lists the entity.
	assert.NotContains(t, w.archetypeEntities(before), e)
	assert.Contains(t, w.archetypeEntities(after), e)
}

func TestWorldRemoveMigratesArchetype(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(&Position{}, &Velocity{})
	before, _ := w.ArchetypeOf(e)

	require.True(t, w.Remove(e, componentID[Velocity]()))
	after, _ := w.ArchetypeOf(e)
	assert.NotEqual(t, before, after)

	_, ok := w.Component(e, componentID[Velocity]())
	assert.False(t, ok)

	assert.False(t, w.Remove(e, componentID[Velocity]()), "component already gone")
	assert.False(t, w.Remove(Entity(9999), componentID[Velocity]()))
}

func TestWorldDespawn(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(&Position{})
	arch, _ := w.ArchetypeOf(e)

	require.True(t, w.Despawn(e))
	assert.False(t, w.Despawn(e))
	assert.Equal(t, 0, w.EntityCount())
	assert.Empty(t, w.archetypeEntities(arch))

	_, ok := w.ArchetypeOf(e)
	assert.False(t, ok)
}

func TestWorldIDsDistinct(t *testing.T) {
	a, b := NewWorld(), NewWorld()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEmpty(t, a.ID().String())
}

func TestWorldSpawnRejectsNonPointer(t *testing.T) {
	w := NewWorld()
	assert.Panics(t, func() {
		w.Spawn(Position{})
	})
}
