package parsec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeDisjointDeclarations(t *testing.T) {
	q := NewQuery(Write[Position](), Read[Velocity]())
	sys, err := NewSystem("mover").
		WithQuery(q).
		WithAccess(ReadRes[ConfigRes](), WriteRes[ScoreRes]()).
		Build(noopBody)
	require.NoError(t, err)

	resReads, compReads := sys.Reads()
	resWrites, compWrites := sys.Writes()

	assert.Equal(t, []ResourceID{resourceID[ConfigRes]()}, resReads)
	assert.Equal(t, []ResourceID{resourceID[ScoreRes]()}, resWrites)
	assert.Equal(t, []ComponentID{componentID[Velocity]()}, compReads)
	assert.Equal(t, []ComponentID{componentID[Position]()}, compWrites)
}

func TestDeclarationConflictResource(t *testing.T) {
	_, err := NewSystem("greedy").
		WithAccess(ReadRes[ConfigRes](), WriteRes[ConfigRes]()).
		Build(noopBody)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeclarationConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "greedy", conflict.System)
	assert.Equal(t, CategoryResource, conflict.Category)
	assert.Equal(t, "ConfigRes", conflict.Name)
}

func TestDeclarationConflictAcrossQueries(t *testing.T) {
	_, err := NewSystem("split").
		WithQuery(NewQuery(Read[Position]())).
		WithQuery(NewQuery(Write[Position]())).
		Build(noopBody)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeclarationConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, CategoryComponent, conflict.Category)
	assert.Equal(t, "Position", conflict.Name)
}

func TestDuplicateReadsAcrossQueriesAllowed(t *testing.T) {
	sys, err := NewSystem("twin-readers").
		WithQuery(NewQuery(Read[Position]())).
		WithQuery(NewQuery(Read[Position](), Read[Velocity]())).
		Build(noopBody)
	require.NoError(t, err)

	_, compReads := sys.Reads()
	assert.Len(t, compReads, 2)
}

func TestNoneComposesAsIdentity(t *testing.T) {
	sys, err := NewSystem("idle").
		WithAccess(None(), None()).
		Build(noopBody)
	require.NoError(t, err)

	resReads, compReads := sys.Reads()
	resWrites, compWrites := sys.Writes()
	assert.Empty(t, resReads)
	assert.Empty(t, compReads)
	assert.Empty(t, resWrites)
	assert.Empty(t, compWrites)
	assert.Equal(t, "", None().Name())
}

func TestFilterClausesGrantNoAccess(t *testing.T) {
	sys, err := NewSystem("filtered").
		WithQuery(NewQuery(Read[Position](), With[Health](), Without[Static]())).
		Build(noopBody)
	require.NoError(t, err)

	_, compReads := sys.Reads()
	_, compWrites := sys.Writes()
	assert.Equal(t, []ComponentID{componentID[Position]()}, compReads)
	assert.Empty(t, compWrites)
}

func TestQueryRejectsResourceDeclarations(t *testing.T) {
	assert.Panics(t, func() {
		NewQuery(ReadRes[ConfigRes]())
	})
}

func TestSystemAccessConflicts(t *testing.T) {
	writer, err := NewSystem("writer").
		WithQuery(NewQuery(Write[Position]())).
		Build(noopBody)
	require.NoError(t, err)

	reader, err := NewSystem("reader").
		WithQuery(NewQuery(Read[Position]())).
		Build(noopBody)
	require.NoError(t, err)

	other, err := NewSystem("other").
		WithQuery(NewQuery(Read[Velocity]())).
		Build(noopBody)
	require.NoError(t, err)

	assert.True(t, writer.Access().Conflicts(reader.Access()))
	assert.True(t, reader.Access().Conflicts(writer.Access()))
	assert.False(t, reader.Access().Conflicts(other.Access()))
	assert.False(t, writer.Access().Conflicts(other.Access()))
}

func TestBuildRequiresBody(t *testing.T) {
	_, err := NewSystem("empty").BuildSystem(nil)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrDeclarationConflict))
}
