package parsec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourcesInsertFetch(t *testing.T) {
	res := NewResources()

	_, ok := Fetch[ConfigRes](res)
	assert.False(t, ok)

	cfg := &ConfigRes{Gravity: 9.81}
	Insert(res, cfg)

	got, ok := Fetch[ConfigRes](res)
	require.True(t, ok)
	assert.Same(t, cfg, got)

	// Replacement swaps the value.
	Insert(res, &ConfigRes{Gravity: 1.62})
	got, _ = Fetch[ConfigRes](res)
	assert.Equal(t, 1.62, got.Gravity)
}

func TestMissingResourceFailsRun(t *testing.T) {
	w := NewWorld()
	res := NewResources()

	sys, err := NewSystem("needs-config").
		WithAccess(ReadRes[ConfigRes]()).
		Build(func(rv *ResourceView, queries []*Query, cmd *CommandBuffer, view *View) {
			t.Fatal("body must not run when a declared resource is missing")
		})
	require.NoError(t, err)

	sys.Prepare(w)
	runErr := sys.Run(w, res)
	require.Error(t, runErr)
	assert.ErrorIs(t, runErr, ErrResourceMissing)

	var missing *MissingResourceError
	require.ErrorAs(t, runErr, &missing)
	assert.Equal(t, "needs-config", missing.System)
	assert.Equal(t, "ConfigRes", missing.Name)
}

func TestMissingWriteResourceFailsRun(t *testing.T) {
	w := NewWorld()
	res := NewResources()

	sys, err := NewSystem("needs-score").
		WithAccess(WriteRes[ScoreRes]()).
		Build(noopBody)
	require.NoError(t, err)

	sys.Prepare(w)
	assert.ErrorIs(t, sys.Run(w, res), ErrResourceMissing)

	Insert(res, &ScoreRes{})
	assert.NoError(t, sys.Run(w, res))
}

func TestRegistriesAreStable(t *testing.T) {
	posA := componentID[Position]()
	posB := componentID[Position]()
	assert.Equal(t, posA, posB, "same type, same identity, for the process lifetime")
	assert.NotEqual(t, posA, componentID[Velocity]())

	assert.Equal(t, "Position", ComponentName(posA))
	assert.Equal(t, "Position", ComponentType(posA).Name())

	cfg := resourceID[ConfigRes]()
	assert.Equal(t, cfg, ResourceIDOf[ConfigRes]())
	assert.Equal(t, "ConfigRes", ResourceName(cfg))

	// The two categories mint identities independently.
	assert.GreaterOrEqual(t, RegisteredComponentCount(), 1)
	assert.GreaterOrEqual(t, RegisteredResourceCount(), 1)
}
