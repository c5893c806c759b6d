package parsec

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func mustBuild(t *testing.T, b *SystemBuilder, fn SystemFunc) Runnable {
	t.Helper()
	sys, err := b.Build(fn)
	require.NoError(t, err)
	return sys
}

// A writer is never batched with readers of the same component; readers
// share a batch.
func TestBatchesSeparateWriterFromReaders(t *testing.T) {
	writer := mustBuild(t, NewSystem("pos-writer").WithQuery(NewQuery(Write[Position]())), noopBody)
	reader1 := mustBuild(t, NewSystem("pos-reader-1").WithQuery(NewQuery(Read[Position]())), noopBody)
	reader2 := mustBuild(t, NewSystem("pos-reader-2").WithQuery(NewQuery(Read[Position]())), noopBody)

	sched := NewSchedule().
		AddSystem(writer, Default).
		AddSystem(reader1, Default).
		AddSystem(reader2, Default)

	batches := sched.Batches(Default)
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"pos-reader-1", "pos-reader-2"}, batches[0])
	assert.Equal(t, []string{"pos-writer"}, batches[1])
}

func TestBatchesResourceWriteSerializes(t *testing.T) {
	a := mustBuild(t, NewSystem("score-bump").WithAccess(WriteRes[ScoreRes]()), noopBody)
	b := mustBuild(t, NewSystem("score-read").WithAccess(ReadRes[ScoreRes]()), noopBody)

	sched := NewSchedule().AddSystem(a, Default).AddSystem(b, Default)

	batches := sched.Batches(Default)
	require.Len(t, batches, 2)
	for _, batch := range batches {
		assert.Len(t, batch, 1)
	}
}

func TestExecuteRunsMovement(t *testing.T) {
	w := NewWorld()
	res := NewResources()
	e := w.Spawn(&Position{X: 0}, &Velocity{DX: 2, DY: 1})
	w.Spawn(&Position{X: 100}, &Static{})

	q := NewQuery(Write[Position](), Read[Velocity](), Without[Static]())
	movement := mustBuild(t, NewSystem("movement").WithQuery(q),
		func(rv *ResourceView, queries []*Query, cmd *CommandBuffer, view *View) {
			q.Each(view, func(e Entity) {
				pos := GetMut[Position](view, e)
				vel := Get[Velocity](view, e)
				pos.X += vel.DX
				pos.Y += vel.DY
			})
		})

	sched := NewSchedule(WithWorkers(2), WithLogger(zap.NewNop())).
		AddSystem(movement, Default)

	require.NoError(t, sched.Execute(w, res))
	require.NoError(t, sched.Execute(w, res))

	ptr, _ := w.Component(e, componentID[Position]())
	pos := (*Position)(ptr)
	assert.Equal(t, 4.0, pos.X)
	assert.Equal(t, 2.0, pos.Y)
}

func TestExecuteIsolatesFailingSystem(t *testing.T) {
	w := NewWorld()
	res := NewResources()
	e := w.Spawn(&Position{}, &Velocity{DX: 1})

	q := NewQuery(Write[Position](), Read[Velocity]())
	movement := mustBuild(t, NewSystem("movement").WithQuery(q),
		func(rv *ResourceView, queries []*Query, cmd *CommandBuffer, view *View) {
			q.Each(view, func(e Entity) {
				GetMut[Position](view, e).X += Get[Velocity](view, e).DX
			})
		})
	broken := mustBuild(t, NewSystem("broken").WithAccess(ReadRes[ConfigRes]()), noopBody)

	sched := NewSchedule().
		AddSystem(movement, Default).
		AddSystem(broken, Default)

	err := sched.Execute(w, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResourceMissing)

	ptr, _ := w.Component(e, componentID[Position]())
	assert.Equal(t, 1.0, (*Position)(ptr).X, "healthy systems complete the pass")
}

func TestExecuteDefersBufferedMutations(t *testing.T) {
	w := NewWorld()
	res := NewResources()
	w.Spawn(&Position{}, &Velocity{})

	q := NewQuery(Read[Position](), Read[Velocity]())
	var visibleDuringPass int
	spawner := mustBuild(t, NewSystem("spawner").WithQuery(q),
		func(rv *ResourceView, queries []*Query, cmd *CommandBuffer, view *View) {
			visibleDuringPass = 0
			q.Each(view, func(Entity) { visibleDuringPass++ })
			cmd.Spawn(&Position{}, &Velocity{})
		})

	sched := NewSchedule().AddSystem(spawner, Default)

	require.NoError(t, sched.Execute(w, res))
	assert.Equal(t, 1, visibleDuringPass)
	assert.Equal(t, 2, w.EntityCount(), "buffered spawn lands after the pass")

	require.NoError(t, sched.Execute(w, res))
	assert.Equal(t, 2, visibleDuringPass, "next prepare picks the new entity up")
	assert.Equal(t, 3, w.EntityCount())
}

func TestExecuteRunsStagesInOrder(t *testing.T) {
	w := NewWorld()
	res := NewResources()

	var mu sync.Mutex
	var order []string
	record := func(name string) SystemFunc {
		return func(rv *ResourceView, queries []*Query, cmd *CommandBuffer, view *View) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	sched := NewSchedule().
		AddSystem(mustBuild(t, NewSystem("cleanup"), record("cleanup")), After).
		AddSystem(mustBuild(t, NewSystem("simulate"), record("simulate")), Default).
		AddSystem(mustBuild(t, NewSystem("input"), record("input")), Before)

	require.NoError(t, sched.Execute(w, res))
	assert.Equal(t, []string{"input", "simulate", "cleanup"}, order)
}

func TestResourceOnlySystemTouchesAllSentinel(t *testing.T) {
	w := NewWorld()
	w.Spawn(&Position{})

	sys := mustBuild(t, NewSystem("bookkeeper").WithAccess(WriteRes[ScoreRes]()), noopBody)
	sys.Prepare(w)
	assert.True(t, sys.AccessedArchetypes().All())
}

func TestPrepareRefreshesAccessedArchetypes(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(&Position{}, &Velocity{})
	arch, _ := w.ArchetypeOf(e)

	q := NewQuery(Read[Position](), Read[Velocity]())
	sys := mustBuild(t, NewSystem("watcher").WithQuery(q), noopBody)

	sys.Prepare(w)
	assert.True(t, sys.AccessedArchetypes().Has(arch))
	assert.Equal(t, 1, sys.AccessedArchetypes().Count())

	e2 := w.Spawn(&Position{}, &Velocity{}, &Health{})
	arch2, _ := w.ArchetypeOf(e2)
	assert.False(t, sys.AccessedArchetypes().Has(arch2))

	sys.Prepare(w)
	assert.True(t, sys.AccessedArchetypes().Has(arch2))
}

func TestExecuteRecoversFromPanic(t *testing.T) {
	w := NewWorld()
	res := NewResources()

	var ran bool
	sched := NewSchedule().
		AddSystem(mustBuild(t, NewSystem("bomb"), func(rv *ResourceView, queries []*Query, cmd *CommandBuffer, view *View) {
			panic("boom")
		}), Default).
		AddSystem(mustBuild(t, NewSystem("survivor"), func(rv *ResourceView, queries []*Query, cmd *CommandBuffer, view *View) {
			ran = true
		}), Default)

	err := sched.Execute(w, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bomb")
	assert.True(t, ran)
}
