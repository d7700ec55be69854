package schedule

import (
	"testing"

	"github.com/robmorgan/hellsmelody/pool"
	"github.com/robmorgan/hellsmelody/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSet(grace float64) (*ActiveSet, *pool.Pool[*Entity]) {
	p := pool.New(4, func() *Entity { return &Entity{} })
	return NewActiveSet(p, grace), p
}

func TestSpawnAndImmediateRetire(t *testing.T) {
	t.Parallel()

	set, p := newTestSet(0)
	var released []uint64
	set.OnRelease = func(e *Entity) { released = append(released, e.ID) }

	e := set.Spawn(KindNote, 0, 2.0, 1.0, 6, 1.0)
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, 3, p.Available())

	require.NoError(t, e.Resolve(Hit, timing.Perfect, 2.0))
	set.Retire(e, 2.0)

	assert.Equal(t, 0, set.Len())
	assert.Equal(t, 4, p.Available())
	assert.Len(t, released, 1)
}

func TestRetireWithGrace(t *testing.T) {
	t.Parallel()

	set, _ := newTestSet(0.5)
	e := set.Spawn(KindNote, 0, 2.0, 1.0, 6, 1.0)
	require.NoError(t, e.Resolve(Missed, timing.Perfect, 2.2))
	assert.Equal(t, timing.Miss, e.Rank())

	set.Retire(e, 2.2)
	set.Retire(e, 2.3)
	assert.Equal(t, 0, set.Sweep(2.6))
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, 0, set.Unresolved())
	assert.Equal(t, 1, set.Sweep(2.7))
	assert.Equal(t, 0, set.Len())
}

func TestResolveTwiceFails(t *testing.T) {
	t.Parallel()

	e := &Entity{}
	e.Init(1, KindNote, 0, 2, 1, 6, 1)
	require.NoError(t, e.Resolve(Hit, timing.Good, 2.1))
	require.ErrorIs(t, e.Resolve(Missed, timing.Miss, 2.2), ErrAlreadyResolved)
	assert.Equal(t, Hit, e.Outcome())
	assert.Equal(t, timing.Good, e.Rank())
}

func TestRecycledEntityIsReset(t *testing.T) {
	t.Parallel()

	set, _ := newTestSet(0)
	e := set.Spawn(KindNote, 0, 2.0, 1.0, 6, 1.0)
	first := e.ID
	require.NoError(t, e.Resolve(Hit, timing.Good, 2.0))
	set.Retire(e, 2.0)

	again := set.Spawn(KindNote, 1, 3.0, 1.0, 6, 2.0)
	assert.False(t, again.Resolved())
	assert.NotEqual(t, first, again.ID)
	assert.Equal(t, 1, again.Lane)
	assert.InDelta(t, 6.0, again.Offset(2.0), 1e-9)
}

func TestActiveReturnsSnapshot(t *testing.T) {
	t.Parallel()

	set, _ := newTestSet(0)
	a := set.Spawn(KindNote, 0, 2.0, 1.0, 6, 1.0)
	set.Spawn(KindNote, 0, 2.5, 1.0, 6, 1.5)

	snapshot := set.Active()
	require.NoError(t, a.Resolve(Hit, timing.Perfect, 2.0))
	set.Retire(a, 2.0)

	assert.Len(t, snapshot, 2)
	assert.Equal(t, 1, set.Len())

	set.Clear()
	assert.Equal(t, 0, set.Len())
}
