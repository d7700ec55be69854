package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pausedFlag bool

func (p *pausedFlag) IsPaused() bool { return bool(*p) }

func notesAt(times ...float64) []Entry {
	entries := make([]Entry, 0, len(times))
	for _, t := range times {
		entries = append(entries, Entry{TargetTime: t, Kind: KindNote})
	}
	return entries
}

func TestLoadRejectsEmpty(t *testing.T) {
	t.Parallel()

	s := New("empty", nil)
	err := s.Load(nil)
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestLoadRejectsBadVolley(t *testing.T) {
	t.Parallel()

	s := New("volley", nil)
	err := s.Load([]Entry{{TargetTime: 1, Kind: KindVolley}})
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestLoadSortsStably(t *testing.T) {
	t.Parallel()

	s := New("sort", nil)
	require.NoError(t, s.Load([]Entry{
		{TargetTime: 2, Lane: 0},
		{TargetTime: 1, Lane: 1},
		{TargetTime: 2, Lane: 2},
	}))

	entries := s.Entries()
	assert.Equal(t, 1, entries[0].Lane)
	assert.Equal(t, 0, entries[1].Lane)
	assert.Equal(t, 2, entries[2].Lane)
}

func TestTickActivatesEachEntryOnce(t *testing.T) {
	t.Parallel()

	s := New("notes", nil)
	s.SetLead(KindLead(1.0))
	require.NoError(t, s.Load(notesAt(2.0, 3.0)))

	var seen []float64
	s.Handle(KindNote, func(e Entry, now float64) {
		seen = append(seen, e.TargetTime)
	})

	assert.Equal(t, 0, s.Tick(0.5))
	assert.Equal(t, 1, s.Tick(1.0))
	assert.Equal(t, 0, s.Tick(1.5))
	assert.Equal(t, 1, s.Tick(2.0))
	assert.Equal(t, 0, s.Tick(10))

	assert.Equal(t, []float64{2.0, 3.0}, seen)
	assert.True(t, s.Done())
}

func TestTickCatchesUpInOneCall(t *testing.T) {
	t.Parallel()

	s := New("burst", nil)
	require.NoError(t, s.Load(notesAt(1, 1.1, 1.2, 5)))

	var seen []float64
	s.Handle(KindNote, func(e Entry, now float64) {
		seen = append(seen, e.TargetTime)
	})

	assert.Equal(t, 3, s.Tick(1.5))
	assert.Equal(t, []float64{1, 1.1, 1.2}, seen)
	assert.Equal(t, 1, s.Remaining())
}

func TestTickIsGatedByPause(t *testing.T) {
	t.Parallel()

	paused := pausedFlag(true)
	s := New("paused", &paused)
	require.NoError(t, s.Load(notesAt(1)))

	assert.Equal(t, 0, s.Tick(5))
	paused = false
	assert.Equal(t, 1, s.Tick(5))
}

func TestActivationOrderFollowsTargets(t *testing.T) {
	t.Parallel()

	// the clash has a longer lead than the note but a later target
	s := New("mixed", nil)
	s.SetLead(KindLead(0.5))
	require.NoError(t, s.Load([]Entry{
		{TargetTime: 3, Kind: KindNote},
		{TargetTime: 3.2, Kind: KindClash, Windup: 1.5},
	}))

	var kinds []Kind
	record := func(e Entry, now float64) { kinds = append(kinds, e.Kind) }
	s.Handle(KindNote, record)
	s.Handle(KindClash, record)

	assert.Equal(t, 0, s.Tick(2.0))
	assert.Equal(t, 2, s.Tick(2.5))
	assert.Equal(t, []Kind{KindNote, KindClash}, kinds)
}

func TestRewind(t *testing.T) {
	t.Parallel()

	s := New("rewind", nil)
	require.NoError(t, s.Load(notesAt(1, 2)))
	s.Tick(5)
	require.True(t, s.Done())

	s.Rewind()
	assert.Equal(t, 2, s.Remaining())
	next, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, 1.0, next.TargetTime)
	assert.Equal(t, 2.0, s.LastTarget())
}

func TestKindLead(t *testing.T) {
	t.Parallel()

	lead := KindLead(1.1)
	assert.Equal(t, 1.1, lead(Entry{Kind: KindNote}))
	assert.Equal(t, 0.7, lead(Entry{Kind: KindClash, Windup: 0.7}))
	assert.Equal(t, 0.0, lead(Entry{Kind: KindVolley}))
	assert.Equal(t, 0.9, Entry{TargetTime: 2}.ActivationTime(1.1))
}
