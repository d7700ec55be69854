package rhythm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetronome(t *testing.T) {
	t.Parallel()

	// Create a new metronome with a default of 120 bpm
	m := NewMetronome()

	// The beat interval should be every 500ms
	assert.Equal(t, 0.5, m.GetBeatInterval())

	// Try to change the tempo
	m.SetTempo(128.0, 0)

	// The beat interval should change to be
	assert.Equal(t, 0.46875, m.GetBeatInterval())
}

func TestMetronomeBeatGrid(t *testing.T) {
	t.Parallel()

	m := NewMetronomeAt(120, 1.0)
	require.Equal(t, 1.0, m.TimeOfBeat(1))
	require.Equal(t, 2.5, m.TimeOfBeat(4))
	require.Equal(t, 3, m.BeatAt(2.2))
	require.InDelta(t, 0.4, m.PhaseAt(2.2), 1e-9)
	require.True(t, m.IsDownBeat(1.1))
	require.False(t, m.IsDownBeat(1.6))
	require.True(t, m.IsDownBeat(3.0))
}

func TestSetTempoKeepsPhase(t *testing.T) {
	t.Parallel()

	m := NewMetronomeAt(120, 0)
	now := 2.25
	beat, phase := m.BeatAt(now), m.PhaseAt(now)

	m.SetTempo(90, now)
	require.Equal(t, beat, m.BeatAt(now))
	require.InDelta(t, phase, m.PhaseAt(now), 1e-9)
}
