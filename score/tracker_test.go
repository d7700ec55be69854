package score

import (
	"math"
	"testing"

	"github.com/robmorgan/hellsmelody/timing"
	"github.com/stretchr/testify/assert"
)

func TestTrackerPointsAndCombo(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.OnHit(timing.Perfect, 0.01)
	tr.OnHit(timing.Great, 0.07)
	tr.OnHit(timing.Good, 0.12)
	tr.OnMiss()
	tr.OnHit(timing.Perfect, 0.02)

	s := tr.Summary()
	assert.Equal(t, 3100, s.Score)
	assert.Equal(t, 1, s.Combo)
	assert.Equal(t, 3, s.MaxCombo)
	assert.Equal(t, 2, s.Counts[timing.Perfect])
	assert.Equal(t, 1, s.Counts[timing.Miss])
}

func TestTrackerStats(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.OnHit(timing.Perfect, 0.02)
	assert.InDelta(t, 0.02, tr.Summary().Mean, 1e-12)
	assert.Zero(t, tr.Summary().Stdev)

	tr.OnHit(timing.Great, 0.06)
	s := tr.Summary()
	assert.InDelta(t, 0.04, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.0008), s.Stdev, 1e-12)
}

func TestTrackerMissRankCountsAsMiss(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.OnHit(timing.Perfect, 0)
	tr.OnHit(timing.Miss, 0.3)

	s := tr.Summary()
	assert.Equal(t, 1000, s.Score)
	assert.Zero(t, s.Combo)
	assert.Equal(t, 1, s.Counts[timing.Miss])

	tr.Reset()
	assert.Zero(t, tr.Summary().Score)
	assert.Empty(t, tr.Summary().Counts)
}
