// Package score keeps the points, combo and timing statistics of a run.
package score

import (
	"math"
	"sync"

	"github.com/robmorgan/hellsmelody/timing"
)

// Points awarded per rank.
var Points = map[timing.Rank]int{
	timing.Perfect: 1000,
	timing.Great:   700,
	timing.Good:    400,
}

// Summary is a point-in-time copy of a tracker.
type Summary struct {
	Score    int
	Combo    int
	MaxCombo int
	Counts   map[timing.Rank]int
	// Mean and Stdev of the absolute timing error of hits, in seconds
	Mean  float64
	Stdev float64
}

// Tracker is the default score sink. It is safe to read from another goroutine while a run
// reports to it.
type Tracker struct {
	mu sync.RWMutex

	score    int
	combo    int
	maxCombo int
	counts   map[timing.Rank]int
	diffs    []float64
	mean     float64
	stdev    float64
}

func NewTracker() *Tracker {
	return &Tracker{counts: map[timing.Rank]int{}}
}

func (t *Tracker) OnHit(rank timing.Rank, absDiff float64) {
	if !rank.IsHit() {
		t.OnMiss()
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.score += Points[rank]
	t.combo++
	if t.combo > t.maxCombo {
		t.maxCombo = t.combo
	}
	t.counts[rank]++
	t.diffs = append(t.diffs, absDiff)
	t.updateStats()
}

func (t *Tracker) OnMiss() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.combo = 0
	t.counts[timing.Miss]++
}

// Sample standard deviation over all hits so far.
func (t *Tracker) updateStats() {
	n := len(t.diffs)
	sum := 0.0
	for _, d := range t.diffs {
		sum += d
	}
	t.mean = sum / float64(n)
	if n < 2 {
		t.stdev = 0
		return
	}

	t.stdev = 0.0
	for _, d := range t.diffs {
		xi := d - t.mean
		t.stdev += xi * xi
	}
	t.stdev /= float64(n - 1)
	t.stdev = math.Sqrt(t.stdev)
}

// Reset clears the tracker for a retry.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.score, t.combo, t.maxCombo = 0, 0, 0
	t.counts = map[timing.Rank]int{}
	t.diffs = nil
	t.mean, t.stdev = 0, 0
}

func (t *Tracker) Summary() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	counts := make(map[timing.Rank]int, len(t.counts))
	for k, v := range t.counts {
		counts[k] = v
	}
	return Summary{
		Score:    t.score,
		Combo:    t.combo,
		MaxCombo: t.maxCombo,
		Counts:   counts,
		Mean:     t.mean,
		Stdev:    t.stdev,
	}
}
