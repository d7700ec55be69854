// Package judge decides what a player input hits and when live entities time out.
package judge

import (
	"math"

	"github.com/robmorgan/hellsmelody/logger"
	"github.com/robmorgan/hellsmelody/rhythm"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/robmorgan/hellsmelody/sink"
	"github.com/robmorgan/hellsmelody/timing"
	"github.com/sirupsen/logrus"
)

// Disposition is what happened to an input.
type Disposition int

const (
	// Ignored inputs had no effect at all, e.g. too early for a one-sided window or while paused.
	Ignored Disposition = iota
	// Judged inputs resolved an entity as a hit.
	Judged
	// Missed inputs counted as a miss, with or without consuming an entity.
	Missed
	// AlreadyResolved inputs arrived for a target that already had its outcome.
	AlreadyResolved
)

func (d Disposition) String() string {
	switch d {
	case Judged:
		return "judged"
	case Missed:
		return "missed"
	case AlreadyResolved:
		return "already-resolved"
	default:
		return "ignored"
	}
}

// Verdict is the result of judging one input.
type Verdict struct {
	Disposition Disposition
	Rank        timing.Rank
	AbsDiff     float64
	// Entity is the candidate that was considered, nil when there was none.
	Entity *schedule.Entity
}

// Judge classifies inputs against the active set. It is not safe for concurrent use; callers
// serialize Evaluate and SweepTimeouts.
type Judge struct {
	windows timing.Windows
	active  *schedule.ActiveSet
	sinks   *sink.Sinks
	pauser  rhythm.Pauser

	// OnTimeout is called for every entity the sweep marks as missed.
	OnTimeout func(e *schedule.Entity)
	// OnJudged is called for every entity resolved as a hit by an input.
	OnJudged func(e *schedule.Entity, rank timing.Rank)
}

// New creates a judge over the given active set.
func New(windows timing.Windows, active *schedule.ActiveSet, sinks *sink.Sinks, pauser rhythm.Pauser) *Judge {
	if pauser == nil {
		pauser = rhythm.NeverPaused{}
	}
	return &Judge{
		windows: windows,
		active:  active,
		sinks:   sinks,
		pauser:  pauser,
	}
}

func (j *Judge) Windows() timing.Windows { return j.windows }

// SweepTimeouts marks every unresolved entity whose miss cutoff has passed as missed and returns
// how many it resolved. Entities resolved earlier are skipped, so repeated sweeps never
// report a miss twice.
func (j *Judge) SweepTimeouts(now float64) int {
	if j.pauser.IsPaused() {
		return 0
	}

	n := 0
	for _, e := range j.active.Active() {
		if e.Resolved() || !j.windows.Expired(e.TargetTime, now) {
			continue
		}
		if err := e.Resolve(schedule.Missed, timing.Miss, now); err != nil {
			continue
		}
		n++

		logger.GetProjectLogger().WithFields(logrus.Fields{
			"id":     e.ID,
			"kind":   e.Kind.String(),
			"target": e.TargetTime,
			"now":    now,
		}).Debug("Entity timed out")

		j.sinks.Miss()
		j.sinks.Judgement(e, timing.Miss)
		if j.OnTimeout != nil {
			j.OnTimeout(e)
		}
		j.active.Retire(e, now)
	}
	return n
}

// Evaluate judges an input at song time now against the nearest unresolved entity. Every input
// either resolves exactly one entity as a hit or counts as a miss. A candidate outside the good
// window stays unresolved and can still be hit or time out.
func (j *Judge) Evaluate(now float64) Verdict {
	if j.pauser.IsPaused() {
		return Verdict{Disposition: Ignored}
	}

	candidate, absDiff := j.nearest(now)
	if candidate == nil {
		j.sinks.Miss()
		j.sinks.Judgement(nil, timing.Miss)
		return Verdict{Disposition: Missed, Rank: timing.Miss}
	}

	rank := j.windows.Classify(absDiff)
	if !rank.IsHit() {
		j.sinks.Miss()
		j.sinks.Judgement(nil, timing.Miss)
		return Verdict{Disposition: Missed, Rank: timing.Miss, AbsDiff: absDiff, Entity: candidate}
	}

	if err := candidate.Resolve(schedule.Hit, rank, now); err != nil {
		return Verdict{Disposition: AlreadyResolved, Rank: candidate.Rank(), AbsDiff: absDiff, Entity: candidate}
	}

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"id":      candidate.ID,
		"rank":    rank.String(),
		"absDiff": absDiff,
	}).Debug("Input judged")

	j.sinks.Hit(rank, absDiff)
	j.sinks.Judgement(candidate, rank)
	if j.OnJudged != nil {
		j.OnJudged(candidate, rank)
	}
	j.active.Retire(candidate, now)

	return Verdict{Disposition: Judged, Rank: rank, AbsDiff: absDiff, Entity: candidate}
}

// EvaluateOneSided classifies an input against a single target without touching the active set.
// Inputs earlier than the good window are ignored instead of missed.
func (j *Judge) EvaluateOneSided(target, now float64) Verdict {
	if j.pauser.IsPaused() {
		return Verdict{Disposition: Ignored}
	}
	return OneSided(j.windows, target, now)
}

// OneSided is the one-sided classification used for parries.
func OneSided(w timing.Windows, target, now float64) Verdict {
	rank, absDiff, ok := w.ClassifyOneSided(target, now)
	if !ok {
		return Verdict{Disposition: Ignored, AbsDiff: absDiff}
	}
	if !rank.IsHit() {
		return Verdict{Disposition: Missed, Rank: timing.Miss, AbsDiff: absDiff}
	}
	return Verdict{Disposition: Judged, Rank: rank, AbsDiff: absDiff}
}

// Nearest unresolved entity; the first in spawn order wins ties.
func (j *Judge) nearest(now float64) (*schedule.Entity, float64) {
	var best *schedule.Entity
	bestDiff := math.Inf(1)
	for _, e := range j.active.Active() {
		if e.Resolved() {
			continue
		}
		if d := e.AbsDiff(now); d < bestDiff {
			best, bestDiff = e, d
		}
	}
	return best, bestDiff
}
