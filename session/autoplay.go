package session

import (
	"math"
	"math/rand"

	"github.com/robmorgan/hellsmelody/config"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/robmorgan/hellsmelody/timing"
)

// autoplayer presses for the player. When a target comes within its window it draws a rank
// from the configured distribution and presses at an offset inside that rank's band. A target
// drawn as a miss is locked and left to time out.
type autoplayer struct {
	cfg     config.AutoplayConfig
	windows timing.Windows
	rng     *rand.Rand
	locked  uint64
}

func newAutoplayer(cfg config.AutoplayConfig, windows timing.Windows, rng *rand.Rand) *autoplayer {
	return &autoplayer{cfg: cfg, windows: windows, rng: rng}
}

func (a *autoplayer) reset() { a.locked = 0 }

func (a *autoplayer) pickRank() timing.Rank {
	sum := a.cfg.Perfect + a.cfg.Great + a.cfg.Good + a.cfg.Miss
	if sum <= 0 {
		return timing.Perfect
	}
	r := a.rng.Intn(sum) + 1
	if r -= a.cfg.Perfect; r <= 0 {
		return timing.Perfect
	}
	if r -= a.cfg.Great; r <= 0 {
		return timing.Great
	}
	if r -= a.cfg.Good; r <= 0 {
		return timing.Good
	}
	return timing.Miss
}

// pressTime returns a press time around target that lands in rank's band.
func (a *autoplayer) pressTime(target float64, rank timing.Rank) float64 {
	w := a.windows
	var lo, hi float64
	switch rank {
	case timing.Perfect:
		lo, hi = 0, w.Perfect*0.9
	case timing.Great:
		lo, hi = w.Perfect+0.001, w.Great*0.95
	default:
		lo, hi = w.Great+0.001, w.Good*0.95
	}
	offset := lo + a.rng.Float64()*(hi-lo)
	if a.rng.Float64() < 0.5 {
		offset = -offset
	}
	return target + offset
}

// decide returns the press time for a target, or false when it should be left alone.
func (a *autoplayer) decide(id uint64, target, now float64) (float64, bool) {
	if id == a.locked || math.Abs(target-now) > a.cfg.Window {
		return 0, false
	}
	rank := a.pickRank()
	if rank == timing.Miss {
		a.locked = id
		return 0, false
	}
	return a.pressTime(target, rank), true
}

func (s *Session) autoplay(now float64) {
	if s.encounter.Accepting() {
		actor := s.encounter.Actor()
		if at, ok := s.auto.decide(actor.ID, s.encounter.TargetTime(), now); ok {
			s.encounter.Parry(at)
		}
	}

	var best *schedule.Entity
	bestDiff := math.Inf(1)
	for _, e := range s.active.Active() {
		if e.Resolved() || e.ID == s.auto.locked {
			continue
		}
		if d := e.AbsDiff(now); d < bestDiff {
			best, bestDiff = e, d
		}
	}
	if best == nil {
		return
	}
	if at, ok := s.auto.decide(best.ID, best.TargetTime, now); ok {
		s.judge.Evaluate(at)
	}
}
