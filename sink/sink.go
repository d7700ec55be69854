// Package sink declares the collaborators the timing core reports to. All of them are optional:
// a nil sink turns the matching notification into a no-op.
package sink

import (
	"github.com/robmorgan/hellsmelody/geom"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/robmorgan/hellsmelody/timing"
)

// ScoreSink receives the outcome of every judgment.
type ScoreSink interface {
	OnHit(rank timing.Rank, absDiff float64)
	OnMiss()
}

// HealthSink receives damage dealt to one side of the fight.
type HealthSink interface {
	OnDamage(amount int)
}

// Presenter draws entities. Calls are fire-and-forget. ShowJudgement may be called with a nil
// entity for a judgment that did not consume one.
type Presenter interface {
	Spawn(e *schedule.Entity)
	Move(e *schedule.Entity, pos geom.Vec)
	ShowJudgement(e *schedule.Entity, rank timing.Rank)
	Despawn(e *schedule.Entity)
}

// Sinks bundles the collaborators of a run.
type Sinks struct {
	Score     ScoreSink
	Player    HealthSink
	Opponent  HealthSink
	Presenter Presenter
}

func (s *Sinks) Hit(rank timing.Rank, absDiff float64) {
	if s == nil || s.Score == nil {
		return
	}
	s.Score.OnHit(rank, absDiff)
}

func (s *Sinks) Miss() {
	if s == nil || s.Score == nil {
		return
	}
	s.Score.OnMiss()
}

// DamagePlayer hurts the player.
func (s *Sinks) DamagePlayer(amount int) {
	if s == nil || s.Player == nil || amount <= 0 {
		return
	}
	s.Player.OnDamage(amount)
}

// DamageOpponent hurts the boss.
func (s *Sinks) DamageOpponent(amount int) {
	if s == nil || s.Opponent == nil || amount <= 0 {
		return
	}
	s.Opponent.OnDamage(amount)
}

func (s *Sinks) Spawn(e *schedule.Entity) {
	if s == nil || s.Presenter == nil {
		return
	}
	s.Presenter.Spawn(e)
}

func (s *Sinks) Move(e *schedule.Entity, pos geom.Vec) {
	if s == nil || s.Presenter == nil {
		return
	}
	s.Presenter.Move(e, pos)
}

func (s *Sinks) Judgement(e *schedule.Entity, rank timing.Rank) {
	if s == nil || s.Presenter == nil {
		return
	}
	s.Presenter.ShowJudgement(e, rank)
}

func (s *Sinks) Despawn(e *schedule.Entity) {
	if s == nil || s.Presenter == nil {
		return
	}
	s.Presenter.Despawn(e)
}

// ScoreFunc adapts a pair of functions to a ScoreSink.
type ScoreFunc struct {
	Hit  func(rank timing.Rank, absDiff float64)
	Miss func()
}

func (f ScoreFunc) OnHit(rank timing.Rank, absDiff float64) {
	if f.Hit != nil {
		f.Hit(rank, absDiff)
	}
}

func (f ScoreFunc) OnMiss() {
	if f.Miss != nil {
		f.Miss()
	}
}

// HealthFunc adapts a function to a HealthSink.
type HealthFunc func(amount int)

func (f HealthFunc) OnDamage(amount int) { f(amount) }
