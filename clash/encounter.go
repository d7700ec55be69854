// Package clash runs the boss's parriable lunge: it arms ahead of a target time, winds up and
// strikes on the song clock, and branches into a parry reaction or a miss.
package clash

import (
	"github.com/fogleman/ease"
	"github.com/robmorgan/hellsmelody/config"
	"github.com/robmorgan/hellsmelody/effect"
	"github.com/robmorgan/hellsmelody/geom"
	"github.com/robmorgan/hellsmelody/judge"
	"github.com/robmorgan/hellsmelody/logger"
	"github.com/robmorgan/hellsmelody/pool"
	"github.com/robmorgan/hellsmelody/rhythm"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/robmorgan/hellsmelody/sink"
	"github.com/robmorgan/hellsmelody/timing"
	"github.com/sirupsen/logrus"
)

// Encounter is the single clash of a run. Only one sequence runs at a time: arming again
// discards the previous one. It is not safe for concurrent use.
type Encounter struct {
	cfg     config.ClashConfig
	windows timing.Windows
	pool    *pool.Pool[*schedule.Entity]
	sinks   *sink.Sinks
	pauser  rhythm.Pauser

	rest      geom.Vec
	dir       geom.Vec
	pos       geom.Vec
	strikePos geom.Vec

	actor      *schedule.Entity
	phase      Phase
	targetTime float64
	parried    bool
	accepting  bool
	steps      []*step
}

// NewEncounter builds an encounter resting at stage.BossRest and lunging toward stage.PlayerCenter.
// Without a player position the lunge goes left. A player position on top of the rest position
// leaves no direction to lunge in and is a ConfigurationFault.
func NewEncounter(cfg config.ClashConfig, stage config.StageConfig, windows timing.Windows, p *pool.Pool[*schedule.Entity], sinks *sink.Sinks, pauser rhythm.Pauser) (*Encounter, error) {
	if pauser == nil {
		pauser = rhythm.NeverPaused{}
	}

	dir := geom.Left
	if stage.PlayerCenter == nil {
		logger.GetProjectLogger().Warn("No player position configured for the clash, lunging left")
	} else {
		d, ok := stage.PlayerCenter.Sub(stage.BossRest).Normalize()
		if !ok {
			return nil, config.Fault("stage.player_center", "player center must differ from boss rest")
		}
		dir = d
	}

	return &Encounter{
		cfg:       cfg,
		windows:   windows,
		pool:      p,
		sinks:     sinks,
		pauser:    pauser,
		rest:      stage.BossRest,
		dir:       dir,
		pos:       stage.BossRest,
		strikePos: stage.BossRest.Add(dir.Scale(cfg.PreStepDistance + cfg.LungeDistance)),
	}, nil
}

// Arm starts a clash at song time now. The strike is judged at the entry's target time, or at
// now + windup when that target has already passed. The windup ends on the target even when
// the clash is armed late. A sequence still running is dropped
// without an outcome.
func (e *Encounter) Arm(now float64, entry schedule.Entry) {
	e.Cancel()

	windup := entry.Windup
	if windup <= 0 {
		windup = e.cfg.Windup
	}

	e.actor = e.pool.Acquire()
	e.targetTime = entry.TargetTime
	if e.targetTime <= now {
		e.targetTime = now + windup
	}
	// armed late: shorten the windup so the strike still lands on the target
	if lead := e.targetTime - now; lead < windup {
		windup = lead
	}
	e.actor.Init(schedule.NextID(), schedule.KindClash, 0, e.targetTime, windup, 0, now)
	e.parried = false
	e.accepting = true
	e.phase = Armed

	pre := e.rest.Add(e.dir.Scale(e.cfg.PreStepDistance))
	strike := motion(Strike, "lunge", ease.OutQuad, e.cfg.LungeDuration, e.strikePos)
	strike.onDone = e.strikeFinished
	e.steps = []*step{
		motion(Windup, "windup", effect.Smoothstep, windup, pre),
		strike,
	}

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"target": e.targetTime,
		"windup": windup,
	}).Debug("Clash armed")

	e.sinks.Spawn(e.actor)
}

// Cancel drops the running sequence, if any, and returns the encounter to Idle.
func (e *Encounter) Cancel() {
	if e.actor != nil {
		e.sinks.Despawn(e.actor)
		e.pool.Release(e.actor)
		e.actor = nil
	}
	e.steps = nil
	e.accepting = false
	e.phase = Idle
}

// Tick advances the sequence by delta seconds of song time. realDelta is the unscaled time that
// passed, used by the hit-stop. Nothing moves while paused.
func (e *Encounter) Tick(delta, realDelta float64) {
	if e.phase == Idle || e.pauser.IsPaused() {
		return
	}
	if delta < 0 {
		delta = 0
	}
	if realDelta < 0 {
		realDelta = 0
	}

	for len(e.steps) > 0 {
		s := e.steps[0]
		if !s.started {
			s.started = true
			s.from = e.pos
			e.phase = s.phase
		}

		var consumed float64
		if s.kind == realtimeStep {
			_, over := s.fx.Update(realDelta)
			consumed = realDelta - over
		} else {
			v, over := s.fx.Update(delta)
			consumed = delta - over
			if s.kind == motionStep {
				e.pos = geom.Lerp(s.from, s.to, v)
				e.sinks.Move(e.actor, e.pos)
			}
		}
		delta = nonNegative(delta - consumed)
		realDelta = nonNegative(realDelta - consumed)

		if !s.fx.Done() {
			return
		}
		e.steps = e.steps[1:]
		if s.onDone != nil {
			s.onDone()
		}
	}

	e.finish()
}

// Parry judges an input at song time now against the armed strike. Inputs before the good window
// are ignored. A hit within the window interrupts the windup or strike and starts the parry
// reaction. A late input counts as a miss.
func (e *Encounter) Parry(now float64) judge.Verdict {
	if e.actor == nil || e.pauser.IsPaused() {
		return judge.Verdict{Disposition: judge.Ignored}
	}
	if e.actor.Resolved() {
		return judge.Verdict{Disposition: judge.AlreadyResolved, Rank: e.actor.Rank(), Entity: e.actor}
	}
	if !e.accepting {
		return judge.Verdict{Disposition: judge.Ignored}
	}

	v := judge.OneSided(e.windows, e.targetTime, now)
	v.Entity = e.actor
	switch v.Disposition {
	case judge.Ignored:
		return v
	case judge.Missed:
		e.resolveMiss(now)
		return v
	}

	_ = e.actor.Resolve(schedule.Hit, v.Rank, now)
	e.parried = true
	e.accepting = false

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"rank":    v.Rank.String(),
		"absDiff": v.AbsDiff,
		"phase":   e.phase.String(),
	}).Info("Clash parried")

	e.sinks.Hit(v.Rank, v.AbsDiff)
	e.sinks.DamageOpponent(damageFor(v.Rank))
	e.sinks.Judgement(e.actor, v.Rank)

	contact := geom.Lerp(e.pos, e.strikePos, e.cfg.ParryFollowThrough)
	recoil := contact.Sub(e.dir.Scale(e.cfg.RecoilDistance))
	e.steps = []*step{
		motion(Parried, "follow-through", ease.OutQuad, e.cfg.ParryFollowTime, contact),
		realtimeWait(Parried, "hit-stop", e.cfg.ParryHitStop),
		motion(Parried, "recoil", ease.OutQuad, e.cfg.RecoilDuration, recoil),
		motion(Recovering, "recoil-return", ease.InOutQuad, e.cfg.RecoilReturnTime, e.rest),
	}
	e.phase = Parried
	return v
}

// The strike ran out without a parry.
func (e *Encounter) strikeFinished() {
	e.resolveMiss(e.targetTime + e.cfg.LungeDuration)
	e.steps = append(e.steps,
		wait(Missed, "linger", e.cfg.LingerDuration),
		motion(Recovering, "retreat", ease.InOutQuad, e.cfg.RetreatDuration, e.rest),
	)
	e.phase = Missed
}

func (e *Encounter) resolveMiss(now float64) {
	e.accepting = false
	if err := e.actor.Resolve(schedule.Missed, timing.Miss, now); err != nil {
		return
	}

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"target": e.targetTime,
	}).Info("Clash missed")

	e.sinks.DamagePlayer(1)
	e.sinks.Miss()
	e.sinks.Judgement(e.actor, timing.Miss)
}

func (e *Encounter) finish() {
	if e.actor != nil {
		e.sinks.Despawn(e.actor)
		e.pool.Release(e.actor)
		e.actor = nil
	}
	e.accepting = false
	e.phase = Idle
}

func (e *Encounter) Phase() Phase            { return e.phase }
func (e *Encounter) Position() geom.Vec      { return e.pos }
func (e *Encounter) TargetTime() float64     { return e.targetTime }
func (e *Encounter) Parried() bool           { return e.parried }
func (e *Encounter) Accepting() bool         { return e.accepting }
func (e *Encounter) Direction() geom.Vec     { return e.dir }
func (e *Encounter) Actor() *schedule.Entity { return e.actor }

// PhaseProgress is the linear progress of the running step.
func (e *Encounter) PhaseProgress() float64 {
	if len(e.steps) == 0 {
		return 0
	}
	return e.steps[0].fx.Progress()
}

func damageFor(rank timing.Rank) int {
	switch rank {
	case timing.Perfect:
		return 3
	case timing.Great:
		return 2
	case timing.Good:
		return 1
	default:
		return 0
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
