// Package present draws the run: in the terminal, over OSC, or both.
package present

import (
	"github.com/robmorgan/hellsmelody/geom"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/robmorgan/hellsmelody/sink"
	"github.com/robmorgan/hellsmelody/timing"
)

// Multi fans every call out to several presenters, skipping nil ones.
type Multi []sink.Presenter

func (m Multi) Spawn(e *schedule.Entity) {
	for _, p := range m {
		if p != nil {
			p.Spawn(e)
		}
	}
}

func (m Multi) Move(e *schedule.Entity, pos geom.Vec) {
	for _, p := range m {
		if p != nil {
			p.Move(e, pos)
		}
	}
}

func (m Multi) ShowJudgement(e *schedule.Entity, rank timing.Rank) {
	for _, p := range m {
		if p != nil {
			p.ShowJudgement(e, rank)
		}
	}
}

func (m Multi) Despawn(e *schedule.Entity) {
	for _, p := range m {
		if p != nil {
			p.Despawn(e)
		}
	}
}
