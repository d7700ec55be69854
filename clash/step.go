package clash

import (
	"github.com/fogleman/ease"
	"github.com/robmorgan/hellsmelody/effect"
	"github.com/robmorgan/hellsmelody/geom"
)

type stepKind int

const (
	motionStep stepKind = iota
	waitStep
	// realtimeStep waits on unscaled time, for the hit-stop
	realtimeStep
)

// step is one resumable segment of an encounter. Its effect holds the progress, so a step that
// is not advanced for a while picks up where it stopped.
type step struct {
	phase Phase
	kind  stepKind
	fx    *effect.Effect

	from    geom.Vec
	to      geom.Vec
	started bool

	// onDone runs once when the step completes
	onDone func()
}

func motion(phase Phase, name string, easing ease.Function, duration float64, to geom.Vec) *step {
	return &step{
		phase: phase,
		kind:  motionStep,
		fx:    effect.NewEffect(name, easing, duration),
		to:    to,
	}
}

func wait(phase Phase, name string, duration float64) *step {
	return &step{
		phase: phase,
		kind:  waitStep,
		fx:    effect.NewEffect(name, nil, duration),
	}
}

func realtimeWait(phase Phase, name string, duration float64) *step {
	return &step{
		phase: phase,
		kind:  realtimeStep,
		fx:    effect.NewEffect(name, nil, duration),
	}
}
