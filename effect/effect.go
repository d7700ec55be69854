// Package effect provides eased progress over a fixed duration, advanced by explicit time deltas.
package effect

import (
	"github.com/fogleman/ease"
	"github.com/robmorgan/hellsmelody/utils"
)

// Effect accumulates elapsed time toward a duration and maps the linear progress through an
// easing function. It only moves when Update is called, so a caller that stops calling it
// (e.g. while paused) resumes exactly where it left off.
type Effect struct {
	// The name of the effect, used in logs
	Name string

	easing   ease.Function
	duration float64
	elapsed  float64
}

// NewEffect creates an effect that runs for duration seconds. A nil easing is linear.
func NewEffect(name string, easing ease.Function, duration float64) *Effect {
	if easing == nil {
		easing = ease.Linear
	}
	if duration < 0 {
		duration = 0
	}
	return &Effect{
		Name:     name,
		easing:   easing,
		duration: duration,
	}
}

// Update advances the effect by delta seconds. It returns the eased value and the part of
// delta left over once the effect completed.
func (e *Effect) Update(delta float64) (value float64, overflow float64) {
	if delta < 0 {
		delta = 0
	}
	remaining := e.duration - e.elapsed
	if delta >= remaining {
		e.elapsed = e.duration
		return e.Value(), delta - remaining
	}
	e.elapsed += delta
	return e.Value(), 0
}

// Progress is the linear completion in [0, 1].
func (e *Effect) Progress() float64 {
	if e.duration <= 0 {
		return 1
	}
	return utils.Clamp01(e.elapsed / e.duration)
}

// Value is the eased completion.
func (e *Effect) Value() float64 {
	return e.easing(e.Progress())
}

func (e *Effect) Done() bool         { return e.elapsed >= e.duration }
func (e *Effect) Duration() float64  { return e.duration }
func (e *Effect) Remaining() float64 { return e.duration - e.elapsed }
func (e *Effect) Reset()             { e.elapsed = 0 }

// Smoothstep is the cubic 3t²-2t³ curve.
func Smoothstep(t float64) float64 {
	t = utils.Clamp01(t)
	return t * t * (3 - 2*t)
}
