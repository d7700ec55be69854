// Package geom holds the small amount of 2D math the spawners and the clash actor need.
package geom

import "math"

// Vec is a point or direction in world units.
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

var Left = Vec{X: -1}

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }
func (v Vec) Len() float64        { return math.Hypot(v.X, v.Y) }

// Normalize returns the unit vector of v, or false when v has no length.
func (v Vec) Normalize() (Vec, bool) {
	l := v.Len()
	if l == 0 {
		return Vec{}, false
	}
	return v.Scale(1 / l), true
}

// Lerp interpolates from a to b, t is not clamped.
func Lerp(a, b Vec, t float64) Vec {
	return a.Add(b.Sub(a).Scale(t))
}

// Distance returns |b - a|.
func Distance(a, b Vec) float64 {
	return b.Sub(a).Len()
}
