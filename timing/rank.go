package timing

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Rank is the discrete result of judging an input against a target time.
type Rank int

const (
	Miss Rank = iota
	Good
	Great
	Perfect
)

var rankNames = map[Rank]string{
	Miss:    "MISS",
	Good:    "GOOD",
	Great:   "GREAT",
	Perfect: "PERFECT",
}

var rankColors = map[Rank]colorful.Color{
	Miss:    colorful.Color{R: 0.86, G: 0.16, B: 0.16},
	Good:    colorful.Color{R: 0.24, G: 0.78, B: 0.35},
	Great:   colorful.Color{R: 0.18, G: 0.74, B: 0.89},
	Perfect: colorful.Color{R: 0.98, G: 0.82, B: 0.18},
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// Color is the popup color used by presenters for this rank.
func (r Rank) Color() colorful.Color {
	if c, ok := rankColors[r]; ok {
		return c
	}
	return colorful.Color{R: 0.5, G: 0.5, B: 0.5}
}

// Hex is Color in "#rrggbb" form.
func (r Rank) Hex() string {
	return r.Color().Hex()
}

// IsHit reports whether the rank counts as a successful hit.
func (r Rank) IsHit() bool {
	return r != Miss
}
