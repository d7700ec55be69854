// Package timing classifies the distance between an input and a target time into ranks.
package timing

import (
	"fmt"
	"math"
)

// Windows are the acceptance bands around a target time, in seconds. Upper bounds are inclusive.
type Windows struct {
	Perfect float64 `yaml:"perfect"`
	Great   float64 `yaml:"great"`
	Good    float64 `yaml:"good"`

	// Miss is how long after the target time an unresolved entity is swept as missed.
	Miss float64 `yaml:"miss"`
}

// DefaultWindows returns the windows the game ships with.
func DefaultWindows() Windows {
	return Windows{
		Perfect: 0.05,
		Great:   0.10,
		Good:    0.15,
		Miss:    0.15,
	}
}

// Validate checks 0 < perfect < great < good and a non-negative miss cutoff.
func (w Windows) Validate() error {
	if w.Perfect <= 0 || w.Perfect >= w.Great || w.Great >= w.Good {
		return fmt.Errorf("windows must satisfy 0 < perfect < great < good (got %.3f, %.3f, %.3f)", w.Perfect, w.Great, w.Good)
	}
	if w.Miss < 0 {
		return fmt.Errorf("miss cutoff must not be negative (got %.3f)", w.Miss)
	}
	return nil
}

// Classify ranks an absolute time difference.
func (w Windows) Classify(absDiff float64) Rank {
	switch {
	case absDiff <= w.Perfect:
		return Perfect
	case absDiff <= w.Great:
		return Great
	case absDiff <= w.Good:
		return Good
	default:
		return Miss
	}
}

// ClassifyOneSided ranks an input at now against target, but refuses inputs that arrive
// before the good window opens. ok is false for those: they are not judgeable yet.
func (w Windows) ClassifyOneSided(target, now float64) (rank Rank, absDiff float64, ok bool) {
	signed := now - target
	if signed < -w.Good {
		return Miss, -signed, false
	}
	absDiff = math.Abs(signed)
	return w.Classify(absDiff), absDiff, true
}

// Expired reports whether an unresolved entity targeted at target is past its miss cutoff.
func (w Windows) Expired(target, now float64) bool {
	return now > target+w.Miss
}
