package schedule

import (
	"errors"
	"math"

	"github.com/robmorgan/hellsmelody/timing"
)

// ErrAlreadyResolved is returned when an entity that already has a terminal outcome is resolved again.
var ErrAlreadyResolved = errors.New("entity already resolved")

// Outcome is the disposition of a live entity.
type Outcome int

const (
	Unresolved Outcome = iota
	Hit
	Missed
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Missed:
		return "missed"
	default:
		return "unresolved"
	}
}

// Entity is a spawned note, projectile or clash actor. It moves from Unresolved to exactly one
// terminal outcome and is then handed back to its pool.
type Entity struct {
	ID   uint64
	Kind Kind
	Lane int

	TargetTime float64
	Approach   float64
	Speed      float64
	SpawnTime  float64

	outcome    Outcome
	rank       timing.Rank
	resolvedAt float64

	retiring bool
	retireAt float64
}

// Init prepares a recycled entity for a new life.
func (e *Entity) Init(id uint64, kind Kind, lane int, target, approach, speed, now float64) {
	*e = Entity{
		ID:         id,
		Kind:       kind,
		Lane:       lane,
		TargetTime: target,
		Approach:   approach,
		Speed:      speed,
		SpawnTime:  now,
	}
}

// Resolve records the terminal outcome. It fails if the entity is already resolved.
func (e *Entity) Resolve(outcome Outcome, rank timing.Rank, now float64) error {
	if e.outcome != Unresolved {
		return ErrAlreadyResolved
	}
	if outcome == Missed {
		rank = timing.Miss
	}
	e.outcome = outcome
	e.rank = rank
	e.resolvedAt = now
	return nil
}

func (e *Entity) Resolved() bool      { return e.outcome != Unresolved }
func (e *Entity) Outcome() Outcome    { return e.outcome }
func (e *Entity) Rank() timing.Rank   { return e.rank }
func (e *Entity) ResolvedAt() float64 { return e.resolvedAt }
func (e *Entity) Retiring() bool      { return e.retiring }

// AbsDiff is the distance in seconds between now and the target time.
func (e *Entity) AbsDiff(now float64) float64 {
	return math.Abs(e.TargetTime - now)
}

// Offset is the along-lane distance from the hit line at song time now.
func (e *Entity) Offset(now float64) float64 {
	return (e.TargetTime - now) * e.Speed
}
