package schedule

import (
	"sync/atomic"

	"github.com/robmorgan/hellsmelody/pool"
	"golang.org/x/exp/slices"
)

var nextEntityID uint64

// NextID hands out process-unique entity ids.
func NextID() uint64 {
	return atomic.AddUint64(&nextEntityID, 1)
}

// ActiveSet owns the live entities between activation and their return to the pool. It is the
// resource shared by the schedule (producer), the judge (mutator) and presenters (readers).
type ActiveSet struct {
	pool     *pool.Pool[*Entity]
	grace    float64
	entities []*Entity

	// OnSpawn and OnRelease are optional notifications.
	OnSpawn   func(e *Entity)
	OnRelease func(e *Entity)
}

// NewActiveSet creates a set that acquires entities from p. Resolved entities are released
// grace seconds after they retire, or immediately when grace is zero.
func NewActiveSet(p *pool.Pool[*Entity], grace float64) *ActiveSet {
	return &ActiveSet{pool: p, grace: grace}
}

// Spawn acquires and initializes an entity and adds it to the set.
func (s *ActiveSet) Spawn(kind Kind, lane int, target, approach, speed, now float64) *Entity {
	e := s.pool.Acquire()
	e.Init(NextID(), kind, lane, target, approach, speed, now)
	s.entities = append(s.entities, e)
	if s.OnSpawn != nil {
		s.OnSpawn(e)
	}
	return e
}

// Active returns a snapshot of the live entities in spawn order, resolved ones included until
// they are released.
func (s *ActiveSet) Active() []*Entity {
	return slices.Clone(s.entities)
}

func (s *ActiveSet) Len() int { return len(s.entities) }

// Unresolved counts the entities still waiting for a judgment.
func (s *ActiveSet) Unresolved() int {
	n := 0
	for _, e := range s.entities {
		if !e.Resolved() {
			n++
		}
	}
	return n
}

// Retire starts the despawn of a resolved entity.
func (s *ActiveSet) Retire(e *Entity, now float64) {
	if e.retiring {
		return
	}
	if s.grace <= 0 {
		s.release(e)
		return
	}
	e.retiring = true
	e.retireAt = now + s.grace
}

// Sweep releases entities whose grace period has elapsed and returns how many were released.
func (s *ActiveSet) Sweep(now float64) int {
	var due []*Entity
	for _, e := range s.entities {
		if e.retiring && now >= e.retireAt {
			due = append(due, e)
		}
	}
	for _, e := range due {
		s.release(e)
	}
	return len(due)
}

// Clear returns every entity to the pool, used when a run restarts.
func (s *ActiveSet) Clear() {
	for _, e := range slices.Clone(s.entities) {
		s.release(e)
	}
}

func (s *ActiveSet) release(e *Entity) {
	idx := slices.Index(s.entities, e)
	if idx < 0 {
		return
	}
	s.entities = slices.Delete(s.entities, idx, idx+1)
	if s.OnRelease != nil {
		s.OnRelease(e)
	}
	s.pool.Release(e)
}
