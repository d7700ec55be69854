package schedule

import (
	"errors"
	"fmt"
	"math"

	"github.com/robmorgan/hellsmelody/logger"
	"github.com/robmorgan/hellsmelody/rhythm"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// ErrInvalidSchedule is returned when a schedule is loaded with no usable entries.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Handler is invoked once per entry when the song reaches its activation time.
type Handler func(entry Entry, now float64)

// Schedule holds the ordered events of a song and activates each of them exactly once, in
// order, as song time advances. A run can be rewound but never skips or repeats an entry.
type Schedule struct {
	Name string

	entries  []Entry
	cursor   int
	lead     LeadFunc
	handlers map[Kind]Handler
	pauser   rhythm.Pauser
}

// New creates an empty schedule. While pauser reports paused, Tick does nothing.
func New(name string, pauser rhythm.Pauser) *Schedule {
	if pauser == nil {
		pauser = rhythm.NeverPaused{}
	}
	logger.GetProjectLogger().Debugf("Schedule created with name: %s", name)

	return &Schedule{
		Name:     name,
		lead:     func(Entry) float64 { return 0 },
		handlers: map[Kind]Handler{},
		pauser:   pauser,
	}
}

// SetLead sets how far ahead of its target each entry activates. It is read once per entry,
// at the moment that entry is considered for activation.
func (s *Schedule) SetLead(lead LeadFunc) {
	if lead != nil {
		s.lead = lead
	}
}

// Handle registers the handler for a kind of entry. Entries without a handler are consumed silently.
func (s *Schedule) Handle(kind Kind, h Handler) {
	s.handlers[kind] = h
}

// Load replaces the entries and rewinds the cursor. Entries are stably sorted by target time.
func (s *Schedule) Load(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no entries", ErrInvalidSchedule)
	}
	for i, e := range entries {
		if math.IsNaN(e.TargetTime) || math.IsInf(e.TargetTime, 0) {
			return fmt.Errorf("%w: entry %d has no finite target time", ErrInvalidSchedule, i)
		}
		if e.Kind == KindVolley && (e.Volley.Count < 1 || e.Volley.Interval < 0) {
			return fmt.Errorf("%w: entry %d is a volley with count %d and interval %.3f", ErrInvalidSchedule, i, e.Volley.Count, e.Volley.Interval)
		}
		if e.Kind == KindClash && e.Windup < 0 {
			return fmt.Errorf("%w: entry %d is a clash with negative windup", ErrInvalidSchedule, i)
		}
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) bool {
		return a.TargetTime < b.TargetTime
	})
	s.entries = sorted
	s.cursor = 0

	s.warnOutOfOrderActivations()
	return nil
}

// Kinds with different leads can activate out of target order. Activation stays in target order,
// so an entry with a longer lead waits for the one before it.
func (s *Schedule) warnOutOfOrderActivations() {
	last := math.Inf(-1)
	for _, e := range s.entries {
		at := e.ActivationTime(s.lead(e))
		if at < last {
			logger.GetProjectLogger().WithFields(logrus.Fields{
				"schedule": s.Name,
				"kind":     e.Kind.String(),
				"target":   e.TargetTime,
			}).Warn("Entry activates before an earlier entry, it will activate late")
		}
		last = math.Max(last, at)
	}
}

// Tick activates every entry whose activation time has been reached and returns how many were
// activated. Several entries can activate in the same tick.
func (s *Schedule) Tick(now float64) int {
	if s.pauser.IsPaused() {
		return 0
	}

	n := 0
	for s.cursor < len(s.entries) {
		e := s.entries[s.cursor]
		if now < e.ActivationTime(s.lead(e)) {
			break
		}
		s.cursor++
		n++

		if h, ok := s.handlers[e.Kind]; ok && h != nil {
			h(e, now)
		}
	}
	return n
}

// Rewind moves the cursor back to the first entry.
func (s *Schedule) Rewind() {
	s.cursor = 0
}

// Next returns the next entry to activate.
func (s *Schedule) Next() (Entry, bool) {
	if s.cursor >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[s.cursor], true
}

// Entries returns a copy of the sorted entries.
func (s *Schedule) Entries() []Entry {
	return slices.Clone(s.entries)
}

func (s *Schedule) Len() int       { return len(s.entries) }
func (s *Schedule) Remaining() int { return len(s.entries) - s.cursor }
func (s *Schedule) Done() bool     { return s.cursor >= len(s.entries) }

// LastTarget is the target time of the final entry, or zero for an empty schedule.
func (s *Schedule) LastTarget() float64 {
	if len(s.entries) == 0 {
		return 0
	}
	return s.entries[len(s.entries)-1].TargetTime
}
