package schedule

import "fmt"

// Kind says what an entry turns into when it activates.
type Kind int

const (
	KindNote Kind = iota
	KindVolley
	KindClash
	KindProjectile
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindVolley:
		return "volley"
	case KindClash:
		return "clash"
	case KindProjectile:
		return "projectile"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Volley is the payload of a spike volley: Count projectiles, Interval seconds apart.
type Volley struct {
	Count    int
	Interval float64
}

// Entry is one timed event of a schedule.
type Entry struct {
	// TargetTime is the song time at which the entry should be hit or resolved.
	TargetTime float64
	Kind       Kind

	Lane   int
	Volley Volley
	// Windup is how long before TargetTime a clash arms.
	Windup float64
}

// ActivationTime is the song time at which the entry must become live, given how far ahead
// of its target it has to appear.
func (e Entry) ActivationTime(lead float64) float64 {
	return e.TargetTime - lead
}

// LeadFunc tells a schedule how far ahead of its target an entry activates.
type LeadFunc func(Entry) float64

// KindLead is the usual lead policy: notes appear approach seconds early, clashes arm their
// windup early and volleys fire at their target time.
func KindLead(approach float64) LeadFunc {
	return func(e Entry) float64 {
		switch e.Kind {
		case KindNote, KindProjectile:
			return approach
		case KindClash:
			return e.Windup
		default:
			return 0
		}
	}
}
