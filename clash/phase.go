package clash

// Phase is the state of an encounter.
type Phase int

const (
	Idle Phase = iota
	Armed
	Windup
	Strike
	Parried
	Missed
	Recovering
)

func (p Phase) String() string {
	switch p {
	case Armed:
		return "armed"
	case Windup:
		return "windup"
	case Strike:
		return "strike"
	case Parried:
		return "parried"
	case Missed:
		return "missed"
	case Recovering:
		return "recovering"
	default:
		return "idle"
	}
}
