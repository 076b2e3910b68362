package domain

// Transition classifies how a website's status moved between two
// consecutive checks.
type Transition int

const (
	NoChange Transition = iota
	WentUp
	WentDown
)

func (t Transition) String() string {
	switch t {
	case WentUp:
		return "went_up"
	case WentDown:
		return "went_down"
	default:
		return "no_change"
	}
}

// Classify compares the stored status (nil on the first-ever check of a URL)
// with the fresh result.
//
// A first check that comes back down counts as WentDown: the owner asked to
// hear about outages, including one that predates registration.
func Classify(prev *Status, nowUp bool) Transition {
	switch {
	case prev == nil:
		if nowUp {
			return NoChange
		}
		return WentDown
	case *prev == StatusUp && !nowUp:
		return WentDown
	case *prev == StatusDown && nowUp:
		return WentUp
	default:
		return NoChange
	}
}
