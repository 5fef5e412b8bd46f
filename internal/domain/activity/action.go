package activity

import "fmt"

// Action is a user interaction kind.
type Action string

// Action constants, in increasing order of importance.
const (
	Searched    Action = "searched"
	Viewed      Action = "viewed"
	AddedToCart Action = "added_to_cart"
	Purchased   Action = "purchased"
)

// IsValid checks if the action is one of the supported values.
func (a Action) IsValid() bool {
	return a == Searched || a == Viewed || a == AddedToCart || a == Purchased
}

// Weight returns the action's contribution to a user activity vector.
// Total over all valid actions; the strict ordering
// searched < viewed < added_to_cart < purchased is load-bearing for
// collaborative scoring.
func (a Action) Weight() float64 {
	switch a {
	case Searched:
		return 0.2
	case Viewed:
		return 0.4
	case AddedToCart:
		return 0.7
	case Purchased:
		return 1.0
	}
	return 0
}

// ParseAction converts a wire string into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.IsValid() {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}
