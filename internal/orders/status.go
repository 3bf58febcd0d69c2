// Package orders defines the order status workflow shared by the API and the
// back-office panel.
package orders

import "fmt"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var all = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func ParseStatus(s string) (Status, error) {
	for _, st := range all {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// AllowedTransitions enforces the directed progression
// pending -> processing -> shipped -> delivered, with cancellation possible
// from any non-terminal state.
func AllowedTransitions(current Status) []Status {
	switch current {
	case StatusPending:
		return []Status{StatusProcessing, StatusCancelled}
	case StatusProcessing:
		return []Status{StatusShipped, StatusCancelled}
	case StatusShipped:
		return []Status{StatusDelivered, StatusCancelled}
	default:
		return nil
	}
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions(from) {
		if s == to {
			return true
		}
	}
	return false
}
