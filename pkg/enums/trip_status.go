package enums

import "fmt"

// TripStatus tracks the linear lifecycle of a trip. Trips have no cancellation
// state; completed is terminal on the forward path only.
type TripStatus string

const (
	TripStatusPlanned    TripStatus = "planned"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusAtTerminal TripStatus = "at_terminal"
	TripStatusCompleted  TripStatus = "completed"
)

var validTripStatuses = []TripStatus{
	TripStatusPlanned,
	TripStatusInProgress,
	TripStatusAtTerminal,
	TripStatusCompleted,
}

// String implements fmt.Stringer.
func (s TripStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TripStatus.
func (s TripStatus) IsValid() bool {
	for _, candidate := range validTripStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTripStatus converts raw input into a TripStatus.
func ParseTripStatus(value string) (TripStatus, error) {
	for _, candidate := range validTripStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trip status %q", value)
}

// Next returns the forward transition for the status.
func (s TripStatus) Next() (TripStatus, bool) {
	switch s {
	case TripStatusPlanned:
		return TripStatusInProgress, true
	case TripStatusInProgress:
		return TripStatusAtTerminal, true
	case TripStatusAtTerminal:
		return TripStatusCompleted, true
	case TripStatusCompleted:
		return "", false
	default:
		return "", false
	}
}

// Prev returns the rollback transition. Completed trips may still roll back to
// at_terminal.
func (s TripStatus) Prev() (TripStatus, bool) {
	switch s {
	case TripStatusInProgress:
		return TripStatusPlanned, true
	case TripStatusAtTerminal:
		return TripStatusInProgress, true
	case TripStatusCompleted:
		return TripStatusAtTerminal, true
	case TripStatusPlanned:
		return "", false
	default:
		return "", false
	}
}
