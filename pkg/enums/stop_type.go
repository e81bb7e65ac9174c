package enums

import "fmt"

// StopType marks a route stop as the pickup or delivery leg of an order.
type StopType string

const (
	StopTypePickup   StopType = "pickup"
	StopTypeDelivery StopType = "delivery"
)

var validStopTypes = []StopType{StopTypePickup, StopTypeDelivery}

// String implements fmt.Stringer.
func (s StopType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StopType.
func (s StopType) IsValid() bool {
	for _, candidate := range validStopTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStopType converts raw input into a StopType.
func ParseStopType(value string) (StopType, error) {
	for _, candidate := range validStopTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stop type %q", value)
}
