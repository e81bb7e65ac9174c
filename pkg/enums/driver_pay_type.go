package enums

import "fmt"

// DriverPayType selects how a driver's trip pay is derived from their rate.
type DriverPayType string

const (
	// DriverPayTypePercentage pays rate% of the trip's total revenue.
	DriverPayTypePercentage DriverPayType = "percentage"
	// DriverPayTypePerMile pays rate x total assigned miles.
	DriverPayTypePerMile DriverPayType = "per_mile"
	// DriverPayTypeFlat pays the rate as a fixed amount per trip.
	DriverPayTypeFlat DriverPayType = "flat"
)

var validDriverPayTypes = []DriverPayType{
	DriverPayTypePercentage,
	DriverPayTypePerMile,
	DriverPayTypeFlat,
}

// String implements fmt.Stringer.
func (p DriverPayType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known DriverPayType.
func (p DriverPayType) IsValid() bool {
	for _, candidate := range validDriverPayTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseDriverPayType converts raw input into a DriverPayType.
func ParseDriverPayType(value string) (DriverPayType, error) {
	for _, candidate := range validDriverPayTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid driver pay type %q", value)
}
