package enums

import "fmt"

// TruckType classifies a carrier truck by its hauling configuration. Capacity
// is derived from the type, never configured per trip.
type TruckType string

const (
	TruckTypeHotshot   TruckType = "hotshot"
	TruckTypeOpen7     TruckType = "open_7"
	TruckTypeOpen8     TruckType = "open_8"
	TruckTypeOpen10    TruckType = "open_10"
	TruckTypeEnclosed2 TruckType = "enclosed_2"
	TruckTypeEnclosed6 TruckType = "enclosed_6"
)

var validTruckTypes = []TruckType{
	TruckTypeHotshot,
	TruckTypeOpen7,
	TruckTypeOpen8,
	TruckTypeOpen10,
	TruckTypeEnclosed2,
	TruckTypeEnclosed6,
}

// String implements fmt.Stringer.
func (t TruckType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TruckType.
func (t TruckType) IsValid() bool {
	for _, candidate := range validTruckTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTruckType converts raw input into a TruckType.
func ParseTruckType(value string) (TruckType, error) {
	for _, candidate := range validTruckTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid truck type %q", value)
}

// MaxVehicles returns the vehicle capacity for the truck type.
func (t TruckType) MaxVehicles() int {
	switch t {
	case TruckTypeHotshot:
		return 3
	case TruckTypeOpen7:
		return 7
	case TruckTypeOpen8:
		return 8
	case TruckTypeOpen10:
		return 10
	case TruckTypeEnclosed2:
		return 2
	case TruckTypeEnclosed6:
		return 6
	default:
		return 0
	}
}
