package types

import (
	"github.com/google/uuid"

	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// RouteStop is one pickup or delivery visit in a trip's route sequence.
type RouteStop struct {
	OrderID  uuid.UUID      `json:"order_id"`
	StopType enums.StopType `json:"stop_type"`
}

// RouteStops is the ordered visiting sequence persisted on a trip. Saves are
// whole-value overwrites, never incremental patches.
type RouteStops []RouteStop

// OrderIDSet returns the distinct order ids referenced by the sequence.
func (s RouteStops) OrderIDSet() map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(s))
	for _, stop := range s {
		set[stop.OrderID] = struct{}{}
	}
	return set
}
