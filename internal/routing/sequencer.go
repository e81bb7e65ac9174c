// Package routing builds and validates trip stop sequences. Everything here
// is pure: persistence of the accepted sequence belongs to the trips service.
package routing

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
)

// Warning is a non-fatal ordering issue reported alongside a successful save.
type Warning string

// DefaultSequence builds the deterministic pickups-then-deliveries sequence:
// pickups ascending by scheduled pickup date, deliveries ascending by
// scheduled delivery date. Orders without a date sort last via an
// empty-string key; ties break on order id.
func DefaultSequence(orders []models.Order) types.RouteStops {
	pickups := make([]models.Order, len(orders))
	copy(pickups, orders)
	sort.SliceStable(pickups, func(i, j int) bool {
		return lessByDate(pickups[i], pickups[j], func(o models.Order) *time.Time { return o.ScheduledPickupDate })
	})

	deliveries := make([]models.Order, len(orders))
	copy(deliveries, orders)
	sort.SliceStable(deliveries, func(i, j int) bool {
		return lessByDate(deliveries[i], deliveries[j], func(o models.Order) *time.Time { return o.ScheduledDeliveryDate })
	})

	seq := make(types.RouteStops, 0, len(orders)*2)
	for _, o := range pickups {
		seq = append(seq, types.RouteStop{OrderID: o.ID, StopType: enums.StopTypePickup})
	}
	for _, o := range deliveries {
		seq = append(seq, types.RouteStop{OrderID: o.ID, StopType: enums.StopTypeDelivery})
	}
	return seq
}

func lessByDate(a, b models.Order, date func(models.Order) *time.Time) bool {
	ka := dateKey(date(a))
	kb := dateKey(date(b))
	if ka != kb {
		return ka < kb
	}
	return a.ID.String() < b.ID.String()
}

// dateKey maps a missing date to a key that sorts after every real date.
func dateKey(t *time.Time) string {
	if t == nil {
		return "~"
	}
	return t.UTC().Format(time.RFC3339)
}

// Reconcile returns the sequence to display for a trip. A saved sequence is
// always shown verbatim; it is only marked stale when its order-id set no
// longer matches the assigned set. Replacing a stale sequence is the caller's
// decision. Without a saved sequence the default is computed fresh.
func Reconcile(saved types.RouteStops, orders []models.Order) (types.RouteStops, bool) {
	if len(saved) == 0 {
		return DefaultSequence(orders), false
	}

	assigned := make(map[uuid.UUID]struct{}, len(orders))
	for _, o := range orders {
		assigned[o.ID] = struct{}{}
	}
	savedSet := saved.OrderIDSet()

	stale := len(savedSet) != len(assigned)
	if !stale {
		for id := range assigned {
			if _, ok := savedSet[id]; !ok {
				stale = true
				break
			}
		}
	}
	return saved, stale
}

// Move removes the stop at index from and reinserts it at index to,
// preserving every other relative ordering.
func Move(seq types.RouteStops, from, to int) (types.RouteStops, error) {
	if from < 0 || from >= len(seq) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("move source index %d out of range", from))
	}
	if to < 0 || to >= len(seq) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("move target index %d out of range", to))
	}
	out := make(types.RouteStops, 0, len(seq))
	out = append(out, seq[:from]...)
	out = append(out, seq[from+1:]...)
	moved := seq[from]
	out = append(out[:to], append(types.RouteStops{moved}, out[to:]...)...)
	return out, nil
}

// Validate scans left-to-right and reports every delivery whose pickup has
// not yet appeared. Warnings never block persistence.
func Validate(seq types.RouteStops) []Warning {
	seenPickups := make(map[uuid.UUID]struct{})
	var warnings []Warning
	for _, stop := range seq {
		switch stop.StopType {
		case enums.StopTypePickup:
			seenPickups[stop.OrderID] = struct{}{}
		case enums.StopTypeDelivery:
			if _, ok := seenPickups[stop.OrderID]; !ok {
				warnings = append(warnings, Warning(fmt.Sprintf("delivery before pickup for order %s", stop.OrderID)))
			}
		}
	}
	return warnings
}

// ValidateMembership rejects stops referring to orders outside the assigned
// set, and orders missing either of their two stops.
func ValidateMembership(seq types.RouteStops, orders []models.Order) error {
	assigned := make(map[uuid.UUID]struct{}, len(orders))
	for _, o := range orders {
		assigned[o.ID] = struct{}{}
	}

	type stopPair struct {
		pickups    int
		deliveries int
	}
	counts := make(map[uuid.UUID]*stopPair, len(orders))
	for _, stop := range seq {
		if _, ok := assigned[stop.OrderID]; !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("stop references unassigned order %s", stop.OrderID))
		}
		pair, ok := counts[stop.OrderID]
		if !ok {
			pair = &stopPair{}
			counts[stop.OrderID] = pair
		}
		switch stop.StopType {
		case enums.StopTypePickup:
			pair.pickups++
		case enums.StopTypeDelivery:
			pair.deliveries++
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stop type %q", stop.StopType))
		}
	}
	for id := range assigned {
		pair, ok := counts[id]
		if !ok || pair.pickups != 1 || pair.deliveries != 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order %s must contribute exactly one pickup and one delivery stop", id))
		}
	}
	return nil
}
