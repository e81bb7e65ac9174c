package enums

import "fmt"

// OrderStatus tracks the lifecycle of a vehicle-transport order.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusAssigned  OrderStatus = "assigned"
	OrderStatusPickedUp  OrderStatus = "picked_up"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusInvoiced  OrderStatus = "invoiced"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusAssigned,
	OrderStatusPickedUp,
	OrderStatusDelivered,
	OrderStatusInvoiced,
	OrderStatusPaid,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// Next returns the forward transition for the status. The boolean is false for
// terminal statuses (paid, cancelled), which have no forward entry.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case OrderStatusNew:
		return OrderStatusAssigned, true
	case OrderStatusAssigned:
		return OrderStatusPickedUp, true
	case OrderStatusPickedUp:
		return OrderStatusDelivered, true
	case OrderStatusDelivered:
		return OrderStatusInvoiced, true
	case OrderStatusInvoiced:
		return OrderStatusPaid, true
	case OrderStatusPaid, OrderStatusCancelled:
		return "", false
	default:
		return "", false
	}
}

// Prev returns the rollback transition, the exact inverse of Next at every step.
func (s OrderStatus) Prev() (OrderStatus, bool) {
	switch s {
	case OrderStatusAssigned:
		return OrderStatusNew, true
	case OrderStatusPickedUp:
		return OrderStatusAssigned, true
	case OrderStatusDelivered:
		return OrderStatusPickedUp, true
	case OrderStatusInvoiced:
		return OrderStatusDelivered, true
	case OrderStatusPaid:
		return OrderStatusInvoiced, true
	case OrderStatusNew, OrderStatusCancelled:
		return "", false
	default:
		return "", false
	}
}

// IsCancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) IsCancellable() bool {
	switch s {
	case OrderStatusNew, OrderStatusAssigned, OrderStatusPickedUp:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// AtOrPast reports whether the status has reached target on the forward path.
// Cancelled orders are never considered past anything.
func (s OrderStatus) AtOrPast(target OrderStatus) bool {
	return s.forwardRank() >= target.forwardRank() && s != OrderStatusCancelled
}

func (s OrderStatus) forwardRank() int {
	switch s {
	case OrderStatusNew:
		return 0
	case OrderStatusAssigned:
		return 1
	case OrderStatusPickedUp:
		return 2
	case OrderStatusDelivered:
		return 3
	case OrderStatusInvoiced:
		return 4
	case OrderStatusPaid:
		return 5
	default:
		return -1
	}
}
