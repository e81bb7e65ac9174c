package enums

import "testing"

func TestOrderStatusForwardRollbackSymmetry(t *testing.T) {
	for _, status := range validOrderStatuses {
		next, ok := status.Next()
		if !ok {
			continue
		}
		prev, ok := next.Prev()
		if !ok {
			t.Fatalf("%s -> %s has no rollback entry", status, next)
		}
		if prev != status {
			t.Fatalf("rollback of %s should be %s, got %s", next, status, prev)
		}
	}
}

func TestOrderStatusTerminalStates(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusPaid, OrderStatusCancelled} {
		if _, ok := status.Next(); ok {
			t.Fatalf("%s should have no forward entry", status)
		}
		if !status.IsTerminal() {
			t.Fatalf("%s should be terminal", status)
		}
	}
	if _, ok := OrderStatusCancelled.Prev(); ok {
		t.Fatal("cancelled should have no rollback entry")
	}
}

func TestOrderStatusCancellable(t *testing.T) {
	cancellable := map[OrderStatus]bool{
		OrderStatusNew:       true,
		OrderStatusAssigned:  true,
		OrderStatusPickedUp:  true,
		OrderStatusDelivered: false,
		OrderStatusInvoiced:  false,
		OrderStatusPaid:      false,
		OrderStatusCancelled: false,
	}
	for status, want := range cancellable {
		if got := status.IsCancellable(); got != want {
			t.Fatalf("%s cancellable = %v, want %v", status, got, want)
		}
	}
}

func TestTripStatusTable(t *testing.T) {
	if next, ok := TripStatusAtTerminal.Next(); !ok || next != TripStatusCompleted {
		t.Fatalf("at_terminal should advance to completed, got %s ok=%v", next, ok)
	}
	if _, ok := TripStatusCompleted.Next(); ok {
		t.Fatal("completed should have no forward entry")
	}
	if prev, ok := TripStatusCompleted.Prev(); !ok || prev != TripStatusAtTerminal {
		t.Fatalf("completed should roll back to at_terminal, got %s ok=%v", prev, ok)
	}
	if _, ok := TripStatusPlanned.Prev(); ok {
		t.Fatal("planned should have no rollback entry")
	}
}

func TestTruckTypeCapacityTable(t *testing.T) {
	capacities := map[TruckType]int{
		TruckTypeHotshot:   3,
		TruckTypeOpen7:     7,
		TruckTypeOpen8:     8,
		TruckTypeOpen10:    10,
		TruckTypeEnclosed2: 2,
		TruckTypeEnclosed6: 6,
	}
	for truckType, want := range capacities {
		if got := truckType.MaxVehicles(); got != want {
			t.Fatalf("%s capacity = %d, want %d", truckType, got, want)
		}
	}
	if got := TruckType("").MaxVehicles(); got != 0 {
		t.Fatalf("unknown truck type capacity should be 0, got %d", got)
	}
}
