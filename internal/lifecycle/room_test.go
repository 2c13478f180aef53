package lifecycle

import "testing"

func TestMaintenanceTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{name: "scheduled to in progress", from: MaintenanceScheduled, to: MaintenanceInProgress, allowed: true},
		{name: "scheduled to cancelled", from: MaintenanceScheduled, to: MaintenanceCancelled, allowed: true},
		{name: "scheduled cannot complete", from: MaintenanceScheduled, to: MaintenanceCompleted, allowed: false},
		{name: "in progress to completed", from: MaintenanceInProgress, to: MaintenanceCompleted, allowed: true},
		{name: "in progress to cancelled", from: MaintenanceInProgress, to: MaintenanceCancelled, allowed: true},
		{name: "completed is terminal", from: MaintenanceCompleted, to: MaintenanceInProgress, allowed: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaintenanceCanTransition(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("MaintenanceCanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestMaintenanceRoomStatus(t *testing.T) {
	if got := MaintenanceRoomStatus(MaintenanceInProgress); got != RoomMaintenance {
		t.Fatalf("expected %s, got %s", RoomMaintenance, got)
	}
	if got := MaintenanceRoomStatus(MaintenanceCompleted); got != RoomCleaning {
		t.Fatalf("expected %s, got %s", RoomCleaning, got)
	}
	if got := MaintenanceRoomStatus(MaintenanceCancelled); got != "" {
		t.Fatalf("expected empty status, got %s", got)
	}
}

func TestServiceTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{name: "requested to in progress", from: ServiceRequested, to: ServiceInProgress, allowed: true},
		{name: "requested to cancelled", from: ServiceRequested, to: ServiceCancelled, allowed: true},
		{name: "requested cannot complete", from: ServiceRequested, to: ServiceCompleted, allowed: false},
		{name: "in progress to completed", from: ServiceInProgress, to: ServiceCompleted, allowed: true},
		{name: "completed is terminal", from: ServiceCompleted, to: ServiceInProgress, allowed: false},
		{name: "cancelled is terminal", from: ServiceCancelled, to: ServiceRequested, allowed: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ServiceCanTransition(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("ServiceCanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}
