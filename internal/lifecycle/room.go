package lifecycle

// Room maintenance workflow.
const (
	MaintenanceScheduled  = "scheduled"
	MaintenanceInProgress = "in_progress"
	MaintenanceCompleted  = "completed"
	MaintenanceCancelled  = "cancelled"
)

var maintenanceTransitions = map[string][]string{
	MaintenanceScheduled:  {MaintenanceInProgress, MaintenanceCancelled},
	MaintenanceInProgress: {MaintenanceCompleted, MaintenanceCancelled},
	MaintenanceCompleted:  {},
	MaintenanceCancelled:  {},
}

func MaintenanceCanTransition(from, to string) bool {
	return contains(maintenanceTransitions[from], to)
}

func ValidateMaintenanceTransition(from, to string) *Error {
	if !MaintenanceCanTransition(from, to) {
		return InvalidTransition("maintenance", from, to)
	}
	return nil
}

// MaintenanceRoomStatus returns the room status a maintenance transition
// forces. Completion leaves the room in cleaning so housekeeping runs before
// the room is reused.
func MaintenanceRoomStatus(to string) string {
	switch to {
	case MaintenanceInProgress:
		return RoomMaintenance
	case MaintenanceCompleted:
		return RoomCleaning
	}
	return ""
}

// Room service workflow. No resource-state side effects beyond its own row.
const (
	ServiceRequested  = "requested"
	ServiceInProgress = "in_progress"
	ServiceCompleted  = "completed"
	ServiceCancelled  = "cancelled"
)

var serviceTransitions = map[string][]string{
	ServiceRequested:  {ServiceInProgress, ServiceCancelled},
	ServiceInProgress: {ServiceCompleted, ServiceCancelled},
	ServiceCompleted:  {},
	ServiceCancelled:  {},
}

func ServiceCanTransition(from, to string) bool {
	return contains(serviceTransitions[from], to)
}

func ValidateServiceTransition(from, to string) *Error {
	if !ServiceCanTransition(from, to) {
		return InvalidTransition("room service", from, to)
	}
	return nil
}
