package auth

// Capability is a granted permission carried by an acting staff member.
// Endpoints declare the capability they require instead of comparing role
// strings inline.
type Capability string

const (
	CapTakeOrders         Capability = "take_orders"
	CapKitchenDisplay     Capability = "kitchen_display"
	CapManageTables       Capability = "manage_tables"
	CapManageReservations Capability = "manage_reservations"
	CapManageRooms        Capability = "manage_rooms"
	CapManagePayments     Capability = "manage_payments"
	CapManageMenu         Capability = "manage_menu"
	CapAccessAdmin        Capability = "access_admin"
	CapViewAnalytics      Capability = "view_analytics"
)

var allCapabilities = []Capability{
	CapTakeOrders,
	CapKitchenDisplay,
	CapManageTables,
	CapManageReservations,
	CapManageRooms,
	CapManagePayments,
	CapManageMenu,
	CapAccessAdmin,
	CapViewAnalytics,
}

var roleCapabilities = map[UserRole][]Capability{
	RoleAdmin:   allCapabilities,
	RoleManager: allCapabilities,
	RoleWaiter: {
		CapTakeOrders,
		CapManageTables,
		CapManageReservations,
		CapManagePayments,
	},
	RoleKitchen: {
		CapKitchenDisplay,
	},
	RoleReceptionist: {
		CapManageReservations,
		CapManageRooms,
		CapManageTables,
	},
	RoleAccountant: {
		CapManagePayments,
		CapViewAnalytics,
	},
	RoleHousekeeping: {
		CapManageRooms,
	},
}

func CapabilitiesForRole(role UserRole) []Capability {
	caps := roleCapabilities[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

func RoleHasCapability(role UserRole, capability Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}
