package auth

import "testing"

func TestRoleHasCapability(t *testing.T) {
	cases := []struct {
		name       string
		role       UserRole
		capability Capability
		want       bool
	}{
		{name: "waiter takes orders", role: RoleWaiter, capability: CapTakeOrders, want: true},
		{name: "waiter cannot see kitchen display", role: RoleWaiter, capability: CapKitchenDisplay, want: false},
		{name: "waiter cannot manage rooms", role: RoleWaiter, capability: CapManageRooms, want: false},
		{name: "kitchen sees kitchen display", role: RoleKitchen, capability: CapKitchenDisplay, want: true},
		{name: "kitchen cannot take orders", role: RoleKitchen, capability: CapTakeOrders, want: false},
		{name: "receptionist manages rooms", role: RoleReceptionist, capability: CapManageRooms, want: true},
		{name: "receptionist cannot take payments", role: RoleReceptionist, capability: CapManagePayments, want: false},
		{name: "housekeeping manages rooms only", role: RoleHousekeeping, capability: CapManageRooms, want: true},
		{name: "housekeeping cannot manage reservations", role: RoleHousekeeping, capability: CapManageReservations, want: false},
		{name: "accountant views analytics", role: RoleAccountant, capability: CapViewAnalytics, want: true},
		{name: "admin has admin access", role: RoleAdmin, capability: CapAccessAdmin, want: true},
		{name: "manager has everything", role: RoleManager, capability: CapManageMenu, want: true},
		{name: "unknown role has nothing", role: UserRole("intern"), capability: CapTakeOrders, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoleHasCapability(tc.role, tc.capability); got != tc.want {
				t.Fatalf("RoleHasCapability(%s, %s) = %v, want %v", tc.role, tc.capability, got, tc.want)
			}
		})
	}
}

func TestCapabilitiesForRoleReturnsCopy(t *testing.T) {
	caps := CapabilitiesForRole(RoleKitchen)
	if len(caps) != 1 || caps[0] != CapKitchenDisplay {
		t.Fatalf("unexpected kitchen capabilities: %v", caps)
	}

	caps[0] = CapAccessAdmin
	if RoleHasCapability(RoleKitchen, CapAccessAdmin) {
		t.Fatal("mutating the returned slice must not affect the role table")
	}
}

func TestAdminAndManagerHaveAllCapabilities(t *testing.T) {
	for _, role := range []UserRole{RoleAdmin, RoleManager} {
		for _, capability := range allCapabilities {
			if !RoleHasCapability(role, capability) {
				t.Fatalf("expected %s to have %s", role, capability)
			}
		}
	}
}
