package lifecycle

import "time"

// DefaultKitchenStation is used when the menu item does not name a station.
const DefaultKitchenStation = "Main Kitchen"

// KitchenEstimatedCompletion computes the promised completion time for a
// display created at confirm time from the menu item's preparation minutes.
func KitchenEstimatedCompletion(confirmedAt time.Time, prepMinutes int32) time.Time {
	return confirmedAt.Add(time.Duration(prepMinutes) * time.Minute)
}

// KitchenStation falls back to the default station for unassigned items.
func KitchenStation(station string) string {
	if station == "" {
		return DefaultKitchenStation
	}
	return station
}

// Kitchen display items track each order item through its own sub-machine.
// Item statuses reuse the order status vocabulary.
var kitchenItemTransitions = map[string][]string{
	OrderPending:   {OrderPreparing},
	OrderPreparing: {OrderReady},
	OrderReady:     {},
}

func KitchenItemCanTransition(from, to string) bool {
	return contains(kitchenItemTransitions[from], to)
}

func ValidateKitchenItemTransition(from, to string) *Error {
	if !KitchenItemCanTransition(from, to) {
		return InvalidTransition("kitchen item", from, to)
	}
	return nil
}

// OrderStatusFromItems derives the order-level status implied by its item
// statuses after a kitchen transition. Once every item has at least started
// the order is preparing; once every item is plated the order is ready.
// Orders with no items never auto-transition. The second return value is
// false when no propagation applies from the current status.
func OrderStatusFromItems(current string, items []string) (string, bool) {
	if len(items) == 0 {
		return current, false
	}

	allReady := true
	allStarted := true
	for _, status := range items {
		switch status {
		case OrderReady, OrderServed:
		case OrderPreparing:
			allReady = false
		default:
			allReady = false
			allStarted = false
		}
	}

	if allReady && OrderCanTransition(current, OrderReady) {
		return OrderReady, true
	}
	if allStarted && OrderCanTransition(current, OrderPreparing) {
		return OrderPreparing, true
	}
	return current, false
}
