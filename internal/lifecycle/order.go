package lifecycle

// Order statuses. An order moves forward through the kitchen flow and can
// be cancelled from any non-terminal status except served.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderServed    = "served"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

var orderTransitions = map[string][]string{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderPreparing, OrderCancelled},
	OrderPreparing: {OrderReady, OrderServed, OrderCancelled},
	OrderReady:     {OrderServed, OrderCancelled},
	OrderServed:    {OrderCompleted},
	OrderCompleted: {},
	OrderCancelled: {},
}

func OrderCanTransition(from, to string) bool {
	return contains(orderTransitions[from], to)
}

func ValidateOrderTransition(from, to string) *Error {
	if !OrderCanTransition(from, to) {
		return InvalidTransition("order", from, to)
	}
	return nil
}

func ValidOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return ok
}

func ValidOrderType(orderType string) bool {
	switch orderType {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

// OrderIsActive reports whether the order still occupies kitchen or table
// resources.
func OrderIsActive(status string) bool {
	return status != OrderCompleted && status != OrderCancelled
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
