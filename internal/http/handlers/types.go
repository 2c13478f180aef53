package handlers

import "time"

type TableView struct {
	ID         int64  `json:"id"`
	Number     string `json:"number"`
	Capacity   int32  `json:"capacity"`
	Section    string `json:"section"`
	IsActive   bool   `json:"isActive"`
	IsOccupied bool   `json:"isOccupied"`
}

type OrderItemAddOnView struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Quantity  int32   `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
}

type OrderItemView struct {
	ID                  int64                `json:"id"`
	MenuItemID          int64                `json:"menuItemId"`
	MenuItemName        string               `json:"menuItemName"`
	Quantity            int32                `json:"quantity"`
	UnitPrice           float64              `json:"unitPrice"`
	Subtotal            float64              `json:"subtotal"`
	Status              string               `json:"status"`
	SpecialInstructions *string              `json:"specialInstructions"`
	AddOns              []OrderItemAddOnView `json:"addons"`
}

type PaymentView struct {
	ID          int64      `json:"id"`
	Amount      float64    `json:"amount"`
	Method      string     `json:"paymentMethod"`
	Status      string     `json:"status"`
	ProcessedAt *time.Time `json:"processedAt"`
}

type OrderView struct {
	ID                  int64           `json:"id"`
	OrderNumber         string          `json:"orderNumber"`
	CustomerName        *string         `json:"customerName"`
	CustomerPhone       *string         `json:"customerPhone"`
	TableID             *int64          `json:"tableId"`
	TableNumber         *string         `json:"tableNumber"`
	OrderType           string          `json:"orderType"`
	Status              string          `json:"status"`
	Subtotal            float64         `json:"subtotal"`
	TaxAmount           float64         `json:"taxAmount"`
	DiscountAmount      float64         `json:"discountAmount"`
	TotalAmount         float64         `json:"totalAmount"`
	SpecialInstructions *string         `json:"specialInstructions"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	ConfirmedAt         *time.Time      `json:"confirmedAt"`
	ServedAt            *time.Time      `json:"servedAt"`
	CompletedAt         *time.Time      `json:"completedAt"`
	Items               []OrderItemView `json:"items"`
	Payments            []PaymentView   `json:"payments,omitempty"`
}

type KitchenDisplayView struct {
	ID                  int64      `json:"id"`
	OrderItemID         int64      `json:"orderItemId"`
	OrderNumber         string     `json:"orderNumber"`
	MenuItemName        string     `json:"menuItemName"`
	Quantity            int32      `json:"quantity"`
	ItemStatus          string     `json:"itemStatus"`
	Station             string     `json:"station"`
	Priority            int32      `json:"priority"`
	EstimatedCompletion time.Time  `json:"estimatedCompletion"`
	StartedAt           *time.Time `json:"startedAt"`
	CompletedAt         *time.Time `json:"completedAt"`
	IsOverdue           bool       `json:"isOverdue"`
	TableNumber         *string    `json:"tableNumber"`
}

type RoomView struct {
	ID           int64      `json:"id"`
	Number       string     `json:"number"`
	RoomType     string     `json:"roomType"`
	Floor        int32      `json:"floor"`
	Status       string     `json:"status"`
	LastCleaned  *time.Time `json:"lastCleaned"`
	IsActive     bool       `json:"isActive"`
	MaxOccupancy int32      `json:"maxOccupancy"`
	BasePrice    float64    `json:"basePrice"`
}

type RoomServiceView struct {
	ID          int64      `json:"id"`
	ServiceType string     `json:"serviceType"`
	Description string     `json:"description"`
	Priority    int32      `json:"priority"`
	Charge      float64    `json:"charge"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt"`
}

type BookingView struct {
	ID                int64             `json:"id"`
	BookingNumber     string            `json:"bookingNumber"`
	CustomerID        int64             `json:"customerId"`
	CustomerName      string            `json:"customerName"`
	RoomID            int64             `json:"roomId"`
	RoomNumber        string            `json:"roomNumber"`
	CheckInDate       string            `json:"checkInDate"`
	CheckOutDate      string            `json:"checkOutDate"`
	Nights            int32             `json:"nights"`
	Adults            int32             `json:"adults"`
	Children          int32             `json:"children"`
	RoomRate          float64           `json:"roomRate"`
	TotalRoomCharges  float64           `json:"totalRoomCharges"`
	TaxAmount         float64           `json:"taxAmount"`
	AdditionalCharges float64           `json:"additionalCharges"`
	DiscountAmount    float64           `json:"discountAmount"`
	TotalAmount       float64           `json:"totalAmount"`
	Status            string            `json:"status"`
	Source            string            `json:"source"`
	CheckedInAt       *time.Time        `json:"checkedInAt"`
	CheckedOutAt      *time.Time        `json:"checkedOutAt"`
	CreatedAt         time.Time         `json:"createdAt"`
	Services          []RoomServiceView `json:"services,omitempty"`
}

type ReservationHistoryView struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	PerformedBy *int64    `json:"performedBy"`
	Timestamp   time.Time `json:"timestamp"`
}

type ReservationNoteView struct {
	ID        int64     `json:"id"`
	Note      string    `json:"note"`
	CreatedBy *int64    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReservationView struct {
	ID                int64                    `json:"id"`
	ReservationNumber string                   `json:"reservationNumber"`
	CustomerID        int64                    `json:"customerId"`
	CustomerName      string                   `json:"customerName"`
	Date              string                   `json:"date"`
	Time              string                   `json:"time"`
	PartySize         int32                    `json:"partySize"`
	DurationHours     float64                  `json:"durationHours"`
	TableID           *int64                   `json:"tableId"`
	TableNumber       *string                  `json:"tableNumber"`
	Occasion          string                   `json:"occasion"`
	Status            string                   `json:"status"`
	SeatedAt          *time.Time               `json:"seatedAt"`
	CompletedAt       *time.Time               `json:"completedAt"`
	CreatedAt         time.Time                `json:"createdAt"`
	History           []ReservationHistoryView `json:"history,omitempty"`
	Notes             []ReservationNoteView    `json:"notes,omitempty"`
}

type CustomerView struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	TotalVisits int32      `json:"totalVisits"`
	TotalSpent  float64    `json:"totalSpent"`
	LastVisit   *time.Time `json:"lastVisit"`
	IsVIP       bool       `json:"isVip"`
}
