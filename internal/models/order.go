package models

import "time"

type OrderStatus string

const (
	OrderPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderFulfilled      OrderStatus = "FULFILLED"
	OrderConfirmed      OrderStatus = "CONFIRMED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// TicketOrder is the parent record of a ticket purchase. It is created
// together with its Payment, before the gateway is contacted.
type TicketOrder struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    string      `gorm:"not null" json:"user_id"`
	EventID   uint        `gorm:"not null" json:"event_id"`
	Quantity  int         `gorm:"not null" json:"quantity"`
	PaymentID uint        `gorm:"uniqueIndex;not null" json:"payment_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING_PAYMENT'" json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	Payment *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	Event   *Event   `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// StallType defines a bookable stall category (e.g. Food, Merch) and its price.
type StallType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Price       float64   `gorm:"not null" json:"price"`
	Size        string    `json:"size,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type StallBooking struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	VendorID        string      `gorm:"not null" json:"vendor_id"`
	EventID         uint        `gorm:"not null" json:"event_id"`
	StallTypeID     uint        `gorm:"not null" json:"stall_type_id"`
	PaymentID       uint        `gorm:"uniqueIndex;not null" json:"payment_id"`
	BusinessName    string      `gorm:"not null" json:"business_name"`
	ProductsOffered string      `json:"products_offered,omitempty"`
	StallLocation   string      `json:"stall_location,omitempty"`
	Status          OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING_PAYMENT'" json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	Payment   *Payment   `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	StallType *StallType `gorm:"foreignKey:StallTypeID" json:"stall_type,omitempty"`
}
