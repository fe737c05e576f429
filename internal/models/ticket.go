package models

import "time"

type TicketStatus string

const (
	// Tickets are only ever materialized after a successful settlement,
	// so PAID is the only status a row is created with.
	TicketPaid TicketStatus = "PAID"
)

// Ticket is a fulfillment artifact. Its UUID doubles as the QR payload.
type Ticket struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UUID      string       `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	UserID    string       `gorm:"not null" json:"user_id"`
	EventID   uint         `gorm:"not null" json:"event_id"`
	OrderID   uint         `gorm:"not null" json:"order_id"`
	PaymentID uint         `gorm:"not null" json:"payment_id"`
	Status    TicketStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	Attendance *Attendance `gorm:"foreignKey:TicketID" json:"attendance,omitempty"`
}

// Attendance tracks the check-in state of one ticket.
type Attendance struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TicketID    uint       `gorm:"uniqueIndex;not null" json:"ticket_id"`
	IsCheckedIn bool       `gorm:"not null;default:false" json:"is_checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CheckedInBy *string    `json:"checked_in_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
