package models

import "time"

// Event is a read model synced from the Event Service via RabbitMQ.
type Event struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	TicketPrice    float64   `gorm:"not null" json:"ticket_price"`
	BookingStartAt time.Time `gorm:"not null" json:"booking_start_at"`
	BookingEndAt   time.Time `gorm:"not null" json:"booking_end_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
