package database

import (
	"log"

	"github.com/eventrift/payment-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Event{},
		&models.StallType{},
		&models.Payment{},
		&models.TicketOrder{},
		&models.StallBooking{},
		&models.Ticket{},
		&models.Attendance{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial unique index: one live payment per gateway correlation id.
	// CheckoutRequestID is null until the synchronous ack returns.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_checkout_request
		ON payments (checkout_request_id)
		WHERE checkout_request_id IS NOT NULL
	`)

	return db
}
