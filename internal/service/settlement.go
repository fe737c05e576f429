package service

import (
	"context"

	"github.com/eventrift/payment-service/internal/models"
	"gorm.io/gorm"
)

// Flow binds one order variant (ticket purchase, stall booking) to the shared
// settlement state machine. The ticket and stall flows are two configurations
// of the same machine, not separate handlers.
type Flow struct {
	Purpose models.PaymentPurpose

	// AccountRefPrefix leads the gateway account reference
	// (e.g. "TICKET-42-20260831120000").
	AccountRefPrefix string

	// CallbackPath is the per-flow webhook route. It is mounted on the HTTP
	// server and appended to the callback base URL sent with each STK push.
	// Matching is still done by correlation id; the path is advisory.
	CallbackPath string

	// OnSettled materializes the purchased artifacts inside the reconciliation
	// transaction. It must commit or roll back together with the payment's
	// terminal status transition.
	OnSettled func(ctx context.Context, tx *gorm.DB, payment *models.Payment) error

	// OnDeclined cancels the parent order inside the same transaction.
	OnDeclined func(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
}
