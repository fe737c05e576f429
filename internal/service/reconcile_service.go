package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/eventrift/payment-service/internal/models"
	"github.com/eventrift/payment-service/internal/repository"
	"github.com/eventrift/payment-service/pkg/daraja"
	"gorm.io/gorm"
)

var (
	// ErrUnknownCheckoutID marks a callback whose correlation id matches no
	// payment. Logged as a reconciliation anomaly; no state is touched.
	ErrUnknownCheckoutID = errors.New("callback for unknown checkout request id")

	// ErrDuplicateCallback marks a redelivery for an already-settled or
	// already-declined payment. Acknowledged without reapplying anything.
	ErrDuplicateCallback = errors.New("duplicate callback for terminal payment")

	ErrMalformedCallback = errors.New("malformed callback payload")
)

type ReconcileService interface {
	HandleCallback(ctx context.Context, cb *daraja.StkCallback) error
}

// Publisher is satisfied by pkg/rabbitmq.Publisher.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

type reconcileService struct {
	paymentRepo repository.PaymentRepository
	flows       map[models.PaymentPurpose]*Flow
	publisher   Publisher
}

func NewReconcileService(paymentRepo repository.PaymentRepository, publisher Publisher, flows ...*Flow) ReconcileService {
	byPurpose := make(map[models.PaymentPurpose]*Flow, len(flows))
	for _, f := range flows {
		byPurpose[f.Purpose] = f
	}
	return &reconcileService{
		paymentRepo: paymentRepo,
		flows:       byPurpose,
		publisher:   publisher,
	}
}

// settlementEvent is the payload published for the notification service once
// a payment reaches a terminal state.
type settlementEvent struct {
	PaymentID     uint                  `json:"payment_id"`
	Purpose       models.PaymentPurpose `json:"purpose"`
	Status        models.PaymentStatus  `json:"status"`
	ReceiptNumber string                `json:"receipt_number,omitempty"`
	ResultDesc    string                `json:"result_desc"`
}

// HandleCallback drives the settlement state machine for one callback
// delivery. The terminal transition and the fulfillment side effects commit
// in a single transaction; the conditional status update inside it is the
// idempotency gate that makes concurrent duplicate deliveries race safely.
func (s *reconcileService) HandleCallback(ctx context.Context, cb *daraja.StkCallback) error {
	if err := cb.Validate(); err != nil {
		log.Printf("[Reconciler] anomaly: %v", err)
		return fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	payment, err := s.paymentRepo.FindByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Reconciler] anomaly: callback for unknown CheckoutRequestID %s", cb.CheckoutRequestID)
			return ErrUnknownCheckoutID
		}
		return fmt.Errorf("lookup payment for checkout %s: %w", cb.CheckoutRequestID, err)
	}

	if payment.Status.Terminal() {
		log.Printf("[Reconciler] duplicate callback for payment %d (checkout %s, status %s)", payment.ID, cb.CheckoutRequestID, payment.Status)
		return ErrDuplicateCallback
	}

	flow, ok := s.flows[payment.Purpose]
	if !ok {
		return fmt.Errorf("no settlement flow registered for purpose %s", payment.Purpose)
	}

	var status models.PaymentStatus
	var receipt string
	err = s.paymentRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cb.Succeeded() {
			items := cb.CallbackMetadata.Item
			receipt, _ = items.String(daraja.MetaReceiptNumber)

			var settledAt *time.Time
			if t, ok := items.Time(daraja.MetaTransactionDate); ok {
				settledAt = &t
			}

			applied, err := s.paymentRepo.TransitionSettled(ctx, tx, payment.ID, receipt, settledAt, cb.ResultDesc)
			if err != nil {
				return fmt.Errorf("transition payment %d to SETTLED: %w", payment.ID, err)
			}
			if !applied {
				return ErrDuplicateCallback
			}

			status = models.PaymentSettled
			return flow.OnSettled(ctx, tx, payment)
		}

		applied, err := s.paymentRepo.TransitionDeclined(ctx, tx, payment.ID, cb.ResultDesc)
		if err != nil {
			return fmt.Errorf("transition payment %d to DECLINED: %w", payment.ID, err)
		}
		if !applied {
			return ErrDuplicateCallback
		}

		status = models.PaymentDeclined
		return flow.OnDeclined(ctx, tx, payment)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateCallback) {
			log.Printf("[Reconciler] duplicate callback lost the race for payment %d (checkout %s)", payment.ID, cb.CheckoutRequestID)
			return ErrDuplicateCallback
		}
		// The whole transaction rolled back: the payment is still
		// AWAITING_CALLBACK and needs a manual replay.
		log.Printf("[Reconciler] FATAL: reconciliation failed for payment %d (checkout %s), manual replay required: %v", payment.ID, cb.CheckoutRequestID, err)
		return err
	}

	log.Printf("[Reconciler] payment %d (checkout %s) %s: %s", payment.ID, cb.CheckoutRequestID, status, cb.ResultDesc)

	if s.publisher != nil {
		routingKey := "payment.settled"
		if status == models.PaymentDeclined {
			routingKey = "payment.declined"
		}
		_ = s.publisher.Publish(routingKey, settlementEvent{
			PaymentID:     payment.ID,
			Purpose:       payment.Purpose,
			Status:        status,
			ReceiptNumber: receipt,
			ResultDesc:    cb.ResultDesc,
		})
	}

	return nil
}
