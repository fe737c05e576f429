package service

import (
	"context"
	"fmt"

	"github.com/eventrift/payment-service/internal/models"
	"github.com/eventrift/payment-service/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FulfillmentEngine materializes purchased artifacts once a payment settles,
// and voids the parent order when it declines. All of its work runs inside
// the reconciliation transaction: a SETTLED payment with no fulfillment must
// never be observable.
type FulfillmentEngine struct {
	orderRepo  repository.TicketOrderRepository
	stallRepo  repository.StallBookingRepository
	ticketRepo repository.TicketRepository
}

func NewFulfillmentEngine(
	orderRepo repository.TicketOrderRepository,
	stallRepo repository.StallBookingRepository,
	ticketRepo repository.TicketRepository,
) *FulfillmentEngine {
	return &FulfillmentEngine{
		orderRepo:  orderRepo,
		stallRepo:  stallRepo,
		ticketRepo: ticketRepo,
	}
}

// TicketFlow configures the settlement workflow for ticket purchases.
func (f *FulfillmentEngine) TicketFlow() *Flow {
	return &Flow{
		Purpose:          models.PurposeTicket,
		AccountRefPrefix: "TICKET",
		CallbackPath:     "/api/v1/payments/callback/ticket",
		OnSettled:        f.fulfillTicketOrder,
		OnDeclined:       f.cancelTicketOrder,
	}
}

// StallFlow configures the settlement workflow for vendor stall bookings.
func (f *FulfillmentEngine) StallFlow() *Flow {
	return &Flow{
		Purpose:          models.PurposeStall,
		AccountRefPrefix: "STALL",
		CallbackPath:     "/api/v1/payments/callback/stall",
		OnSettled:        f.confirmStallBooking,
		OnDeclined:       f.cancelStallBooking,
	}
}

// fulfillTicketOrder creates exactly Quantity tickets, each paired with a
// fresh attendance row, and flips the order to FULFILLED. Buyer, event and
// quantity are read from the order linked to the matched payment, never from
// caller-supplied values.
func (f *FulfillmentEngine) fulfillTicketOrder(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	order, err := f.orderRepo.FindByPaymentID(ctx, tx, payment.ID)
	if err != nil {
		return fmt.Errorf("load ticket order for payment %d: %w", payment.ID, err)
	}
	if order.Status != models.OrderPendingPayment {
		return fmt.Errorf("ticket order %d in unexpected status %s", order.ID, order.Status)
	}

	for i := 0; i < order.Quantity; i++ {
		ticket := &models.Ticket{
			UUID:      uuid.NewString(),
			UserID:    order.UserID,
			EventID:   order.EventID,
			OrderID:   order.ID,
			PaymentID: payment.ID,
			Status:    models.TicketPaid,
		}
		if err := f.ticketRepo.Create(ctx, tx, ticket); err != nil {
			return fmt.Errorf("create ticket %d/%d for order %d: %w", i+1, order.Quantity, order.ID, err)
		}
		attendance := &models.Attendance{
			TicketID:    ticket.ID,
			IsCheckedIn: false,
		}
		if err := f.ticketRepo.CreateAttendance(ctx, tx, attendance); err != nil {
			return fmt.Errorf("create attendance for ticket %s: %w", ticket.UUID, err)
		}
	}

	if err := f.orderRepo.UpdateStatus(ctx, tx, order.ID, models.OrderFulfilled); err != nil {
		return fmt.Errorf("mark ticket order %d fulfilled: %w", order.ID, err)
	}
	return nil
}

func (f *FulfillmentEngine) cancelTicketOrder(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	order, err := f.orderRepo.FindByPaymentID(ctx, tx, payment.ID)
	if err != nil {
		return fmt.Errorf("load ticket order for payment %d: %w", payment.ID, err)
	}
	return f.orderRepo.UpdateStatus(ctx, tx, order.ID, models.OrderCancelled)
}

func (f *FulfillmentEngine) confirmStallBooking(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	booking, err := f.stallRepo.FindByPaymentID(ctx, tx, payment.ID)
	if err != nil {
		return fmt.Errorf("load stall booking for payment %d: %w", payment.ID, err)
	}
	if booking.Status != models.OrderPendingPayment {
		return fmt.Errorf("stall booking %d in unexpected status %s", booking.ID, booking.Status)
	}
	return f.stallRepo.UpdateStatus(ctx, tx, booking.ID, models.OrderConfirmed)
}

func (f *FulfillmentEngine) cancelStallBooking(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	booking, err := f.stallRepo.FindByPaymentID(ctx, tx, payment.ID)
	if err != nil {
		return fmt.Errorf("load stall booking for payment %d: %w", payment.ID, err)
	}
	return f.stallRepo.UpdateStatus(ctx, tx, booking.ID, models.OrderCancelled)
}
