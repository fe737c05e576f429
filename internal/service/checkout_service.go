package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/eventrift/payment-service/internal/models"
	"github.com/eventrift/payment-service/internal/repository"
	"github.com/eventrift/payment-service/pkg/daraja"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrStallTypeNotFound = errors.New("stall type not found")
	ErrBookingClosed     = errors.New("booking is not open")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrFractionalAmount  = errors.New("amount must be a whole number")
)

// Gateway is the slice of the Daraja client the checkout flow needs.
type Gateway interface {
	STKPush(ctx context.Context, amount int, phoneNumber, accountRef, description, callbackPath string) (*daraja.STKPushResponse, error)
}

// InitiationResult is returned to the purchaser after a successful STK push.
// The final outcome arrives later via the gateway callback; clients poll the
// order status to observe it.
type InitiationResult struct {
	OrderID           uint
	PaymentID         uint
	CheckoutRequestID string
	CustomerMessage   string
}

type CheckoutService interface {
	CreateTicketOrder(ctx context.Context, userID string, eventID uint, quantity int, phoneNumber string) (*InitiationResult, error)
	BookStall(ctx context.Context, vendorID string, eventID, stallTypeID uint, businessName, productsOffered, phoneNumber string) (*InitiationResult, error)
}

type checkoutService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.TicketOrderRepository
	stallRepo   repository.StallBookingRepository
	typeRepo    repository.StallTypeRepository
	eventRepo   repository.EventRepository
	gateway     Gateway

	ticketFlow *Flow
	stallFlow  *Flow

	now func() time.Time
}

func NewCheckoutService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.TicketOrderRepository,
	stallRepo repository.StallBookingRepository,
	typeRepo repository.StallTypeRepository,
	eventRepo repository.EventRepository,
	gateway Gateway,
	ticketFlow, stallFlow *Flow,
) CheckoutService {
	return &checkoutService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		stallRepo:   stallRepo,
		typeRepo:    typeRepo,
		eventRepo:   eventRepo,
		gateway:     gateway,
		ticketFlow:  ticketFlow,
		stallFlow:   stallFlow,
		now:         time.Now,
	}
}

func (s *checkoutService) CreateTicketOrder(ctx context.Context, userID string, eventID uint, quantity int, phoneNumber string) (*InitiationResult, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, ErrEventNotFound
	}

	now := s.now()
	if now.Before(event.BookingStartAt) || now.After(event.BookingEndAt) {
		return nil, ErrBookingClosed
	}

	amount := event.TicketPrice * float64(quantity)
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	// Durable pending records exist before any network call.
	payment := &models.Payment{
		Purpose:     models.PurposeTicket,
		Amount:      amount,
		PhoneNumber: daraja.NormalizePhone(phoneNumber),
		Status:      models.PaymentInitiated,
	}
	var order *models.TicketOrder
	err = s.paymentRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return err
		}
		order = &models.TicketOrder{
			UserID:    userID,
			EventID:   eventID,
			Quantity:  quantity,
			PaymentID: payment.ID,
			Status:    models.OrderPendingPayment,
		}
		return s.orderRepo.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("create pending ticket order: %w", err)
	}

	description := fmt.Sprintf("%d ticket(s) for %s", quantity, event.Name)
	return s.initiate(ctx, payment, s.ticketFlow, order.ID, description, func(tx *gorm.DB) error {
		return s.orderRepo.UpdateStatus(ctx, tx, order.ID, models.OrderCancelled)
	})
}

func (s *checkoutService) BookStall(ctx context.Context, vendorID string, eventID, stallTypeID uint, businessName, productsOffered, phoneNumber string) (*InitiationResult, error) {
	stallType, err := s.typeRepo.FindByID(ctx, stallTypeID)
	if err != nil {
		return nil, ErrStallTypeNotFound
	}

	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, ErrEventNotFound
	}

	if err := validateAmount(stallType.Price); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		Purpose:     models.PurposeStall,
		Amount:      stallType.Price,
		PhoneNumber: daraja.NormalizePhone(phoneNumber),
		Status:      models.PaymentInitiated,
	}
	var booking *models.StallBooking
	err = s.paymentRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return err
		}
		booking = &models.StallBooking{
			VendorID:        vendorID,
			EventID:         eventID,
			StallTypeID:     stallTypeID,
			PaymentID:       payment.ID,
			BusinessName:    businessName,
			ProductsOffered: productsOffered,
			Status:          models.OrderPendingPayment,
		}
		return s.stallRepo.Create(ctx, tx, booking)
	})
	if err != nil {
		return nil, fmt.Errorf("create pending stall booking: %w", err)
	}

	description := fmt.Sprintf("Stall booking: %s for event %d", stallType.Name, eventID)
	return s.initiate(ctx, payment, s.stallFlow, booking.ID, description, func(tx *gorm.DB) error {
		return s.stallRepo.UpdateStatus(ctx, tx, booking.ID, models.OrderCancelled)
	})
}

// initiate sends the STK push and persists the correlation identifiers from
// the synchronous ack. An auth failure leaves the payment INITIATED for a
// manual retry; a gateway rejection finalizes the attempt as DECLINED and
// cancels the parent order.
func (s *checkoutService) initiate(ctx context.Context, payment *models.Payment, flow *Flow, orderID uint, description string, cancelOrder func(tx *gorm.DB) error) (*InitiationResult, error) {
	accountRef := fmt.Sprintf("%s-%d-%s", flow.AccountRefPrefix, orderID, s.now().Format(daraja.TimestampLayout))

	res, err := s.gateway.STKPush(ctx, int(payment.Amount), payment.PhoneNumber, accountRef, description, flow.CallbackPath)
	if err != nil {
		if errors.Is(err, daraja.ErrAuth) {
			log.Printf("[Checkout] token exchange failed, payment %d left INITIATED: %v", payment.ID, err)
			return nil, err
		}

		var reqErr *daraja.RequestError
		if errors.As(err, &reqErr) {
			declineErr := s.paymentRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := s.paymentRepo.MarkInitiationDeclined(ctx, tx, payment.ID, reqErr.Message); err != nil {
					return err
				}
				return cancelOrder(tx)
			})
			if declineErr != nil {
				log.Printf("[Checkout] failed to decline payment %d after gateway rejection: %v", payment.ID, declineErr)
			}
		}
		return nil, err
	}

	applied, err := s.paymentRepo.AttachGatewayIDs(ctx, payment.ID, res.CheckoutRequestID, res.MerchantRequestID)
	if err == nil && !applied {
		err = fmt.Errorf("payment %d is no longer INITIATED", payment.ID)
	}
	if err != nil {
		// The push went out but we lost the correlation id: the callback can
		// never be matched. Logged for manual reconciliation.
		log.Printf("[Checkout] FATAL: failed to store gateway ids for payment %d (checkout %s): %v", payment.ID, res.CheckoutRequestID, err)
		return nil, fmt.Errorf("store gateway correlation ids: %w", err)
	}

	return &InitiationResult{
		OrderID:           orderID,
		PaymentID:         payment.ID,
		CheckoutRequestID: res.CheckoutRequestID,
		CustomerMessage:   res.CustomerMessage,
	}, nil
}

// validateAmount rejects non-positive and fractional totals before the
// gateway layer, which only accepts positive whole amounts.
func validateAmount(amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount != math.Trunc(amount) {
		return ErrFractionalAmount
	}
	return nil
}
