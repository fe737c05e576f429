package service

import (
	"context"
	"time"

	"github.com/eventrift/payment-service/internal/models"
	"github.com/eventrift/payment-service/pkg/daraja"
	"gorm.io/gorm"
)

// --- Mock PaymentRepository ---

type mockPaymentRepo struct {
	findByCheckoutFn func(ctx context.Context, checkoutRequestID string) (*models.Payment, error)
	findByIDFn       func(ctx context.Context, id uint) (*models.Payment, error)
}

func (m *mockPaymentRepo) Create(ctx context.Context, tx *gorm.DB, p *models.Payment) error {
	return nil
}
func (m *mockPaymentRepo) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockPaymentRepo) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Payment, error) {
	return m.findByCheckoutFn(ctx, checkoutRequestID)
}
func (m *mockPaymentRepo) AttachGatewayIDs(ctx context.Context, paymentID uint, checkoutRequestID, merchantRequestID string) (bool, error) {
	return true, nil
}
func (m *mockPaymentRepo) MarkInitiationDeclined(ctx context.Context, tx *gorm.DB, paymentID uint, resultDesc string) error {
	return nil
}
func (m *mockPaymentRepo) TransitionSettled(ctx context.Context, tx *gorm.DB, paymentID uint, receiptNumber string, settledAt *time.Time, resultDesc string) (bool, error) {
	return false, nil
}
func (m *mockPaymentRepo) TransitionDeclined(ctx context.Context, tx *gorm.DB, paymentID uint, resultDesc string) (bool, error) {
	return false, nil
}
func (m *mockPaymentRepo) GetDB() *gorm.DB { return nil }

// --- Mock EventRepository ---

type mockEventRepo struct {
	findByIDFn func(ctx context.Context, id uint) (*models.Event, error)
}

func (m *mockEventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}

// --- Mock StallTypeRepository ---

type mockStallTypeRepo struct {
	findByIDFn func(ctx context.Context, id uint) (*models.StallType, error)
}

func (m *mockStallTypeRepo) FindByID(ctx context.Context, id uint) (*models.StallType, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockStallTypeRepo) FindAll(ctx context.Context) ([]models.StallType, error) {
	return nil, nil
}

// --- Mock TicketRepository ---

type mockTicketRepo struct {
	findByUUIDFn func(ctx context.Context, uuid string) (*models.Ticket, error)
	checkInFn    func(ctx context.Context, attendanceID uint, staffID string, at time.Time) (bool, error)
}

func (m *mockTicketRepo) Create(ctx context.Context, tx *gorm.DB, t *models.Ticket) error { return nil }
func (m *mockTicketRepo) CreateAttendance(ctx context.Context, tx *gorm.DB, a *models.Attendance) error {
	return nil
}
func (m *mockTicketRepo) FindByUUID(ctx context.Context, uuid string) (*models.Ticket, error) {
	return m.findByUUIDFn(ctx, uuid)
}
func (m *mockTicketRepo) FindByUserID(ctx context.Context, userID string) ([]models.Ticket, error) {
	return nil, nil
}
func (m *mockTicketRepo) CountByOrderID(ctx context.Context, orderID uint) (int64, error) {
	return 0, nil
}
func (m *mockTicketRepo) CheckIn(ctx context.Context, tx *gorm.DB, attendanceID uint, staffID string, at time.Time) (bool, error) {
	if m.checkInFn != nil {
		return m.checkInFn(ctx, attendanceID, staffID, at)
	}
	return true, nil
}
func (m *mockTicketRepo) GetDB() *gorm.DB { return nil }

// --- Mock Gateway ---

type mockGateway struct {
	stkPushFn func(ctx context.Context, amount int, phoneNumber, accountRef, description, callbackPath string) (*daraja.STKPushResponse, error)
}

func (m *mockGateway) STKPush(ctx context.Context, amount int, phoneNumber, accountRef, description, callbackPath string) (*daraja.STKPushResponse, error) {
	return m.stkPushFn(ctx, amount, phoneNumber, accountRef, description, callbackPath)
}
