package repository

import (
	"context"
	"time"

	"github.com/eventrift/payment-service/internal/models"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Payment, error)
	AttachGatewayIDs(ctx context.Context, paymentID uint, checkoutRequestID, merchantRequestID string) (bool, error)
	MarkInitiationDeclined(ctx context.Context, tx *gorm.DB, paymentID uint, resultDesc string) error
	TransitionSettled(ctx context.Context, tx *gorm.DB, paymentID uint, receiptNumber string, settledAt *time.Time, resultDesc string) (bool, error)
	TransitionDeclined(ctx context.Context, tx *gorm.DB, paymentID uint, resultDesc string) (bool, error)
	GetDB() *gorm.DB
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *paymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("checkout_request_id = ?", checkoutRequestID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// AttachGatewayIDs stores the correlation identifiers from the synchronous ack
// and moves the payment to AWAITING_CALLBACK. Write-once: it only applies
// while the payment is still INITIATED; the caller must treat a false return
// as a lost correlation, since the callback will carry ids we never stored.
func (r *paymentRepository) AttachGatewayIDs(ctx context.Context, paymentID uint, checkoutRequestID, merchantRequestID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentInitiated).
		Updates(map[string]any{
			"checkout_request_id": checkoutRequestID,
			"merchant_request_id": merchantRequestID,
			"status":              models.PaymentAwaitingCallback,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkInitiationDeclined finalizes a payment whose STK push was rejected
// synchronously, before any callback could exist.
func (r *paymentRepository) MarkInitiationDeclined(ctx context.Context, tx *gorm.DB, paymentID uint, resultDesc string) error {
	return tx.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status IN ?", paymentID, []models.PaymentStatus{models.PaymentInitiated, models.PaymentAwaitingCallback}).
		Updates(map[string]any{
			"status":      models.PaymentDeclined,
			"result_desc": resultDesc,
		}).Error
}

// TransitionSettled applies the terminal success transition. The WHERE clause
// on the current status is the idempotency gate: concurrent duplicate
// callbacks race here and exactly one sees rows affected.
func (r *paymentRepository) TransitionSettled(ctx context.Context, tx *gorm.DB, paymentID uint, receiptNumber string, settledAt *time.Time, resultDesc string) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentAwaitingCallback).
		Updates(map[string]any{
			"status":         models.PaymentSettled,
			"receipt_number": receiptNumber,
			"settled_at":     settledAt,
			"result_desc":    resultDesc,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *paymentRepository) TransitionDeclined(ctx context.Context, tx *gorm.DB, paymentID uint, resultDesc string) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentAwaitingCallback).
		Updates(map[string]any{
			"status":      models.PaymentDeclined,
			"result_desc": resultDesc,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
