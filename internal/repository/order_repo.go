package repository

import (
	"context"

	"github.com/eventrift/payment-service/internal/models"
	"gorm.io/gorm"
)

type TicketOrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.TicketOrder) error
	FindByID(ctx context.Context, id uint) (*models.TicketOrder, error)
	FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID uint) (*models.TicketOrder, error)
	FindByUserID(ctx context.Context, userID string) ([]models.TicketOrder, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, status models.OrderStatus) error
}

type ticketOrderRepository struct {
	db *gorm.DB
}

func NewTicketOrderRepository(db *gorm.DB) TicketOrderRepository {
	return &ticketOrderRepository{db: db}
}

func (r *ticketOrderRepository) Create(ctx context.Context, tx *gorm.DB, order *models.TicketOrder) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *ticketOrderRepository) FindByID(ctx context.Context, id uint) (*models.TicketOrder, error) {
	var order models.TicketOrder
	if err := r.db.WithContext(ctx).Preload("Payment").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByPaymentID resolves the order linked to a matched payment inside the
// reconciliation transaction. The row lock serializes against concurrent
// fulfillment of the same order.
func (r *ticketOrderRepository) FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID uint) (*models.TicketOrder, error) {
	var order models.TicketOrder
	err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		Where("payment_id = ?", paymentID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *ticketOrderRepository) FindByUserID(ctx context.Context, userID string) ([]models.TicketOrder, error) {
	var orders []models.TicketOrder
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *ticketOrderRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, status models.OrderStatus) error {
	return tx.WithContext(ctx).
		Model(&models.TicketOrder{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}
