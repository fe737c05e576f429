package repository

import (
	"context"

	"github.com/eventrift/payment-service/internal/models"
	"gorm.io/gorm"
)

type StallTypeRepository interface {
	FindByID(ctx context.Context, id uint) (*models.StallType, error)
	FindAll(ctx context.Context) ([]models.StallType, error)
}

type stallTypeRepository struct {
	db *gorm.DB
}

func NewStallTypeRepository(db *gorm.DB) StallTypeRepository {
	return &stallTypeRepository{db: db}
}

func (r *stallTypeRepository) FindByID(ctx context.Context, id uint) (*models.StallType, error) {
	var st models.StallType
	if err := r.db.WithContext(ctx).First(&st, id).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *stallTypeRepository) FindAll(ctx context.Context) ([]models.StallType, error) {
	var types []models.StallType
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

type StallBookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.StallBooking) error
	FindByID(ctx context.Context, id uint) (*models.StallBooking, error)
	FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID uint) (*models.StallBooking, error)
	FindByVendorID(ctx context.Context, vendorID string) ([]models.StallBooking, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.OrderStatus) error
}

type stallBookingRepository struct {
	db *gorm.DB
}

func NewStallBookingRepository(db *gorm.DB) StallBookingRepository {
	return &stallBookingRepository{db: db}
}

func (r *stallBookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.StallBooking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *stallBookingRepository) FindByID(ctx context.Context, id uint) (*models.StallBooking, error) {
	var booking models.StallBooking
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Preload("StallType").
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *stallBookingRepository) FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID uint) (*models.StallBooking, error) {
	var booking models.StallBooking
	err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		Where("payment_id = ?", paymentID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *stallBookingRepository) FindByVendorID(ctx context.Context, vendorID string) ([]models.StallBooking, error) {
	var bookings []models.StallBooking
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Preload("StallType").
		Where("vendor_id = ?", vendorID).
		Order("id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *stallBookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.OrderStatus) error {
	return tx.WithContext(ctx).
		Model(&models.StallBooking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
}
