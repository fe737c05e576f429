package repository

import (
	"context"
	"time"

	"github.com/eventrift/payment-service/internal/models"
	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error
	CreateAttendance(ctx context.Context, tx *gorm.DB, attendance *models.Attendance) error
	FindByUUID(ctx context.Context, uuid string) (*models.Ticket, error)
	FindByUserID(ctx context.Context, userID string) ([]models.Ticket, error)
	CountByOrderID(ctx context.Context, orderID uint) (int64, error)
	CheckIn(ctx context.Context, tx *gorm.DB, attendanceID uint, staffID string, at time.Time) (bool, error)
	GetDB() *gorm.DB
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *ticketRepository) Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error {
	return tx.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepository) CreateAttendance(ctx context.Context, tx *gorm.DB, attendance *models.Attendance) error {
	return tx.WithContext(ctx).Create(attendance).Error
}

func (r *ticketRepository) FindByUUID(ctx context.Context, uuid string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).
		Preload("Attendance").
		Where("uuid = ?", uuid).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByUserID(ctx context.Context, userID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.db.WithContext(ctx).
		Preload("Attendance").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) CountByOrderID(ctx context.Context, orderID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count, err
}

// CheckIn flips an attendance row exactly once. The status guard decides
// concurrent check-ins: the loser matches zero rows and gets false back.
func (r *ticketRepository) CheckIn(ctx context.Context, tx *gorm.DB, attendanceID uint, staffID string, at time.Time) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Attendance{}).
		Where("id = ? AND is_checked_in = false", attendanceID).
		Updates(map[string]any{
			"is_checked_in": true,
			"checked_in_at": at,
			"checked_in_by": staffID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
