package service

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/eventrift/payment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestCheckIn_InvalidQRCode(t *testing.T) {
	svc := NewTicketService(&mockTicketRepo{})

	_, err := svc.CheckIn(context.Background(), "not-base64!!!", "staff-1")
	assert.ErrorIs(t, err, ErrInvalidQRCode)
}

func TestCheckIn_TicketNotFound(t *testing.T) {
	svc := NewTicketService(&mockTicketRepo{
		findByUUIDFn: func(ctx context.Context, uuid string) (*models.Ticket, error) {
			return nil, gorm.ErrRecordNotFound
		},
	})

	qr := base64.StdEncoding.EncodeToString([]byte("missing-uuid"))
	_, err := svc.CheckIn(context.Background(), qr, "staff-1")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestCheckIn_AlreadyCheckedIn(t *testing.T) {
	svc := NewTicketService(&mockTicketRepo{
		findByUUIDFn: func(ctx context.Context, uuid string) (*models.Ticket, error) {
			return &models.Ticket{
				UUID:       uuid,
				Status:     models.TicketPaid,
				Attendance: &models.Attendance{ID: 1, IsCheckedIn: true},
			}, nil
		},
	})

	qr := base64.StdEncoding.EncodeToString([]byte("some-uuid"))
	_, err := svc.CheckIn(context.Background(), qr, "staff-1")
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestCheckIn_LosesRaceToConcurrentCheckIn(t *testing.T) {
	// The pre-read sees the attendance open, but the conditional update
	// matches zero rows because another check-in landed in between.
	svc := NewTicketService(&mockTicketRepo{
		findByUUIDFn: func(ctx context.Context, uuid string) (*models.Ticket, error) {
			return &models.Ticket{
				UUID:       uuid,
				Status:     models.TicketPaid,
				Attendance: &models.Attendance{ID: 1, IsCheckedIn: false},
			}, nil
		},
		checkInFn: func(ctx context.Context, attendanceID uint, staffID string, at time.Time) (bool, error) {
			return false, nil
		},
	})

	qr := base64.StdEncoding.EncodeToString([]byte("some-uuid"))
	ticket, err := svc.CheckIn(context.Background(), qr, "staff-1")
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Nil(t, ticket)
}

func TestCheckIn_MissingAttendance(t *testing.T) {
	svc := NewTicketService(&mockTicketRepo{
		findByUUIDFn: func(ctx context.Context, uuid string) (*models.Ticket, error) {
			return &models.Ticket{UUID: uuid, Status: models.TicketPaid}, nil
		},
	})

	qr := base64.StdEncoding.EncodeToString([]byte("some-uuid"))
	_, err := svc.CheckIn(context.Background(), qr, "staff-1")
	assert.ErrorIs(t, err, ErrMissingAttendance)
}

func TestGetTicket_OwnershipEnforced(t *testing.T) {
	svc := NewTicketService(&mockTicketRepo{
		findByUUIDFn: func(ctx context.Context, uuid string) (*models.Ticket, error) {
			return &models.Ticket{UUID: uuid, UserID: "owner"}, nil
		},
	})

	_, err := svc.GetTicket(context.Background(), "uuid-1", "someone-else")
	assert.ErrorIs(t, err, ErrTicketAccessDenied)

	ticket, err := svc.GetTicket(context.Background(), "uuid-1", "owner")
	assert.NoError(t, err)
	assert.Equal(t, "owner", ticket.UserID)
}
