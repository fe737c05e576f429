package service

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/eventrift/payment-service/internal/models"
	"github.com/eventrift/payment-service/internal/repository"
)

var (
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketAccessDenied = errors.New("ticket does not belong to this user")
	ErrInvalidQRCode      = errors.New("invalid qr code format")
	ErrAlreadyCheckedIn   = errors.New("ticket already checked in")
	ErrMissingAttendance  = errors.New("ticket has no attendance record")
)

type TicketService interface {
	ListUserTickets(ctx context.Context, userID string) ([]models.Ticket, error)
	GetTicket(ctx context.Context, uuid, userID string) (*models.Ticket, error)
	CheckIn(ctx context.Context, qrData, staffID string) (*models.Ticket, error)
}

type ticketService struct {
	ticketRepo repository.TicketRepository
	now        func() time.Time
}

func NewTicketService(ticketRepo repository.TicketRepository) TicketService {
	return &ticketService{ticketRepo: ticketRepo, now: time.Now}
}

func (s *ticketService) ListUserTickets(ctx context.Context, userID string) ([]models.Ticket, error) {
	return s.ticketRepo.FindByUserID(ctx, userID)
}

func (s *ticketService) GetTicket(ctx context.Context, uuid, userID string) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.FindByUUID(ctx, uuid)
	if err != nil {
		return nil, ErrTicketNotFound
	}
	if ticket.UserID != userID {
		return nil, ErrTicketAccessDenied
	}
	return ticket, nil
}

// CheckIn decodes a QR payload (base64 of the ticket UUID) and marks the
// ticket's attendance exactly once.
func (s *ticketService) CheckIn(ctx context.Context, qrData, staffID string) (*models.Ticket, error) {
	decoded, err := base64.StdEncoding.DecodeString(qrData)
	if err != nil {
		return nil, ErrInvalidQRCode
	}

	ticket, err := s.ticketRepo.FindByUUID(ctx, string(decoded))
	if err != nil {
		return nil, ErrTicketNotFound
	}

	if ticket.Attendance == nil {
		return nil, ErrMissingAttendance
	}
	if ticket.Attendance.IsCheckedIn {
		return nil, ErrAlreadyCheckedIn
	}

	// The conditional update is the authority: the pre-read above only gives
	// a friendly error, a concurrent check-in can still win between the two.
	at := s.now()
	applied, err := s.ticketRepo.CheckIn(ctx, s.ticketRepo.GetDB(), ticket.Attendance.ID, staffID, at)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrAlreadyCheckedIn
	}

	ticket.Attendance.IsCheckedIn = true
	ticket.Attendance.CheckedInAt = &at
	ticket.Attendance.CheckedInBy = &staffID
	return ticket, nil
}
