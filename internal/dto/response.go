package dto

import (
	"time"

	"github.com/eventrift/payment-service/internal/models"
)

// InitiationResponse answers a checkout request. The settlement outcome is
// asynchronous; clients poll the order endpoint to observe the final state.
type InitiationResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	OrderID           uint   `json:"order_id,omitempty"`
	CheckoutRequestID string `json:"checkout_request_id,omitempty"`
}

type PaymentResponse struct {
	ID                uint                  `json:"id"`
	CheckoutRequestID *string               `json:"checkout_request_id,omitempty"`
	Amount            float64               `json:"amount"`
	PhoneNumber       string                `json:"phone_number"`
	Status            models.PaymentStatus  `json:"status"`
	ReceiptNumber     *string               `json:"receipt_number,omitempty"`
	SettledAt         *time.Time            `json:"settled_at,omitempty"`
	Purpose           models.PaymentPurpose `json:"purpose"`
}

type TicketOrderResponse struct {
	ID        uint               `json:"id"`
	UserID    string             `json:"user_id"`
	EventID   uint               `json:"event_id"`
	Quantity  int                `json:"quantity"`
	Status    models.OrderStatus `json:"status"`
	Payment   *PaymentResponse   `json:"payment,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

type StallBookingResponse struct {
	ID              uint               `json:"id"`
	VendorID        string             `json:"vendor_id"`
	EventID         uint               `json:"event_id"`
	StallTypeID     uint               `json:"stall_type_id"`
	BusinessName    string             `json:"business_name"`
	ProductsOffered string             `json:"products_offered,omitempty"`
	StallLocation   string             `json:"stall_location,omitempty"`
	Status          models.OrderStatus `json:"status"`
	Payment         *PaymentResponse   `json:"payment,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

type AttendanceResponse struct {
	IsCheckedIn bool       `json:"is_checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CheckedInBy *string    `json:"checked_in_by,omitempty"`
}

type TicketResponse struct {
	UUID       string              `json:"uuid"`
	UserID     string              `json:"user_id"`
	EventID    uint                `json:"event_id"`
	Status     models.TicketStatus `json:"status"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToPaymentResponse(p *models.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:                p.ID,
		CheckoutRequestID: p.CheckoutRequestID,
		Amount:            p.Amount,
		PhoneNumber:       p.PhoneNumber,
		Status:            p.Status,
		ReceiptNumber:     p.ReceiptNumber,
		SettledAt:         p.SettledAt,
		Purpose:           p.Purpose,
	}
}

func ToTicketOrderResponse(o *models.TicketOrder) TicketOrderResponse {
	return TicketOrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		EventID:   o.EventID,
		Quantity:  o.Quantity,
		Status:    o.Status,
		Payment:   ToPaymentResponse(o.Payment),
		CreatedAt: o.CreatedAt,
	}
}

func ToStallBookingResponse(b *models.StallBooking) StallBookingResponse {
	return StallBookingResponse{
		ID:              b.ID,
		VendorID:        b.VendorID,
		EventID:         b.EventID,
		StallTypeID:     b.StallTypeID,
		BusinessName:    b.BusinessName,
		ProductsOffered: b.ProductsOffered,
		StallLocation:   b.StallLocation,
		Status:          b.Status,
		Payment:         ToPaymentResponse(b.Payment),
		CreatedAt:       b.CreatedAt,
	}
}

func ToTicketResponse(t *models.Ticket) TicketResponse {
	resp := TicketResponse{
		UUID:      t.UUID,
		UserID:    t.UserID,
		EventID:   t.EventID,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
	}
	if t.Attendance != nil {
		resp.Attendance = &AttendanceResponse{
			IsCheckedIn: t.Attendance.IsCheckedIn,
			CheckedInAt: t.Attendance.CheckedInAt,
			CheckedInBy: t.Attendance.CheckedInBy,
		}
	}
	return resp
}
