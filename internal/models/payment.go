package models

import "time"

type PaymentStatus string

const (
	PaymentInitiated        PaymentStatus = "INITIATED"
	PaymentAwaitingCallback PaymentStatus = "AWAITING_CALLBACK"
	PaymentSettled          PaymentStatus = "SETTLED"
	PaymentDeclined         PaymentStatus = "DECLINED"
)

// Terminal reports whether no further transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSettled || s == PaymentDeclined
}

type PaymentPurpose string

const (
	PurposeTicket PaymentPurpose = "TICKET"
	PurposeStall  PaymentPurpose = "STALL"
)

// Payment tracks one STK Push attempt against the Daraja gateway.
// CheckoutRequestID is nil until the synchronous ack returns; once set it
// never changes and is the only key the callback can be matched by.
type Payment struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CheckoutRequestID *string        `gorm:"type:varchar(50)" json:"checkout_request_id,omitempty"`
	MerchantRequestID string         `gorm:"type:varchar(50)" json:"merchant_request_id,omitempty"`
	Purpose           PaymentPurpose `gorm:"type:varchar(10);not null" json:"purpose"`
	Amount            float64        `gorm:"not null" json:"amount"`
	PhoneNumber       string         `gorm:"type:varchar(15);not null" json:"phone_number"`
	Status            PaymentStatus  `gorm:"type:varchar(20);not null;default:'INITIATED'" json:"status"`
	ReceiptNumber     *string        `gorm:"type:varchar(20)" json:"receipt_number,omitempty"`
	SettledAt         *time.Time     `json:"settled_at,omitempty"`
	ResultDesc        string         `json:"result_desc,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
