package daraja

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Metadata item names Daraja includes on successful settlements.
const (
	MetaReceiptNumber   = "MpesaReceiptNumber"
	MetaAmount          = "Amount"
	MetaTransactionDate = "TransactionDate"
	MetaPhoneNumber     = "PhoneNumber"
)

// CallbackEnvelope is the wire shape Daraja POSTs to the callback URL.
type CallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type StkCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item MetadataItems `json:"Item"`
	} `json:"CallbackMetadata"`
}

// Validate rejects callbacks that cannot reach the state machine: the
// correlation id is the only matching key, so its absence is fatal.
func (cb *StkCallback) Validate() error {
	if cb.CheckoutRequestID == "" {
		return errors.New("callback missing CheckoutRequestID")
	}
	return nil
}

// Succeeded reports whether the result code indicates a settled payment.
func (cb *StkCallback) Succeeded() bool {
	return cb.ResultCode == 0
}

type MetadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

// MetadataItems is the name/value list carried on successful callbacks.
// Lookups are tolerant of absent names: optional fields simply return the
// zero value and false.
type MetadataItems []MetadataItem

func (items MetadataItems) value(name string) (any, bool) {
	for _, item := range items {
		if item.Name == name {
			return item.Value, true
		}
	}
	return nil, false
}

// String returns the named item rendered as a string. Numeric values (JSON
// numbers decode as float64) are formatted without a fractional part when
// integral, matching how Daraja mixes types in the metadata list.
func (items MetadataItems) String(name string) (string, bool) {
	v, ok := items.value(name)
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprintf("%v", t), true
	}
}

func (items MetadataItems) Float(name string) (float64, bool) {
	v, ok := items.value(name)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Time parses the named item as a YYYYMMDDHHMMSS timestamp.
func (items MetadataItems) Time(name string) (time.Time, bool) {
	s, ok := items.String(name)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Ack is the success-shaped body every callback receives, regardless of the
// internal outcome. A non-success response would trigger gateway redelivery
// on top of application-level duplicates.
type Ack struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func AckReceived() Ack {
	return Ack{ResultCode: 0, ResultDesc: "Callback received successfully."}
}
