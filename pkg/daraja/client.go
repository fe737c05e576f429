package daraja

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrAuth marks a failed token exchange. Callers should abort the initiation
// attempt and leave the pending payment for a manual retry.
var ErrAuth = errors.New("daraja: token exchange failed")

// RequestError is returned when the gateway rejects an STK Push request.
// Raw carries the gateway's unparsed payload for diagnostics.
type RequestError struct {
	StatusCode int
	Code       string
	Message    string
	Raw        json.RawMessage
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("daraja: request rejected (status %d, code %q): %s", e.StatusCode, e.Code, e.Message)
}

type Config struct {
	BaseURL         string
	ConsumerKey     string
	ConsumerSecret  string
	ShortCode       string
	Passkey         string
	CallbackBaseURL string
	TransactionType string
}

type Client struct {
	cfg  Config
	http *http.Client

	// token cache: the only cross-request mutable state in the process.
	// mu guards the whole check-then-refresh so concurrent initiations
	// never fire duplicate token exchanges.
	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time

	now func() time.Time
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
		now:  time.Now,
	}
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int    `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPush initiates a push payment and returns the gateway's synchronous ack.
// The returned CheckoutRequestID must be persisted immediately: it is the only
// key by which the asynchronous callback can be matched later. callbackPath is
// appended to the configured callback base URL so each flow receives its
// callbacks on its own route; an empty path sends the base URL as-is.
func (c *Client) STKPush(ctx context.Context, amount int, phoneNumber, accountRef, description, callbackPath string) (*STKPushResponse, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("daraja: amount must be positive, got %d", amount)
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	password, timestamp := Password(c.cfg.ShortCode, c.cfg.Passkey, c.now())
	phone := NormalizePhone(phoneNumber)

	callbackURL := c.cfg.CallbackBaseURL
	if callbackPath != "" {
		callbackURL = strings.TrimSuffix(c.cfg.CallbackBaseURL, "/") + callbackPath
	}

	payload := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   c.cfg.TransactionType,
		Amount:            amount,
		PartyA:            phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       callbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("daraja: marshal stk push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("daraja: build stk push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("stk push transport failure: %v", err)}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &RequestError{StatusCode: res.StatusCode, Message: fmt.Sprintf("read stk push response: %v", err)}
	}

	var parsed STKPushResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || res.StatusCode != http.StatusOK {
		return nil, &RequestError{
			StatusCode: res.StatusCode,
			Message:    "stk push rejected by gateway",
			Raw:        json.RawMessage(raw),
		}
	}

	if parsed.ResponseCode != "0" {
		return nil, &RequestError{
			StatusCode: res.StatusCode,
			Code:       parsed.ResponseCode,
			Message:    parsed.ResponseDescription,
			Raw:        json.RawMessage(raw),
		}
	}

	return &parsed, nil
}
