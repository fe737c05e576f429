package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eventrift/payment-service/internal/service"
	"github.com/eventrift/payment-service/pkg/daraja"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// --- Mock ReconcileService ---

type mockReconciler struct {
	handleFn func(ctx context.Context, cb *daraja.StkCallback) error
}

func (m *mockReconciler) HandleCallback(ctx context.Context, cb *daraja.StkCallback) error {
	return m.handleFn(ctx, cb)
}

func postCallback(t *testing.T, h *CallbackHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback/ticket", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.HandleCallback(c))
	return rec
}

func assertAck(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusOK, rec.Code)

	var ack daraja.Ack
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, 0, ack.ResultCode)
}

func TestHandleCallback_Success(t *testing.T) {
	var received *daraja.StkCallback
	h := NewCallbackHandler(&mockReconciler{
		handleFn: func(ctx context.Context, cb *daraja.StkCallback) error {
			received = cb
			return nil
		},
	})

	body := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_1","ResultCode":0,"ResultDesc":"ok"}}}`
	rec := postCallback(t, h, body)

	assertAck(t, rec)
	assert.Equal(t, "ws_1", received.CheckoutRequestID)
}

func TestHandleCallback_InternalFailureStillAcked(t *testing.T) {
	h := NewCallbackHandler(&mockReconciler{
		handleFn: func(ctx context.Context, cb *daraja.StkCallback) error {
			return assert.AnError
		},
	})

	body := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_1","ResultCode":0}}}`
	rec := postCallback(t, h, body)

	assertAck(t, rec)
}

func TestHandleCallback_UnknownIDStillAcked(t *testing.T) {
	h := NewCallbackHandler(&mockReconciler{
		handleFn: func(ctx context.Context, cb *daraja.StkCallback) error {
			return service.ErrUnknownCheckoutID
		},
	})

	body := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_missing","ResultCode":0}}}`
	rec := postCallback(t, h, body)

	assertAck(t, rec)
}

func TestHandleCallback_UnreadableBodyStillAcked(t *testing.T) {
	h := NewCallbackHandler(&mockReconciler{
		handleFn: func(ctx context.Context, cb *daraja.StkCallback) error {
			return service.ErrMalformedCallback
		},
	})

	rec := postCallback(t, h, `{{{not json`)

	assertAck(t, rec)
}

func TestRegisterRoutes_PerFlowPaths(t *testing.T) {
	h := NewCallbackHandler(&mockReconciler{
		handleFn: func(ctx context.Context, cb *daraja.StkCallback) error { return nil },
	})

	e := echo.New()
	h.RegisterRoutes(e,
		&service.Flow{CallbackPath: "/api/v1/payments/callback/ticket"},
		&service.Flow{CallbackPath: "/api/v1/payments/callback/stall"},
	)

	for _, path := range []string{"/api/v1/payments/callback/ticket", "/api/v1/payments/callback/stall"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"Body":{"stkCallback":{"CheckoutRequestID":"ws_1"}}}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}
