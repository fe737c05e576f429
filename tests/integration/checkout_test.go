//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eventrift/payment-service/internal/models"
	"github.com/eventrift/payment-service/internal/repository"
	"github.com/eventrift/payment-service/internal/service"
	"github.com/eventrift/payment-service/pkg/daraja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedPush struct {
	CallBackURL      string `json:"CallBackURL"`
	AccountReference string `json:"AccountReference"`
}

func newGateway(t *testing.T, stkBody string, stkStatus int) (*daraja.Client, *capturedPush) {
	t.Helper()
	captured := &capturedPush{}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":"3599"}`))
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(captured)
		w.WriteHeader(stkStatus)
		_, _ = w.Write([]byte(stkBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := daraja.NewClient(daraja.Config{
		BaseURL:         srv.URL,
		ShortCode:       "174379",
		Passkey:         "passkey",
		CallbackBaseURL: "https://example.com",
		TransactionType: "CustomerPayBillOnline",
	})
	return client, captured
}

func newCheckout(gateway service.Gateway) (service.CheckoutService, repository.PaymentRepository, repository.TicketOrderRepository) {
	paymentRepo := repository.NewPaymentRepository(testDB)
	orderRepo := repository.NewTicketOrderRepository(testDB)
	stallRepo := repository.NewStallBookingRepository(testDB)
	typeRepo := repository.NewStallTypeRepository(testDB)
	eventRepo := repository.NewEventRepository(testDB)

	engine := service.NewFulfillmentEngine(orderRepo, stallRepo, repository.NewTicketRepository(testDB))
	svc := service.NewCheckoutService(paymentRepo, orderRepo, stallRepo, typeRepo, eventRepo, gateway, engine.TicketFlow(), engine.StallFlow())
	return svc, paymentRepo, orderRepo
}

func seedEvent(t *testing.T, price float64) *models.Event {
	t.Helper()
	event := &models.Event{
		Name:           "EventRift Live",
		TicketPrice:    price,
		BookingStartAt: time.Now().Add(-time.Hour),
		BookingEndAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, testDB.Create(event).Error)
	return event
}

func TestCheckout_TicketOrderInitiation(t *testing.T) {
	cleanTables()
	ctx := context.Background()

	gateway, captured := newGateway(t, `{
		"MerchantRequestID":"29115-1",
		"CheckoutRequestID":"ws_CO_init_1",
		"ResponseCode":"0",
		"ResponseDescription":"Success",
		"CustomerMessage":"Success"
	}`, http.StatusOK)

	svc, paymentRepo, orderRepo := newCheckout(gateway)
	event := seedEvent(t, 500)

	result, err := svc.CreateTicketOrder(ctx, "user-1", event.ID, 2, "0712345678")
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_init_1", result.CheckoutRequestID)

	payment, err := paymentRepo.FindByCheckoutRequestID(ctx, "ws_CO_init_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentAwaitingCallback, payment.Status)
	assert.Equal(t, 1000.0, payment.Amount)
	assert.Equal(t, "254712345678", payment.PhoneNumber)
	assert.Equal(t, "29115-1", payment.MerchantRequestID)

	// The push must advertise the ticket flow's webhook route.
	assert.Equal(t, "https://example.com/api/v1/payments/callback/ticket", captured.CallBackURL)

	order, err := orderRepo.FindByID(ctx, result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPendingPayment, order.Status)
	assert.Equal(t, 2, order.Quantity)
}

func TestCheckout_GatewayRejectionDeclinesAttempt(t *testing.T) {
	cleanTables()
	ctx := context.Background()

	gateway, _ := newGateway(t, `{"ResponseCode":"1","ResponseDescription":"Invalid Access Token"}`, http.StatusOK)

	svc, _, orderRepo := newCheckout(gateway)
	event := seedEvent(t, 500)

	_, err := svc.CreateTicketOrder(ctx, "user-1", event.ID, 1, "0712345678")
	require.Error(t, err)

	var reqErr *daraja.RequestError
	require.ErrorAs(t, err, &reqErr)

	// The pre-created attempt is finalized synchronously.
	var payment models.Payment
	require.NoError(t, testDB.Order("id DESC").First(&payment).Error)
	assert.Equal(t, models.PaymentDeclined, payment.Status)
	assert.Nil(t, payment.CheckoutRequestID)

	orders, err := orderRepo.FindByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderCancelled, orders[0].Status)
}

func TestAttachGatewayIDs_RefusesNonInitiatedPayment(t *testing.T) {
	cleanTables()
	ctx := context.Background()

	paymentRepo := repository.NewPaymentRepository(testDB)

	declined := &models.Payment{
		Purpose:     models.PurposeTicket,
		Amount:      500,
		PhoneNumber: "254712345678",
		Status:      models.PaymentDeclined,
	}
	require.NoError(t, testDB.Create(declined).Error)

	applied, err := paymentRepo.AttachGatewayIDs(ctx, declined.ID, "ws_CO_stale", "29115-9")
	require.NoError(t, err)
	assert.False(t, applied, "correlation ids must not attach to a finalized payment")

	var reloaded models.Payment
	require.NoError(t, testDB.First(&reloaded, declined.ID).Error)
	assert.Nil(t, reloaded.CheckoutRequestID)
	assert.Equal(t, models.PaymentDeclined, reloaded.Status)

	fresh := &models.Payment{
		Purpose:     models.PurposeTicket,
		Amount:      500,
		PhoneNumber: "254712345678",
		Status:      models.PaymentInitiated,
	}
	require.NoError(t, testDB.Create(fresh).Error)

	applied, err = paymentRepo.AttachGatewayIDs(ctx, fresh.ID, "ws_CO_fresh", "29115-10")
	require.NoError(t, err)
	assert.True(t, applied)
}
