package handler

import (
	"log"
	"net/http"

	"github.com/eventrift/payment-service/internal/service"
	"github.com/eventrift/payment-service/pkg/daraja"
	"github.com/labstack/echo/v4"
)

// CallbackHandler receives the gateway's asynchronous settlement callbacks.
// It always answers with a success-shaped body: a non-200 or error response
// would make the gateway redeliver on top of its own duplicate deliveries.
type CallbackHandler struct {
	reconciler service.ReconcileService
}

func NewCallbackHandler(reconciler service.ReconcileService) *CallbackHandler {
	return &CallbackHandler{reconciler: reconciler}
}

// RegisterRoutes mounts one webhook path per settlement flow. Both delegate
// to the same reconciler; the correlation id in the payload, not the path,
// determines which payment is matched.
func (h *CallbackHandler) RegisterRoutes(e *echo.Echo, flows ...*service.Flow) {
	for _, flow := range flows {
		e.POST(flow.CallbackPath, h.HandleCallback)
	}
}

func (h *CallbackHandler) HandleCallback(c echo.Context) error {
	var envelope daraja.CallbackEnvelope
	if err := c.Bind(&envelope); err != nil {
		log.Printf("[Callback] unreadable payload: %v", err)
		return c.JSON(http.StatusOK, daraja.AckReceived())
	}

	// Internal outcomes (anomaly, duplicate, fulfillment failure) are logged
	// by the reconciler; none of them change the acknowledgment.
	_ = h.reconciler.HandleCallback(c.Request().Context(), &envelope.Body.StkCallback)

	return c.JSON(http.StatusOK, daraja.AckReceived())
}
