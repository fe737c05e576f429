package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/eventrift/payment-service/internal/dto"
	"github.com/eventrift/payment-service/internal/repository"
	"github.com/eventrift/payment-service/internal/service"
	"github.com/eventrift/payment-service/pkg/daraja"
	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	svc       service.CheckoutService
	orderRepo repository.TicketOrderRepository
	stallRepo repository.StallBookingRepository
	typeRepo  repository.StallTypeRepository
}

func NewCheckoutHandler(svc service.CheckoutService, orderRepo repository.TicketOrderRepository, stallRepo repository.StallBookingRepository, typeRepo repository.StallTypeRepository) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, orderRepo: orderRepo, stallRepo: stallRepo, typeRepo: typeRepo}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/events/:id/ticket-orders", h.CreateTicketOrder)
	e.GET("/api/v1/ticket-orders/:id", h.GetTicketOrder)
	e.GET("/api/v1/users/:id/ticket-orders", h.ListUserTicketOrders)

	e.POST("/api/v1/stalls", h.BookStall)
	e.GET("/api/v1/stalls/:id", h.GetStallBooking)
	e.GET("/api/v1/vendors/:id/stalls", h.ListVendorStalls)
	e.GET("/api/v1/stall-types", h.ListStallTypes)
}

func (h *CheckoutHandler) CreateTicketOrder(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	var req dto.CreateTicketOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if req.MpesaPhone == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "mpesa_phone is required")
	}

	result, err := h.svc.CreateTicketOrder(c.Request().Context(), req.UserID, uint(eventID), req.Quantity, req.MpesaPhone)
	if err != nil {
		return initiationError(c, err)
	}

	return c.JSON(http.StatusAccepted, dto.InitiationResponse{
		Success:           true,
		Message:           "M-Pesa prompt sent. Complete payment on your phone.",
		OrderID:           result.OrderID,
		CheckoutRequestID: result.CheckoutRequestID,
	})
}

func (h *CheckoutHandler) BookStall(c echo.Context) error {
	var req dto.BookStallRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.VendorID == "" || req.BusinessName == "" || req.MpesaPhone == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "vendor_id, business_name and mpesa_phone are required")
	}

	result, err := h.svc.BookStall(c.Request().Context(), req.VendorID, req.EventID, req.StallTypeID, req.BusinessName, req.ProductsOffered, req.MpesaPhone)
	if err != nil {
		return initiationError(c, err)
	}

	return c.JSON(http.StatusAccepted, dto.InitiationResponse{
		Success:           true,
		Message:           "M-Pesa prompt sent. Complete payment on your phone.",
		OrderID:           result.OrderID,
		CheckoutRequestID: result.CheckoutRequestID,
	})
}

// initiationError maps checkout failures to explicit client responses.
// Unlike callbacks, initiation failures are surfaced immediately.
func initiationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrStallTypeNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrBookingClosed),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrFractionalAmount):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, daraja.ErrAuth):
		return echo.NewHTTPError(http.StatusBadGateway, "payment gateway unavailable, try again later")
	}

	var reqErr *daraja.RequestError
	if errors.As(err, &reqErr) {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"success":         false,
			"message":         "Payment initiation failed: " + reqErr.Message,
			"gateway_payload": reqErr.Raw,
		})
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *CheckoutHandler) GetTicketOrder(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.orderRepo.FindByID(c.Request().Context(), uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	return c.JSON(http.StatusOK, dto.ToTicketOrderResponse(order))
}

func (h *CheckoutHandler) ListUserTicketOrders(c echo.Context) error {
	orders, err := h.orderRepo.FindByUserID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.TicketOrderResponse, len(orders))
	for i := range orders {
		resp[i] = dto.ToTicketOrderResponse(&orders[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) GetStallBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.stallRepo.FindByID(c.Request().Context(), uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "stall booking not found")
	}

	return c.JSON(http.StatusOK, dto.ToStallBookingResponse(booking))
}

func (h *CheckoutHandler) ListVendorStalls(c echo.Context) error {
	bookings, err := h.stallRepo.FindByVendorID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.StallBookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToStallBookingResponse(&bookings[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) ListStallTypes(c echo.Context) error {
	types, err := h.typeRepo.FindAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, types)
}
