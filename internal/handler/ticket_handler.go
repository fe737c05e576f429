package handler

import (
	"errors"
	"net/http"

	"github.com/eventrift/payment-service/internal/dto"
	"github.com/eventrift/payment-service/internal/service"
	"github.com/labstack/echo/v4"
)

type TicketHandler struct {
	svc service.TicketService
}

func NewTicketHandler(svc service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

func (h *TicketHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/users/:id/tickets", h.ListUserTickets)
	e.GET("/api/v1/tickets/:uuid", h.GetTicket)
	e.POST("/api/v1/tickets/checkin", h.CheckIn)
}

func (h *TicketHandler) ListUserTickets(c echo.Context) error {
	tickets, err := h.svc.ListUserTickets(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.TicketResponse, len(tickets))
	for i := range tickets {
		resp[i] = dto.ToTicketResponse(&tickets[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	ticket, err := h.svc.GetTicket(c.Request().Context(), c.Param("uuid"), userID)
	if err != nil {
		if errors.Is(err, service.ErrTicketAccessDenied) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "ticket not found")
	}

	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) CheckIn(c echo.Context) error {
	var req dto.CheckInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.QRData == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "qr_data is required")
	}

	ticket, err := h.svc.CheckIn(c.Request().Context(), req.QRData, req.StaffID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQRCode):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTicketNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAlreadyCheckedIn),
			errors.Is(err, service.ErrMissingAttendance):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}
