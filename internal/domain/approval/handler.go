package approval

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichq/clinic/internal/domain/staff"
	"github.com/clinichq/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "registrar"))
	g.POST("/booking-requests/:id/approve", h.Approve)
	g.POST("/appointments/walk-in", h.RegisterWalkIn)
}

type approveBody struct {
	AdminNotes string `json:"admin_notes"`
}

func (h *Handler) Approve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body approveBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	adminID := auth.UserIDFromContext(c.Request().Context())
	result, err := h.svc.Approve(c.Request().Context(), id, adminID, body.AdminNotes)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) RegisterWalkIn(c echo.Context) error {
	var in WalkInInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.RegisterWalkIn(c.Request().Context(), in)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "booking request not found")
	case errors.Is(err, ErrAlreadyProcessed):
		return c.JSON(http.StatusConflict, map[string]string{
			"error":   "already_processed",
			"message": "this booking request was already decided",
		})
	case errors.Is(err, ErrInvalidSpecialist):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "specialist does not exist or is inactive")
	case errors.Is(err, staff.ErrNoAttendingStaff):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrPersistence):
		return echo.NewHTTPError(http.StatusInternalServerError, "approval could not be completed")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
