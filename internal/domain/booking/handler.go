package booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichq/clinic/internal/platform/auth"
	"github.com/clinichq/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the booking endpoints. Intake is public (patients
// submit without an account); review endpoints are admin/registrar only.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/booking-requests", h.Submit)

	review := api.Group("", auth.RequireRole("admin", "registrar"))
	review.GET("/booking-requests", h.List)
	review.GET("/booking-requests/:id", h.Get)
	review.POST("/booking-requests/:id/reject", h.Reject)
}

func (h *Handler) Submit(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Submit(c.Request().Context(), &req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	req, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "booking request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type rejectBody struct {
	AdminNotes string `json:"admin_notes"`
}

func (h *Handler) Reject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body rejectBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	adminID := auth.UserIDFromContext(c.Request().Context())
	err = h.svc.Reject(c.Request().Context(), id, adminID, body.AdminNotes)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"status": StatusRejected})
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "booking request not found")
	case errors.Is(err, ErrAlreadyDecided):
		return c.JSON(http.StatusConflict, map[string]string{
			"error":   "already_processed",
			"message": "this booking request was already decided",
		})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "reject failed")
	}
}
