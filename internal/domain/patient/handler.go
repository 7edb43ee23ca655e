package patient

import (
	"errors"
	"net/http"
	"strings"

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "doctor", "nurse", "registrar"))
	g.GET("/patients", h.List)
	g.GET("/patients/:id", h.Get)
}

func (h *Handler) Get(c echo.Context) error {
	raw := c.Param("id")
	ctx := c.Request().Context()

	// Accept either a row ID or a patient number (PT-000123).
	var p *Patient
	var err error
	if strings.HasPrefix(raw, "PT-") {
		p, err = h.svc.GetByNumber(ctx, raw)
	} else {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		p, err = h.svc.Get(ctx, id)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list failed")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
