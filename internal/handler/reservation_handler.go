package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/dto"
	"github.com/NelsonCereno/Tingeso-2/internal/models"
	"github.com/NelsonCereno/Tingeso-2/internal/service"
	"github.com/labstack/echo/v4"
)

type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/reservations")
	g.POST("", h.Create)
	g.POST("/quote", h.Quote)
	g.GET("", h.List)
	g.GET("/availability", h.CheckAvailability)
	g.GET("/stats", h.Stats)
	g.GET("/:id", h.Get)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/start", h.Start)
	g.POST("/:id/complete", h.Complete)
}

func (h *ReservationHandler) Create(c echo.Context) error {
	var req dto.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reservation, breakdown, err := h.svc.Create(c.Request().Context(), req.ToInput())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.ToReservationResponseWithBreakdown(reservation, breakdown))
}

func (h *ReservationHandler) Quote(c echo.Context) error {
	var req dto.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	breakdown, err := h.svc.Quote(c.Request().Context(), req.ToInput())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, breakdown)
}

func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	reservation, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

// List supports ?status=, ?active=true, ?today=true and ?from=&to= (dates)
// filters.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		reservations []models.Reservation
		err          error
	)
	switch {
	case c.QueryParam("status") != "":
		reservations, err = h.svc.ListByStatus(ctx, models.ReservationStatus(c.QueryParam("status")))
	case c.QueryParam("active") == "true":
		reservations, err = h.svc.ListActive(ctx)
	case c.QueryParam("today") == "true":
		now := time.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		reservations, err = h.svc.ListBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	case c.QueryParam("from") != "" || c.QueryParam("to") != "":
		var from, to time.Time
		from, to, err = parseDateRange(c)
		if err != nil {
			return err
		}
		reservations, err = h.svc.ListBetween(ctx, from, to.AddDate(0, 0, 1))
	default:
		reservations, err = h.svc.List(ctx)
	}
	if err != nil {
		return err
	}

	resp := make([]dto.ReservationResponse, len(reservations))
	for i := range reservations {
		resp[i] = dto.ToReservationResponse(&reservations[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.CancelReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Reason == "" {
		req.Reason = "cancelled by request"
	}

	reservation, err := h.svc.Cancel(c.Request().Context(), id, req.Reason)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) Start(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	reservation, err := h.svc.Start(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) Complete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	reservation, err := h.svc.Complete(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) CheckAvailability(c echo.Context) error {
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start must be RFC3339")
	}
	duration, err := strconv.Atoi(c.QueryParam("duration"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "duration must be an integer")
	}
	party, err := strconv.Atoi(c.QueryParam("party_size"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "party_size must be an integer")
	}

	availability, err := h.svc.CheckAvailability(c.Request().Context(), start, duration, party)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, availability)
}

func (h *ReservationHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid reservation id")
	}
	return uint(id), nil
}

func parseDateRange(c echo.Context) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", c.QueryParam("from"))
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", c.QueryParam("to"))
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "to must be YYYY-MM-DD")
	}
	return from, to, nil
}
