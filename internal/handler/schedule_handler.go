package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/cache"
	"github.com/NelsonCereno/Tingeso-2/internal/schedule"
	"github.com/labstack/echo/v4"
)

type ScheduleHandler struct {
	grid  *schedule.GridBuilder
	cache *cache.GridCache
}

func NewScheduleHandler(grid *schedule.GridBuilder, gridCache *cache.GridCache) *ScheduleHandler {
	return &ScheduleHandler{grid: grid, cache: gridCache}
}

func (h *ScheduleHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/schedule")
	g.GET("/week", h.Week)
	g.GET("/stats", h.Stats)
	g.GET("/block-availability", h.BlockAvailability)
}

// Week renders the weekly grid for ?from=&to= (defaults to the current week,
// Monday through Sunday). Responses are cached for the configured TTL.
func (h *ScheduleHandler) Week(c echo.Context) error {
	from, to, err := weekRange(c)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("schedule:week:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	var cached schedule.WeekGrid
	if h.cache.Get(c.Request().Context(), key, &cached) {
		return c.JSON(http.StatusOK, &cached)
	}

	grid, err := h.grid.BuildGrid(c.Request().Context(), from, to)
	if err != nil {
		return err
	}

	h.cache.Set(c.Request().Context(), key, grid)
	return c.JSON(http.StatusOK, grid)
}

func (h *ScheduleHandler) Stats(c echo.Context) error {
	from, to, err := weekRange(c)
	if err != nil {
		return err
	}

	stats, err := h.grid.Stats(c.Request().Context(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *ScheduleHandler) BlockAvailability(c echo.Context) error {
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	block := c.QueryParam("block")
	if block == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "block is required")
	}
	party, err := strconv.Atoi(c.QueryParam("party_size"))
	if err != nil || party < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "party_size must be a positive integer")
	}

	availability, err := h.grid.BlockAvailability(c.Request().Context(), date, block, party)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, availability)
}

// weekRange reads ?from=&to= or falls back to the week containing today.
func weekRange(c echo.Context) (time.Time, time.Time, error) {
	if c.QueryParam("from") == "" && c.QueryParam("to") == "" {
		now := time.Now()
		offset := (int(now.Weekday()) + 6) % 7 // days since Monday
		monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -offset)
		return monday, monday.AddDate(0, 0, 6), nil
	}
	return parseDateRange(c)
}
