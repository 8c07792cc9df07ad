package middleware

import (
	"errors"
	"net/http"

	"github.com/NelsonCereno/Tingeso-2/internal/fleet"
	"github.com/NelsonCereno/Tingeso-2/internal/pricing"
	"github.com/NelsonCereno/Tingeso-2/internal/schedule"
	"github.com/NelsonCereno/Tingeso-2/internal/service"
	"github.com/labstack/echo/v4"
)

// ErrorHandler turns domain errors into their HTTP status and a flat
// {"message": ...} body. Handlers may also return echo.HTTPError directly.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, schedule.ErrUnknownBlock):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, fleet.ErrScheduleConflict),
		errors.Is(err, fleet.ErrInsufficientVehicles),
		errors.Is(err, fleet.ErrVehicleUnavailable):
		code = http.StatusConflict
	case errors.Is(err, pricing.ErrPricingUnavailable):
		code = http.StatusBadGateway
	case errors.Is(err, schedule.ErrDataSourceUnavailable):
		code = http.StatusServiceUnavailable
	}

	_ = c.JSON(code, map[string]string{"message": msg})
}
