package handler

import (
	"net/http"

	"github.com/NelsonCereno/Tingeso-2/internal/repository"
	"github.com/labstack/echo/v4"
)

type TariffHandler struct {
	tariffs repository.TariffRepository
}

func NewTariffHandler(tariffs repository.TariffRepository) *TariffHandler {
	return &TariffHandler{tariffs: tariffs}
}

func (h *TariffHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/tariffs")
	g.GET("/fares", h.ListFares)
	g.GET("/discounts", h.ListDiscounts)
}

func (h *TariffHandler) ListFares(c echo.Context) error {
	tiers, err := h.tariffs.ListFareTiers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tiers)
}

func (h *TariffHandler) ListDiscounts(c echo.Context) error {
	tiers, err := h.tariffs.ListDiscountTiers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tiers)
}
