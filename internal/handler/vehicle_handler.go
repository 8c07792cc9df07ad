package handler

import (
	"net/http"

	"github.com/NelsonCereno/Tingeso-2/internal/dto"
	"github.com/NelsonCereno/Tingeso-2/internal/repository"
	"github.com/labstack/echo/v4"
)

type VehicleHandler struct {
	vehicles repository.VehicleRepository
}

func NewVehicleHandler(vehicles repository.VehicleRepository) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

func (h *VehicleHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/vehicles")
	g.GET("", h.List)
	g.GET("/available", h.ListAvailable)
}

func (h *VehicleHandler) List(c echo.Context) error {
	vehicles, err := h.vehicles.FindAll(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]dto.VehicleResponse, len(vehicles))
	for i := range vehicles {
		resp[i] = dto.ToVehicleResponse(&vehicles[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *VehicleHandler) ListAvailable(c echo.Context) error {
	vehicles, err := h.vehicles.ListAvailable(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]dto.VehicleResponse, len(vehicles))
	for i := range vehicles {
		resp[i] = dto.ToVehicleResponse(&vehicles[i])
	}
	return c.JSON(http.StatusOK, resp)
}
