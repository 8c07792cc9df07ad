package dto

import (
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/models"
	"github.com/NelsonCereno/Tingeso-2/internal/pricing"
)

type ReservationResponse struct {
	ID               uint                      `json:"id"`
	HolderClientID   uint                      `json:"holder_client_id"`
	StartTime        time.Time                 `json:"start_time"`
	EndTime          time.Time                 `json:"end_time"`
	DurationMinutes  int                       `json:"duration_minutes"`
	PartySize        int                       `json:"party_size"`
	ParticipantIDs   []uint                    `json:"participant_ids"`
	VehicleIDs       []uint                    `json:"vehicle_ids"`
	BaseFare         float64                   `json:"base_fare"`
	GroupDiscount    float64                   `json:"group_discount"`
	LoyaltyDiscount  float64                   `json:"loyalty_discount"`
	BirthdayDiscount float64                   `json:"birthday_discount"`
	TotalDiscount    float64                   `json:"total_discount"`
	TotalFare        float64                   `json:"total_fare"`
	Status           models.ReservationStatus  `json:"status"`
	Notes            string                    `json:"notes,omitempty"`
	NotificationSent bool                      `json:"notification_sent"`
	Breakdown        *pricing.PriceBreakdown   `json:"breakdown,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
}

type VehicleResponse struct {
	ID             uint                 `json:"id"`
	Code           string               `json:"code"`
	Status         models.VehicleStatus `json:"status"`
	Active         bool                 `json:"active"`
	UsageCount     int                  `json:"usage_count"`
	LastReservedAt *time.Time           `json:"last_reserved_at,omitempty"`
	Notes          string               `json:"notes,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:               r.ID,
		HolderClientID:   r.HolderClientID,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime(),
		DurationMinutes:  r.DurationMinutes,
		PartySize:        r.PartySize,
		ParticipantIDs:   r.ParticipantIDs,
		VehicleIDs:       r.VehicleIDs,
		BaseFare:         r.BaseFare,
		GroupDiscount:    r.GroupDiscount,
		LoyaltyDiscount:  r.LoyaltyDiscount,
		BirthdayDiscount: r.BirthdayDiscount,
		TotalDiscount:    r.TotalDiscount,
		TotalFare:        r.TotalFare,
		Status:           r.Status,
		Notes:            r.Notes,
		NotificationSent: r.NotificationSent,
		CreatedAt:        r.CreatedAt,
	}
}

func ToReservationResponseWithBreakdown(r *models.Reservation, b *pricing.PriceBreakdown) ReservationResponse {
	resp := ToReservationResponse(r)
	resp.Breakdown = b
	return resp
}

func ToVehicleResponse(v *models.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:             v.ID,
		Code:           v.Code,
		Status:         v.Status,
		Active:         v.Active,
		UsageCount:     v.UsageCount,
		LastReservedAt: v.LastReservedAt,
		Notes:          v.Notes,
	}
}
