package dto

import (
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/service"
)

type CreateReservationRequest struct {
	HolderClientID  uint      `json:"holder_client_id" validate:"required"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gt=0"`
	PartySize       int       `json:"party_size" validate:"required,min=1,max=15"`
	ParticipantIDs  []uint    `json:"participant_ids" validate:"required,min=1,dive,gt=0"`
	VehicleIDs      []uint    `json:"vehicle_ids" validate:"omitempty,dive,gt=0"`
	Notes           string    `json:"notes"`
}

func (r *CreateReservationRequest) ToInput() service.CreateReservationInput {
	return service.CreateReservationInput{
		HolderClientID:  r.HolderClientID,
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
		PartySize:       r.PartySize,
		ParticipantIDs:  r.ParticipantIDs,
		VehicleIDs:      r.VehicleIDs,
		Notes:           r.Notes,
	}
}

type QuoteRequest struct {
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gt=0"`
	PartySize       int       `json:"party_size" validate:"required,min=1,max=15"`
	ParticipantIDs  []uint    `json:"participant_ids" validate:"required,min=1,dive,gt=0"`
}

func (r *QuoteRequest) ToInput() service.QuoteInput {
	return service.QuoteInput{
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
		PartySize:       r.PartySize,
		ParticipantIDs:  r.ParticipantIDs,
	}
}

type CancelReservationRequest struct {
	Reason string `json:"reason"`
}
