package models

import (
	"strings"
	"time"
)

type ReservationStatus string

const (
	StatusPending    ReservationStatus = "PENDING"
	StatusConfirmed  ReservationStatus = "CONFIRMED"
	StatusInProgress ReservationStatus = "IN_PROGRESS"
	StatusCompleted  ReservationStatus = "COMPLETED"
	StatusCancelled  ReservationStatus = "CANCELLED"
)

// IDList is stored as a json column so the reservation keeps plain id
// references instead of join-table relations.
type IDList []uint

func (l IDList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

type Reservation struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	HolderClientID  uint              `gorm:"not null;index" json:"holder_client_id"`
	StartTime       time.Time         `gorm:"not null;index" json:"start_time"`
	DurationMinutes int               `gorm:"not null" json:"duration_minutes"`
	PartySize       int               `gorm:"not null" json:"party_size"`
	ParticipantIDs  IDList            `gorm:"serializer:json" json:"participant_ids"`
	VehicleIDs      IDList            `gorm:"serializer:json" json:"vehicle_ids"`
	BaseFare        float64           `json:"base_fare"`
	GroupDiscount   float64           `json:"group_discount"`
	LoyaltyDiscount float64           `json:"loyalty_discount"`
	BirthdayDiscount float64          `json:"birthday_discount"`
	TotalDiscount   float64           `json:"total_discount"`
	TotalFare       float64           `gorm:"not null" json:"total_fare"`
	Status          ReservationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Notes           string            `json:"notes"`
	NotificationSent bool             `json:"notification_sent"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (r *Reservation) EndTime() time.Time {
	return r.StartTime.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// ComputeTotals recalculates the discount sum and the total fare.
// The total never goes below zero.
func (r *Reservation) ComputeTotals() {
	r.TotalDiscount = r.GroupDiscount + r.LoyaltyDiscount + r.BirthdayDiscount
	r.TotalFare = r.BaseFare - r.TotalDiscount
	if r.TotalFare < 0 {
		r.TotalFare = 0
	}
}

func (r *Reservation) Confirm() {
	r.Status = StatusConfirmed
}

func (r *Reservation) Start() {
	r.Status = StatusInProgress
}

func (r *Reservation) Complete() {
	r.Status = StatusCompleted
}

func (r *Reservation) Cancel(reason string) {
	r.Status = StatusCancelled
	note := "Cancelled: " + reason
	if strings.TrimSpace(r.Notes) != "" {
		r.Notes = r.Notes + ". " + note
	} else {
		r.Notes = note
	}
}

// CanCancel reports whether the reservation may still be cancelled.
func (r *Reservation) CanCancel() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// IsActive reports whether the reservation still holds vehicles.
func (r *Reservation) IsActive() bool {
	return r.Status != StatusCancelled && r.Status != StatusCompleted
}
