package models

import "time"

type VehicleStatus string

const (
	VehicleAvailable    VehicleStatus = "AVAILABLE"
	VehicleReserved     VehicleStatus = "RESERVED"
	VehicleMaintenance  VehicleStatus = "MAINTENANCE"
	VehicleOutOfService VehicleStatus = "OUT_OF_SERVICE"
)

type Vehicle struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	Code           string        `gorm:"uniqueIndex;not null" json:"code"`
	Status         VehicleStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`
	Active         bool          `gorm:"default:true" json:"active"`
	UsageCount     int           `gorm:"default:0" json:"usage_count"`
	LastReservedAt *time.Time    `json:"last_reserved_at,omitempty"`
	Notes          string        `json:"notes"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (v *Vehicle) IsAvailable() bool {
	return v.Active && v.Status == VehicleAvailable
}

// MarkReserved puts the vehicle into RESERVED state and counts the use.
func (v *Vehicle) MarkReserved() {
	now := time.Now()
	v.Status = VehicleReserved
	v.LastReservedAt = &now
	v.UsageCount++
}

// Release returns a reserved vehicle to the available pool. Vehicles in
// maintenance or out of service keep their state.
func (v *Vehicle) Release() {
	if v.Status == VehicleReserved {
		v.Status = VehicleAvailable
	}
}

func (v *Vehicle) FlagMaintenance(reason string) {
	v.Status = VehicleMaintenance
	v.Notes = reason
}

// NeedsMaintenance reports whether the usage counter sits on a maintenance
// interval boundary (every `interval` uses).
func (v *Vehicle) NeedsMaintenance(interval int) bool {
	return interval > 0 && v.UsageCount > 0 && v.UsageCount%interval == 0
}
