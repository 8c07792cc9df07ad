package models

import "time"

// FareTier maps a session format (laps / duration) to a base price per
// participant. Mirrors the fare service's table so pricing can fall back to
// local data when that service is unreachable.
type FareTier struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	LapCount        int       `gorm:"uniqueIndex;not null" json:"lap_count"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	BasePrice       float64   `gorm:"not null" json:"base_price"`
	Active          bool      `gorm:"default:true" json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type DiscountKind string

const (
	DiscountGroup    DiscountKind = "group"
	DiscountLoyalty  DiscountKind = "loyalty"
	DiscountBirthday DiscountKind = "birthday"
)

// DiscountTier is one row of a percentage table: [Min, Max] inclusive, with
// Max = -1 meaning unbounded.
type DiscountTier struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Kind      DiscountKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	Min       int          `gorm:"not null" json:"min"`
	Max       int          `gorm:"not null" json:"max"`
	Percent   float64      `gorm:"not null" json:"percent"`
	Active    bool         `gorm:"default:true" json:"active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Matches reports whether n falls inside the tier's range.
func (t *DiscountTier) Matches(n int) bool {
	if !t.Active || n < t.Min {
		return false
	}
	return t.Max < 0 || n <= t.Max
}
