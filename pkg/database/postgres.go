package database

import (
	"fmt"
	"log"

	"github.com/NelsonCereno/Tingeso-2/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Reservation{},
		&models.Vehicle{},
		&models.FareTier{},
		&models.DiscountTier{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	seedVehicles(db)
	seedFareTiers(db)
	seedDiscountTiers(db)

	return db
}

// seedVehicles provisions the initial fleet on an empty database. Usage
// counters are staggered so least-used rotation has something to work with.
func seedVehicles(db *gorm.DB) {
	var count int64
	db.Model(&models.Vehicle{}).Count(&count)
	if count > 0 {
		return
	}

	vehicles := make([]models.Vehicle, 0, 10)
	for i := 1; i <= 10; i++ {
		vehicles = append(vehicles, models.Vehicle{
			Code:       fmt.Sprintf("K%03d", i),
			Status:     models.VehicleAvailable,
			Active:     true,
			UsageCount: (i * 3) % 7,
		})
	}
	if err := db.Create(&vehicles).Error; err != nil {
		log.Printf("[Database] seed vehicles failed: %v", err)
		return
	}
	log.Printf("[Database] seeded %d vehicles", len(vehicles))
}

func seedFareTiers(db *gorm.DB) {
	var count int64
	db.Model(&models.FareTier{}).Count(&count)
	if count > 0 {
		return
	}

	tiers := []models.FareTier{
		{LapCount: 10, DurationMinutes: 15, BasePrice: 10000, Active: true},
		{LapCount: 15, DurationMinutes: 20, BasePrice: 13000, Active: true},
		{LapCount: 20, DurationMinutes: 25, BasePrice: 15000, Active: true},
	}
	if err := db.Create(&tiers).Error; err != nil {
		log.Printf("[Database] seed fare tiers failed: %v", err)
		return
	}
	log.Printf("[Database] seeded %d fare tiers", len(tiers))
}

func seedDiscountTiers(db *gorm.DB) {
	var count int64
	db.Model(&models.DiscountTier{}).Count(&count)
	if count > 0 {
		return
	}

	tiers := []models.DiscountTier{
		{Kind: models.DiscountGroup, Min: 1, Max: 2, Percent: 0, Active: true},
		{Kind: models.DiscountGroup, Min: 3, Max: 5, Percent: 0.10, Active: true},
		{Kind: models.DiscountGroup, Min: 6, Max: 10, Percent: 0.20, Active: true},
		{Kind: models.DiscountGroup, Min: 11, Max: 15, Percent: 0.30, Active: true},
		{Kind: models.DiscountLoyalty, Min: 0, Max: 1, Percent: 0, Active: true},
		{Kind: models.DiscountLoyalty, Min: 2, Max: 4, Percent: 0.10, Active: true},
		{Kind: models.DiscountLoyalty, Min: 5, Max: 6, Percent: 0.20, Active: true},
		{Kind: models.DiscountLoyalty, Min: 7, Max: -1, Percent: 0.30, Active: true},
	}
	if err := db.Create(&tiers).Error; err != nil {
		log.Printf("[Database] seed discount tiers failed: %v", err)
		return
	}
	log.Printf("[Database] seeded %d discount tiers", len(tiers))
}
