package repository

import (
	"context"

	"github.com/NelsonCereno/Tingeso-2/internal/models"
	"gorm.io/gorm"
)

type TariffRepository interface {
	FindFareByDuration(ctx context.Context, durationMinutes int) (*models.FareTier, error)
	ListFareTiers(ctx context.Context) ([]models.FareTier, error)
	ListDiscountTiers(ctx context.Context) ([]models.DiscountTier, error)
}

type tariffRepository struct {
	db *gorm.DB
}

func NewTariffRepository(db *gorm.DB) TariffRepository {
	return &tariffRepository{db: db}
}

func (r *tariffRepository) FindFareByDuration(ctx context.Context, durationMinutes int) (*models.FareTier, error) {
	var tier models.FareTier
	if err := r.db.WithContext(ctx).
		Where("duration_minutes = ? AND active = ?", durationMinutes, true).
		First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *tariffRepository) ListFareTiers(ctx context.Context) ([]models.FareTier, error) {
	var out []models.FareTier
	if err := r.db.WithContext(ctx).Order("duration_minutes ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tariffRepository) ListDiscountTiers(ctx context.Context) ([]models.DiscountTier, error) {
	var out []models.DiscountTier
	if err := r.db.WithContext(ctx).Order("kind ASC, min ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
