package repository

import (
	"context"

	"github.com/NelsonCereno/Tingeso-2/internal/models"
	"gorm.io/gorm"
)

type VehicleRepository interface {
	FindAll(ctx context.Context) ([]models.Vehicle, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Vehicle, error)
	ListAvailable(ctx context.Context) ([]models.Vehicle, error)
	ListAvailableForUpdate(ctx context.Context, tx *gorm.DB) ([]models.Vehicle, error)
	FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Vehicle, error)
	Save(ctx context.Context, tx *gorm.DB, v *models.Vehicle) error
	SaveAll(ctx context.Context, tx *gorm.DB, vs []models.Vehicle) error
	CountAvailable(ctx context.Context) (int64, error)
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) FindAll(ctx context.Context) ([]models.Vehicle, error) {
	var out []models.Vehicle
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *vehicleRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Vehicle, error) {
	var out []models.Vehicle
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListAvailable orders the fleet for fair rotation: least used first, code as
// tie-break.
func (r *vehicleRepository) ListAvailable(ctx context.Context) ([]models.Vehicle, error) {
	var out []models.Vehicle
	if err := r.db.WithContext(ctx).
		Where("status = ? AND active = ?", models.VehicleAvailable, true).
		Order("usage_count ASC, code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListAvailableForUpdate locks the available vehicle rows for the duration of
// the transaction, serializing concurrent allocation attempts.
func (r *vehicleRepository) ListAvailableForUpdate(ctx context.Context, tx *gorm.DB) ([]models.Vehicle, error) {
	var out []models.Vehicle
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		Where("status = ? AND active = ?", models.VehicleAvailable, true).
		Order("usage_count ASC, code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *vehicleRepository) FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Vehicle, error) {
	var out []models.Vehicle
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		Where("id IN ?", ids).
		Order("usage_count ASC, code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *vehicleRepository) Save(ctx context.Context, tx *gorm.DB, v *models.Vehicle) error {
	return tx.WithContext(ctx).Save(v).Error
}

func (r *vehicleRepository) SaveAll(ctx context.Context, tx *gorm.DB, vs []models.Vehicle) error {
	if len(vs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Save(&vs).Error
}

func (r *vehicleRepository) CountAvailable(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("status = ? AND active = ?", models.VehicleAvailable, true).
		Count(&count).Error
	return count, err
}
