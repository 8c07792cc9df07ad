package repository

import (
	"context"
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/models"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, r *models.Reservation) error
	Save(ctx context.Context, tx *gorm.DB, r *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error)
	FindAll(ctx context.Context) ([]models.Reservation, error)
	FindByStatus(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error)
	FindActive(ctx context.Context) ([]models.Reservation, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error)
	FindOverlapping(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]models.Reservation, error)
	CountByStatus(ctx context.Context, status models.ReservationStatus) (int64, error)
	SumTotalFare(ctx context.Context, status models.ReservationStatus) (float64, error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	GetDB() *gorm.DB
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *reservationRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, res *models.Reservation) error {
	return tx.WithContext(ctx).Create(res).Error
}

func (r *reservationRepository) Save(ctx context.Context, tx *gorm.DB, res *models.Reservation) error {
	return tx.WithContext(ctx).Save(res).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.db.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

// FindByIDForUpdate acquires a row-level lock on the reservation within the given transaction.
func (r *reservationRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) FindAll(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := r.db.WithContext(ctx).Order("start_time ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reservationRepository) FindByStatus(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("start_time ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reservationRepository) FindActive(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []models.ReservationStatus{models.StatusCancelled, models.StatusCompleted}).
		Order("start_time ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reservationRepository) FindBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindOverlapping returns reservations holding vehicles whose time window
// intersects [start, end). Only CONFIRMED and IN_PROGRESS reservations hold
// vehicles, so only those can conflict.
func (r *reservationRepository) FindOverlapping(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := tx.WithContext(ctx).
		Where("status IN ?", []models.ReservationStatus{models.StatusConfirmed, models.StatusInProgress}).
		Where("start_time < ? AND start_time + make_interval(mins => duration_minutes) > ?", end, start).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reservationRepository) CountByStatus(ctx context.Context, status models.ReservationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *reservationRepository) SumTotalFare(ctx context.Context, status models.ReservationStatus) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(total_fare), 0)").
		Scan(&sum).Error
	return sum, err
}
