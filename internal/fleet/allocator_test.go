package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Mock VehicleRepository ---

type mockVehicleRepo struct {
	listAvailableForUpdateFn func(ctx context.Context, tx *gorm.DB) ([]models.Vehicle, error)
	findByIDsForUpdateFn     func(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Vehicle, error)
	saved                    []models.Vehicle
}

func (m *mockVehicleRepo) FindAll(ctx context.Context) ([]models.Vehicle, error) { return nil, nil }
func (m *mockVehicleRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Vehicle, error) {
	return nil, nil
}
func (m *mockVehicleRepo) ListAvailable(ctx context.Context) ([]models.Vehicle, error) {
	return nil, nil
}
func (m *mockVehicleRepo) ListAvailableForUpdate(ctx context.Context, tx *gorm.DB) ([]models.Vehicle, error) {
	return m.listAvailableForUpdateFn(ctx, tx)
}
func (m *mockVehicleRepo) FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Vehicle, error) {
	return m.findByIDsForUpdateFn(ctx, tx, ids)
}
func (m *mockVehicleRepo) Save(ctx context.Context, tx *gorm.DB, v *models.Vehicle) error {
	return nil
}
func (m *mockVehicleRepo) SaveAll(ctx context.Context, tx *gorm.DB, vs []models.Vehicle) error {
	m.saved = append(m.saved, vs...)
	return nil
}
func (m *mockVehicleRepo) CountAvailable(ctx context.Context) (int64, error) { return 0, nil }

// --- Mock ReservationRepository (only FindOverlapping matters here) ---

type mockReservationRepo struct {
	findOverlappingFn func(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]models.Reservation, error)
}

func (m *mockReservationRepo) Create(ctx context.Context, tx *gorm.DB, r *models.Reservation) error {
	return nil
}
func (m *mockReservationRepo) Save(ctx context.Context, tx *gorm.DB, r *models.Reservation) error {
	return nil
}
func (m *mockReservationRepo) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) FindAll(ctx context.Context) ([]models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) FindByStatus(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) FindActive(ctx context.Context) ([]models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) FindBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) FindOverlapping(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]models.Reservation, error) {
	if m.findOverlappingFn != nil {
		return m.findOverlappingFn(ctx, tx, start, end)
	}
	return nil, nil
}
func (m *mockReservationRepo) CountByStatus(ctx context.Context, status models.ReservationStatus) (int64, error) {
	return 0, nil
}
func (m *mockReservationRepo) SumTotalFare(ctx context.Context, status models.ReservationStatus) (float64, error) {
	return 0, nil
}
func (m *mockReservationRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
func (m *mockReservationRepo) GetDB() *gorm.DB { return nil }

func availableVehicle(id uint, code string, usage int) models.Vehicle {
	return models.Vehicle{ID: id, Code: code, Status: models.VehicleAvailable, Active: true, UsageCount: usage}
}

// --- Tests ---

func TestAllocate_AutomaticTakesLeastUsed(t *testing.T) {
	vehicles := &mockVehicleRepo{
		listAvailableForUpdateFn: func(ctx context.Context, tx *gorm.DB) ([]models.Vehicle, error) {
			// Repository returns least-used first.
			return []models.Vehicle{
				availableVehicle(3, "K003", 1),
				availableVehicle(1, "K001", 2),
				availableVehicle(2, "K002", 5),
			}, nil
		},
	}

	a := NewAllocator(vehicles, &mockReservationRepo{}, 50)
	ids, err := a.Allocate(context.Background(), nil, 2, nil, time.Now(), 30)
	require.NoError(t, err)

	assert.Equal(t, []uint{3, 1}, ids)
	require.Len(t, vehicles.saved, 2)
	for _, v := range vehicles.saved {
		assert.Equal(t, models.VehicleReserved, v.Status)
	}
}

func TestAllocate_InsufficientFleet(t *testing.T) {
	vehicles := &mockVehicleRepo{
		listAvailableForUpdateFn: func(ctx context.Context, tx *gorm.DB) ([]models.Vehicle, error) {
			return []models.Vehicle{availableVehicle(1, "K001", 0)}, nil
		},
	}

	a := NewAllocator(vehicles, &mockReservationRepo{}, 50)
	_, err := a.Allocate(context.Background(), nil, 3, nil, time.Now(), 30)
	assert.ErrorIs(t, err, ErrInsufficientVehicles)
	assert.Empty(t, vehicles.saved)
}

func TestAllocate_ExplicitVehicles(t *testing.T) {
	vehicles := &mockVehicleRepo{
		findByIDsForUpdateFn: func(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Vehicle, error) {
			return []models.Vehicle{
				availableVehicle(7, "K007", 0),
				availableVehicle(4, "K004", 3),
			}, nil
		},
	}

	a := NewAllocator(vehicles, &mockReservationRepo{}, 50)
	ids, err := a.Allocate(context.Background(), nil, 2, []uint{7, 4}, time.Now(), 30)
	require.NoError(t, err)

	// Explicit requests keep the caller's order.
	assert.Equal(t, []uint{7, 4}, ids)
}

func TestAllocate_ExplicitVehicleNotAvailable(t *testing.T) {
	reserved := availableVehicle(7, "K007", 0)
	reserved.Status = models.VehicleReserved

	vehicles := &mockVehicleRepo{
		findByIDsForUpdateFn: func(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Vehicle, error) {
			return []models.Vehicle{reserved, availableVehicle(4, "K004", 3)}, nil
		},
	}

	a := NewAllocator(vehicles, &mockReservationRepo{}, 50)
	_, err := a.Allocate(context.Background(), nil, 2, []uint{7, 4}, time.Now(), 30)
	assert.ErrorIs(t, err, ErrVehicleUnavailable)
}

func TestAllocate_ExplicitVehicleMissing(t *testing.T) {
	vehicles := &mockVehicleRepo{
		findByIDsForUpdateFn: func(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Vehicle, error) {
			return []models.Vehicle{availableVehicle(4, "K004", 3)}, nil
		},
	}

	a := NewAllocator(vehicles, &mockReservationRepo{}, 50)
	_, err := a.Allocate(context.Background(), nil, 2, []uint{99, 4}, time.Now(), 30)
	assert.ErrorIs(t, err, ErrVehicleUnavailable)
}

func TestAllocate_DuplicateExplicitVehicleRejected(t *testing.T) {
	vehicles := &mockVehicleRepo{
		findByIDsForUpdateFn: func(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Vehicle, error) {
			return []models.Vehicle{availableVehicle(7, "K007", 0)}, nil
		},
	}

	a := NewAllocator(vehicles, &mockReservationRepo{}, 50)
	_, err := a.Allocate(context.Background(), nil, 2, []uint{7, 7}, time.Now(), 30)
	assert.ErrorIs(t, err, ErrVehicleUnavailable)
	assert.Empty(t, vehicles.saved)
}

func TestAllocate_FewerExplicitThanParty(t *testing.T) {
	a := NewAllocator(&mockVehicleRepo{}, &mockReservationRepo{}, 50)
	_, err := a.Allocate(context.Background(), nil, 3, []uint{1, 2}, time.Now(), 30)
	assert.ErrorIs(t, err, ErrInsufficientVehicles)
}

func TestAllocate_ScheduleConflict(t *testing.T) {
	start := time.Date(2026, 9, 5, 15, 0, 0, 0, time.UTC)

	vehicles := &mockVehicleRepo{
		listAvailableForUpdateFn: func(ctx context.Context, tx *gorm.DB) ([]models.Vehicle, error) {
			return []models.Vehicle{availableVehicle(1, "K001", 0)}, nil
		},
	}
	reservations := &mockReservationRepo{
		findOverlappingFn: func(ctx context.Context, tx *gorm.DB, s, e time.Time) ([]models.Reservation, error) {
			return []models.Reservation{{
				ID:              12,
				StartTime:       start.Add(-10 * time.Minute),
				DurationMinutes: 30,
				Status:          models.StatusConfirmed,
				VehicleIDs:      models.IDList{1},
			}}, nil
		},
	}

	a := NewAllocator(vehicles, reservations, 50)
	_, err := a.Allocate(context.Background(), nil, 1, nil, start, 30)
	assert.ErrorIs(t, err, ErrScheduleConflict)
	assert.Empty(t, vehicles.saved)
}

func TestAllocate_OverlapWithOtherVehiclesIsFine(t *testing.T) {
	start := time.Date(2026, 9, 5, 15, 0, 0, 0, time.UTC)

	vehicles := &mockVehicleRepo{
		listAvailableForUpdateFn: func(ctx context.Context, tx *gorm.DB) ([]models.Vehicle, error) {
			return []models.Vehicle{availableVehicle(2, "K002", 0)}, nil
		},
	}
	reservations := &mockReservationRepo{
		findOverlappingFn: func(ctx context.Context, tx *gorm.DB, s, e time.Time) ([]models.Reservation, error) {
			return []models.Reservation{{
				ID:         12,
				VehicleIDs: models.IDList{1},
				Status:     models.StatusConfirmed,
			}}, nil
		},
	}

	a := NewAllocator(vehicles, reservations, 50)
	ids, err := a.Allocate(context.Background(), nil, 1, nil, start, 30)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, ids)
}

func TestRelease_ReturnsVehiclesToPool(t *testing.T) {
	vehicles := &mockVehicleRepo{
		findByIDsForUpdateFn: func(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Vehicle, error) {
			v := availableVehicle(1, "K001", 12)
			v.Status = models.VehicleReserved
			return []models.Vehicle{v}, nil
		},
	}

	a := NewAllocator(vehicles, &mockReservationRepo{}, 50)
	require.NoError(t, a.Release(context.Background(), nil, []uint{1}))

	require.Len(t, vehicles.saved, 1)
	assert.Equal(t, models.VehicleAvailable, vehicles.saved[0].Status)
}

func TestRelease_FlagsMaintenanceAtInterval(t *testing.T) {
	vehicles := &mockVehicleRepo{
		findByIDsForUpdateFn: func(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Vehicle, error) {
			v := availableVehicle(1, "K001", 50)
			v.Status = models.VehicleReserved
			return []models.Vehicle{v}, nil
		},
	}

	a := NewAllocator(vehicles, &mockReservationRepo{}, 50)
	require.NoError(t, a.Release(context.Background(), nil, []uint{1}))

	require.Len(t, vehicles.saved, 1)
	assert.Equal(t, models.VehicleMaintenance, vehicles.saved[0].Status)
	assert.NotEmpty(t, vehicles.saved[0].Notes)
}

func TestRelease_NoVehiclesIsNoOp(t *testing.T) {
	a := NewAllocator(&mockVehicleRepo{}, &mockReservationRepo{}, 50)
	assert.NoError(t, a.Release(context.Background(), nil, nil))
}
