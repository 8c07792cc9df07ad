package fleet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/models"
	"github.com/NelsonCereno/Tingeso-2/internal/observability"
	"github.com/NelsonCereno/Tingeso-2/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInsufficientVehicles = errors.New("not enough available vehicles")
	ErrVehicleUnavailable   = errors.New("requested vehicle is not available")
	ErrScheduleConflict     = errors.New("vehicles already reserved in the requested time window")
)

// Allocator selects and holds vehicles for a reservation. Allocate and
// Release run inside the caller's transaction so a failed booking rolls the
// RESERVED markings back together with everything else.
type Allocator struct {
	vehicles            repository.VehicleRepository
	reservations        repository.ReservationRepository
	maintenanceInterval int
}

func NewAllocator(vehicles repository.VehicleRepository, reservations repository.ReservationRepository, maintenanceInterval int) *Allocator {
	return &Allocator{
		vehicles:            vehicles,
		reservations:        reservations,
		maintenanceInterval: maintenanceInterval,
	}
}

// Allocate picks partySize vehicles, checks the requested window for
// conflicts against reservations that hold vehicles, and marks the chosen
// vehicles RESERVED. Explicit ids are honored in the order supplied;
// automatic mode takes the least-used available vehicles.
func (a *Allocator) Allocate(ctx context.Context, tx *gorm.DB, partySize int, requestedIDs []uint, start time.Time, durationMinutes int) ([]uint, error) {
	var chosen []models.Vehicle

	if len(requestedIDs) > 0 {
		if len(requestedIDs) < partySize {
			return nil, fmt.Errorf("%w: %d requested for a party of %d", ErrInsufficientVehicles, len(requestedIDs), partySize)
		}
		// One physical vehicle cannot back two seats.
		seen := make(map[uint]struct{}, len(requestedIDs))
		for _, id := range requestedIDs {
			if _, dup := seen[id]; dup {
				return nil, fmt.Errorf("%w: vehicle %d requested twice", ErrVehicleUnavailable, id)
			}
			seen[id] = struct{}{}
		}

		rows, err := a.vehicles.FindByIDsForUpdate(ctx, tx, requestedIDs)
		if err != nil {
			return nil, fmt.Errorf("lock requested vehicles: %w", err)
		}
		byID := make(map[uint]models.Vehicle, len(rows))
		for _, v := range rows {
			byID[v.ID] = v
		}

		for _, id := range requestedIDs[:partySize] {
			v, ok := byID[id]
			if !ok || !v.IsAvailable() {
				return nil, fmt.Errorf("%w: vehicle %d", ErrVehicleUnavailable, id)
			}
			chosen = append(chosen, v)
		}
	} else {
		rows, err := a.vehicles.ListAvailableForUpdate(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("lock available vehicles: %w", err)
		}
		if len(rows) < partySize {
			return nil, fmt.Errorf("%w: %d available for a party of %d", ErrInsufficientVehicles, len(rows), partySize)
		}
		chosen = rows[:partySize]
	}

	if err := a.checkConflicts(ctx, tx, chosen, start, durationMinutes); err != nil {
		return nil, err
	}

	for i := range chosen {
		chosen[i].MarkReserved()
	}
	if err := a.vehicles.SaveAll(ctx, tx, chosen); err != nil {
		return nil, fmt.Errorf("reserve vehicles: %w", err)
	}

	ids := make([]uint, len(chosen))
	for i, v := range chosen {
		ids[i] = v.ID
	}
	return ids, nil
}

// Release returns vehicles to the available pool. A vehicle whose usage
// counter sits on the maintenance interval is flagged instead of freed.
func (a *Allocator) Release(ctx context.Context, tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	rows, err := a.vehicles.FindByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return fmt.Errorf("lock vehicles for release: %w", err)
	}

	for i := range rows {
		rows[i].Release()
		if rows[i].NeedsMaintenance(a.maintenanceInterval) {
			rows[i].FlagMaintenance(fmt.Sprintf("Preventive maintenance due after %d uses", rows[i].UsageCount))
			observability.VehiclesFlaggedMaintenance.Inc()
			log.Printf("[Fleet] vehicle %s flagged for maintenance (%d uses)", rows[i].Code, rows[i].UsageCount)
		}
	}

	if err := a.vehicles.SaveAll(ctx, tx, rows); err != nil {
		return fmt.Errorf("release vehicles: %w", err)
	}
	return nil
}

// AvailableCount reports current fleet capacity.
func (a *Allocator) AvailableCount(ctx context.Context) (int64, error) {
	return a.vehicles.CountAvailable(ctx)
}

func (a *Allocator) checkConflicts(ctx context.Context, tx *gorm.DB, candidates []models.Vehicle, start time.Time, durationMinutes int) error {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	overlapping, err := a.reservations.FindOverlapping(ctx, tx, start, end)
	if err != nil {
		return fmt.Errorf("load overlapping reservations: %w", err)
	}

	for _, res := range overlapping {
		for _, v := range candidates {
			if res.VehicleIDs.Contains(v.ID) {
				observability.ScheduleConflicts.Inc()
				return fmt.Errorf("%w: vehicle %s held by reservation %d", ErrScheduleConflict, v.Code, res.ID)
			}
		}
	}
	return nil
}
