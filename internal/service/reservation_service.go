package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/models"
	"github.com/NelsonCereno/Tingeso-2/internal/observability"
	"github.com/NelsonCereno/Tingeso-2/internal/pricing"
	"github.com/NelsonCereno/Tingeso-2/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("invalid reservation request")
	ErrNotFound          = errors.New("reservation not found")
	ErrInvalidTransition = errors.New("reservation state does not allow this operation")
)

const (
	minPartySize = 1
	maxPartySize = 15
)

// CreateReservationInput carries everything needed to book a session.
// VehicleIDs empty means automatic assignment.
type CreateReservationInput struct {
	HolderClientID  uint
	StartTime       time.Time
	DurationMinutes int
	PartySize       int
	ParticipantIDs  []uint
	VehicleIDs      []uint
	Notes           string
}

// QuoteInput prices a hypothetical reservation without holding anything.
type QuoteInput struct {
	StartTime       time.Time
	DurationMinutes int
	PartySize       int
	ParticipantIDs  []uint
}

// Availability reports current fleet capacity against a requested window.
type Availability struct {
	Available               bool      `json:"available"`
	PartySize               int       `json:"party_size"`
	AvailableVehicles       int64     `json:"available_vehicles"`
	OverlappingReservations int       `json:"overlapping_reservations"`
	Start                   time.Time `json:"start"`
	End                     time.Time `json:"end"`
}

// Stats aggregates the reservation book.
type Stats struct {
	Total             int64            `json:"total"`
	ByStatus          map[string]int64 `json:"by_status"`
	CompletedRevenue  float64          `json:"completed_revenue"`
	AverageFare       float64          `json:"average_fare"`
	AvailableVehicles int64            `json:"available_vehicles"`
}

// VehicleAllocator is the slice of the fleet the lifecycle needs. Allocate
// and Release run inside the caller's transaction.
type VehicleAllocator interface {
	Allocate(ctx context.Context, tx *gorm.DB, partySize int, requestedIDs []uint, start time.Time, durationMinutes int) ([]uint, error)
	Release(ctx context.Context, tx *gorm.DB, ids []uint) error
	AvailableCount(ctx context.Context) (int64, error)
}

// PriceCalculator produces the discount breakdown for a party.
type PriceCalculator interface {
	ComputePrice(ctx context.Context, partySize int, participantIDs []uint, durationMinutes int, onDate time.Time) (*pricing.PriceBreakdown, error)
}

// LifecycleNotifier publishes state-change events. The boolean reports
// whether the message actually went out.
type LifecycleNotifier interface {
	ReservationConfirmed(res *models.Reservation) bool
	ReservationCancelled(res *models.Reservation) bool
	ReservationCompleted(res *models.Reservation) bool
}

type ReservationService interface {
	Create(ctx context.Context, input CreateReservationInput) (*models.Reservation, *pricing.PriceBreakdown, error)
	Quote(ctx context.Context, input QuoteInput) (*pricing.PriceBreakdown, error)
	Cancel(ctx context.Context, id uint, reason string) (*models.Reservation, error)
	Start(ctx context.Context, id uint) (*models.Reservation, error)
	Complete(ctx context.Context, id uint) (*models.Reservation, error)
	GetByID(ctx context.Context, id uint) (*models.Reservation, error)
	List(ctx context.Context) ([]models.Reservation, error)
	ListByStatus(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error)
	ListActive(ctx context.Context) ([]models.Reservation, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error)
	CheckAvailability(ctx context.Context, start time.Time, durationMinutes, partySize int) (*Availability, error)
	Stats(ctx context.Context) (*Stats, error)
}

type reservationService struct {
	reservations repository.ReservationRepository
	allocator    VehicleAllocator
	pricer       PriceCalculator
	directory    pricing.ClientDirectory
	notifier     LifecycleNotifier
}

func NewReservationService(
	reservations repository.ReservationRepository,
	allocator VehicleAllocator,
	pricer PriceCalculator,
	directory pricing.ClientDirectory,
	notifier LifecycleNotifier,
) ReservationService {
	return &reservationService{
		reservations: reservations,
		allocator:    allocator,
		pricer:       pricer,
		directory:    directory,
		notifier:     notifier,
	}
}

func (s *reservationService) Create(ctx context.Context, input CreateReservationInput) (*models.Reservation, *pricing.PriceBreakdown, error) {
	started := time.Now()

	if err := s.validateCreate(input); err != nil {
		return nil, nil, err
	}
	if err := s.checkParticipantsExist(ctx, input.ParticipantIDs); err != nil {
		return nil, nil, err
	}

	// Price before the transaction: pricing is read-only and may call out to
	// remote collaborators, so it must not sit inside the lock window.
	breakdown, err := s.pricer.ComputePrice(ctx, input.PartySize, input.ParticipantIDs, input.DurationMinutes, input.StartTime)
	if err != nil {
		return nil, nil, err
	}

	reservation := &models.Reservation{
		HolderClientID:   input.HolderClientID,
		StartTime:        input.StartTime,
		DurationMinutes:  input.DurationMinutes,
		PartySize:        input.PartySize,
		ParticipantIDs:   input.ParticipantIDs,
		BaseFare:         breakdown.BaseFare,
		GroupDiscount:    breakdown.GroupDiscount,
		LoyaltyDiscount:  breakdown.LoyaltyDiscount,
		BirthdayDiscount: breakdown.BirthdayDiscount,
		Status:           models.StatusPending,
		Notes:            input.Notes,
	}
	reservation.ComputeTotals()

	err = s.reservations.Transaction(ctx, func(tx *gorm.DB) error {
		// 1. Lock and hold the vehicles. A conflict or shortage rolls back
		// everything, including the RESERVED markings.
		vehicleIDs, err := s.allocator.Allocate(ctx, tx, input.PartySize, input.VehicleIDs, input.StartTime, input.DurationMinutes)
		if err != nil {
			return err
		}
		reservation.VehicleIDs = vehicleIDs

		// 2. Persist as PENDING first so the record exists before the
		// transition, then confirm in the same transaction.
		if err := s.reservations.Create(ctx, tx, reservation); err != nil {
			return err
		}
		reservation.Confirm()
		return s.reservations.Save(ctx, tx, reservation)
	})
	if err != nil {
		return nil, nil, err
	}

	observability.ReservationsCreated.Inc()
	observability.CreateLatency.Observe(time.Since(started).Seconds())

	// Post-commit side effects are best effort.
	if err := s.directory.IncrementVisits(ctx, input.ParticipantIDs); err != nil {
		log.Printf("[Reservation] increment visits for reservation %d failed: %v", reservation.ID, err)
	}
	if s.notifier.ReservationConfirmed(reservation) {
		reservation.NotificationSent = true
		if err := s.reservations.Save(ctx, s.reservations.GetDB(), reservation); err != nil {
			log.Printf("[Reservation] persist notification flag for reservation %d failed: %v", reservation.ID, err)
		}
	}

	return reservation, breakdown, nil
}

func (s *reservationService) Quote(ctx context.Context, input QuoteInput) (*pricing.PriceBreakdown, error) {
	if err := validateParty(input.PartySize, input.ParticipantIDs); err != nil {
		return nil, err
	}
	if input.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrValidation)
	}

	onDate := input.StartTime
	if onDate.IsZero() {
		onDate = time.Now()
	}
	return s.pricer.ComputePrice(ctx, input.PartySize, input.ParticipantIDs, input.DurationMinutes, onDate)
}

// Cancel releases the reservation's vehicles and marks it CANCELLED.
// Cancelling an already cancelled reservation is a no-op, not an error.
func (s *reservationService) Cancel(ctx context.Context, id uint, reason string) (*models.Reservation, error) {
	var result *models.Reservation
	alreadyCancelled := false

	err := s.reservations.Transaction(ctx, func(tx *gorm.DB) error {
		reservation, err := s.reservations.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", ErrNotFound, id)
			}
			return err
		}

		if reservation.Status == models.StatusCancelled {
			alreadyCancelled = true
			result = reservation
			return nil
		}
		if !reservation.CanCancel() {
			return fmt.Errorf("%w: cannot cancel a %s reservation", ErrInvalidTransition, reservation.Status)
		}

		if err := s.allocator.Release(ctx, tx, reservation.VehicleIDs); err != nil {
			return err
		}

		reservation.Cancel(reason)
		if err := s.reservations.Save(ctx, tx, reservation); err != nil {
			return err
		}
		result = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyCancelled {
		observability.ReservationsCancelled.Inc()
		s.notifier.ReservationCancelled(result)
	}
	return result, nil
}

func (s *reservationService) Start(ctx context.Context, id uint) (*models.Reservation, error) {
	var result *models.Reservation

	err := s.reservations.Transaction(ctx, func(tx *gorm.DB) error {
		reservation, err := s.reservations.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", ErrNotFound, id)
			}
			return err
		}

		if reservation.Status != models.StatusConfirmed {
			return fmt.Errorf("%w: cannot start a %s reservation", ErrInvalidTransition, reservation.Status)
		}

		reservation.Start()
		if err := s.reservations.Save(ctx, tx, reservation); err != nil {
			return err
		}
		result = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Complete frees the vehicles and closes the reservation. A CONFIRMED
// reservation may complete directly, skipping IN_PROGRESS.
func (s *reservationService) Complete(ctx context.Context, id uint) (*models.Reservation, error) {
	var result *models.Reservation

	err := s.reservations.Transaction(ctx, func(tx *gorm.DB) error {
		reservation, err := s.reservations.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", ErrNotFound, id)
			}
			return err
		}

		if reservation.Status != models.StatusConfirmed && reservation.Status != models.StatusInProgress {
			return fmt.Errorf("%w: cannot complete a %s reservation", ErrInvalidTransition, reservation.Status)
		}

		if err := s.allocator.Release(ctx, tx, reservation.VehicleIDs); err != nil {
			return err
		}

		reservation.Complete()
		if err := s.reservations.Save(ctx, tx, reservation); err != nil {
			return err
		}
		result = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.ReservationsCompleted.Inc()
	s.notifier.ReservationCompleted(result)
	return result, nil
}

func (s *reservationService) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reservation %d", ErrNotFound, id)
		}
		return nil, err
	}
	return reservation, nil
}

func (s *reservationService) List(ctx context.Context) ([]models.Reservation, error) {
	return s.reservations.FindAll(ctx)
}

func (s *reservationService) ListByStatus(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error) {
	switch status {
	case models.StatusPending, models.StatusConfirmed, models.StatusInProgress, models.StatusCompleted, models.StatusCancelled:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.reservations.FindByStatus(ctx, status)
}

func (s *reservationService) ListActive(ctx context.Context) ([]models.Reservation, error) {
	return s.reservations.FindActive(ctx)
}

func (s *reservationService) ListBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before start", ErrValidation)
	}
	return s.reservations.FindBetween(ctx, from, to)
}

func (s *reservationService) CheckAvailability(ctx context.Context, start time.Time, durationMinutes, partySize int) (*Availability, error) {
	if partySize < minPartySize || partySize > maxPartySize {
		return nil, fmt.Errorf("%w: party size must be between %d and %d", ErrValidation, minPartySize, maxPartySize)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrValidation)
	}

	// Vehicles held by active reservations sit in RESERVED status, so the
	// AVAILABLE count already excludes them. The overlap count below is
	// informational, not part of the capacity decision.
	available, err := s.allocator.AvailableCount(ctx)
	if err != nil {
		return nil, err
	}

	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	overlapping, err := s.reservations.FindOverlapping(ctx, s.reservations.GetDB(), start, end)
	if err != nil {
		return nil, err
	}

	return &Availability{
		Available:               available >= int64(partySize),
		PartySize:               partySize,
		AvailableVehicles:       available,
		OverlappingReservations: len(overlapping),
		Start:                   start,
		End:                     end,
	}, nil
}

func (s *reservationService) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByStatus: make(map[string]int64, 5)}

	for _, status := range []models.ReservationStatus{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusInProgress,
		models.StatusCompleted,
		models.StatusCancelled,
	} {
		count, err := s.reservations.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		stats.ByStatus[string(status)] = count
		stats.Total += count
	}

	revenue, err := s.reservations.SumTotalFare(ctx, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	stats.CompletedRevenue = revenue
	if completed := stats.ByStatus[string(models.StatusCompleted)]; completed > 0 {
		stats.AverageFare = revenue / float64(completed)
	}

	available, err := s.allocator.AvailableCount(ctx)
	if err != nil {
		return nil, err
	}
	stats.AvailableVehicles = available
	return stats, nil
}

func (s *reservationService) validateCreate(input CreateReservationInput) error {
	if input.HolderClientID == 0 {
		return fmt.Errorf("%w: holder client id is required", ErrValidation)
	}
	if input.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrValidation)
	}
	if input.StartTime.Before(time.Now()) {
		return fmt.Errorf("%w: start time must be in the future", ErrValidation)
	}
	if input.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	return validateParty(input.PartySize, input.ParticipantIDs)
}

func validateParty(partySize int, participantIDs []uint) error {
	if partySize < minPartySize || partySize > maxPartySize {
		return fmt.Errorf("%w: party size must be between %d and %d", ErrValidation, minPartySize, maxPartySize)
	}
	// Not every rider has to be a registered client: the list may be shorter
	// than the party, never longer.
	if len(participantIDs) < 1 || len(participantIDs) > partySize {
		return fmt.Errorf("%w: %d participants listed for a party of %d", ErrValidation, len(participantIDs), partySize)
	}
	seen := make(map[uint]struct{}, len(participantIDs))
	for _, id := range participantIDs {
		if id == 0 {
			return fmt.Errorf("%w: participant id must be positive", ErrValidation)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate participant %d", ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// checkParticipantsExist asks the directory. When the directory is down the
// booking still goes through on the local sanity checks already applied;
// pricing degrades separately.
func (s *reservationService) checkParticipantsExist(ctx context.Context, ids []uint) error {
	exists, err := s.directory.Exists(ctx, ids)
	if err != nil {
		log.Printf("[Reservation] client directory unreachable (%v), skipping existence check", err)
		return nil
	}
	if !exists {
		return fmt.Errorf("%w: one or more participants are not registered", ErrValidation)
	}
	return nil
}
