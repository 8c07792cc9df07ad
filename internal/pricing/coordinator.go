package pricing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/observability"
)

var ErrPricingUnavailable = errors.New("no fare tier matches the requested duration")

// FareTable resolves the base price per participant for a session duration.
type FareTable interface {
	BasePrice(ctx context.Context, durationMinutes int) (float64, error)
}

// ClientDirectory answers participant questions: existence, visit history and
// birthday matches.
type ClientDirectory interface {
	Exists(ctx context.Context, ids []uint) (bool, error)
	VisitCount(ctx context.Context, id uint) (int, error)
	IsBirthday(ctx context.Context, id uint, onDate time.Time) (bool, error)
	IncrementVisits(ctx context.Context, ids []uint) error
}

// ParticipantPrice is one participant's line of the breakdown.
type ParticipantPrice struct {
	ParticipantID    uint    `json:"participant_id"`
	BaseShare        float64 `json:"base_share"`
	GroupDiscount    float64 `json:"group_discount"`
	LoyaltyDiscount  float64 `json:"loyalty_discount"`
	BirthdayDiscount float64 `json:"birthday_discount"`
	FinalShare       float64 `json:"final_share"`
	VisitCount       int     `json:"visit_count"`
	IsBirthday       bool    `json:"is_birthday"`
}

// PriceBreakdown aggregates the per-participant lines. Degraded is set when a
// directory lookup failed and local fallback data was used instead.
type PriceBreakdown struct {
	BasePerParticipant float64            `json:"base_per_participant"`
	BaseFare           float64            `json:"base_fare"`
	GroupPercent       float64            `json:"group_percent"`
	GroupDiscount      float64            `json:"group_discount"`
	LoyaltyDiscount    float64            `json:"loyalty_discount"`
	BirthdayDiscount   float64            `json:"birthday_discount"`
	TotalDiscount      float64            `json:"total_discount"`
	TotalFare          float64            `json:"total_fare"`
	Participants       []ParticipantPrice `json:"participants"`
	Degraded           bool               `json:"degraded"`
	DegradedNotes      []string           `json:"degraded_notes,omitempty"`
}

// Coordinator combines the fare table, the embedded discount tables and the
// client directory into a per-participant price breakdown.
type Coordinator struct {
	fares     FareTable
	directory ClientDirectory
}

func NewCoordinator(fares FareTable, directory ClientDirectory) *Coordinator {
	return &Coordinator{fares: fares, directory: directory}
}

// ComputePrice builds the full breakdown for a party. The fare table is the
// only hard dependency: if neither the remote table nor the embedded fallback
// resolves the duration, the quote fails with ErrPricingUnavailable. Directory
// outages and unknown participants degrade to zero loyalty / no birthday and
// are reported in the breakdown instead of failing it.
func (c *Coordinator) ComputePrice(ctx context.Context, partySize int, participantIDs []uint, durationMinutes int, onDate time.Time) (*PriceBreakdown, error) {
	basePerParticipant, degradedFare, err := c.resolveBasePrice(ctx, durationMinutes)
	if err != nil {
		return nil, err
	}

	breakdown := &PriceBreakdown{
		BasePerParticipant: basePerParticipant,
		GroupPercent:       GroupDiscountPercent(partySize),
		Participants:       make([]ParticipantPrice, 0, len(participantIDs)),
	}
	if degradedFare {
		breakdown.markDegraded("fare service unreachable, used embedded fare table")
	}

	groupDiscountPerParticipant := basePerParticipant * breakdown.GroupPercent

	for _, id := range participantIDs {
		line := ParticipantPrice{
			ParticipantID: id,
			BaseShare:     basePerParticipant,
			GroupDiscount: groupDiscountPerParticipant,
		}

		visits, err := c.directory.VisitCount(ctx, id)
		if err != nil {
			breakdown.markDegraded(fmt.Sprintf("visit count unavailable for participant %d, assuming 0", id))
			visits = 0
		}
		line.VisitCount = visits
		line.LoyaltyDiscount = basePerParticipant * LoyaltyDiscountPercent(visits)

		birthday, err := c.directory.IsBirthday(ctx, id, onDate)
		if err != nil {
			breakdown.markDegraded(fmt.Sprintf("birthday check unavailable for participant %d, assuming none", id))
			birthday = false
		}
		line.IsBirthday = birthday
		line.BirthdayDiscount = basePerParticipant * BirthdayDiscountPercent(birthday, partySize)

		line.FinalShare = basePerParticipant - line.GroupDiscount - line.LoyaltyDiscount - line.BirthdayDiscount
		if line.FinalShare < 0 {
			line.FinalShare = 0
		}

		breakdown.BaseFare += basePerParticipant
		breakdown.GroupDiscount += line.GroupDiscount
		breakdown.LoyaltyDiscount += line.LoyaltyDiscount
		breakdown.BirthdayDiscount += line.BirthdayDiscount
		breakdown.TotalFare += line.FinalShare
		breakdown.Participants = append(breakdown.Participants, line)
	}

	breakdown.TotalDiscount = breakdown.GroupDiscount + breakdown.LoyaltyDiscount + breakdown.BirthdayDiscount
	return breakdown, nil
}

func (c *Coordinator) resolveBasePrice(ctx context.Context, durationMinutes int) (price float64, degraded bool, err error) {
	price, err = c.fares.BasePrice(ctx, durationMinutes)
	if err == nil {
		if price <= 0 {
			return 0, false, fmt.Errorf("%w: fare service returned %v for %d minutes", ErrPricingUnavailable, price, durationMinutes)
		}
		return price, false, nil
	}
	if errors.Is(err, ErrPricingUnavailable) {
		// The fare service answered: the duration has no tier. No fallback.
		return 0, false, err
	}

	log.Printf("[Pricing] fare service unreachable (%v), using embedded fare table", err)
	price, ok := fallbackBasePrice(durationMinutes)
	if !ok {
		return 0, false, fmt.Errorf("%w: %d minutes", ErrPricingUnavailable, durationMinutes)
	}
	return price, true, nil
}

func (b *PriceBreakdown) markDegraded(note string) {
	if !b.Degraded {
		observability.PricingFallbacks.Inc()
	}
	b.Degraded = true
	b.DegradedNotes = append(b.DegradedNotes, note)
	log.Printf("[Pricing] degraded mode: %s", note)
}
