package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock FareTable ---

type mockFareTable struct {
	basePriceFn func(ctx context.Context, durationMinutes int) (float64, error)
}

func (m *mockFareTable) BasePrice(ctx context.Context, durationMinutes int) (float64, error) {
	return m.basePriceFn(ctx, durationMinutes)
}

// --- Mock ClientDirectory ---

type mockDirectory struct {
	existsFn     func(ctx context.Context, ids []uint) (bool, error)
	visitCountFn func(ctx context.Context, id uint) (int, error)
	isBirthdayFn func(ctx context.Context, id uint, onDate time.Time) (bool, error)
}

func (m *mockDirectory) Exists(ctx context.Context, ids []uint) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, ids)
	}
	return true, nil
}

func (m *mockDirectory) VisitCount(ctx context.Context, id uint) (int, error) {
	if m.visitCountFn != nil {
		return m.visitCountFn(ctx, id)
	}
	return 0, nil
}

func (m *mockDirectory) IsBirthday(ctx context.Context, id uint, onDate time.Time) (bool, error) {
	if m.isBirthdayFn != nil {
		return m.isBirthdayFn(ctx, id, onDate)
	}
	return false, nil
}

func (m *mockDirectory) IncrementVisits(ctx context.Context, ids []uint) error { return nil }

func fixedFare(price float64) *mockFareTable {
	return &mockFareTable{
		basePriceFn: func(ctx context.Context, durationMinutes int) (float64, error) {
			return price, nil
		},
	}
}

// --- Tests ---

func TestComputePrice_FullBreakdown(t *testing.T) {
	// Party of 4 at 15000 per head: 10% group discount for everyone, one
	// frequent visitor (6 visits, 20%) and one birthday participant (50%).
	directory := &mockDirectory{
		visitCountFn: func(ctx context.Context, id uint) (int, error) {
			if id == 1 {
				return 6, nil
			}
			return 0, nil
		},
		isBirthdayFn: func(ctx context.Context, id uint, onDate time.Time) (bool, error) {
			return id == 2, nil
		},
	}

	c := NewCoordinator(fixedFare(15000), directory)
	breakdown, err := c.ComputePrice(context.Background(), 4, []uint{1, 2, 3, 4}, 25, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 15000.0, breakdown.BasePerParticipant)
	assert.Equal(t, 60000.0, breakdown.BaseFare)
	assert.Equal(t, 0.10, breakdown.GroupPercent)
	assert.Equal(t, 6000.0, breakdown.GroupDiscount)
	assert.Equal(t, 3000.0, breakdown.LoyaltyDiscount)
	assert.Equal(t, 7500.0, breakdown.BirthdayDiscount)
	assert.Equal(t, 16500.0, breakdown.TotalDiscount)
	assert.Equal(t, 43500.0, breakdown.TotalFare)
	assert.False(t, breakdown.Degraded)

	require.Len(t, breakdown.Participants, 4)
	loyal := breakdown.Participants[0]
	assert.Equal(t, 3000.0, loyal.LoyaltyDiscount)
	assert.Equal(t, 10500.0, loyal.FinalShare)

	birthday := breakdown.Participants[1]
	assert.True(t, birthday.IsBirthday)
	assert.Equal(t, 7500.0, birthday.BirthdayDiscount)
	assert.Equal(t, 6000.0, birthday.FinalShare)
}

func TestComputePrice_BirthdayNeedsQualifyingParty(t *testing.T) {
	directory := &mockDirectory{
		isBirthdayFn: func(ctx context.Context, id uint, onDate time.Time) (bool, error) {
			return true, nil
		},
	}

	c := NewCoordinator(fixedFare(10000), directory)
	breakdown, err := c.ComputePrice(context.Background(), 2, []uint{1, 2}, 15, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 0.0, breakdown.BirthdayDiscount)
	assert.Equal(t, 20000.0, breakdown.TotalFare)
}

func TestComputePrice_ShareNeverNegative(t *testing.T) {
	// Every discount at once: 30% group, 30% loyalty, 50% birthday exceeds the
	// base share, so the final share clamps at zero.
	directory := &mockDirectory{
		visitCountFn: func(ctx context.Context, id uint) (int, error) { return 9, nil },
		isBirthdayFn: func(ctx context.Context, id uint, onDate time.Time) (bool, error) {
			return true, nil
		},
	}

	ids := make([]uint, 11)
	for i := range ids {
		ids[i] = uint(i + 1)
	}

	c := NewCoordinator(fixedFare(10000), directory)
	breakdown, err := c.ComputePrice(context.Background(), 11, ids, 15, time.Now())
	require.NoError(t, err)

	for _, p := range breakdown.Participants {
		assert.Equal(t, 0.0, p.FinalShare)
	}
	assert.Equal(t, 0.0, breakdown.TotalFare)
}

func TestComputePrice_FareServiceDownFallsBack(t *testing.T) {
	fares := &mockFareTable{
		basePriceFn: func(ctx context.Context, durationMinutes int) (float64, error) {
			return 0, errors.New("connection refused")
		},
	}

	c := NewCoordinator(fares, &mockDirectory{})
	breakdown, err := c.ComputePrice(context.Background(), 2, []uint{1, 2}, 20, time.Now())
	require.NoError(t, err)

	assert.True(t, breakdown.Degraded)
	assert.Equal(t, 13000.0, breakdown.BasePerParticipant)
}

func TestComputePrice_UnknownDurationFails(t *testing.T) {
	// The fare service answered that no tier exists. The embedded table is for
	// outages only, so the quote fails.
	fares := &mockFareTable{
		basePriceFn: func(ctx context.Context, durationMinutes int) (float64, error) {
			return 0, ErrPricingUnavailable
		},
	}

	c := NewCoordinator(fares, &mockDirectory{})
	_, err := c.ComputePrice(context.Background(), 2, []uint{1, 2}, 20, time.Now())
	assert.ErrorIs(t, err, ErrPricingUnavailable)
}

func TestComputePrice_FareServiceDownAndNoFallbackTier(t *testing.T) {
	fares := &mockFareTable{
		basePriceFn: func(ctx context.Context, durationMinutes int) (float64, error) {
			return 0, errors.New("connection refused")
		},
	}

	c := NewCoordinator(fares, &mockDirectory{})
	_, err := c.ComputePrice(context.Background(), 2, []uint{1, 2}, 45, time.Now())
	assert.ErrorIs(t, err, ErrPricingUnavailable)
}

func TestComputePrice_DirectoryOutageDegrades(t *testing.T) {
	directory := &mockDirectory{
		visitCountFn: func(ctx context.Context, id uint) (int, error) {
			return 0, errors.New("directory down")
		},
		isBirthdayFn: func(ctx context.Context, id uint, onDate time.Time) (bool, error) {
			return false, errors.New("directory down")
		},
	}

	c := NewCoordinator(fixedFare(15000), directory)
	breakdown, err := c.ComputePrice(context.Background(), 3, []uint{1, 2, 3}, 25, time.Now())
	require.NoError(t, err)

	// Degraded quotes still price the group discount, only the personal
	// discounts fall to zero.
	assert.True(t, breakdown.Degraded)
	assert.NotEmpty(t, breakdown.DegradedNotes)
	assert.Equal(t, 0.0, breakdown.LoyaltyDiscount)
	assert.Equal(t, 0.0, breakdown.BirthdayDiscount)
	assert.Equal(t, 4500.0, breakdown.GroupDiscount)
	assert.Equal(t, 40500.0, breakdown.TotalFare)
}
