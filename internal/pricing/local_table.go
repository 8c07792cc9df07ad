package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/NelsonCereno/Tingeso-2/internal/repository"
	"gorm.io/gorm"
)

// LocalFareTable resolves base prices from the service's own fare tier table.
// It serves deployments that run without a remote fare service.
type LocalFareTable struct {
	tariffs repository.TariffRepository
}

func NewLocalFareTable(tariffs repository.TariffRepository) *LocalFareTable {
	return &LocalFareTable{tariffs: tariffs}
}

func (t *LocalFareTable) BasePrice(ctx context.Context, durationMinutes int) (float64, error) {
	tier, err := t.tariffs.FindFareByDuration(ctx, durationMinutes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: %d minutes", ErrPricingUnavailable, durationMinutes)
		}
		return 0, err
	}
	return tier.BasePrice, nil
}
