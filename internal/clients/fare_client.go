package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/pricing"
)

// ErrNotConfigured is returned when a collaborator base URL is unset. Callers
// treat it like any other outage and fall back to local data.
var ErrNotConfigured = errors.New("collaborator not configured")

// FareClient implements pricing.FareTable against the fare service HTTP API.
type FareClient struct {
	baseURL string
	client  *http.Client
}

func NewFareClient(baseURL string, timeout time.Duration) *FareClient {
	return &FareClient{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (c *FareClient) BasePrice(ctx context.Context, durationMinutes int) (float64, error) {
	if c.baseURL == "" {
		return 0, ErrNotConfigured
	}

	url := fmt.Sprintf("%s/api/v1/fares/duration/%d", c.baseURL, durationMinutes)
	resp, err := getWithRetry(ctx, c.client, url)
	if err != nil {
		return 0, fmt.Errorf("fare service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out struct {
			BasePrice float64 `json:"base_price"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return 0, fmt.Errorf("fare service: decode response: %w", err)
		}
		return out.BasePrice, nil
	case http.StatusNotFound:
		// The service answered: no tier for this duration. Not an outage.
		return 0, fmt.Errorf("%w: %d minutes", pricing.ErrPricingUnavailable, durationMinutes)
	default:
		return 0, fmt.Errorf("fare service: unexpected status %d", resp.StatusCode)
	}
}

// getWithRetry performs an idempotent GET, retrying once on a transport
// error or 5xx before giving up.
func getWithRetry(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}
