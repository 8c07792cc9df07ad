package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DirectoryClient implements pricing.ClientDirectory against the client
// directory HTTP API.
type DirectoryClient struct {
	baseURL string
	client  *http.Client
}

func NewDirectoryClient(baseURL string, timeout time.Duration) *DirectoryClient {
	return &DirectoryClient{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (c *DirectoryClient) Exists(ctx context.Context, ids []uint) (bool, error) {
	if c.baseURL == "" {
		return false, ErrNotConfigured
	}

	url := fmt.Sprintf("%s/api/v1/clients/exists?ids=%s", c.baseURL, joinIDs(ids))
	resp, err := getWithRetry(ctx, c.client, url)
	if err != nil {
		return false, fmt.Errorf("client directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("client directory: unexpected status %d", resp.StatusCode)
	}
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("client directory: decode response: %w", err)
	}
	return out.Exists, nil
}

func (c *DirectoryClient) VisitCount(ctx context.Context, id uint) (int, error) {
	if c.baseURL == "" {
		return 0, ErrNotConfigured
	}

	url := fmt.Sprintf("%s/api/v1/clients/%d/visits", c.baseURL, id)
	resp, err := getWithRetry(ctx, c.client, url)
	if err != nil {
		return 0, fmt.Errorf("client directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("client directory: unexpected status %d", resp.StatusCode)
	}
	var out struct {
		Visits int `json:"visits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("client directory: decode response: %w", err)
	}
	return out.Visits, nil
}

func (c *DirectoryClient) IsBirthday(ctx context.Context, id uint, onDate time.Time) (bool, error) {
	if c.baseURL == "" {
		return false, ErrNotConfigured
	}

	url := fmt.Sprintf("%s/api/v1/clients/%d/birthday?date=%s", c.baseURL, id, onDate.Format("2006-01-02"))
	resp, err := getWithRetry(ctx, c.client, url)
	if err != nil {
		return false, fmt.Errorf("client directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("client directory: unexpected status %d", resp.StatusCode)
	}
	var out struct {
		Birthday bool `json:"birthday"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("client directory: decode response: %w", err)
	}
	return out.Birthday, nil
}

// IncrementVisits records a visit for each participant. Not retried: the
// caller treats it as best-effort and the directory endpoint is not
// idempotent.
func (c *DirectoryClient) IncrementVisits(ctx context.Context, ids []uint) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(map[string][]uint{"ids": ids})
	if err != nil {
		return fmt.Errorf("client directory: marshal payload: %w", err)
	}

	url := c.baseURL + "/api/v1/clients/visits/increment"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("client directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("client directory: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
