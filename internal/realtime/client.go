package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pamlee/kitchen/internal/orders"
)

// Client is the slice of the orders API the synchronization layer needs.
type Client interface {
	ListOrders(ctx context.Context) ([]orders.Order, error)
	GetOrder(ctx context.Context, trackerID string) (*orders.Order, error)
	UpdateStatus(ctx context.Context, trackerID string, status orders.Status, note string) error
}

// APIClient talks to the REST API. Token may be empty for guest tracking
// lookups; list and mutation calls need one.
type APIClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type apiError struct {
	Message string `json:"error"`
}

func (c *APIClient) ListOrders(ctx context.Context) ([]orders.Order, error) {
	var resp struct {
		Success bool           `json:"success"`
		Orders  []orders.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *APIClient) GetOrder(ctx context.Context, trackerID string) (*orders.Order, error) {
	var resp struct {
		Success bool         `json:"success"`
		Order   orders.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+trackerID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (c *APIClient) UpdateStatus(ctx context.Context, trackerID string, status orders.Status, note string) error {
	body := map[string]string{"status": string(status), "note": note}
	return c.do(ctx, http.MethodPut, "/api/orders/"+trackerID, body, nil)
}

func (c *APIClient) CreateOrder(ctx context.Context, o *orders.Order) (string, error) {
	var resp struct {
		Success   bool   `json:"success"`
		TrackerID string `json:"trackerId"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/orders", o, &resp); err != nil {
		return "", err
	}
	return resp.TrackerID, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpc := c.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var ae apiError
		if json.NewDecoder(resp.Body).Decode(&ae) == nil && ae.Message != "" {
			return fmt.Errorf("api: %s (%d)", ae.Message, resp.StatusCode)
		}
		return fmt.Errorf("api: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
