package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/deletrics-oss/gourmetflow1-sub003/internal/models"
)

// Client talks to the remote backend's REST API. Every write carries the
// locally generated id as Idempotency-Key, so a retried submission whose
// first attempt actually succeeded server-side returns the existing record
// instead of creating a duplicate.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// CreatedRecord is the backend's acknowledgement of a write: the
// server-assigned id that replaces the local one in later references.
type CreatedRecord struct {
	ID string `json:"id"`
}

// CreateOrder submits an offline order.
func (c *Client) CreateOrder(ctx context.Context, payload []byte, idempotencyKey string) (*CreatedRecord, error) {
	var rec CreatedRecord
	if err := c.send(ctx, http.MethodPost, "/orders", payload, idempotencyKey, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateCustomer submits an offline customer. The backend upserts by phone
// (last-write-wins).
func (c *Client) CreateCustomer(ctx context.Context, payload []byte, idempotencyKey string) (*CreatedRecord, error) {
	var rec CreatedRecord
	if err := c.send(ctx, http.MethodPost, "/customers", payload, idempotencyKey, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateOrder pushes a status/content change for an order that has already
// been created remotely.
func (c *Client) UpdateOrder(ctx context.Context, serverID string, payload []byte, idempotencyKey string) error {
	return c.send(ctx, http.MethodPatch, "/orders/"+serverID, payload, idempotencyKey, nil)
}

// FetchMenu pulls the restaurant's current menu for the local cache.
func (c *Client) FetchMenu(ctx context.Context, restaurantID string) (*models.MenuSnapshot, error) {
	var snapshot models.MenuSnapshot
	if err := c.send(ctx, http.MethodGet, "/restaurants/"+restaurantID+"/menu", nil, "", &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Ping is the connectivity probe used by the sync driver.
func (c *Client) Ping(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, "/health", nil, "", nil)
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, idempotencyKey string, out any) error {

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote call %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RejectedError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	default:
		return fmt.Errorf("remote returned status %d for %s %s", resp.StatusCode, method, path)
	}
}
