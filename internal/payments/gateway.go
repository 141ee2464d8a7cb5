package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the gateway's answer to a charge.
type Transaction struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// Gateway is the opaque payment collaborator: charge(amount, order, method)
// and nothing else. Gateway-specific flows live behind its own API.
type Gateway struct {
	baseURL string
	client  *http.Client
}

func NewGateway(baseURL string) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *Gateway) Charge(ctx context.Context, amount decimal.Decimal, orderID, method string) (*Transaction, error) {

	body, err := json.Marshal(map[string]string{
		"amount":   amount.StringFixed(2),
		"order_id": orderID,
		"method":   method,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charge", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("charge call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("gateway returned non-success status: %d", resp.StatusCode)
	}

	var tx Transaction
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		return nil, fmt.Errorf("failed to decode charge response: %w", err)
	}

	return &tx, nil
}
