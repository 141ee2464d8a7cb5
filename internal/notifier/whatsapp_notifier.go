package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	config "github.com/deletrics-oss/gourmetflow1-sub003/configs"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/utils"
)

// WhatsApp is the bridge collaborator. The bridge owns message delivery and
// its retries; a failure here is logged and reported, never re-queued by the
// sync engine.
type WhatsApp struct {
	bridgeURL string
	deviceID  string
	client    *http.Client
}

func NewWhatsApp(cfg config.WhatsAppConfig) *WhatsApp {
	return &WhatsApp{
		bridgeURL: cfg.BridgeURL,
		deviceID:  cfg.DeviceID,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type bridgeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendMessage delivers a free-form text to a phone number through the bridge.
func (w *WhatsApp) SendMessage(ctx context.Context, phone, message string) error {

	payload := map[string]string{
		"phone":     phone,
		"message":   message,
		"device_id": w.deviceID,
	}

	return w.post(ctx, "/send-message", payload, phone)
}

// NotifyOrderStatus tells the customer their order changed status, including
// the assigned motoboy when the order is out for delivery. The total is
// rendered as customer-facing text, the bridge does not format money.
func (w *WhatsApp) NotifyOrderStatus(ctx context.Context, orderID, status, phone, orderNumber, motoboy string, total decimal.Decimal) error {

	payload := map[string]string{
		"order_id":     orderID,
		"status":       status,
		"phone":        phone,
		"order_number": orderNumber,
		"motoboy":      motoboy,
		"total":        utils.FormatBRL(total),
		"device_id":    w.deviceID,
	}

	return w.post(ctx, "/notify-order-status", payload, phone)
}

func (w *WhatsApp) post(ctx context.Context, path string, payload map[string]string, phone string) error {

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode bridge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.bridgeURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create bridge request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		log.Printf("WhatsApp bridge call %s failed for %s: %v\n", path, phone, err)
		return fmt.Errorf("whatsapp bridge call failed: %w", err)
	}

	defer resp.Body.Close()

	var bridgeResp bridgeResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&bridgeResp); decodeErr != nil && resp.StatusCode == http.StatusOK {
		log.Printf("Failed to decode bridge response for %s: %v\n", phone, decodeErr)
		return fmt.Errorf("failed to decode bridge response: %w", decodeErr)
	}

	if resp.StatusCode != http.StatusOK || !bridgeResp.Success {
		log.Printf("WhatsApp bridge returned error for %s: status %d, message: %s\n", phone, resp.StatusCode, bridgeResp.Message)
		return fmt.Errorf("whatsapp bridge returned non-success status: %d", resp.StatusCode)
	}

	return nil
}
