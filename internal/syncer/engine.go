package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	config "github.com/deletrics-oss/gourmetflow1-sub003/configs"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/models"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/remote"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/store"
)

// ErrDrainInProgress is returned when a drain is triggered while another one
// is still running. Callers treat it as "coalesced", not as a failure.
var ErrDrainInProgress = errors.New("drain already in progress")

// OrderNotifier is the slice of the WhatsApp bridge the engine consumes.
// Delivery retries belong to the bridge, not to the sync queue.
type OrderNotifier interface {
	NotifyOrderStatus(ctx context.Context, orderID, status, phone, orderNumber, motoboy string, total decimal.Decimal) error
}

// Report summarizes one drain pass.
type Report struct {
	Submitted int `json:"submitted"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Engine walks the sync queue and submits offline records to the remote
// backend. Submissions are sequential: per-entity ordering must hold, and a
// recovering network should not be flooded.
type Engine struct {
	store    *store.Store
	remote   *remote.Client
	notifier OrderNotifier
	cfg      config.SyncConfig

	draining atomic.Bool
}

func NewEngine(st *store.Store, rc *remote.Client, notifier OrderNotifier, cfg config.SyncConfig) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 60 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return &Engine{store: st, remote: rc, notifier: notifier, cfg: cfg}
}

// Drain runs one full pass over the restaurant's due queue items in creation
// order. At most one drain is active at a time; a second trigger gets
// ErrDrainInProgress and is expected to back off.
//
// A failing item blocks later items for the same entity (an update_order must
// never be sent before its create_order is acknowledged) but not unrelated
// entities. Remote failures are recorded on the item and never abort the
// pass; storage failures do, since local durability is safety-critical.
func (e *Engine) Drain(ctx context.Context, restaurantID string) (Report, error) {
	if !e.draining.CompareAndSwap(false, true) {
		return Report{}, ErrDrainInProgress
	}
	defer e.draining.Store(false)

	// reclaim items stranded in_flight by a crash or an aborted pass; only
	// one drain runs at a time, so none of them can be live
	if err := e.store.ResetInFlight(restaurantID); err != nil {
		return Report{}, err
	}

	items, err := e.store.PendingQueue(restaurantID, time.Now().UTC())
	if err != nil {
		return Report{}, err
	}

	var report Report
	blocked := make(map[string]bool)

	for i := range items {
		// An offline/online flip mid-drain only affects the next cycle;
		// the in-flight item is never cancelled, but no new one starts.
		if ctx.Err() != nil {
			break
		}

		item := &items[i]

		if blocked[item.EntityID] {
			report.Skipped++
			continue
		}

		var serverID string
		if item.Action == models.ActionUpdateOrder {
			order, err := e.store.GetOrder(item.EntityID)
			if errors.Is(err, store.ErrNotFound) {
				blocked[item.EntityID] = true
				report.Skipped++
				continue
			}
			if err != nil {
				return report, err
			}
			if !order.Synced {
				// create_order not acknowledged yet
				blocked[item.EntityID] = true
				report.Skipped++
				continue
			}
			serverID = order.ServerID
		}

		synced, err := e.submit(ctx, item, serverID)
		if err != nil {
			return report, err
		}
		if !synced {
			blocked[item.EntityID] = true
			report.Failed++
			continue
		}
		report.Submitted++
	}

	if ctx.Err() == nil {
		e.refreshMenu(ctx, restaurantID)
	}

	return report, nil
}

// submit moves one item through pending -> in_flight -> {synced | pending | failed}.
// The returned error is a storage failure; remote failures are absorbed into
// the item's state.
func (e *Engine) submit(ctx context.Context, item *models.SyncQueueItem, serverID string) (bool, error) {

	// claim the item; the attempt counts even if the call below times out
	item.Status = models.SyncStatusInFlight
	item.Attempts++
	if err := e.store.UpdateQueueItem(item); err != nil {
		return false, err
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	var remoteErr error

	switch item.Action {
	case models.ActionCreateOrder:
		rec, err := e.remote.CreateOrder(callCtx, item.Payload, item.EntityID)
		if err == nil {
			if err := e.store.MarkOrderSynced(item.EntityID, rec.ID, item.Attempts); err != nil {
				return false, err
			}
			e.notifyOrder(item.EntityID)
		}
		remoteErr = err

	case models.ActionCreateCustomer:
		rec, err := e.remote.CreateCustomer(callCtx, item.Payload, item.EntityID)
		if err == nil {
			if err := e.store.MarkCustomerSynced(item.EntityID, rec.ID, item.Attempts); err != nil {
				return false, err
			}
		}
		remoteErr = err

	case models.ActionUpdateOrder:
		remoteErr = e.remote.UpdateOrder(callCtx, serverID, item.Payload, item.EntityID+":"+item.ID)

	default:
		remoteErr = &remote.RejectedError{Status: 0, Body: fmt.Sprintf("unknown action %q", item.Action)}
	}

	if remoteErr == nil {
		return true, e.store.DeleteQueueItem(item.ID)
	}

	item.LastError = remoteErr.Error()
	if !remote.Retryable(remoteErr) {
		item.Status = models.SyncStatusFailed
		log.Printf("Sync item %s rejected by backend, needs attention: %v\n", item.ID, remoteErr)
	} else if item.Attempts >= e.cfg.MaxAttempts {
		item.Status = models.SyncStatusFailed
		log.Printf("Sync item %s failed after %d attempts, needs attention: %v\n", item.ID, item.Attempts, remoteErr)
	} else {
		item.Status = models.SyncStatusPending
		item.NextRetryAt = time.Now().UTC().Add(e.backoff(item.Attempts))
	}

	if err := e.store.UpdateQueueItem(item); err != nil {
		return false, err
	}
	if err := e.recordEntityAttempt(item); err != nil {
		return false, err
	}

	return false, nil
}

// backoff doubles the base delay per attempt up to the configured cap.
func (e *Engine) backoff(attempts int) time.Duration {
	delay := e.cfg.BaseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= e.cfg.MaxDelay {
			return e.cfg.MaxDelay
		}
	}
	if delay > e.cfg.MaxDelay {
		delay = e.cfg.MaxDelay
	}
	return delay
}

func (e *Engine) recordEntityAttempt(item *models.SyncQueueItem) error {
	switch item.EntityType {
	case models.EntityOrder:
		return e.store.RecordOrderAttempt(item.EntityID, item.Attempts)
	case models.EntityCustomer:
		return e.store.RecordCustomerAttempt(item.EntityID, item.Attempts)
	}
	return nil
}

// notifyOrder tells the customer their order reached the backend. Fire and
// forget, matching the bridge contract: the engine does not own delivery.
func (e *Engine) notifyOrder(orderID string) {
	if e.notifier == nil {
		return
	}

	order, err := e.store.GetOrder(orderID)
	if err != nil || order.CustomerPhone == "" {
		return
	}

	go func(order *models.OfflineOrder) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := e.notifier.NotifyOrderStatus(ctx, order.ServerID, order.Status, order.CustomerPhone, order.OrderNumber, "", order.Total); err != nil {
			log.Printf("Failed to notify order %s to %s: %v\n", order.OrderNumber, order.CustomerPhone, err)
		}
	}(order)
}

// refreshMenu overwrites the local menu snapshot at the end of a connectivity
// window. Best effort: a failure here never fails the drain.
func (e *Engine) refreshMenu(ctx context.Context, restaurantID string) {

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	snapshot, err := e.remote.FetchMenu(callCtx, restaurantID)
	if err != nil {
		return
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}

	if err := e.store.SaveMenuCache(&models.MenuCache{RestaurantID: restaurantID, Snapshot: raw}); err != nil {
		log.Printf("Failed to save menu cache for %s: %v\n", restaurantID, err)
	}
}
