package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/deletrics-oss/gourmetflow1-sub003/internal/models"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// StorageError marks a failure of the on-device database itself (quota,
// permissions, corruption). It is fatal to the operation and is never
// retried automatically.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Store wraps the on-device database. It is constructed once at startup and
// injected wherever records are read or written; there is no package-level
// handle.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ── orders ──

// PutOrder inserts or replaces an offline order (and its items) by primary key.
func (s *Store) PutOrder(order *models.OfflineOrder) error {

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Omit("Items").Create(order).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OfflineOrderItem{}).Error; err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		if len(order.Items) == 0 {
			return nil
		}
		return tx.Create(&order.Items).Error
	})
	if err != nil {
		return storageErr("put order", err)
	}

	return nil
}

// UnsyncedOrders returns the restaurant's orders still waiting for the remote
// backend, in insertion order.
func (s *Store) UnsyncedOrders(restaurantID string) ([]models.OfflineOrder, error) {
	var orders []models.OfflineOrder

	err := s.db.Preload("Items").
		Where("restaurant_id = ? AND synced = ?", restaurantID, false).
		Order("created_at").
		Find(&orders).Error
	if err != nil {
		return nil, storageErr("list unsynced orders", err)
	}

	return orders, nil
}

// GetOrder fetches a single offline order with its items.
func (s *Store) GetOrder(id string) (*models.OfflineOrder, error) {
	var order models.OfflineOrder

	err := s.db.Preload("Items").First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get order", err)
	}

	return &order, nil
}

// MarkOrderSynced records the server-assigned id and flips the synced flag.
// Idempotent: marking an already-synced order is a no-op, never an error.
func (s *Store) MarkOrderSynced(id, serverID string, attempts int) error {

	err := s.db.Model(&models.OfflineOrder{}).Where("id = ?", id).
		Updates(map[string]any{"synced": true, "server_id": serverID, "sync_attempts": attempts}).Error
	if err != nil {
		return storageErr("mark order synced", err)
	}

	return nil
}

// RecordOrderAttempt mirrors the queue item's attempt counter onto the order.
func (s *Store) RecordOrderAttempt(id string, attempts int) error {
	err := s.db.Model(&models.OfflineOrder{}).Where("id = ?", id).
		Update("sync_attempts", attempts).Error
	if err != nil {
		return storageErr("record order attempt", err)
	}
	return nil
}

// SetOrderStatus updates the local status string of an order.
func (s *Store) SetOrderStatus(id, status string) error {
	tx := s.db.Model(&models.OfflineOrder{}).Where("id = ?", id).Update("status", status)
	if tx.Error != nil {
		return storageErr("set order status", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ── customers ──

// PutCustomer inserts or replaces a customer. The phone number is the dedup
// key: writing a customer whose phone already exists overwrites that row
// last-write-wins, keeping the original id so pending queue items still
// resolve.
func (s *Store) PutCustomer(customer *models.OfflineCustomer) error {
	var existing models.OfflineCustomer

	err := s.db.First(&existing, "phone = ?", customer.Phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		createErr := s.db.Create(customer).Error
		if createErr == nil {
			return nil
		}
		// lost a race against a concurrent insert of the same phone; the
		// unique index guarantees the second lookup finds the winner
		if err := s.db.First(&existing, "phone = ?", customer.Phone).Error; err != nil {
			return storageErr("put customer", createErr)
		}
	} else if err != nil {
		return storageErr("put customer", err)
	}

	customer.ID = existing.ID
	customer.CreatedAt = existing.CreatedAt
	err = s.db.Model(&models.OfflineCustomer{}).Where("id = ?", existing.ID).
		Updates(map[string]any{
			"restaurant_id": customer.RestaurantID,
			"name":          customer.Name,
			"tax_id":        customer.TaxID,
			"address":       customer.Address,
			"synced":        customer.Synced,
			"server_id":     customer.ServerID,
		}).Error
	if err != nil {
		return storageErr("put customer", err)
	}

	return nil
}

// CustomerByPhone looks a customer up by the dedup key.
func (s *Store) CustomerByPhone(phone string) (*models.OfflineCustomer, error) {
	var customer models.OfflineCustomer

	err := s.db.First(&customer, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get customer by phone", err)
	}

	return &customer, nil
}

// UnsyncedCustomers returns the restaurant's unsynced customers in insertion order.
func (s *Store) UnsyncedCustomers(restaurantID string) ([]models.OfflineCustomer, error) {
	var customers []models.OfflineCustomer

	err := s.db.Where("restaurant_id = ? AND synced = ?", restaurantID, false).
		Order("created_at").
		Find(&customers).Error
	if err != nil {
		return nil, storageErr("list unsynced customers", err)
	}

	return customers, nil
}

// MarkCustomerSynced is idempotent, like MarkOrderSynced.
func (s *Store) MarkCustomerSynced(id, serverID string, attempts int) error {

	err := s.db.Model(&models.OfflineCustomer{}).Where("id = ?", id).
		Updates(map[string]any{"synced": true, "server_id": serverID, "sync_attempts": attempts}).Error
	if err != nil {
		return storageErr("mark customer synced", err)
	}

	return nil
}

// RecordCustomerAttempt mirrors the queue item's attempt counter onto the customer.
func (s *Store) RecordCustomerAttempt(id string, attempts int) error {
	err := s.db.Model(&models.OfflineCustomer{}).Where("id = ?", id).
		Update("sync_attempts", attempts).Error
	if err != nil {
		return storageErr("record customer attempt", err)
	}
	return nil
}

// ── menu cache ──

// SaveMenuCache overwrites the restaurant's cached menu snapshot.
func (s *Store) SaveMenuCache(cache *models.MenuCache) error {
	cache.CachedAt = time.Now().UTC()

	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(cache).Error
	if err != nil {
		return storageErr("save menu cache", err)
	}

	return nil
}

// MenuCache returns the most recent snapshot for a restaurant, or ErrNotFound.
func (s *Store) MenuCache(restaurantID string) (*models.MenuCache, error) {
	var cache models.MenuCache

	err := s.db.First(&cache, "restaurant_id = ?", restaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get menu cache", err)
	}

	return &cache, nil
}

// ── sync queue ──

// Enqueue appends a pending submission task for an offline record.
func (s *Store) Enqueue(item *models.SyncQueueItem) error {
	if item.Status == "" {
		item.Status = models.SyncStatusPending
	}

	if err := s.db.Create(item).Error; err != nil {
		return storageErr("enqueue", err)
	}

	return nil
}

// PendingQueue returns the restaurant's due pending items in creation order.
// Items backing off (next_retry_at in the future) are not returned.
func (s *Store) PendingQueue(restaurantID string, now time.Time) ([]models.SyncQueueItem, error) {
	var items []models.SyncQueueItem

	err := s.db.Where("restaurant_id = ? AND status = ? AND next_retry_at <= ?",
		restaurantID, models.SyncStatusPending, now).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, storageErr("list pending queue", err)
	}

	return items, nil
}

// ResetInFlight returns claimed items to pending. Called at the start of a
// drain: with at most one drain active, an in_flight row seen there is a
// leftover from a crash or an aborted pass, never live work. The submission
// it interrupted is safe to repeat because it carries an idempotency key.
func (s *Store) ResetInFlight(restaurantID string) error {
	err := s.db.Model(&models.SyncQueueItem{}).
		Where("restaurant_id = ? AND status = ?", restaurantID, models.SyncStatusInFlight).
		Update("status", models.SyncStatusPending).Error
	if err != nil {
		return storageErr("reset in-flight queue items", err)
	}
	return nil
}

// FailedQueue returns items past the retry cap or rejected by the backend,
// for the "needs attention" surface.
func (s *Store) FailedQueue(restaurantID string) ([]models.SyncQueueItem, error) {
	var items []models.SyncQueueItem

	err := s.db.Where("restaurant_id = ? AND status = ?", restaurantID, models.SyncStatusFailed).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, storageErr("list failed queue", err)
	}

	return items, nil
}

// UpdateQueueItem persists the item's state-machine fields.
func (s *Store) UpdateQueueItem(item *models.SyncQueueItem) error {

	err := s.db.Model(&models.SyncQueueItem{}).Where("id = ?", item.ID).
		Updates(map[string]any{
			"status":        item.Status,
			"attempts":      item.Attempts,
			"last_error":    item.LastError,
			"next_retry_at": item.NextRetryAt,
		}).Error
	if err != nil {
		return storageErr("update queue item", err)
	}

	return nil
}

// DeleteQueueItem removes a queue row once the submission succeeded.
func (s *Store) DeleteQueueItem(id string) error {
	if err := s.db.Delete(&models.SyncQueueItem{}, "id = ?", id).Error; err != nil {
		return storageErr("delete queue item", err)
	}
	return nil
}

// PruneSynced deletes synced orders and customers created before the cutoff.
// Deletion is an explicit operation; nothing is pruned automatically.
func (s *Store) PruneSynced(restaurantID string, before time.Time) (int64, error) {
	var pruned int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.OfflineOrder{}).
			Where("restaurant_id = ? AND synced = ? AND created_at < ?", restaurantID, true, before).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Where("order_id IN ?", ids).Delete(&models.OfflineOrderItem{}).Error; err != nil {
				return err
			}
			res := tx.Delete(&models.OfflineOrder{}, "id IN ?", ids)
			if res.Error != nil {
				return res.Error
			}
			pruned += res.RowsAffected
		}

		res := tx.Where("restaurant_id = ? AND synced = ? AND created_at < ?", restaurantID, true, before).
			Delete(&models.OfflineCustomer{})
		if res.Error != nil {
			return res.Error
		}
		pruned += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, storageErr("prune synced", err)
	}

	return pruned, nil
}
