package models

import (
	"time"

	"gorm.io/datatypes"
)

// Queue item actions.
const (
	ActionCreateOrder    = "create_order"
	ActionCreateCustomer = "create_customer"
	ActionUpdateOrder    = "update_order"
)

// Queue item states. Rows that reach synced are deleted, so only pending,
// in_flight and failed ever appear in the table.
const (
	SyncStatusPending  = "pending"
	SyncStatusInFlight = "in_flight"
	SyncStatusFailed   = "failed"
)

// Entity types a queue item can reference.
const (
	EntityOrder    = "order"
	EntityCustomer = "customer"
)

type SyncQueueItem struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	RestaurantID string         `gorm:"index;not null" json:"restaurant_id"`
	Action       string         `gorm:"not null" json:"action"`
	EntityType   string         `gorm:"not null" json:"entity_type"`
	EntityID     string         `gorm:"index;not null" json:"entity_id"`
	Payload      datatypes.JSON `json:"payload"`

	Status      string    `gorm:"index;default:pending" json:"status"`
	Attempts    int       `json:"attempts"`
	LastError   string    `json:"last_error,omitempty"`
	NextRetryAt time.Time `json:"next_retry_at"`
	CreatedAt   time.Time `json:"created_at"`
}
