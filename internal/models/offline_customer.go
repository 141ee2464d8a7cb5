package models

import "time"

type OfflineCustomer struct {
	ID           string `gorm:"primaryKey" json:"id"`
	RestaurantID string `gorm:"index;not null" json:"restaurant_id"`
	ServerID     string `json:"server_id,omitempty"`

	Name  string `gorm:"not null" json:"name"`
	Phone string `gorm:"uniqueIndex;not null" json:"phone"` // primary dedup key
	TaxID string `json:"tax_id,omitempty"`

	Address string `json:"address,omitempty"`

	Synced       bool      `gorm:"index" json:"synced"`
	SyncAttempts int       `json:"sync_attempts"`
	CreatedAt    time.Time `json:"created_at"`
}
