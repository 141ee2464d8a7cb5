package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery types accepted on an offline order.
const (
	DeliveryTypeDelivery = "delivery"
	DeliveryTypePickup   = "pickup"
	DeliveryTypeDineIn   = "dine_in"
)

type OfflineOrder struct {
	ID           string `gorm:"primaryKey" json:"id"`
	OrderNumber  string `gorm:"index" json:"order_number"`
	RestaurantID string `gorm:"index;not null" json:"restaurant_id"`

	// ServerID is filled in once the remote backend acknowledges the order.
	ServerID string `gorm:"index" json:"server_id,omitempty"`

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`

	Items []OfflineOrderItem `gorm:"foreignKey:OrderID" json:"items"`

	Subtotal    decimal.Decimal `gorm:"type:numeric" json:"subtotal"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric" json:"delivery_fee"`
	ServiceFee  decimal.Decimal `gorm:"type:numeric" json:"service_fee"`
	Discount    decimal.Decimal `gorm:"type:numeric" json:"discount"`
	Total       decimal.Decimal `gorm:"type:numeric" json:"total"`

	DeliveryType  string          `json:"delivery_type"` // delivery | pickup | dine_in
	PaymentMethod string          `json:"payment_method"`
	Address       DeliveryAddress `gorm:"embedded;embeddedPrefix:addr_" json:"delivery_address"`

	Status       string    `json:"status"`
	Synced       bool      `gorm:"index" json:"synced"`
	SyncAttempts int       `json:"sync_attempts"`
	CreatedAt    time.Time `json:"created_at"`
}

type OfflineOrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    string          `gorm:"index;not null" json:"order_id"`
	MenuItemID string          `json:"menu_item_id"` // soft reference, no cascade
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric" json:"unit_price"`
	LineTotal  decimal.Decimal `gorm:"type:numeric" json:"line_total"`
}

type DeliveryAddress struct {
	Street     string `json:"street,omitempty"`
	Number     string `json:"number,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city,omitempty"`
	Complement string `json:"complement,omitempty"`
}
