package models

import (
	"time"

	"gorm.io/datatypes"
)

// MenuCache holds one menu snapshot per restaurant, used as a read-through
// fallback while the remote menu is unreachable.
type MenuCache struct {
	RestaurantID string         `gorm:"primaryKey" json:"restaurant_id"`
	Snapshot     datatypes.JSON `json:"snapshot"`
	CachedAt     time.Time      `json:"cached_at"`
}

// MenuSnapshot is the decoded shape of MenuCache.Snapshot and of the remote
// menu endpoint.
type MenuSnapshot struct {
	Categories []MenuCategory `json:"categories"`
	Items      []MenuItem     `json:"items"`
}

type MenuCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MenuItem struct {
	ID         string  `json:"id"`
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name"`
	Price      string  `json:"price"`
	PromoPrice *string `json:"promo_price,omitempty"`
	Available  bool    `json:"available"`
}
