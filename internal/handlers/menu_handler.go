package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deletrics-oss/gourmetflow1-sub003/internal/models"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/store"
)

// GetMenu serves the remote menu when reachable and falls back to the cached
// snapshot otherwise. A successful remote read refreshes the cache in passing.
func (h *Handler) GetMenu(c *gin.Context) {

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	snapshot, err := h.remote.FetchMenu(ctx, h.restaurantID)
	if err == nil {
		if raw, marshalErr := json.Marshal(snapshot); marshalErr == nil {
			_ = h.store.SaveMenuCache(&models.MenuCache{RestaurantID: h.restaurantID, Snapshot: raw})
		}
		c.JSON(http.StatusOK, gin.H{"source": "remote", "menu": snapshot})
		return
	}

	cache, cacheErr := h.store.MenuCache(h.restaurantID)
	if errors.Is(cacheErr, store.ErrNotFound) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "menu unavailable while offline and no cached copy exists"})
		return
	}
	if cacheErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": cacheErr.Error()})
		return
	}

	var cached models.MenuSnapshot
	if err := json.Unmarshal(cache.Snapshot, &cached); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "corrupt menu cache"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"source": "cache", "cached_at": cache.CachedAt, "menu": cached})
}
