package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetSyncPending is the "needs attention" surface: records still waiting for
// the backend plus queue items past the retry cap or rejected outright.
func (h *Handler) GetSyncPending(c *gin.Context) {

	orders, err := h.store.UnsyncedOrders(h.restaurantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	customers, err := h.store.UnsyncedCustomers(h.restaurantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	failed, err := h.store.FailedQueue(h.restaurantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unsynced_orders":    orders,
		"unsynced_customers": customers,
		"failed_items":       failed,
	})
}

// TriggerSync nudges the driver. Coalesced: while a drain runs, this is a no-op.
func (h *Handler) TriggerSync(c *gin.Context) {
	h.driver.Trigger()
	c.JSON(http.StatusAccepted, gin.H{"message": "sync triggered"})
}

type PruneRequest struct {
	RetentionDays int `json:"retention_days" binding:"required,gt=0"`
}

// PruneSynced deletes synced records older than the retention window. This is
// the explicit deletion operation; nothing is pruned automatically.
func (h *Handler) PruneSynced(c *gin.Context) {
	var req PruneRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -req.RetentionDays)

	pruned, err := h.store.PruneSynced(h.restaurantID, cutoff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pruned": pruned})
}
