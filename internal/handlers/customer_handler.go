package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deletrics-oss/gourmetflow1-sub003/internal/models"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/utils"
)

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address"`
}

// CreateCustomer stores a customer keyed by phone. A repeated phone number
// overwrites the existing row (last-write-wins) instead of erroring, and the
// existing offline id is kept so pending queue items still resolve.
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer := models.OfflineCustomer{
		ID:           utils.GenerateOfflineID(),
		RestaurantID: h.restaurantID,
		Name:         req.Name,
		Phone:        req.Phone,
		TaxID:        req.TaxID,
		Address:      req.Address,
		Synced:       false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.store.PutCustomer(&customer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// re-enqueueing an existing customer is fine: submission is idempotent
	payload, err := json.Marshal(customer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode customer payload"})
		return
	}

	queueItem := models.SyncQueueItem{
		ID:           utils.GenerateOfflineID(),
		RestaurantID: h.restaurantID,
		Action:       models.ActionCreateCustomer,
		EntityType:   models.EntityCustomer,
		EntityID:     customer.ID,
		Payload:      payload,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.Enqueue(&queueItem); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.driver != nil {
		h.driver.Trigger()
	}

	c.JSON(http.StatusCreated, gin.H{"message": "customer created successfully", "customer": customer})
}
