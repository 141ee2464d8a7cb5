package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/deletrics-oss/gourmetflow1-sub003/internal/models"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/store"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/utils"
)

type OrderItemRequest struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type CreateOrderRequest struct {
	CustomerName  string                 `json:"customer_name" binding:"required"`
	CustomerPhone string                 `json:"customer_phone"`
	Items         []OrderItemRequest     `json:"items" binding:"required"`
	DeliveryType  string                 `json:"delivery_type" binding:"required"`
	PaymentMethod string                 `json:"payment_method"`
	DeliveryFee   decimal.Decimal        `json:"delivery_fee"`
	ServiceFee    decimal.Decimal        `json:"service_fee"`
	Discount      decimal.Decimal        `json:"discount"`
	Address       models.DeliveryAddress `json:"delivery_address"`
}

// CreateOrder persists an order locally, marked unsynced, and enqueues it for
// remote submission. Totals are always computed here, never trusted from the
// client, so total = subtotal + delivery_fee + service_fee - discount holds
// at creation.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DeliveryType != models.DeliveryTypeDelivery &&
		req.DeliveryType != models.DeliveryTypePickup &&
		req.DeliveryType != models.DeliveryTypeDineIn {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid delivery_type"})
		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items required"})
		return
	}

	items := make([]models.OfflineOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.UnitPrice.IsNegative() {
			errorMessage := fmt.Sprintf("Invalid unit price for item: %s", it.Name)
			c.JSON(http.StatusBadRequest, gin.H{"error": errorMessage})
			return
		}
		items = append(items, models.OfflineOrderItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		})
	}

	subtotal, total := utils.OrderTotals(items, req.DeliveryFee, req.ServiceFee, req.Discount)

	order := models.OfflineOrder{
		ID:            utils.GenerateOfflineID(),
		OrderNumber:   utils.GenerateOfflineOrderNumber(),
		RestaurantID:  h.restaurantID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         items,
		Subtotal:      subtotal,
		DeliveryFee:   req.DeliveryFee,
		ServiceFee:    req.ServiceFee,
		Discount:      req.Discount,
		Total:         total,
		DeliveryType:  req.DeliveryType,
		PaymentMethod: req.PaymentMethod,
		Address:       req.Address,
		Status:        "pending",
		Synced:        false,
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.store.PutOrder(&order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	payload, err := json.Marshal(order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode order payload"})
		return
	}

	queueItem := models.SyncQueueItem{
		ID:           utils.GenerateOfflineID(),
		RestaurantID: h.restaurantID,
		Action:       models.ActionCreateOrder,
		EntityType:   models.EntityOrder,
		EntityID:     order.ID,
		Payload:      payload,
		CreatedAt:    order.CreatedAt,
	}
	if err := h.store.Enqueue(&queueItem); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// optimistic: if we happen to be online, sync right away
	if h.driver != nil {
		h.driver.Trigger()
	}

	c.JSON(http.StatusCreated, gin.H{"message": "order created successfully", "order": order})
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus changes the order status locally and queues the change
// for the backend. The engine guarantees the update is never submitted before
// the order's create has synced.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetOrderStatus(orderID, req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	payload, _ := json.Marshal(map[string]string{"status": req.Status})

	queueItem := models.SyncQueueItem{
		ID:           utils.GenerateOfflineID(),
		RestaurantID: h.restaurantID,
		Action:       models.ActionUpdateOrder,
		EntityType:   models.EntityOrder,
		EntityID:     orderID,
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

	c.JSON(http.StatusOK, gin.H{"message": "order status updated", "status": req.Status})
}

type ChargeOrderRequest struct {
	Method string `json:"method"`
}

// ChargeOrder forwards the order total to the payment-gateway collaborator.
func (h *Handler) ChargeOrder(c *gin.Context) {
	orderID := c.Param("id")

	var req ChargeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.store.GetOrder(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	method := req.Method
	if method == "" {
		method = order.PaymentMethod
	}

	chargeID := order.ID
	if order.ServerID != "" {
		chargeID = order.ServerID
	}

	tx, err := h.gateway.Charge(c.Request.Context(), order.Total, chargeID, method)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}
