package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deletrics-oss/gourmetflow1-sub003/internal/db"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/handlers"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/models"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/payments"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/remote"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/store"
)

const testRestaurant = "rest_1"

// unreachable makes the remote client behave as if the device were offline.
const unreachable = "http://127.0.0.1:1"

func setupRouter(t *testing.T, remoteURL, gatewayURL string) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.Open(filepath.Join(t.TempDir(), "offline.db"))
	require.NoError(t, err)
	st := store.New(database)

	rc := remote.New(remoteURL, "test-key", time.Second)
	gateway := payments.NewGateway(gatewayURL)

	h := handlers.New(st, rc, gateway, nil, testRestaurant)

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/orders", h.CreateOrder)
		api.PUT("/orders/:id/status", h.UpdateOrderStatus)
		api.POST("/orders/:id/charge", h.ChargeOrder)
		api.POST("/customers", h.CreateCustomer)
		api.GET("/menu", h.GetMenu)
		api.GET("/sync/pending", h.GetSyncPending)
		api.POST("/sync/prune", h.PruneSynced)
	}
	return r, st
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func orderRequestBody() map[string]any {
	return map[string]any{
		"customer_name":  "Maria",
		"customer_phone": "+5511999990000",
		"delivery_type":  "delivery",
		"delivery_fee":   "3.00",
		"items": []map[string]any{
			{"name": "X-Burger", "quantity": 2, "unit_price": "10.00"},
			{"name": "Refrigerante", "quantity": 1, "unit_price": "5.00"},
		},
	}
}

func TestCreateOrderWhileOffline(t *testing.T) {
	r, st := setupRouter(t, unreachable, unreachable)

	w := doJSON(t, r, http.MethodPost, "/api/orders", orderRequestBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Order models.OfflineOrder `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// server-independent identity plus locally computed totals
	assert.Contains(t, resp.Order.OrderNumber, "OFF-")
	assert.True(t, resp.Order.Subtotal.Equal(decimal.NewFromFloat(25.00)))
	assert.True(t, resp.Order.Total.Equal(decimal.NewFromFloat(28.00)))
	assert.False(t, resp.Order.Synced)

	// the order is durably buffered and queued for submission
	orders, err := st.UnsyncedOrders(testRestaurant)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 2)

	pending, err := st.PendingQueue(testRestaurant, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.ActionCreateOrder, pending[0].Action)
	assert.Equal(t, resp.Order.ID, pending[0].EntityID)
}

func TestCreateOrderValidation(t *testing.T) {
	r, _ := setupRouter(t, unreachable, unreachable)

	missingItems := orderRequestBody()
	delete(missingItems, "items")
	w := doJSON(t, r, http.MethodPost, "/api/orders", missingItems)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	badType := orderRequestBody()
	badType["delivery_type"] = "teleport"
	w = doJSON(t, r, http.MethodPost, "/api/orders", badType)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	negativePrice := orderRequestBody()
	negativePrice["items"] = []map[string]any{
		{"name": "X-Burger", "quantity": 1, "unit_price": "-1.00"},
	}
	w = doJSON(t, r, http.MethodPost, "/api/orders", negativePrice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	r, st := setupRouter(t, unreachable, unreachable)

	w := doJSON(t, r, http.MethodPost, "/api/orders", orderRequestBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Order models.OfflineOrder `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(t, r, http.MethodPut, "/api/orders/"+resp.Order.ID+"/status", map[string]string{"status": "preparing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := st.GetOrder(resp.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "preparing", got.Status)

	// create_order first, update_order behind it
	pending, err := st.PendingQueue(testRestaurant, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, models.ActionCreateOrder, pending[0].Action)
	assert.Equal(t, models.ActionUpdateOrder, pending[1].Action)

	w = doJSON(t, r, http.MethodPut, "/api/orders/off_missing/status", map[string]string{"status": "preparing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCustomerDedupsByPhone(t *testing.T) {
	r, st := setupRouter(t, unreachable, unreachable)

	w := doJSON(t, r, http.MethodPost, "/api/customers", map[string]string{
		"name": "Pedro", "phone": "+5511988887777",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/customers", map[string]string{
		"name": "Pedro Silva", "phone": "+5511988887777", "tax_id": "123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	got, err := st.CustomerByPhone("+5511988887777")
	require.NoError(t, err)
	assert.Equal(t, "Pedro Silva", got.Name)
	assert.Equal(t, "123", got.TaxID)

	customers, err := st.UnsyncedCustomers(testRestaurant)
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}

func TestGetMenuFallsBackToCache(t *testing.T) {
	r, st := setupRouter(t, unreachable, unreachable)

	// offline with an empty cache: nothing to serve
	w := doJSON(t, r, http.MethodGet, "/api/menu", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	snapshot := models.MenuSnapshot{
		Categories: []models.MenuCategory{{ID: "c1", Name: "Burgers"}},
		Items:      []models.MenuItem{{ID: "i1", CategoryID: "c1", Name: "X-Burger", Price: "10.00", Available: true}},
	}
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)
	require.NoError(t, st.SaveMenuCache(&models.MenuCache{RestaurantID: testRestaurant, Snapshot: raw}))

	w = doJSON(t, r, http.MethodGet, "/api/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Source string              `json:"source"`
		Menu   models.MenuSnapshot `json:"menu"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cache", resp.Source)
	require.Len(t, resp.Menu.Items, 1)
	assert.Equal(t, "X-Burger", resp.Menu.Items[0].Name)
}

func TestGetMenuPrefersRemoteAndRefreshesCache(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"categories":[{"id":"c1","name":"Pizzas"}],"items":[]}`))
	}))
	defer backend.Close()

	r, st := setupRouter(t, backend.URL, unreachable)

	w := doJSON(t, r, http.MethodGet, "/api/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "remote", resp.Source)

	cache, err := st.MenuCache(testRestaurant)
	require.NoError(t, err)
	assert.Contains(t, string(cache.Snapshot), "Pizzas")
}

func TestChargeOrder(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transaction_id":"tx_1","status":"approved"}`))
	}))
	defer gateway.Close()

	r, _ := setupRouter(t, unreachable, gateway.URL)

	w := doJSON(t, r, http.MethodPost, "/api/orders", orderRequestBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Order models.OfflineOrder `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodPost, "/api/orders/"+created.Order.ID+"/charge", map[string]string{"method": "pix"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Transaction payments.Transaction `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tx_1", resp.Transaction.TransactionID)
	assert.Equal(t, "approved", resp.Transaction.Status)

	w = doJSON(t, r, http.MethodPost, "/api/orders/off_missing/charge", map[string]string{"method": "pix"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSyncPending(t *testing.T) {
	r, st := setupRouter(t, unreachable, unreachable)

	w := doJSON(t, r, http.MethodPost, "/api/orders", orderRequestBody())
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, st.Enqueue(&models.SyncQueueItem{
		ID: "q_failed", RestaurantID: testRestaurant, Action: models.ActionCreateOrder,
		EntityType: models.EntityOrder, EntityID: "off_gone",
		Status: models.SyncStatusFailed, Attempts: 5, LastError: "remote returned status 500",
		CreatedAt: time.Now().UTC(),
	}))

	w = doJSON(t, r, http.MethodGet, "/api/sync/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		UnsyncedOrders    []models.OfflineOrder    `json:"unsynced_orders"`
		UnsyncedCustomers []models.OfflineCustomer `json:"unsynced_customers"`
		FailedItems       []models.SyncQueueItem   `json:"failed_items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.UnsyncedOrders, 1)
	assert.Empty(t, resp.UnsyncedCustomers)
	require.Len(t, resp.FailedItems, 1)
	assert.Equal(t, "q_failed", resp.FailedItems[0].ID)
}

func TestPruneRequiresRetention(t *testing.T) {
	r, _ := setupRouter(t, unreachable, unreachable)

	w := doJSON(t, r, http.MethodPost, "/api/sync/prune", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/sync/prune", map[string]any{"retention_days": 7})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Pruned int64 `json:"pruned"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Pruned)
}
