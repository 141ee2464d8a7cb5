package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	config "github.com/deletrics-oss/gourmetflow1-sub003/configs"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/db"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/handlers"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/notifier"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/payments"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/remote"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/store"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/syncer"
)

func main() {

	cfg := config.Load()
	if cfg.RestaurantID == "" {
		log.Fatal("RESTAURANT_ID is required")
	}

	database, err := db.Open(cfg.StorePath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}

	st := store.New(database)
	remoteClient := remote.New(cfg.Remote.BaseURL, cfg.Remote.APIKey, cfg.Sync.RequestTimeout)
	whatsapp := notifier.NewWhatsApp(cfg.WhatsApp)
	gateway := payments.NewGateway(cfg.Payments.GatewayURL)

	engine := syncer.NewEngine(st, remoteClient, whatsapp, cfg.Sync)
	driver := syncer.NewDriver(engine, func(ctx context.Context) bool {
		return remoteClient.Ping(ctx) == nil
	}, cfg.Sync.Interval, cfg.RestaurantID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	go driver.Run(ctx)

	h := handlers.New(st, remoteClient, gateway, driver, cfg.RestaurantID)

	r := gin.Default()

	// ── public endpoints ──
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	// ── local device API ──
	api := r.Group("/api")
	{
		api.POST("/orders", h.CreateOrder)
		api.PUT("/orders/:id/status", h.UpdateOrderStatus)
		api.POST("/orders/:id/charge", h.ChargeOrder)
		api.POST("/customers", h.CreateCustomer)
		api.GET("/menu", h.GetMenu)
		api.GET("/sync/pending", h.GetSyncPending)
		api.POST("/sync/trigger", h.TriggerSync)
		api.POST("/sync/prune", h.PruneSynced)
	}

	r.Run(cfg.HTTPAddr)
}
