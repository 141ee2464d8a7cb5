package handlers

import (
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/payments"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/remote"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/store"
	"github.com/deletrics-oss/gourmetflow1-sub003/internal/syncer"
)

// Handler carries the injected dependencies for the local API. No package
// globals: everything is constructed at startup and passed in.
type Handler struct {
	store        *store.Store
	remote       *remote.Client
	gateway      *payments.Gateway
	driver       *syncer.Driver
	restaurantID string
}

func New(st *store.Store, rc *remote.Client, gateway *payments.Gateway, driver *syncer.Driver, restaurantID string) *Handler {
	return &Handler{
		store:        st,
		remote:       rc,
		gateway:      gateway,
		driver:       driver,
		restaurantID: restaurantID,
	}
}
