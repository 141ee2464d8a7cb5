package syncer

import (
	"context"
	"errors"
	"log"
	"time"
)

// Probe reports whether the remote backend is reachable right now.
type Probe func(ctx context.Context) bool

// Driver turns connectivity signals into drains. It probes the backend on a
// periodic timer, drains on every tick while online and on each
// offline -> online transition, and coalesces bursts of explicit triggers:
// while a drain runs, a new trigger is skipped rather than stacked.
type Driver struct {
	engine       *Engine
	probe        Probe
	interval     time.Duration
	restaurantID string

	online   bool
	triggers chan struct{}
}

func NewDriver(engine *Engine, probe Probe, interval time.Duration, restaurantID string) *Driver {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Driver{
		engine:       engine,
		probe:        probe,
		interval:     interval,
		restaurantID: restaurantID,
		triggers:     make(chan struct{}, 1),
	}
}

// Trigger asks for a sync pass outside the regular timer, e.g. from the UI.
// Non-blocking; while a pass is pending or running, extra triggers collapse
// into one.
func (d *Driver) Trigger() {
	select {
	case d.triggers <- struct{}{}:
	default:
	}
}

// Run drives the sync loop until the context is cancelled.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	// first probe right away instead of waiting a full interval
	d.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		case <-d.triggers:
			d.tick(ctx)
		}
	}
}

func (d *Driver) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	wasOnline := d.online
	d.online = d.probe(ctx)

	if !d.online {
		if wasOnline {
			log.Println("Connectivity lost, sync paused")
		}
		return
	}
	if !wasOnline {
		log.Println("Connectivity restored, draining sync queue")
	}

	report, err := d.engine.Drain(ctx, d.restaurantID)
	if errors.Is(err, ErrDrainInProgress) {
		return // coalesced
	}
	if err != nil {
		log.Printf("Sync drain failed: %v\n", err)
		return
	}
	if report.Submitted > 0 || report.Failed > 0 {
		log.Printf("Sync drain finished: %d submitted, %d failed, %d skipped\n",
			report.Submitted, report.Failed, report.Skipped)
	}
}
