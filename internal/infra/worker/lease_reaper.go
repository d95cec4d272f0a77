package worker

import (
	"context"
	"log"
	"time"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/http/middleware"
)

// LeaseReaper deletes sync leases whose echoes never arrived. A lease left
// behind by a failed webhook delivery would otherwise suppress the next
// legitimate inbound change for that entity forever.
type LeaseReaper struct {
	leases       entity.SyncLeaseRepository
	ttl          time.Duration
	tickInterval time.Duration
}

func NewLeaseReaper(leases entity.SyncLeaseRepository, ttl, tickInterval time.Duration) *LeaseReaper {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if tickInterval <= 0 {
		tickInterval = 15 * time.Second
	}
	return &LeaseReaper{
		leases:       leases,
		ttl:          ttl,
		tickInterval: tickInterval,
	}
}

func (w *LeaseReaper) Start(ctx context.Context) {
	log.Printf("🕒 Lease reaper started (ttl=%s interval=%s)", w.ttl, w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.reap(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Lease reaper stopped")
			return
		case <-ticker.C:
			w.reap(ctx)
		}
	}
}

func (w *LeaseReaper) reap(ctx context.Context) {
	reaped, err := w.leases.DeleteOlderThan(ctx, w.ttl)
	if err != nil {
		log.Printf("❌ Failed to reap expired leases: %v", err)
		return
	}

	for _, lease := range reaped {
		log.Printf("⏱️ Reaped stale lease: entity=%s action=%s id=%s age=%s",
			lease.EntityType, lease.Action, lease.EntityID, lease.Age().Round(time.Second))
	}

	if len(reaped) > 0 {
		middleware.RecordLeasesReaped(len(reaped))
		log.Printf("✅ %d stale lease(s) removed", len(reaped))
	}
}
