package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/queue"
)

// SyncOptions says which platforms a local write should be pushed to.
// Both flags off is the no-op used by nested saves (e.g. writing a platform
// id back after a push) so they cannot re-trigger sync.
type SyncOptions struct {
	Pipedrive bool
	Stripe    bool
}

func SyncBoth() SyncOptions { return SyncOptions{Pipedrive: true, Stripe: true} }
func SyncNone() SyncOptions { return SyncOptions{} }

// SyncOnly returns options that push to a single platform. Webhook-applied
// changes use it with the echoing platform's opposite, so a Stripe-born
// update propagates to Pipedrive and never back to Stripe.
func SyncOnly(p entity.Platform) SyncOptions {
	return SyncOptions{
		Pipedrive: p == entity.PlatformPipedrive,
		Stripe:    p == entity.PlatformStripe,
	}
}

// SyncRef identifies the entity a dispatch is about. Deleted is set only
// for delete dispatches, where the local row no longer exists.
type SyncRef struct {
	Type    entity.EntityType
	ID      string
	OwnerID string
	Deleted *queue.DeletedRefs
}

// SyncDispatcher is the outbound fan-out. After a local write it registers
// a SyncLease so the coming webhook echoes can be recognized, then enqueues
// one push job per requested platform. Push failures are the queue's
// problem (bounded retries), never the caller's.
type SyncDispatcher struct {
	Leases   entity.SyncLeaseRepository
	Producer queue.SyncProducer
}

func NewSyncDispatcher(leases entity.SyncLeaseRepository, producer queue.SyncProducer) *SyncDispatcher {
	return &SyncDispatcher{Leases: leases, Producer: producer}
}

func (d *SyncDispatcher) Dispatch(ctx context.Context, ref SyncRef, action entity.SyncAction, opts SyncOptions) error {
	if !opts.Pipedrive && !opts.Stripe {
		return nil
	}

	lease, err := d.Leases.FindForEntity(ctx, ref.Type, action, ref.ID)
	switch {
	case err == nil:
		// A push for this exact change is already in flight. Fold the new
		// platforms in so their fresh echoes are still expected.
		lease.Fold(opts.Pipedrive, opts.Stripe)
	case errors.Is(err, entity.ErrLeaseNotFound):
		lease = entity.NewSyncLease(ref.Type, action, ref.ID, opts.Pipedrive, opts.Stripe)
	default:
		return fmt.Errorf("lease lookup failed: %w", err)
	}

	if err := d.Leases.Save(ctx, lease); err != nil {
		return fmt.Errorf("failed to save sync lease: %w", err)
	}

	for _, platform := range []entity.Platform{entity.PlatformPipedrive, entity.PlatformStripe} {
		if platform == entity.PlatformPipedrive && !opts.Pipedrive {
			continue
		}
		if platform == entity.PlatformStripe && !opts.Stripe {
			continue
		}

		job := queue.SyncJob{
			EntityID:   ref.ID,
			EntityType: ref.Type,
			Action:     action,
			Platform:   platform,
			OwnerID:    ref.OwnerID,
			Deleted:    ref.Deleted,
		}
		if err := d.Producer.PublishSync(ctx, job); err != nil {
			// Fire and forget: the local write already succeeded, the reaper
			// will clear the lease if the push never happens.
			log.Printf("⚠️ [DISPATCH] failed to enqueue %s %s -> %s: %v", action, ref.Type, platform, err)
		}
	}

	return nil
}
