package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/greyland/roseware-sync/internal/entity"
)

// ErrLocalNotFound is what adapters return from Find when the platform id
// maps to no local row.
var ErrLocalNotFound = errors.New("no local record for platform id")

// EntityAdapter is the per-entity capability set the generic pipeline is
// parameterized with. One adapter per entity type replaces the per-platform
// per-action handler bodies the coordinator would otherwise duplicate.
type EntityAdapter interface {
	// Find resolves a platform id to the local row's id.
	Find(ctx context.Context, platform entity.Platform, platformID string) (string, error)
	// Create applies a genuinely external create, syncing only to the
	// opposite platform.
	Create(ctx context.Context, change InboundChange) error
	// Diff reports whether the payload differs from the local row.
	Diff(ctx context.Context, localID string, change InboundChange) (bool, error)
	// Apply writes the payload onto the local row, syncing only to the
	// opposite platform.
	Apply(ctx context.Context, localID string, change InboundChange) error
	// Delete removes the local row, syncing only to the opposite platform.
	Delete(ctx context.Context, localID string, change InboundChange) error
}

type PipelineResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	// Echo marks results where the webhook was recognized as our own write
	// coming back.
	Echo bool `json:"-"`
}

func resultOK(msg string) PipelineResult {
	return PipelineResult{OK: true, Message: msg, Status: http.StatusOK}
}

func resultFail(status int, msg string) PipelineResult {
	return PipelineResult{OK: false, Message: msg, Status: status}
}

// WebhookPipeline decides, for every inbound webhook, whether it is an echo
// of our own write or a genuine external change, and applies it exactly
// once.
type WebhookPipeline struct {
	Toggles  entity.TogglesRepository
	Leases   entity.SyncLeaseRepository
	Adapters map[entity.EntityType]EntityAdapter

	// SettleDelay runs before the lease lookup: the lease may not be
	// persisted yet when a webhook outruns the request that caused it.
	SettleDelay time.Duration
}

func NewWebhookPipeline(toggles entity.TogglesRepository, leases entity.SyncLeaseRepository, settleDelay time.Duration) *WebhookPipeline {
	return &WebhookPipeline{
		Toggles:     toggles,
		Leases:      leases,
		Adapters:    make(map[entity.EntityType]EntityAdapter),
		SettleDelay: settleDelay,
	}
}

func (p *WebhookPipeline) Register(t entity.EntityType, adapter EntityAdapter) {
	p.Adapters[t] = adapter
}

func (p *WebhookPipeline) Process(ctx context.Context, change InboundChange) PipelineResult {
	// 1. Kill switch: acknowledge and do nothing.
	toggles, err := p.Toggles.Get(ctx)
	if err != nil {
		return resultFail(http.StatusBadRequest, "failed to read webhook toggles")
	}
	if toggles.Stops(change.Platform) {
		return resultOK(fmt.Sprintf("%s webhooks are currently disabled", change.Platform))
	}

	adapter, ok := p.Adapters[change.EntityType]
	if !ok {
		return resultFail(http.StatusBadRequest, fmt.Sprintf("no handler for entity type %s", change.EntityType))
	}

	// 2. Let the originating request finish persisting its lease.
	if p.SettleDelay > 0 {
		time.Sleep(p.SettleDelay)
	}

	localID, err := adapter.Find(ctx, change.Platform, change.PlatformID)
	if err != nil && !errors.Is(err, ErrLocalNotFound) {
		return resultFail(http.StatusBadRequest, "lookup failed")
	}

	// 3. Echo suppression.
	if suppressed := p.suppressEcho(ctx, change, localID); suppressed {
		res := resultOK("sync echo acknowledged")
		res.Echo = true
		return res
	}

	// 4-6. Genuine external change.
	switch change.Action {
	case entity.ActionCreate:
		if localID != "" {
			// Already created, possibly via the other platform's webhook
			// landing first.
			return resultOK("record already exists")
		}
		if err := adapter.Create(ctx, change); err != nil {
			log.Printf("❌ [WEBHOOK] create %s from %s failed: %v", change.EntityType, change.Platform, err)
			return resultFail(http.StatusBadRequest, "failed to create record")
		}
		return resultOK("record created")

	case entity.ActionUpdate:
		if localID == "" {
			return resultFail(http.StatusNotFound, "record not found")
		}
		changed, err := adapter.Diff(ctx, localID, change)
		if err != nil {
			log.Printf("❌ [WEBHOOK] diff %s from %s failed: %v", change.EntityType, change.Platform, err)
			return resultFail(http.StatusBadRequest, "failed to compare record")
		}
		if !changed {
			return resultOK("no need to update")
		}
		if err := adapter.Apply(ctx, localID, change); err != nil {
			log.Printf("❌ [WEBHOOK] apply %s from %s failed: %v", change.EntityType, change.Platform, err)
			return resultFail(http.StatusBadRequest, "failed to update record")
		}
		return resultOK("record updated")

	case entity.ActionDelete:
		if localID == "" {
			return resultFail(http.StatusNotFound, "record not found")
		}
		if err := adapter.Delete(ctx, localID, change); err != nil {
			log.Printf("❌ [WEBHOOK] delete %s from %s failed: %v", change.EntityType, change.Platform, err)
			return resultFail(http.StatusBadRequest, "failed to delete record")
		}
		return resultOK("record deleted")
	}

	return resultFail(http.StatusBadRequest, fmt.Sprintf("unknown action %s", change.Action))
}

// suppressEcho marks a matching lease's echo flag and reports whether the
// webhook was one of ours. The domain row is left alone even when the
// payload differs from local state: any change visible in an echo is one we
// just initiated. Saving a fully-echoed lease deletes it.
func (p *WebhookPipeline) suppressEcho(ctx context.Context, change InboundChange, localID string) bool {
	var lease *entity.SyncLease
	var err error

	if localID != "" {
		lease, err = p.Leases.FindForEntity(ctx, change.EntityType, change.Action, localID)
	} else {
		err = entity.ErrLeaseNotFound
	}
	if errors.Is(err, entity.ErrLeaseNotFound) && change.Action != entity.ActionUpdate {
		// Create and delete echoes may arrive before the platform id is
		// locally known (create) or after the row is gone (delete); fall
		// back to the type+action lookup for those.
		lease, err = p.Leases.FindAnyFor(ctx, change.EntityType, change.Action)
	}
	if err != nil {
		if !errors.Is(err, entity.ErrLeaseNotFound) {
			log.Printf("⚠️ [WEBHOOK] lease lookup failed: %v", err)
		}
		return false
	}

	lease.MarkEchoed(change.Platform)
	if err := p.Leases.Save(ctx, lease); err != nil {
		log.Printf("⚠️ [WEBHOOK] failed to save lease %s: %v", lease.ID, err)
	}
	return true
}
