package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrLeaseNotFound = errors.New("sync lease not found")

// SyncLease marks an outbound sync that is in flight. While a lease exists
// for an (entity type, action, entity id) triple, inbound webhooks matching
// it are treated as echoes of our own write and are not applied locally.
//
// Leases are keyed per entity id so that two near-simultaneous writes to
// different rows of the same type cannot cross-suppress each other's echoes.
type SyncLease struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	Action     SyncAction `json:"action"`
	EntityID   string     `json:"entity_id"`

	ExpectPipedriveEcho bool `json:"expect_pipedrive_echo"`
	PipedriveEchoed     bool `json:"pipedrive_echoed"`
	ExpectStripeEcho    bool `json:"expect_stripe_echo"`
	StripeEchoed        bool `json:"stripe_echoed"`

	CreatedAt time.Time `json:"created_at"`
}

// NewSyncLease builds a lease for a push that was just initiated. A platform
// whose sync was never requested counts as already echoed, so a lease that
// only expects one platform completes on that platform's first webhook.
func NewSyncLease(t EntityType, action SyncAction, entityID string, expectPipedrive, expectStripe bool) *SyncLease {
	return &SyncLease{
		ID:                  uuid.New().String(),
		EntityType:          t,
		Action:              action,
		EntityID:            entityID,
		ExpectPipedriveEcho: expectPipedrive,
		PipedriveEchoed:     !expectPipedrive,
		ExpectStripeEcho:    expectStripe,
		StripeEchoed:        !expectStripe,
		CreatedAt:           time.Now(),
	}
}

// MarkEchoed records that the given platform's webhook for this sync came
// back.
func (l *SyncLease) MarkEchoed(p Platform) {
	switch p {
	case PlatformPipedrive:
		l.PipedriveEchoed = true
	case PlatformStripe:
		l.StripeEchoed = true
	}
}

// Fold merges a new push into an existing lease. The platforms being pushed
// to again start expecting a fresh echo.
func (l *SyncLease) Fold(expectPipedrive, expectStripe bool) {
	if expectPipedrive {
		l.ExpectPipedriveEcho = true
		l.PipedriveEchoed = false
	}
	if expectStripe {
		l.ExpectStripeEcho = true
		l.StripeEchoed = false
	}
}

// Complete reports whether every expected echo has been received. Saving a
// complete lease deletes it.
func (l *SyncLease) Complete() bool {
	return l.PipedriveEchoed && l.StripeEchoed
}

func (l *SyncLease) Age() time.Duration {
	return time.Since(l.CreatedAt)
}

type SyncLeaseRepository interface {
	// FindForEntity returns ErrLeaseNotFound when no lease matches.
	FindForEntity(ctx context.Context, t EntityType, action SyncAction, entityID string) (*SyncLease, error)
	// FindAnyFor matches on (type, action) only. Used for create echoes,
	// where the platform id is not locally known yet.
	FindAnyFor(ctx context.Context, t EntityType, action SyncAction) (*SyncLease, error)
	// Save upserts the lease, or deletes it when Complete().
	Save(ctx context.Context, lease *SyncLease) error
	Delete(ctx context.Context, id string) error
	// DeleteOlderThan removes every lease past the given age, echoed or not,
	// and returns what it removed.
	DeleteOlderThan(ctx context.Context, age time.Duration) ([]SyncLease, error)
}
