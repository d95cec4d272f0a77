package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/greyland/roseware-sync/internal/entity"
)

type SyncLeaseRepository struct {
	DB *sql.DB
}

func NewSyncLeaseRepository(db *sql.DB) *SyncLeaseRepository {
	return &SyncLeaseRepository{DB: db}
}

const leaseColumns = `
	id, entity_type, action, entity_id,
	expect_pipedrive_echo, pipedrive_echoed,
	expect_stripe_echo, stripe_echoed,
	created_at
`

func (r *SyncLeaseRepository) scan(row *sql.Row) (*entity.SyncLease, error) {
	var l entity.SyncLease
	err := row.Scan(
		&l.ID, &l.EntityType, &l.Action, &l.EntityID,
		&l.ExpectPipedriveEcho, &l.PipedriveEchoed,
		&l.ExpectStripeEcho, &l.StripeEchoed,
		&l.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync lease: %w", err)
	}
	return &l, nil
}

func (r *SyncLeaseRepository) FindForEntity(ctx context.Context, t entity.EntityType, action entity.SyncAction, entityID string) (*entity.SyncLease, error) {
	query := `SELECT ` + leaseColumns + ` FROM sync_leases
		WHERE entity_type = $1 AND action = $2 AND entity_id = $3`
	return r.scan(r.DB.QueryRowContext(ctx, query, t, action, entityID))
}

func (r *SyncLeaseRepository) FindAnyFor(ctx context.Context, t entity.EntityType, action entity.SyncAction) (*entity.SyncLease, error) {
	query := `SELECT ` + leaseColumns + ` FROM sync_leases
		WHERE entity_type = $1 AND action = $2
		ORDER BY created_at ASC LIMIT 1`
	return r.scan(r.DB.QueryRowContext(ctx, query, t, action))
}

// Save upserts the lease, keyed on (entity_type, action, entity_id). A
// lease whose every expected echo has arrived is deleted instead: the sync
// round trip is over and the marker must not suppress future webhooks.
func (r *SyncLeaseRepository) Save(ctx context.Context, lease *entity.SyncLease) error {
	if lease.Complete() {
		log.Printf("🔁 [LEASE] %s %s for %s fully echoed, releasing", lease.Action, lease.EntityType, lease.EntityID)
		return r.Delete(ctx, lease.ID)
	}

	query := `
		INSERT INTO sync_leases (
			id, entity_type, action, entity_id,
			expect_pipedrive_echo, pipedrive_echoed,
			expect_stripe_echo, stripe_echoed,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (entity_type, action, entity_id)
		DO UPDATE SET
			expect_pipedrive_echo = EXCLUDED.expect_pipedrive_echo,
			pipedrive_echoed      = EXCLUDED.pipedrive_echoed,
			expect_stripe_echo    = EXCLUDED.expect_stripe_echo,
			stripe_echoed         = EXCLUDED.stripe_echoed
	`
	_, err := r.DB.ExecContext(ctx, query,
		lease.ID, lease.EntityType, lease.Action, lease.EntityID,
		lease.ExpectPipedriveEcho, lease.PipedriveEchoed,
		lease.ExpectStripeEcho, lease.StripeEchoed,
		lease.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save sync lease: %w", err)
	}
	return nil
}

func (r *SyncLeaseRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sync_leases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sync lease: %w", err)
	}
	return nil
}

// DeleteOlderThan removes every lease past the given age regardless of echo
// state, and returns what it removed.
func (r *SyncLeaseRepository) DeleteOlderThan(ctx context.Context, age time.Duration) ([]entity.SyncLease, error) {
	query := `
		DELETE FROM sync_leases
		WHERE created_at < $1
		RETURNING ` + leaseColumns

	cutoff := time.Now().Add(-age)
	rows, err := r.DB.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to reap sync leases: %w", err)
	}
	defer rows.Close()

	var reaped []entity.SyncLease
	for rows.Next() {
		var l entity.SyncLease
		err := rows.Scan(
			&l.ID, &l.EntityType, &l.Action, &l.EntityID,
			&l.ExpectPipedriveEcho, &l.PipedriveEchoed,
			&l.ExpectStripeEcho, &l.StripeEchoed,
			&l.CreatedAt,
		)
		if err != nil {
			return reaped, fmt.Errorf("failed to scan reaped lease: %w", err)
		}
		reaped = append(reaped, l)
	}
	return reaped, rows.Err()
}
