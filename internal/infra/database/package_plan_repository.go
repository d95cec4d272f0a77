package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/greyland/roseware-sync/internal/entity"
)

type PackagePlanRepository struct {
	DB *sql.DB
}

func NewPackagePlanRepository(db *sql.DB) *PackagePlanRepository {
	return &PackagePlanRepository{DB: db}
}

const planColumns = `
	id, customer_id, owner_id, title, status, billing_cycle,
	pipedrive_id, stripe_subscription_id,
	original_sync_from, last_synced_from,
	pipedrive_synced, stripe_synced,
	created_at, updated_at
`

func (r *PackagePlanRepository) scan(row *sql.Row) (*entity.PackagePlan, error) {
	var p entity.PackagePlan
	err := row.Scan(
		&p.ID, &p.CustomerID, &p.OwnerID, &p.Title, &p.Status, &p.BillingCycle,
		&p.PipedriveID, &p.StripeSubscriptionID,
		&p.OriginalSyncFrom, &p.LastSyncedFrom,
		&p.PipedriveSynced, &p.StripeSynced,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan package plan: %w", err)
	}
	return &p, nil
}

func (r *PackagePlanRepository) Create(ctx context.Context, p *entity.PackagePlan) error {
	query := `
		INSERT INTO package_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.DB.ExecContext(ctx, query,
		p.ID, p.CustomerID, p.OwnerID, p.Title, p.Status, p.BillingCycle,
		p.PipedriveID, p.StripeSubscriptionID,
		p.OriginalSyncFrom, p.LastSyncedFrom,
		p.PipedriveSynced, p.StripeSynced,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert package plan: %w", err)
	}
	return nil
}

func (r *PackagePlanRepository) Update(ctx context.Context, p *entity.PackagePlan) error {
	query := `
		UPDATE package_plans SET
			title = $2, status = $3, billing_cycle = $4,
			last_synced_from = $5, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, p.ID, p.Title, p.Status, p.BillingCycle, p.LastSyncedFrom)
	if err != nil {
		return fmt.Errorf("failed to update package plan: %w", err)
	}
	return nil
}

func (r *PackagePlanRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM package_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete package plan: %w", err)
	}
	return nil
}

func (r *PackagePlanRepository) FindByID(ctx context.Context, id string) (*entity.PackagePlan, error) {
	query := `SELECT ` + planColumns + ` FROM package_plans WHERE id = $1`
	return r.scan(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PackagePlanRepository) FindByPipedriveID(ctx context.Context, pipedriveID int64) (*entity.PackagePlan, error) {
	query := `SELECT ` + planColumns + ` FROM package_plans WHERE pipedrive_id = $1`
	return r.scan(r.DB.QueryRowContext(ctx, query, pipedriveID))
}

func (r *PackagePlanRepository) FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*entity.PackagePlan, error) {
	query := `SELECT ` + planColumns + ` FROM package_plans WHERE stripe_subscription_id = $1`
	return r.scan(r.DB.QueryRowContext(ctx, query, subscriptionID))
}

func (r *PackagePlanRepository) SetPlatformIDs(ctx context.Context, id string, pipedriveID int64, stripeSubscriptionID string) error {
	query := `
		UPDATE package_plans SET
			pipedrive_id = $2,
			stripe_subscription_id = $3,
			pipedrive_synced = ($2 <> 0),
			stripe_synced = ($3 <> ''),
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id, pipedriveID, stripeSubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to set package plan platform ids: %w", err)
	}
	return nil
}
