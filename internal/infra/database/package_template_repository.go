package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/greyland/roseware-sync/internal/entity"
)

type PackageTemplateRepository struct {
	DB *sql.DB
}

func NewPackageTemplateRepository(db *sql.DB) *PackageTemplateRepository {
	return &PackageTemplateRepository{DB: db}
}

const templateColumns = `
	id, owner_id, name, description, unit_price_cents,
	pipedrive_id, stripe_product_id, stripe_price_id,
	original_sync_from, last_synced_from,
	pipedrive_synced, stripe_synced,
	created_at, updated_at
`

func (r *PackageTemplateRepository) scan(row *sql.Row) (*entity.PackageTemplate, error) {
	var t entity.PackageTemplate
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.UnitPriceCents,
		&t.PipedriveID, &t.StripeProductID, &t.StripePriceID,
		&t.OriginalSyncFrom, &t.LastSyncedFrom,
		&t.PipedriveSynced, &t.StripeSynced,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan package template: %w", err)
	}
	return &t, nil
}

func (r *PackageTemplateRepository) Create(ctx context.Context, t *entity.PackageTemplate) error {
	query := `
		INSERT INTO package_templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.DB.ExecContext(ctx, query,
		t.ID, t.OwnerID, t.Name, t.Description, t.UnitPriceCents,
		t.PipedriveID, t.StripeProductID, t.StripePriceID,
		t.OriginalSyncFrom, t.LastSyncedFrom,
		t.PipedriveSynced, t.StripeSynced,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert package template: %w", err)
	}
	return nil
}

func (r *PackageTemplateRepository) Update(ctx context.Context, t *entity.PackageTemplate) error {
	query := `
		UPDATE package_templates SET
			name = $2, description = $3, unit_price_cents = $4,
			last_synced_from = $5, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, t.ID, t.Name, t.Description, t.UnitPriceCents, t.LastSyncedFrom)
	if err != nil {
		return fmt.Errorf("failed to update package template: %w", err)
	}
	return nil
}

func (r *PackageTemplateRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM package_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete package template: %w", err)
	}
	return nil
}

func (r *PackageTemplateRepository) FindByID(ctx context.Context, id string) (*entity.PackageTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM package_templates WHERE id = $1`
	return r.scan(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PackageTemplateRepository) FindByPipedriveID(ctx context.Context, pipedriveID int64) (*entity.PackageTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM package_templates WHERE pipedrive_id = $1`
	return r.scan(r.DB.QueryRowContext(ctx, query, pipedriveID))
}

func (r *PackageTemplateRepository) FindByStripeProductID(ctx context.Context, stripeProductID string) (*entity.PackageTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM package_templates WHERE stripe_product_id = $1`
	return r.scan(r.DB.QueryRowContext(ctx, query, stripeProductID))
}

func (r *PackageTemplateRepository) FindByStripePriceID(ctx context.Context, stripePriceID string) (*entity.PackageTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM package_templates WHERE stripe_price_id = $1`
	return r.scan(r.DB.QueryRowContext(ctx, query, stripePriceID))
}

func (r *PackageTemplateRepository) SetPlatformIDs(ctx context.Context, id string, pipedriveID int64, stripeProductID, stripePriceID string) error {
	query := `
		UPDATE package_templates SET
			pipedrive_id = $2,
			stripe_product_id = $3,
			stripe_price_id = $4,
			pipedrive_synced = ($2 <> 0),
			stripe_synced = ($3 <> ''),
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id, pipedriveID, stripeProductID, stripePriceID)
	if err != nil {
		return fmt.Errorf("failed to set package template platform ids: %w", err)
	}
	return nil
}
