package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/greyland/roseware-sync/internal/entity"
)

type ServicePackageRepository struct {
	DB *sql.DB
}

func NewServicePackageRepository(db *sql.DB) *ServicePackageRepository {
	return &ServicePackageRepository{DB: db}
}

const servicePackageColumns = `
	id, plan_id, template_id, quantity, cost_cents,
	pipedrive_attachment_id, stripe_subscription_item_id,
	original_sync_from, last_synced_from,
	created_at, updated_at
`

func scanServicePackage(scanner interface{ Scan(...any) error }) (*entity.ServicePackage, error) {
	var sp entity.ServicePackage
	err := scanner.Scan(
		&sp.ID, &sp.PlanID, &sp.TemplateID, &sp.Quantity, &sp.CostCents,
		&sp.PipedriveAttachmentID, &sp.StripeSubscriptionItemID,
		&sp.OriginalSyncFrom, &sp.LastSyncedFrom,
		&sp.CreatedAt, &sp.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrServicePackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan service package: %w", err)
	}
	return &sp, nil
}

func (r *ServicePackageRepository) Create(ctx context.Context, sp *entity.ServicePackage) error {
	query := `
		INSERT INTO service_packages (` + servicePackageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		sp.ID, sp.PlanID, sp.TemplateID, sp.Quantity, sp.CostCents,
		sp.PipedriveAttachmentID, sp.StripeSubscriptionItemID,
		sp.OriginalSyncFrom, sp.LastSyncedFrom,
		sp.CreatedAt, sp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert service package: %w", err)
	}
	return nil
}

func (r *ServicePackageRepository) Update(ctx context.Context, sp *entity.ServicePackage) error {
	query := `
		UPDATE service_packages SET
			quantity = $2, cost_cents = $3,
			last_synced_from = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, sp.ID, sp.Quantity, sp.CostCents, sp.LastSyncedFrom)
	if err != nil {
		return fmt.Errorf("failed to update service package: %w", err)
	}
	return nil
}

func (r *ServicePackageRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM service_packages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service package: %w", err)
	}
	return nil
}

func (r *ServicePackageRepository) FindByID(ctx context.Context, id string) (*entity.ServicePackage, error) {
	query := `SELECT ` + servicePackageColumns + ` FROM service_packages WHERE id = $1`
	return scanServicePackage(r.DB.QueryRowContext(ctx, query, id))
}

func (r *ServicePackageRepository) FindByPlanID(ctx context.Context, planID string) ([]entity.ServicePackage, error) {
	query := `SELECT ` + servicePackageColumns + ` FROM service_packages WHERE plan_id = $1 ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list service packages: %w", err)
	}
	defer rows.Close()

	var out []entity.ServicePackage
	for rows.Next() {
		sp, err := scanServicePackage(rows)
		if err != nil {
			return out, err
		}
		out = append(out, *sp)
	}
	return out, rows.Err()
}

func (r *ServicePackageRepository) FindByStripeItemID(ctx context.Context, itemID string) (*entity.ServicePackage, error) {
	query := `SELECT ` + servicePackageColumns + ` FROM service_packages WHERE stripe_subscription_item_id = $1`
	return scanServicePackage(r.DB.QueryRowContext(ctx, query, itemID))
}

func (r *ServicePackageRepository) SetPlatformIDs(ctx context.Context, id string, pipedriveAttachmentID int64, stripeItemID string) error {
	query := `
		UPDATE service_packages SET
			pipedrive_attachment_id = $2,
			stripe_subscription_item_id = $3,
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id, pipedriveAttachmentID, stripeItemID)
	if err != nil {
		return fmt.Errorf("failed to set service package platform ids: %w", err)
	}
	return nil
}
