package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/greyland/roseware-sync/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, customer_id, owner_id, title, value_cents,
	pipedrive_id, original_sync_from, last_synced_from, pipedrive_synced,
	created_at, updated_at
`

func scanLead(scanner interface{ Scan(...any) error }) (*entity.Lead, error) {
	var l entity.Lead
	err := scanner.Scan(
		&l.ID, &l.CustomerID, &l.OwnerID, &l.Title, &l.ValueCents,
		&l.PipedriveID, &l.OriginalSyncFrom, &l.LastSyncedFrom, &l.PipedriveSynced,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}
	return &l, nil
}

func (r *LeadRepository) Create(ctx context.Context, l *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		l.ID, l.CustomerID, l.OwnerID, l.Title, l.ValueCents,
		l.PipedriveID, l.OriginalSyncFrom, l.LastSyncedFrom, l.PipedriveSynced,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Update(ctx context.Context, l *entity.Lead) error {
	query := `
		UPDATE leads SET
			title = $2, value_cents = $3,
			last_synced_from = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, l.ID, l.Title, l.ValueCents, l.LastSyncedFrom)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return scanLead(r.DB.QueryRowContext(ctx, query, id))
}

func (r *LeadRepository) FindByPipedriveID(ctx context.Context, pipedriveID string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE pipedrive_id = $1`
	return scanLead(r.DB.QueryRowContext(ctx, query, pipedriveID))
}

func (r *LeadRepository) SetPlatformIDs(ctx context.Context, id string, pipedriveID string) error {
	query := `
		UPDATE leads SET
			pipedrive_id = $2,
			pipedrive_synced = ($2 <> ''),
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id, pipedriveID)
	if err != nil {
		return fmt.Errorf("failed to set lead platform ids: %w", err)
	}
	return nil
}
