package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/greyland/roseware-sync/internal/entity"
)

type TogglesRepository struct {
	DB *sql.DB
}

func NewTogglesRepository(db *sql.DB) *TogglesRepository {
	return &TogglesRepository{DB: db}
}

// Get reads the single toggles row. An empty table means nothing is
// stopped.
func (r *TogglesRepository) Get(ctx context.Context) (entity.Toggles, error) {
	var t entity.Toggles
	query := `SELECT stop_pipedrive_webhooks, stop_stripe_webhooks FROM toggles WHERE id = 1`
	err := r.DB.QueryRowContext(ctx, query).Scan(&t.StopPipedriveWebhooks, &t.StopStripeWebhooks)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Toggles{}, nil
	}
	if err != nil {
		return entity.Toggles{}, fmt.Errorf("failed to read toggles: %w", err)
	}
	return t, nil
}

func (r *TogglesRepository) Set(ctx context.Context, t entity.Toggles) error {
	query := `
		INSERT INTO toggles (id, stop_pipedrive_webhooks, stop_stripe_webhooks)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			stop_pipedrive_webhooks = EXCLUDED.stop_pipedrive_webhooks,
			stop_stripe_webhooks    = EXCLUDED.stop_stripe_webhooks
	`
	if _, err := r.DB.ExecContext(ctx, query, t.StopPipedriveWebhooks, t.StopStripeWebhooks); err != nil {
		return fmt.Errorf("failed to write toggles: %w", err)
	}
	return nil
}
