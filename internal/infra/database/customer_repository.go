package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/greyland/roseware-sync/internal/entity"
)

type CustomerRepository struct {
	DB *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `
	id, owner_id, first_name, last_name, email, phone,
	pipedrive_id, stripe_customer_id,
	original_sync_from, last_synced_from,
	pipedrive_synced, stripe_synced,
	created_at, updated_at
`

func (r *CustomerRepository) scan(row *sql.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.PipedriveID, &c.StripeCustomerID,
		&c.OriginalSyncFrom, &c.LastSyncedFrom,
		&c.PipedriveSynced, &c.StripeSynced,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.FirstName, c.LastName, c.Email, c.Phone,
		c.PipedriveID, c.StripeCustomerID,
		c.OriginalSyncFrom, c.LastSyncedFrom,
		c.PipedriveSynced, c.StripeSynced,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return entity.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers SET
			first_name = $2, last_name = $3, email = $4, phone = $5,
			last_synced_from = $6, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.LastSyncedFrom)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scan(r.DB.QueryRowContext(ctx, query, id))
}

func (r *CustomerRepository) FindByPipedriveID(ctx context.Context, pipedriveID int64) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE pipedrive_id = $1`
	return r.scan(r.DB.QueryRowContext(ctx, query, pipedriveID))
}

func (r *CustomerRepository) FindByStripeID(ctx context.Context, stripeCustomerID string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE stripe_customer_id = $1`
	return r.scan(r.DB.QueryRowContext(ctx, query, stripeCustomerID))
}

// SetPlatformIDs writes back ids returned by an outbound push and marks the
// matching sync flags. Plain column update; never dispatches.
func (r *CustomerRepository) SetPlatformIDs(ctx context.Context, id string, pipedriveID int64, stripeCustomerID string) error {
	query := `
		UPDATE customers SET
			pipedrive_id = $2,
			stripe_customer_id = $3,
			pipedrive_synced = ($2 <> 0),
			stripe_synced = ($3 <> ''),
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id, pipedriveID, stripeCustomerID)
	if err != nil {
		return fmt.Errorf("failed to set customer platform ids: %w", err)
	}
	return nil
}
