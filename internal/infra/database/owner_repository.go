package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/greyland/roseware-sync/internal/entity"
)

type OwnerRepository struct {
	DB *sql.DB
}

func NewOwnerRepository(db *sql.DB) *OwnerRepository {
	return &OwnerRepository{DB: db}
}

func (r *OwnerRepository) FindByID(ctx context.Context, id string) (*entity.Owner, error) {
	query := `SELECT id, name, email, pipedrive_oauth_token FROM owners WHERE id = $1`

	var o entity.Owner
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.Name, &o.Email, &o.PipedriveOAuthToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrOwnerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan owner: %w", err)
	}
	return &o, nil
}
