package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrTemplateNotFound = errors.New("package template not found")

// PackageTemplate is a sellable service offering. It maps to a Pipedrive
// product and a Stripe product + recurring price.
type PackageTemplate struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Monthly unit price in cents.
	UnitPriceCents int64 `json:"unit_price_cents"`

	PipedriveID     int64  `json:"pipedrive_id"`
	StripeProductID string `json:"stripe_product_id"`
	StripePriceID   string `json:"stripe_price_id"`

	OriginalSyncFrom string `json:"original_sync_from"`
	LastSyncedFrom   string `json:"last_synced_from"`

	PipedriveSynced bool `json:"pipedrive_synced"`
	StripeSynced    bool `json:"stripe_synced"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPackageTemplate(ownerID, name, description string, unitPriceCents int64, source string) (*PackageTemplate, error) {
	t := &PackageTemplate{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		Name:             name,
		Description:      description,
		UnitPriceCents:   unitPriceCents,
		OriginalSyncFrom: source,
		LastSyncedFrom:   source,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *PackageTemplate) Validate() error {
	if t.Name == "" {
		return errors.New("name is required")
	}
	if t.UnitPriceCents < 0 {
		return errors.New("unit price cannot be negative")
	}
	return nil
}

type PackageTemplateRepository interface {
	Create(ctx context.Context, t *PackageTemplate) error
	Update(ctx context.Context, t *PackageTemplate) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*PackageTemplate, error)
	FindByPipedriveID(ctx context.Context, pipedriveID int64) (*PackageTemplate, error)
	FindByStripeProductID(ctx context.Context, stripeProductID string) (*PackageTemplate, error)
	FindByStripePriceID(ctx context.Context, stripePriceID string) (*PackageTemplate, error)
	SetPlatformIDs(ctx context.Context, id string, pipedriveID int64, stripeProductID, stripePriceID string) error
}
