package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrPlanNotFound = errors.New("package plan not found")

// PackagePlan is a customer's agreed bundle of service packages. It maps to
// a Pipedrive deal and a Stripe subscription; its line items are
// ServicePackage rows.
type PackagePlan struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	OwnerID      string `json:"owner_id"`
	Title        string `json:"title"`
	Status       string `json:"status"`        // PENDING, ACTIVE, CANCELLED
	BillingCycle string `json:"billing_cycle"` // MONTHLY, YEARLY

	PipedriveID          int64  `json:"pipedrive_id"`
	StripeSubscriptionID string `json:"stripe_subscription_id"`

	OriginalSyncFrom string `json:"original_sync_from"`
	LastSyncedFrom   string `json:"last_synced_from"`

	PipedriveSynced bool `json:"pipedrive_synced"`
	StripeSynced    bool `json:"stripe_synced"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPackagePlan(customerID, ownerID, title, billingCycle, source string) (*PackagePlan, error) {
	p := &PackagePlan{
		ID:               uuid.New().String(),
		CustomerID:       customerID,
		OwnerID:          ownerID,
		Title:            title,
		Status:           "PENDING",
		BillingCycle:     billingCycle,
		OriginalSyncFrom: source,
		LastSyncedFrom:   source,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PackagePlan) Validate() error {
	if p.CustomerID == "" {
		return errors.New("customer is required")
	}
	if p.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

type PackagePlanRepository interface {
	Create(ctx context.Context, p *PackagePlan) error
	Update(ctx context.Context, p *PackagePlan) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*PackagePlan, error)
	FindByPipedriveID(ctx context.Context, pipedriveID int64) (*PackagePlan, error)
	FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*PackagePlan, error)
	SetPlatformIDs(ctx context.Context, id string, pipedriveID int64, stripeSubscriptionID string) error
}
