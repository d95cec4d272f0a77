package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrServicePackageNotFound = errors.New("service package not found")

// ServicePackage is one line of a PackagePlan: a template at a quantity.
// It maps to a Pipedrive deal-product attachment and a Stripe subscription
// item.
type ServicePackage struct {
	ID         string `json:"id"`
	PlanID     string `json:"plan_id"`
	TemplateID string `json:"template_id"`
	Quantity   int    `json:"quantity"`
	CostCents  int64  `json:"cost_cents"`

	PipedriveAttachmentID    int64  `json:"pipedrive_attachment_id"`
	StripeSubscriptionItemID string `json:"stripe_subscription_item_id"`

	OriginalSyncFrom string `json:"original_sync_from"`
	LastSyncedFrom   string `json:"last_synced_from"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewServicePackage(planID, templateID string, quantity int, costCents int64, source string) (*ServicePackage, error) {
	sp := &ServicePackage{
		ID:               uuid.New().String(),
		PlanID:           planID,
		TemplateID:       templateID,
		Quantity:         quantity,
		CostCents:        costCents,
		OriginalSyncFrom: source,
		LastSyncedFrom:   source,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	return sp, nil
}

func (sp *ServicePackage) Validate() error {
	if sp.PlanID == "" {
		return errors.New("plan is required")
	}
	if sp.TemplateID == "" {
		return errors.New("template is required")
	}
	if sp.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}

type ServicePackageRepository interface {
	Create(ctx context.Context, sp *ServicePackage) error
	Update(ctx context.Context, sp *ServicePackage) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*ServicePackage, error)
	FindByPlanID(ctx context.Context, planID string) ([]ServicePackage, error)
	FindByStripeItemID(ctx context.Context, itemID string) (*ServicePackage, error)
	SetPlatformIDs(ctx context.Context, id string, pipedriveAttachmentID int64, stripeItemID string) error
}
