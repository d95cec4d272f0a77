package usecase

import (
	"context"

	"github.com/greyland/roseware-sync/internal/entity"
)

// CRMGateway is the outbound surface of the Pipedrive client. The auth
// token is resolved per call from the owning user (per-owner OAuth token or
// the shared company key).
type CRMGateway interface {
	CreatePerson(ctx context.Context, owner *entity.Owner, c *entity.Customer) (int64, error)
	UpdatePerson(ctx context.Context, owner *entity.Owner, c *entity.Customer) error
	DeletePerson(ctx context.Context, owner *entity.Owner, pipedriveID int64) error

	CreateProduct(ctx context.Context, owner *entity.Owner, t *entity.PackageTemplate) (int64, error)
	UpdateProduct(ctx context.Context, owner *entity.Owner, t *entity.PackageTemplate) error
	DeleteProduct(ctx context.Context, owner *entity.Owner, pipedriveID int64) error

	CreateDeal(ctx context.Context, owner *entity.Owner, p *entity.PackagePlan, personID int64) (int64, error)
	UpdateDeal(ctx context.Context, owner *entity.Owner, p *entity.PackagePlan) error
	DeleteDeal(ctx context.Context, owner *entity.Owner, pipedriveID int64) error

	AttachProductToDeal(ctx context.Context, owner *entity.Owner, dealID, productID int64, quantity int, priceCents int64) (int64, error)
	DetachProductFromDeal(ctx context.Context, owner *entity.Owner, dealID, attachmentID int64) error
	ListDealProducts(ctx context.Context, owner *entity.Owner, dealID int64) ([]DealProduct, error)

	CreateLead(ctx context.Context, owner *entity.Owner, l *entity.Lead, personID int64) (string, error)
	UpdateLead(ctx context.Context, owner *entity.Owner, l *entity.Lead) error
	DeleteLead(ctx context.Context, owner *entity.Owner, pipedriveID string) error
}

// DealProduct is one product attachment on a Pipedrive deal as the CRM
// reports it.
type DealProduct struct {
	AttachmentID int64
	ProductID    int64
	Quantity     int
	PriceCents   int64
}

// BillingGateway is the outbound surface of the Stripe client.
type BillingGateway interface {
	CreateCustomer(ctx context.Context, c *entity.Customer) (string, error)
	UpdateCustomer(ctx context.Context, c *entity.Customer) error
	DeleteCustomer(ctx context.Context, stripeCustomerID string) error

	// CreateProduct creates the product plus its recurring price.
	CreateProduct(ctx context.Context, t *entity.PackageTemplate) (productID, priceID string, err error)
	UpdateProduct(ctx context.Context, t *entity.PackageTemplate) error
	ArchiveProduct(ctx context.Context, stripeProductID string) error

	CreateSubscription(ctx context.Context, p *entity.PackagePlan, stripeCustomerID string, items []entity.ServicePackage, priceIDs map[string]string) (string, map[string]string, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error

	CreateSubscriptionItem(ctx context.Context, subscriptionID, priceID string, quantity int) (string, error)
	UpdateSubscriptionItem(ctx context.Context, itemID string, quantity int) error
	DeleteSubscriptionItem(ctx context.Context, itemID string) error
}

// TaskBoard posts follow-up items to Monday.com. Best effort: failures are
// logged and never block a local write.
type TaskBoard interface {
	CreateItem(ctx context.Context, boardName, itemName string, columns map[string]string) (string, error)
}

type EmailService interface {
	SendWelcome(to, name string) error
}
