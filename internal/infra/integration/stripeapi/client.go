package stripeapi

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/price"
	"github.com/stripe/stripe-go/v81/product"
	"github.com/stripe/stripe-go/v81/subscription"
	"github.com/stripe/stripe-go/v81/subscriptionitem"

	"github.com/greyland/roseware-sync/internal/entity"
)

// Client talks to Stripe through the official SDK. The SDK holds the API key
// globally, so NewClient sets it once at startup.
type Client struct{}

func NewClient() *Client {
	stripe.Key = os.Getenv("STRIPE_PRIVATE")
	if stripe.Key == "" {
		log.Println("⚠️ Stripe: STRIPE_PRIVATE not configured")
	}
	return &Client{}
}

func (c *Client) CreateCustomer(ctx context.Context, cust *entity.Customer) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(cust.Email),
		Name:  stripe.String(cust.FullName()),
	}
	if cust.Phone != "" {
		params.Phone = stripe.String(cust.Phone)
	}
	params.Context = ctx
	params.Metadata = map[string]string{"roseware_id": cust.ID}

	sc, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}
	log.Printf("✅ Stripe: customer %s created for %s", sc.ID, cust.Email)
	return sc.ID, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, cust *entity.Customer) error {
	params := &stripe.CustomerParams{
		Email: stripe.String(cust.Email),
		Name:  stripe.String(cust.FullName()),
	}
	if cust.Phone != "" {
		params.Phone = stripe.String(cust.Phone)
	}
	params.Context = ctx

	if _, err := customer.Update(cust.StripeCustomerID, params); err != nil {
		return fmt.Errorf("failed to update stripe customer: %w", err)
	}
	return nil
}

func (c *Client) DeleteCustomer(ctx context.Context, stripeCustomerID string) error {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if _, err := customer.Del(stripeCustomerID, params); err != nil {
		return fmt.Errorf("failed to delete stripe customer: %w", err)
	}
	return nil
}

func (c *Client) CreateProduct(ctx context.Context, t *entity.PackageTemplate) (string, string, error) {
	prodParams := &stripe.ProductParams{
		Name: stripe.String(t.Name),
	}
	if t.Description != "" {
		prodParams.Description = stripe.String(t.Description)
	}
	prodParams.Context = ctx
	prodParams.Metadata = map[string]string{"roseware_id": t.ID}

	sp, err := product.New(prodParams)
	if err != nil {
		return "", "", fmt.Errorf("failed to create stripe product: %w", err)
	}

	priceParams := &stripe.PriceParams{
		Product:    stripe.String(sp.ID),
		UnitAmount: stripe.Int64(t.UnitPriceCents),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
		},
	}
	priceParams.Context = ctx

	pr, err := price.New(priceParams)
	if err != nil {
		return "", "", fmt.Errorf("failed to create stripe price: %w", err)
	}

	log.Printf("✅ Stripe: product %s / price %s created (%s)", sp.ID, pr.ID, t.Name)
	return sp.ID, pr.ID, nil
}

// UpdateProduct changes name and description only. Stripe prices are
// immutable, so a price change means archiving the old price and creating a
// new one, which arrives here as a fresh template push.
func (c *Client) UpdateProduct(ctx context.Context, t *entity.PackageTemplate) error {
	params := &stripe.ProductParams{
		Name: stripe.String(t.Name),
	}
	if t.Description != "" {
		params.Description = stripe.String(t.Description)
	}
	params.Context = ctx

	if _, err := product.Update(t.StripeProductID, params); err != nil {
		return fmt.Errorf("failed to update stripe product: %w", err)
	}
	return nil
}

// ArchiveProduct deactivates instead of deleting. Stripe refuses to delete
// products that ever had a price attached.
func (c *Client) ArchiveProduct(ctx context.Context, stripeProductID string) error {
	params := &stripe.ProductParams{
		Active: stripe.Bool(false),
	}
	params.Context = ctx

	if _, err := product.Update(stripeProductID, params); err != nil {
		return fmt.Errorf("failed to archive stripe product: %w", err)
	}
	return nil
}

func (c *Client) CreateSubscription(ctx context.Context, p *entity.PackagePlan, stripeCustomerID string, items []entity.ServicePackage, priceIDs map[string]string) (string, map[string]string, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(stripeCustomerID),
	}
	params.Context = ctx
	params.Metadata = map[string]string{"roseware_id": p.ID}

	for _, sp := range items {
		params.Items = append(params.Items, &stripe.SubscriptionItemsParams{
			Price:    stripe.String(priceIDs[sp.TemplateID]),
			Quantity: stripe.Int64(int64(sp.Quantity)),
			Metadata: map[string]string{"roseware_line_id": sp.ID},
		})
	}

	sub, err := subscription.New(params)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create stripe subscription: %w", err)
	}

	// Map local line ids back to the subscription item ids Stripe assigned.
	itemIDs := make(map[string]string, len(items))
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if lineID := item.Metadata["roseware_line_id"]; lineID != "" {
				itemIDs[lineID] = item.ID
			}
		}
	}

	log.Printf("✅ Stripe: subscription %s created with %d item(s)", sub.ID, len(itemIDs))
	return sub.ID, itemIDs, nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if _, err := subscription.Cancel(subscriptionID, params); err != nil {
		return fmt.Errorf("failed to cancel stripe subscription: %w", err)
	}
	return nil
}

func (c *Client) CreateSubscriptionItem(ctx context.Context, subscriptionID, priceID string, quantity int) (string, error) {
	params := &stripe.SubscriptionItemParams{
		Subscription: stripe.String(subscriptionID),
		Price:        stripe.String(priceID),
		Quantity:     stripe.Int64(int64(quantity)),
	}
	params.Context = ctx

	item, err := subscriptionitem.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create subscription item: %w", err)
	}
	return item.ID, nil
}

func (c *Client) UpdateSubscriptionItem(ctx context.Context, itemID string, quantity int) error {
	params := &stripe.SubscriptionItemParams{
		Quantity: stripe.Int64(int64(quantity)),
	}
	params.Context = ctx

	if _, err := subscriptionitem.Update(itemID, params); err != nil {
		return fmt.Errorf("failed to update subscription item: %w", err)
	}
	return nil
}

func (c *Client) DeleteSubscriptionItem(ctx context.Context, itemID string) error {
	params := &stripe.SubscriptionItemParams{}
	params.Context = ctx
	if _, err := subscriptionitem.Del(itemID, params); err != nil {
		return fmt.Errorf("failed to delete subscription item: %w", err)
	}
	return nil
}
