package usecase

import "github.com/greyland/roseware-sync/internal/entity"

// Normalized webhook payloads. The platform handlers map each provider's
// envelope (Pipedrive's current/previous/meta, Stripe's data.object) into
// these before handing off to the pipeline, so the adapters never see
// provider JSON.

type CustomerPayload struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type TemplatePayload struct {
	Name           string
	Description    string
	UnitPriceCents int64
}

// PlanItem is one line of a plan as reported by a platform. Exactly one of
// PipedriveProductID / StripePriceID is set, depending on where the webhook
// came from.
type PlanItem struct {
	PipedriveProductID int64
	StripePriceID      string
	Quantity           int
	PriceCents         int64
}

type PlanPayload struct {
	Title  string
	Status string
	Items  []PlanItem

	// The customer the plan belongs to, as the platform knows it. Used when
	// the plan itself has to be created locally.
	PipedrivePersonID int64
	StripeCustomerID  string
}

type ServicePackagePayload struct {
	Quantity   int
	PriceCents int64
}

type LeadPayload struct {
	Title             string
	ValueCents        int64
	PipedrivePersonID int64
}

// InboundChange is one webhook notification, normalized.
type InboundChange struct {
	Platform   entity.Platform
	EntityType entity.EntityType
	Action     entity.SyncAction
	PlatformID string
	Payload    any
}
