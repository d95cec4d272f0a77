package entity

import "context"

// Toggles is the operator kill switch for inbound webhook processing. It is
// a single row; when a platform's flag is set its webhooks are acknowledged
// with success and otherwise ignored.
type Toggles struct {
	StopPipedriveWebhooks bool `json:"stop_pipedrive_webhooks"`
	StopStripeWebhooks    bool `json:"stop_stripe_webhooks"`
}

// Stops reports whether inbound processing for the platform is disabled.
func (t Toggles) Stops(p Platform) bool {
	switch p {
	case PlatformPipedrive:
		return t.StopPipedriveWebhooks
	case PlatformStripe:
		return t.StopStripeWebhooks
	}
	return false
}

type TogglesRepository interface {
	// Get returns the toggles row, or an all-false default when none exists.
	Get(ctx context.Context) (Toggles, error)
	Set(ctx context.Context, t Toggles) error
}
