package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/http/middleware"
	"github.com/greyland/roseware-sync/internal/usecase"
)

// StripeWebhookHandler verifies the event signature and maps Stripe event
// types onto normalized inbound changes. One endpoint serves every event
// type: POST /webhooks/stripe.
type StripeWebhookHandler struct {
	Pipeline *usecase.WebhookPipeline
	Secret   string
	// Verify is webhook.ConstructEvent in production and swappable in tests.
	Verify func(payload []byte, sigHeader, secret string) (stripe.Event, error)
}

func NewStripeWebhookHandler(pipeline *usecase.WebhookPipeline, secret string) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		Pipeline: pipeline,
		Secret:   secret,
		Verify:   webhook.ConstructEvent,
	}
}

func (h *StripeWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "failed to read body")
		return
	}

	event, err := h.Verify(payload, r.Header.Get("Stripe-Signature"), h.Secret)
	if err != nil {
		log.Printf("⚠️ [WEBHOOK] stripe signature rejected: %v", err)
		writeFail(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	change, ok, err := h.normalize(event)
	if err != nil {
		log.Printf("❌ [WEBHOOK] bad stripe %s payload: %v", event.Type, err)
		writeFail(w, http.StatusBadRequest, "malformed event data")
		return
	}
	if !ok {
		// Event types outside the sync surface are acknowledged so Stripe
		// stops retrying them.
		writeOK(w, fmt.Sprintf("event %s ignored", event.Type))
		return
	}

	middleware.RecordWebhookReceived("stripe", string(change.EntityType), string(change.Action))
	res := h.Pipeline.Process(r.Context(), change)
	if res.Echo {
		middleware.RecordWebhookSuppressed("stripe", string(change.EntityType), string(change.Action))
	} else if res.OK {
		middleware.RecordWebhookApplied("stripe", string(change.EntityType), string(change.Action))
	}
	writeResult(w, res)
}

func stripeAction(eventType string) (entity.SyncAction, bool) {
	switch {
	case strings.HasSuffix(eventType, ".created"):
		return entity.ActionCreate, true
	case strings.HasSuffix(eventType, ".updated"):
		return entity.ActionUpdate, true
	case strings.HasSuffix(eventType, ".deleted"):
		return entity.ActionDelete, true
	}
	return "", false
}

func (h *StripeWebhookHandler) normalize(event stripe.Event) (usecase.InboundChange, bool, error) {
	var change usecase.InboundChange

	action, ok := stripeAction(string(event.Type))
	if !ok {
		return change, false, nil
	}
	change.Platform = entity.PlatformStripe
	change.Action = action

	switch {
	case strings.HasPrefix(string(event.Type), "customer.subscription."):
		var sub struct {
			ID       string `json:"id"`
			Customer string `json:"customer"`
			Status   string `json:"status"`
			Metadata struct {
				Title string `json:"roseware_title"`
			} `json:"metadata"`
			Items struct {
				Data []struct {
					ID    string `json:"id"`
					Price struct {
						ID string `json:"id"`
					} `json:"price"`
					Quantity int `json:"quantity"`
				} `json:"data"`
			} `json:"items"`
		}
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return change, false, err
		}
		change.EntityType = entity.TypePackagePlan
		change.PlatformID = sub.ID

		payload := &usecase.PlanPayload{
			Title:            sub.Metadata.Title,
			Status:           planStatusFromSubscription(sub.Status),
			StripeCustomerID: sub.Customer,
		}
		if action == entity.ActionCreate && payload.Title == "" {
			payload.Title = "Stripe subscription " + sub.ID
		}
		for _, item := range sub.Items.Data {
			payload.Items = append(payload.Items, usecase.PlanItem{
				StripePriceID: item.Price.ID,
				Quantity:      item.Quantity,
			})
		}
		change.Payload = payload

	case strings.HasPrefix(string(event.Type), "customer."):
		var cust struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
			Phone string `json:"phone"`
		}
		if err := json.Unmarshal(event.Data.Raw, &cust); err != nil {
			return change, false, err
		}
		first, last := splitName(cust.Name)
		change.EntityType = entity.TypeCustomer
		change.PlatformID = cust.ID
		change.Payload = &usecase.CustomerPayload{
			FirstName: first,
			LastName:  last,
			Email:     cust.Email,
			Phone:     cust.Phone,
		}

	case strings.HasPrefix(string(event.Type), "product."):
		var prod struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(event.Data.Raw, &prod); err != nil {
			return change, false, err
		}
		change.EntityType = entity.TypePackageTemplate
		change.PlatformID = prod.ID
		change.Payload = &usecase.TemplatePayload{
			Name:        prod.Name,
			Description: prod.Description,
		}

	case strings.HasPrefix(string(event.Type), "price."):
		// Price changes surface as template updates on the owning product.
		var price struct {
			ID         string `json:"id"`
			Product    string `json:"product"`
			UnitAmount int64  `json:"unit_amount"`
			Nickname   string `json:"nickname"`
		}
		if err := json.Unmarshal(event.Data.Raw, &price); err != nil {
			return change, false, err
		}
		if action == entity.ActionDelete {
			// A deleted price never deletes the local template; the product
			// deletion event does that.
			return change, false, nil
		}
		change.EntityType = entity.TypePackageTemplate
		change.Action = entity.ActionUpdate
		change.PlatformID = price.Product
		change.Payload = &usecase.TemplatePayload{
			UnitPriceCents: price.UnitAmount,
		}

	default:
		return change, false, nil
	}

	return change, true, nil
}

func planStatusFromSubscription(status string) string {
	switch status {
	case "active", "trialing":
		return "ACTIVE"
	case "canceled", "unpaid", "incomplete_expired":
		return "CANCELLED"
	}
	return ""
}

func splitName(full string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}
