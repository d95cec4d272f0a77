package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/http/middleware"
	"github.com/greyland/roseware-sync/internal/usecase"
)

// PipedriveWebhookHandler maps the Pipedrive webhook envelope onto a
// normalized InboundChange and hands it to the pipeline. Routes carry the
// entity and action: POST /webhooks/pipedrive/{entity}/{action}.
type PipedriveWebhookHandler struct {
	Pipeline *usecase.WebhookPipeline
	// CRM is used to fetch a deal's product attachments, which Pipedrive
	// does not include in the deal webhook body.
	CRM usecase.CRMGateway
}

func NewPipedriveWebhookHandler(pipeline *usecase.WebhookPipeline, crm usecase.CRMGateway) *PipedriveWebhookHandler {
	return &PipedriveWebhookHandler{Pipeline: pipeline, CRM: crm}
}

type pipedriveEnvelope struct {
	Current  json.RawMessage `json:"current"`
	Previous json.RawMessage `json:"previous"`
}

type pipedriveContact struct {
	Value   string `json:"value"`
	Primary bool   `json:"primary"`
}

func primaryValue(fields []pipedriveContact) string {
	for _, f := range fields {
		if f.Primary {
			return f.Value
		}
	}
	if len(fields) > 0 {
		return fields[0].Value
	}
	return ""
}

func (h *PipedriveWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	entityParam := chi.URLParam(r, "entity")
	actionParam := chi.URLParam(r, "action")

	entityType, ok := pipedriveEntityType(entityParam)
	if !ok {
		writeFail(w, http.StatusBadRequest, fmt.Sprintf("unknown pipedrive entity %q", entityParam))
		return
	}
	action, ok := pipedriveAction(actionParam)
	if !ok {
		writeFail(w, http.StatusBadRequest, fmt.Sprintf("unknown pipedrive action %q", actionParam))
		return
	}

	var env pipedriveEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeFail(w, http.StatusBadRequest, "malformed webhook body")
		return
	}

	// Deletes ship a null current; the record state rides in previous.
	data := env.Current
	if action == entity.ActionDelete && len(env.Previous) > 0 {
		data = env.Previous
	}
	if len(data) == 0 {
		writeFail(w, http.StatusBadRequest, "webhook carries no record data")
		return
	}

	change, err := h.normalize(r, entityType, action, data)
	if err != nil {
		log.Printf("❌ [WEBHOOK] bad pipedrive %s payload: %v", entityParam, err)
		writeFail(w, http.StatusBadRequest, "malformed record data")
		return
	}

	middleware.RecordWebhookReceived("pipedrive", string(entityType), string(action))
	res := h.Pipeline.Process(r.Context(), change)
	if res.Echo {
		middleware.RecordWebhookSuppressed("pipedrive", string(entityType), string(action))
	} else if res.OK {
		middleware.RecordWebhookApplied("pipedrive", string(entityType), string(action))
	}
	writeResult(w, res)
}

func pipedriveEntityType(s string) (entity.EntityType, bool) {
	switch s {
	case "person":
		return entity.TypeCustomer, true
	case "product":
		return entity.TypePackageTemplate, true
	case "deal":
		return entity.TypePackagePlan, true
	case "lead":
		return entity.TypeLead, true
	}
	return "", false
}

func pipedriveAction(s string) (entity.SyncAction, bool) {
	switch s {
	case "create", "added":
		return entity.ActionCreate, true
	case "change", "update", "updated":
		return entity.ActionUpdate, true
	case "delete", "deleted":
		return entity.ActionDelete, true
	}
	return "", false
}

func (h *PipedriveWebhookHandler) normalize(r *http.Request, t entity.EntityType, action entity.SyncAction, data json.RawMessage) (usecase.InboundChange, error) {
	change := usecase.InboundChange{
		Platform:   entity.PlatformPipedrive,
		EntityType: t,
		Action:     action,
	}

	switch t {
	case entity.TypeCustomer:
		var p struct {
			ID        int64              `json:"id"`
			FirstName string             `json:"first_name"`
			LastName  string             `json:"last_name"`
			Email     []pipedriveContact `json:"email"`
			Phone     []pipedriveContact `json:"phone"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return change, err
		}
		change.PlatformID = fmt.Sprintf("%d", p.ID)
		change.Payload = &usecase.CustomerPayload{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     primaryValue(p.Email),
			Phone:     primaryValue(p.Phone),
		}

	case entity.TypePackageTemplate:
		var p struct {
			ID          int64  `json:"id"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Prices      []struct {
				Price float64 `json:"price"`
			} `json:"prices"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return change, err
		}
		change.PlatformID = fmt.Sprintf("%d", p.ID)
		payload := &usecase.TemplatePayload{Name: p.Name, Description: p.Description}
		if len(p.Prices) > 0 {
			payload.UnitPriceCents = int64(p.Prices[0].Price * 100)
		}
		change.Payload = payload

	case entity.TypePackagePlan:
		var p struct {
			ID       int64  `json:"id"`
			Title    string `json:"title"`
			Status   string `json:"status"`
			PersonID int64  `json:"person_id"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return change, err
		}
		change.PlatformID = fmt.Sprintf("%d", p.ID)
		payload := &usecase.PlanPayload{
			Title:             p.Title,
			Status:            planStatusFromDeal(p.Status),
			PipedrivePersonID: p.PersonID,
		}
		if action != entity.ActionDelete {
			items, err := h.dealItems(r, p.ID)
			if err != nil {
				return change, err
			}
			payload.Items = items
		}
		change.Payload = payload

	case entity.TypeLead:
		var p struct {
			ID    string `json:"id"`
			Title string `json:"title"`
			Value *struct {
				Amount float64 `json:"amount"`
			} `json:"value"`
			PersonID int64 `json:"person_id"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return change, err
		}
		change.PlatformID = p.ID
		payload := &usecase.LeadPayload{Title: p.Title, PipedrivePersonID: p.PersonID}
		if p.Value != nil {
			payload.ValueCents = int64(p.Value.Amount * 100)
		}
		change.Payload = payload

	default:
		return change, fmt.Errorf("entity type %s does not arrive via pipedrive", t)
	}

	return change, nil
}

// dealItems pulls the deal's product attachments so plan reconciliation sees
// the full line set.
func (h *PipedriveWebhookHandler) dealItems(r *http.Request, dealID int64) ([]usecase.PlanItem, error) {
	products, err := h.CRM.ListDealProducts(r.Context(), nil, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deal products: %w", err)
	}
	items := make([]usecase.PlanItem, 0, len(products))
	for _, dp := range products {
		items = append(items, usecase.PlanItem{
			PipedriveProductID: dp.ProductID,
			Quantity:           dp.Quantity,
			PriceCents:         dp.PriceCents,
		})
	}
	return items, nil
}

func planStatusFromDeal(status string) string {
	switch status {
	case "won":
		return "ACTIVE"
	case "lost", "deleted":
		return "CANCELLED"
	}
	return ""
}
