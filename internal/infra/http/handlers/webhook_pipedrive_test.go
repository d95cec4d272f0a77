package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/usecase"
)

// allowAllToggles never stops a platform.
type allowAllToggles struct{}

func (allowAllToggles) Get(ctx context.Context) (entity.Toggles, error) { return entity.Toggles{}, nil }
func (allowAllToggles) Set(ctx context.Context, t entity.Toggles) error { return nil }

// emptyLeases reports no lease for anything, so nothing is suppressed.
type emptyLeases struct{}

func (emptyLeases) FindForEntity(ctx context.Context, t entity.EntityType, a entity.SyncAction, id string) (*entity.SyncLease, error) {
	return nil, entity.ErrLeaseNotFound
}
func (emptyLeases) FindAnyFor(ctx context.Context, t entity.EntityType, a entity.SyncAction) (*entity.SyncLease, error) {
	return nil, entity.ErrLeaseNotFound
}
func (emptyLeases) Save(ctx context.Context, lease *entity.SyncLease) error { return nil }
func (emptyLeases) Delete(ctx context.Context, id string) error             { return nil }
func (emptyLeases) DeleteOlderThan(ctx context.Context, age time.Duration) ([]entity.SyncLease, error) {
	return nil, nil
}

// recordingAdapter captures the normalized change the pipeline hands it.
type recordingAdapter struct {
	localID string
	created *usecase.InboundChange
	applied *usecase.InboundChange
	deleted *usecase.InboundChange
}

func (a *recordingAdapter) Find(ctx context.Context, p entity.Platform, platformID string) (string, error) {
	if a.localID == "" {
		return "", usecase.ErrLocalNotFound
	}
	return a.localID, nil
}

func (a *recordingAdapter) Create(ctx context.Context, change usecase.InboundChange) error {
	a.created = &change
	return nil
}

func (a *recordingAdapter) Diff(ctx context.Context, localID string, change usecase.InboundChange) (bool, error) {
	return true, nil
}

func (a *recordingAdapter) Apply(ctx context.Context, localID string, change usecase.InboundChange) error {
	a.applied = &change
	return nil
}

func (a *recordingAdapter) Delete(ctx context.Context, localID string, change usecase.InboundChange) error {
	a.deleted = &change
	return nil
}

// stubCRM only answers ListDealProducts; the rest of the gateway is unused
// by the webhook path under test.
type stubCRM struct {
	usecase.CRMGateway
	products []usecase.DealProduct
}

func (s *stubCRM) ListDealProducts(ctx context.Context, owner *entity.Owner, dealID int64) ([]usecase.DealProduct, error) {
	return s.products, nil
}

func newPipedriveServer(crm usecase.CRMGateway, adapters map[entity.EntityType]usecase.EntityAdapter) *chi.Mux {
	pipeline := usecase.NewWebhookPipeline(allowAllToggles{}, emptyLeases{}, 0)
	for t, a := range adapters {
		pipeline.Register(t, a)
	}
	h := NewPipedriveWebhookHandler(pipeline, crm)

	r := chi.NewRouter()
	r.Post("/webhooks/pipedrive/{entity}/{action}", h.Handle)
	return r
}

func TestPipedriveWebhookRejectsUnknownEntity(t *testing.T) {
	r := newPipedriveServer(&stubCRM{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/pipedrive/organization/create", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPipedriveWebhookRejectsMalformedBody(t *testing.T) {
	r := newPipedriveServer(&stubCRM{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/pipedrive/person/create", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPipedrivePersonCreateNormalizesContactFields(t *testing.T) {
	adapter := &recordingAdapter{}
	r := newPipedriveServer(&stubCRM{}, map[entity.EntityType]usecase.EntityAdapter{
		entity.TypeCustomer: adapter,
	})

	body := `{"current": {
		"id": 42,
		"first_name": "Ana",
		"last_name": "Souza",
		"email": [{"value": "old@example.com", "primary": false}, {"value": "ana@example.com", "primary": true}],
		"phone": [{"value": "+5511999999999", "primary": true}]
	}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pipedrive/person/create", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, adapter.created) {
		assert.Equal(t, "42", adapter.created.PlatformID)
		payload := adapter.created.Payload.(*usecase.CustomerPayload)
		assert.Equal(t, "Ana", payload.FirstName)
		assert.Equal(t, "ana@example.com", payload.Email)
		assert.Equal(t, "+5511999999999", payload.Phone)
	}
}

func TestPipedriveDealDeleteReadsPreviousState(t *testing.T) {
	adapter := &recordingAdapter{localID: "plan-1"}
	r := newPipedriveServer(&stubCRM{}, map[entity.EntityType]usecase.EntityAdapter{
		entity.TypePackagePlan: adapter,
	})

	// Pipedrive delete webhooks ship a null current.
	body := `{"current": null, "previous": {"id": 99, "title": "Growth", "status": "deleted"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pipedrive/deal/delete", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, adapter.deleted) {
		assert.Equal(t, "99", adapter.deleted.PlatformID)
	}
}

func TestPipedriveDealUpdateFetchesAttachedProducts(t *testing.T) {
	adapter := &recordingAdapter{localID: "plan-1"}
	crm := &stubCRM{products: []usecase.DealProduct{
		{AttachmentID: 1, ProductID: 7, Quantity: 2, PriceCents: 5000},
	}}
	r := newPipedriveServer(crm, map[entity.EntityType]usecase.EntityAdapter{
		entity.TypePackagePlan: adapter,
	})

	body := `{"current": {"id": 99, "title": "Growth", "status": "won", "person_id": 42}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pipedrive/deal/change", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, adapter.applied) {
		payload := adapter.applied.Payload.(*usecase.PlanPayload)
		assert.Equal(t, "ACTIVE", payload.Status)
		if assert.Len(t, payload.Items, 1) {
			assert.Equal(t, int64(7), payload.Items[0].PipedriveProductID)
			assert.Equal(t, 2, payload.Items[0].Quantity)
		}
	}
}

func TestPipedriveLeadCreateConvertsValueToCents(t *testing.T) {
	adapter := &recordingAdapter{}
	r := newPipedriveServer(&stubCRM{}, map[entity.EntityType]usecase.EntityAdapter{
		entity.TypeLead: adapter,
	})

	body := `{"current": {"id": "adf21-eb41", "title": "Upsell", "value": {"amount": 125.50}, "person_id": 42}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pipedrive/lead/added", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, adapter.created) {
		assert.Equal(t, "adf21-eb41", adapter.created.PlatformID)
		payload := adapter.created.Payload.(*usecase.LeadPayload)
		assert.Equal(t, int64(12550), payload.ValueCents)
		assert.Equal(t, int64(42), payload.PipedrivePersonID)
	}
}
