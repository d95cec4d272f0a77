package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func protected(secret string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return WebhookAuth(secret)(next)
}

func TestWebhookAuthAcceptsMatchingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pipedrive/person/create", nil)
	req.Header.Set("X-Webhook-Token", "s3cret")
	rec := httptest.NewRecorder()

	protected("s3cret").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookAuthRejectsWrongToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pipedrive/person/create", nil)
	req.Header.Set("X-Webhook-Token", "wrong")
	rec := httptest.NewRecorder()

	protected("s3cret").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookAuthRejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pipedrive/person/create", nil)
	rec := httptest.NewRecorder()

	protected("s3cret").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
