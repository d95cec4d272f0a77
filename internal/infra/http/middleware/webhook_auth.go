package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// WebhookAuth rejects webhook deliveries that do not carry the shared secret
// in X-Webhook-Token. Stripe webhooks are exempt; they carry their own
// signature and are verified by the handler.
func WebhookAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Webhook-Token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{
					"ok":      false,
					"message": "invalid webhook token",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
