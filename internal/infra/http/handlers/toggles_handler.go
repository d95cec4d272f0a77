package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/greyland/roseware-sync/internal/entity"
)

// TogglesHandler exposes the webhook kill switch to operators.
type TogglesHandler struct {
	Repo entity.TogglesRepository
}

func NewTogglesHandler(repo entity.TogglesRepository) *TogglesHandler {
	return &TogglesHandler{Repo: repo}
}

func (h *TogglesHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.Repo.Get(r.Context())
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "failed to read toggles")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TogglesHandler) Set(w http.ResponseWriter, r *http.Request) {
	var t entity.Toggles
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.Repo.Set(r.Context(), t); err != nil {
		writeFail(w, http.StatusInternalServerError, "failed to save toggles")
		return
	}
	log.Printf("⚠️ Webhook toggles changed: pipedrive=%v stripe=%v", t.StopPipedriveWebhooks, t.StopStripeWebhooks)
	writeJSON(w, http.StatusOK, t)
}
