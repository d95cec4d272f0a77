package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/usecase"
)

type LeadHandler struct {
	Service *usecase.LeadService
	Repo    entity.LeadRepository
}

func NewLeadHandler(service *usecase.LeadService, repo entity.LeadRepository) *LeadHandler {
	return &LeadHandler{Service: service, Repo: repo}
}

type leadInput struct {
	CustomerID string `json:"customer_id"`
	OwnerID    string `json:"owner_id"`
	Title      string `json:"title"`
	ValueCents int64  `json:"value_cents"`
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input leadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	l, err := entity.NewLead(input.CustomerID, input.OwnerID, input.Title, input.ValueCents, entity.SourceRoseware)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Service.Create(r.Context(), l, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "lead not found")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	l, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "lead not found")
		return
	}

	var input leadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if input.Title != "" {
		l.Title = input.Title
	}
	if input.ValueCents > 0 {
		l.ValueCents = input.ValueCents
	}
	l.LastSyncedFrom = entity.SourceRoseware

	if err := h.Service.Update(r.Context(), l, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	l, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "lead not found")
		return
	}
	if err := h.Service.Delete(r.Context(), l, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, "lead deleted")
}
