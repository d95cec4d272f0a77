package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/usecase"
)

type CustomerHandler struct {
	Service *usecase.CustomerService
	Repo    entity.CustomerRepository
}

func NewCustomerHandler(service *usecase.CustomerService, repo entity.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{Service: service, Repo: repo}
}

type customerInput struct {
	OwnerID   string `json:"owner_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input customerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	c, err := entity.NewCustomer(input.OwnerID, input.FirstName, input.LastName, input.Email, input.Phone, entity.SourceRoseware)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.Create(r.Context(), c, usecase.SyncBoth()); err != nil {
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			writeFail(w, http.StatusConflict, err.Error())
			return
		}
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "customer not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "customer not found")
		return
	}

	var input customerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	c.FirstName = input.FirstName
	c.LastName = input.LastName
	c.Email = input.Email
	c.Phone = input.Phone
	c.LastSyncedFrom = entity.SourceRoseware
	if err := c.Validate(); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.Update(r.Context(), c, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "customer not found")
		return
	}
	if err := h.Service.Delete(r.Context(), c, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, "customer deleted")
}
