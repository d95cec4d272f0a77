package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/usecase"
)

// --- package templates ---

type PackageTemplateHandler struct {
	Service *usecase.PackageTemplateService
	Repo    entity.PackageTemplateRepository
}

func NewPackageTemplateHandler(service *usecase.PackageTemplateService, repo entity.PackageTemplateRepository) *PackageTemplateHandler {
	return &PackageTemplateHandler{Service: service, Repo: repo}
}

type templateInput struct {
	OwnerID        string `json:"owner_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

func (h *PackageTemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input templateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	t, err := entity.NewPackageTemplate(input.OwnerID, input.Name, input.Description, input.UnitPriceCents, entity.SourceRoseware)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Service.Create(r.Context(), t, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *PackageTemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "package template not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *PackageTemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	t, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "package template not found")
		return
	}

	var input templateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	t.Name = input.Name
	t.Description = input.Description
	t.UnitPriceCents = input.UnitPriceCents
	t.LastSyncedFrom = entity.SourceRoseware
	if err := t.Validate(); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.Update(r.Context(), t, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *PackageTemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	t, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "package template not found")
		return
	}
	if err := h.Service.Delete(r.Context(), t, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, "package template deleted")
}

// --- package plans ---

type PackagePlanHandler struct {
	Service     *usecase.PackagePlanService
	LineService *usecase.ServicePackageService
	Repo        entity.PackagePlanRepository
	Lines       entity.ServicePackageRepository
}

func NewPackagePlanHandler(service *usecase.PackagePlanService, lineService *usecase.ServicePackageService, repo entity.PackagePlanRepository, lines entity.ServicePackageRepository) *PackagePlanHandler {
	return &PackagePlanHandler{Service: service, LineService: lineService, Repo: repo, Lines: lines}
}

type planInput struct {
	CustomerID   string `json:"customer_id"`
	OwnerID      string `json:"owner_id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	BillingCycle string `json:"billing_cycle"`
	Items        []struct {
		TemplateID string `json:"template_id"`
		Quantity   int    `json:"quantity"`
		CostCents  int64  `json:"cost_cents"`
	} `json:"items"`
}

// Create persists the plan and its lines in one request; the dispatcher
// queues the plan push, which carries the lines with it.
func (h *PackagePlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input planInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	cycle := input.BillingCycle
	if cycle == "" {
		cycle = "MONTHLY"
	}
	p, err := entity.NewPackagePlan(input.CustomerID, input.OwnerID, input.Title, cycle, entity.SourceRoseware)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	// Lines are written without their own dispatch; they ride the plan push.
	for _, item := range input.Items {
		line, err := entity.NewServicePackage(p.ID, item.TemplateID, item.Quantity, item.CostCents, entity.SourceRoseware)
		if err != nil {
			writeFail(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.LineService.Create(r.Context(), line, usecase.SyncNone()); err != nil {
			writeFail(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if err := h.Service.Create(r.Context(), p, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PackagePlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "package plan not found")
		return
	}
	lines, err := h.Lines.FindByPlanID(r.Context(), p.ID)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": p, "items": lines})
}

func (h *PackagePlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "package plan not found")
		return
	}

	var input planInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if input.Title != "" {
		p.Title = input.Title
	}
	if input.Status != "" {
		p.Status = input.Status
	}
	p.LastSyncedFrom = entity.SourceRoseware

	if err := h.Service.Update(r.Context(), p, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PackagePlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "package plan not found")
		return
	}
	if err := h.Service.Delete(r.Context(), p, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, "package plan deleted")
}

// --- service packages ---

type ServicePackageHandler struct {
	Service *usecase.ServicePackageService
	Repo    entity.ServicePackageRepository
}

func NewServicePackageHandler(service *usecase.ServicePackageService, repo entity.ServicePackageRepository) *ServicePackageHandler {
	return &ServicePackageHandler{Service: service, Repo: repo}
}

type servicePackageInput struct {
	PlanID     string `json:"plan_id"`
	TemplateID string `json:"template_id"`
	Quantity   int    `json:"quantity"`
	CostCents  int64  `json:"cost_cents"`
}

func (h *ServicePackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input servicePackageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sp, err := entity.NewServicePackage(input.PlanID, input.TemplateID, input.Quantity, input.CostCents, entity.SourceRoseware)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Service.Create(r.Context(), sp, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

func (h *ServicePackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	sp, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "service package not found")
		return
	}

	var input servicePackageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if input.Quantity > 0 {
		sp.Quantity = input.Quantity
	}
	if input.CostCents > 0 {
		sp.CostCents = input.CostCents
	}
	sp.LastSyncedFrom = entity.SourceRoseware

	if err := h.Service.Update(r.Context(), sp, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (h *ServicePackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sp, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusNotFound, "service package not found")
		return
	}
	if err := h.Service.Delete(r.Context(), sp, usecase.SyncBoth()); err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, "service package deleted")
}
