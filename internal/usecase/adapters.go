package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/greyland/roseware-sync/internal/entity"
)

func payloadAs[T any](change InboundChange) (*T, error) {
	p, ok := change.Payload.(*T)
	if !ok || p == nil {
		return nil, fmt.Errorf("malformed %s payload", change.EntityType)
	}
	return p, nil
}

func parsePipedriveID(platformID string) (int64, error) {
	id, err := strconv.ParseInt(platformID, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("bad pipedrive id %q", platformID)
	}
	return id, nil
}

// --- customers ---

type CustomerAdapter struct {
	Customers entity.CustomerRepository
	Service   *CustomerService
	// Owner assigned to rows born from a webhook.
	DefaultOwnerID string
}

func (a *CustomerAdapter) Find(ctx context.Context, platform entity.Platform, platformID string) (string, error) {
	var c *entity.Customer
	var err error
	switch platform {
	case entity.PlatformPipedrive:
		pid, perr := parsePipedriveID(platformID)
		if perr != nil {
			return "", perr
		}
		c, err = a.Customers.FindByPipedriveID(ctx, pid)
	case entity.PlatformStripe:
		c, err = a.Customers.FindByStripeID(ctx, platformID)
	}
	if errors.Is(err, entity.ErrCustomerNotFound) {
		return "", ErrLocalNotFound
	}
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (a *CustomerAdapter) Create(ctx context.Context, change InboundChange) error {
	p, err := payloadAs[CustomerPayload](change)
	if err != nil {
		return err
	}
	c, err := entity.NewCustomer(a.DefaultOwnerID, p.FirstName, p.LastName, p.Email, p.Phone, string(change.Platform))
	if err != nil {
		return err
	}
	switch change.Platform {
	case entity.PlatformPipedrive:
		if c.PipedriveID, err = parsePipedriveID(change.PlatformID); err != nil {
			return err
		}
		c.PipedriveSynced = true
	case entity.PlatformStripe:
		c.StripeCustomerID = change.PlatformID
		c.StripeSynced = true
	}
	return a.Service.Create(ctx, c, SyncOnly(change.Platform.Opposite()))
}

func (a *CustomerAdapter) Diff(ctx context.Context, localID string, change InboundChange) (bool, error) {
	p, err := payloadAs[CustomerPayload](change)
	if err != nil {
		return false, err
	}
	c, err := a.Customers.FindByID(ctx, localID)
	if err != nil {
		return false, err
	}
	return c.FirstName != p.FirstName ||
		c.LastName != p.LastName ||
		c.Email != p.Email ||
		c.Phone != p.Phone, nil
}

func (a *CustomerAdapter) Apply(ctx context.Context, localID string, change InboundChange) error {
	p, err := payloadAs[CustomerPayload](change)
	if err != nil {
		return err
	}
	c, err := a.Customers.FindByID(ctx, localID)
	if err != nil {
		return err
	}
	c.FirstName = p.FirstName
	c.LastName = p.LastName
	c.Email = p.Email
	c.Phone = p.Phone
	c.LastSyncedFrom = string(change.Platform)
	return a.Service.Update(ctx, c, SyncOnly(change.Platform.Opposite()))
}

func (a *CustomerAdapter) Delete(ctx context.Context, localID string, change InboundChange) error {
	c, err := a.Customers.FindByID(ctx, localID)
	if err != nil {
		return err
	}
	return a.Service.Delete(ctx, c, SyncOnly(change.Platform.Opposite()))
}

// --- package templates ---

type TemplateAdapter struct {
	Templates      entity.PackageTemplateRepository
	Service        *PackageTemplateService
	DefaultOwnerID string
}

func (a *TemplateAdapter) Find(ctx context.Context, platform entity.Platform, platformID string) (string, error) {
	var t *entity.PackageTemplate
	var err error
	switch platform {
	case entity.PlatformPipedrive:
		pid, perr := parsePipedriveID(platformID)
		if perr != nil {
			return "", perr
		}
		t, err = a.Templates.FindByPipedriveID(ctx, pid)
	case entity.PlatformStripe:
		t, err = a.Templates.FindByStripeProductID(ctx, platformID)
	}
	if errors.Is(err, entity.ErrTemplateNotFound) {
		return "", ErrLocalNotFound
	}
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

func (a *TemplateAdapter) Create(ctx context.Context, change InboundChange) error {
	p, err := payloadAs[TemplatePayload](change)
	if err != nil {
		return err
	}
	t, err := entity.NewPackageTemplate(a.DefaultOwnerID, p.Name, p.Description, p.UnitPriceCents, string(change.Platform))
	if err != nil {
		return err
	}
	switch change.Platform {
	case entity.PlatformPipedrive:
		if t.PipedriveID, err = parsePipedriveID(change.PlatformID); err != nil {
			return err
		}
		t.PipedriveSynced = true
	case entity.PlatformStripe:
		t.StripeProductID = change.PlatformID
		t.StripeSynced = true
	}
	return a.Service.Create(ctx, t, SyncOnly(change.Platform.Opposite()))
}

func (a *TemplateAdapter) Diff(ctx context.Context, localID string, change InboundChange) (bool, error) {
	p, err := payloadAs[TemplatePayload](change)
	if err != nil {
		return false, err
	}
	t, err := a.Templates.FindByID(ctx, localID)
	if err != nil {
		return false, err
	}
	// A price-only change (Stripe price.* events) carries no name; empty
	// fields mean "unknown", not "cleared".
	return (p.Name != "" && t.Name != p.Name) ||
		(p.Name != "" && t.Description != p.Description) ||
		(p.UnitPriceCents != 0 && t.UnitPriceCents != p.UnitPriceCents), nil
}

func (a *TemplateAdapter) Apply(ctx context.Context, localID string, change InboundChange) error {
	p, err := payloadAs[TemplatePayload](change)
	if err != nil {
		return err
	}
	t, err := a.Templates.FindByID(ctx, localID)
	if err != nil {
		return err
	}
	if p.Name != "" {
		t.Name = p.Name
		t.Description = p.Description
	}
	if p.UnitPriceCents != 0 {
		t.UnitPriceCents = p.UnitPriceCents
	}
	t.LastSyncedFrom = string(change.Platform)
	return a.Service.Update(ctx, t, SyncOnly(change.Platform.Opposite()))
}

func (a *TemplateAdapter) Delete(ctx context.Context, localID string, change InboundChange) error {
	t, err := a.Templates.FindByID(ctx, localID)
	if err != nil {
		return err
	}
	return a.Service.Delete(ctx, t, SyncOnly(change.Platform.Opposite()))
}

// --- package plans ---

type PlanAdapter struct {
	Plans          entity.PackagePlanRepository
	Packages       entity.ServicePackageRepository
	Templates      entity.PackageTemplateRepository
	Customers      entity.CustomerRepository
	Service        *PackagePlanService
	LineService    *ServicePackageService
	DefaultOwnerID string
}

func (a *PlanAdapter) Find(ctx context.Context, platform entity.Platform, platformID string) (string, error) {
	var p *entity.PackagePlan
	var err error
	switch platform {
	case entity.PlatformPipedrive:
		pid, perr := parsePipedriveID(platformID)
		if perr != nil {
			return "", perr
		}
		p, err = a.Plans.FindByPipedriveID(ctx, pid)
	case entity.PlatformStripe:
		p, err = a.Plans.FindByStripeSubscriptionID(ctx, platformID)
	}
	if errors.Is(err, entity.ErrPlanNotFound) {
		return "", ErrLocalNotFound
	}
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func (a *PlanAdapter) customerFor(ctx context.Context, p *PlanPayload) (*entity.Customer, error) {
	if p.PipedrivePersonID != 0 {
		return a.Customers.FindByPipedriveID(ctx, p.PipedrivePersonID)
	}
	if p.StripeCustomerID != "" {
		return a.Customers.FindByStripeID(ctx, p.StripeCustomerID)
	}
	return nil, entity.ErrCustomerNotFound
}

func (a *PlanAdapter) Create(ctx context.Context, change InboundChange) error {
	p, err := payloadAs[PlanPayload](change)
	if err != nil {
		return err
	}
	customer, err := a.customerFor(ctx, p)
	if err != nil {
		return fmt.Errorf("plan webhook references unknown customer: %w", err)
	}

	plan, err := entity.NewPackagePlan(customer.ID, a.DefaultOwnerID, p.Title, "MONTHLY", string(change.Platform))
	if err != nil {
		return err
	}
	if p.Status != "" {
		plan.Status = p.Status
	}
	switch change.Platform {
	case entity.PlatformPipedrive:
		if plan.PipedriveID, err = parsePipedriveID(change.PlatformID); err != nil {
			return err
		}
		plan.PipedriveSynced = true
	case entity.PlatformStripe:
		plan.StripeSubscriptionID = change.PlatformID
		plan.StripeSynced = true
	}
	opts := SyncOnly(change.Platform.Opposite())
	if err := a.Service.Create(ctx, plan, opts); err != nil {
		return err
	}
	return a.reconcileLines(ctx, plan, p.Items, change.Platform)
}

// localLines indexes the plan's service packages by template id.
func (a *PlanAdapter) localLines(ctx context.Context, planID string) (map[string]entity.ServicePackage, error) {
	lines, err := a.Packages.FindByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	byTemplate := make(map[string]entity.ServicePackage, len(lines))
	for _, sp := range lines {
		byTemplate[sp.TemplateID] = sp
	}
	return byTemplate, nil
}

// resolveTemplate maps a platform's product reference onto a local template.
func (a *PlanAdapter) resolveTemplate(ctx context.Context, item PlanItem) (*entity.PackageTemplate, error) {
	if item.PipedriveProductID != 0 {
		return a.Templates.FindByPipedriveID(ctx, item.PipedriveProductID)
	}
	if item.StripePriceID != "" {
		return a.Templates.FindByStripePriceID(ctx, item.StripePriceID)
	}
	return nil, entity.ErrTemplateNotFound
}

func (a *PlanAdapter) Diff(ctx context.Context, localID string, change InboundChange) (bool, error) {
	p, err := payloadAs[PlanPayload](change)
	if err != nil {
		return false, err
	}
	plan, err := a.Plans.FindByID(ctx, localID)
	if err != nil {
		return false, err
	}
	// Stripe subscriptions carry no title; an empty one means "unknown".
	if p.Title != "" && plan.Title != p.Title {
		return true, nil
	}
	if p.Status != "" && plan.Status != p.Status {
		return true, nil
	}

	local, err := a.localLines(ctx, localID)
	if err != nil {
		return false, err
	}
	if len(local) != len(p.Items) {
		return true, nil
	}
	for _, item := range p.Items {
		t, err := a.resolveTemplate(ctx, item)
		if err != nil {
			return true, nil // refers to a product we don't have: changed
		}
		sp, ok := local[t.ID]
		if !ok || sp.Quantity != item.Quantity {
			return true, nil
		}
		if item.PriceCents != 0 && sp.CostCents != item.PriceCents {
			return true, nil
		}
	}
	return false, nil
}

func (a *PlanAdapter) Apply(ctx context.Context, localID string, change InboundChange) error {
	p, err := payloadAs[PlanPayload](change)
	if err != nil {
		return err
	}
	plan, err := a.Plans.FindByID(ctx, localID)
	if err != nil {
		return err
	}
	if p.Title != "" {
		plan.Title = p.Title
	}
	if p.Status != "" {
		plan.Status = p.Status
	}
	plan.LastSyncedFrom = string(change.Platform)
	opts := SyncOnly(change.Platform.Opposite())
	if err := a.Service.Update(ctx, plan, opts); err != nil {
		return err
	}
	return a.reconcileLines(ctx, plan, p.Items, change.Platform)
}

// reconcileLines makes the local service packages match the platform's item
// set: create the missing, update the drifted, delete the removed. Each
// write syncs only to the opposite platform.
func (a *PlanAdapter) reconcileLines(ctx context.Context, plan *entity.PackagePlan, items []PlanItem, from entity.Platform) error {
	local, err := a.localLines(ctx, plan.ID)
	if err != nil {
		return err
	}
	opts := SyncOnly(from.Opposite())
	seen := make(map[string]bool, len(items))

	for _, item := range items {
		t, err := a.resolveTemplate(ctx, item)
		if err != nil {
			return fmt.Errorf("plan item references unknown product: %w", err)
		}
		seen[t.ID] = true

		sp, ok := local[t.ID]
		if !ok {
			line, err := entity.NewServicePackage(plan.ID, t.ID, item.Quantity, item.PriceCents, string(from))
			if err != nil {
				return err
			}
			if item.PriceCents == 0 {
				line.CostCents = t.UnitPriceCents
			}
			if err := a.LineService.Create(ctx, line, opts); err != nil {
				return err
			}
			continue
		}
		if sp.Quantity != item.Quantity || (item.PriceCents != 0 && sp.CostCents != item.PriceCents) {
			sp.Quantity = item.Quantity
			if item.PriceCents != 0 {
				sp.CostCents = item.PriceCents
			}
			sp.LastSyncedFrom = string(from)
			if err := a.LineService.Update(ctx, &sp, opts); err != nil {
				return err
			}
		}
	}

	for templateID, sp := range local {
		if !seen[templateID] {
			if err := a.LineService.Delete(ctx, &sp, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *PlanAdapter) Delete(ctx context.Context, localID string, change InboundChange) error {
	plan, err := a.Plans.FindByID(ctx, localID)
	if err != nil {
		return err
	}
	return a.Service.Delete(ctx, plan, SyncOnly(change.Platform.Opposite()))
}

// --- service packages ---

// ServicePackageAdapter handles Stripe subscription-item changes. Pipedrive
// has no webhook for deal-product attachments; those arrive folded into the
// deal update and are reconciled by PlanAdapter.
type ServicePackageAdapter struct {
	Packages entity.ServicePackageRepository
	Service  *ServicePackageService
}

func (a *ServicePackageAdapter) Find(ctx context.Context, platform entity.Platform, platformID string) (string, error) {
	if platform != entity.PlatformStripe {
		return "", ErrLocalNotFound
	}
	sp, err := a.Packages.FindByStripeItemID(ctx, platformID)
	if errors.Is(err, entity.ErrServicePackageNotFound) {
		return "", ErrLocalNotFound
	}
	if err != nil {
		return "", err
	}
	return sp.ID, nil
}

func (a *ServicePackageAdapter) Create(ctx context.Context, change InboundChange) error {
	// Item creates arrive inside the subscription payload and are handled
	// by the plan reconciliation; a bare item create has no plan context.
	return fmt.Errorf("service package create must arrive via its plan")
}

func (a *ServicePackageAdapter) Diff(ctx context.Context, localID string, change InboundChange) (bool, error) {
	p, err := payloadAs[ServicePackagePayload](change)
	if err != nil {
		return false, err
	}
	sp, err := a.Packages.FindByID(ctx, localID)
	if err != nil {
		return false, err
	}
	return sp.Quantity != p.Quantity ||
		(p.PriceCents != 0 && sp.CostCents != p.PriceCents), nil
}

func (a *ServicePackageAdapter) Apply(ctx context.Context, localID string, change InboundChange) error {
	p, err := payloadAs[ServicePackagePayload](change)
	if err != nil {
		return err
	}
	sp, err := a.Packages.FindByID(ctx, localID)
	if err != nil {
		return err
	}
	sp.Quantity = p.Quantity
	if p.PriceCents != 0 {
		sp.CostCents = p.PriceCents
	}
	sp.LastSyncedFrom = string(change.Platform)
	return a.Service.Update(ctx, sp, SyncOnly(change.Platform.Opposite()))
}

func (a *ServicePackageAdapter) Delete(ctx context.Context, localID string, change InboundChange) error {
	sp, err := a.Packages.FindByID(ctx, localID)
	if err != nil {
		return err
	}
	return a.Service.Delete(ctx, sp, SyncOnly(change.Platform.Opposite()))
}

// --- leads ---

type LeadAdapter struct {
	Leads          entity.LeadRepository
	Customers      entity.CustomerRepository
	Service        *LeadService
	DefaultOwnerID string
}

func (a *LeadAdapter) Find(ctx context.Context, platform entity.Platform, platformID string) (string, error) {
	if platform != entity.PlatformPipedrive {
		return "", ErrLocalNotFound
	}
	l, err := a.Leads.FindByPipedriveID(ctx, platformID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return "", ErrLocalNotFound
	}
	if err != nil {
		return "", err
	}
	return l.ID, nil
}

func (a *LeadAdapter) Create(ctx context.Context, change InboundChange) error {
	p, err := payloadAs[LeadPayload](change)
	if err != nil {
		return err
	}
	customer, err := a.Customers.FindByPipedriveID(ctx, p.PipedrivePersonID)
	if err != nil {
		return fmt.Errorf("lead webhook references unknown person: %w", err)
	}
	l, err := entity.NewLead(customer.ID, a.DefaultOwnerID, p.Title, p.ValueCents, string(change.Platform))
	if err != nil {
		return err
	}
	l.PipedriveID = change.PlatformID
	l.PipedriveSynced = true
	return a.Service.Create(ctx, l, SyncNone())
}

func (a *LeadAdapter) Diff(ctx context.Context, localID string, change InboundChange) (bool, error) {
	p, err := payloadAs[LeadPayload](change)
	if err != nil {
		return false, err
	}
	l, err := a.Leads.FindByID(ctx, localID)
	if err != nil {
		return false, err
	}
	return l.Title != p.Title ||
		(p.ValueCents != 0 && l.ValueCents != p.ValueCents), nil
}

func (a *LeadAdapter) Apply(ctx context.Context, localID string, change InboundChange) error {
	p, err := payloadAs[LeadPayload](change)
	if err != nil {
		return err
	}
	l, err := a.Leads.FindByID(ctx, localID)
	if err != nil {
		return err
	}
	l.Title = p.Title
	if p.ValueCents != 0 {
		l.ValueCents = p.ValueCents
	}
	l.LastSyncedFrom = string(change.Platform)
	return a.Service.Update(ctx, l, SyncNone())
}

func (a *LeadAdapter) Delete(ctx context.Context, localID string, change InboundChange) error {
	l, err := a.Leads.FindByID(ctx, localID)
	if err != nil {
		return err
	}
	return a.Service.Delete(ctx, l, SyncNone())
}
