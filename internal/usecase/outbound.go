package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/queue"
)

// OutboundSyncer executes queued push jobs against the external platforms.
// Routing is a dispatch table over (entity type, action, platform); string
// switches live nowhere else. Platform ids returned by a push are persisted
// through the repositories' SetPlatformIDs, which never re-enters the
// dispatcher, so a successful push cannot start another sync.
type OutboundSyncer struct {
	Customers entity.CustomerRepository
	Templates entity.PackageTemplateRepository
	Plans     entity.PackagePlanRepository
	Packages  entity.ServicePackageRepository
	Leads     entity.LeadRepository
	Owners    entity.OwnerRepository

	CRM     CRMGateway
	Billing BillingGateway

	table map[jobKey]jobFunc
}

type jobKey struct {
	t entity.EntityType
	a entity.SyncAction
	p entity.Platform
}

type jobFunc func(ctx context.Context, job queue.SyncJob) error

func NewOutboundSyncer(
	customers entity.CustomerRepository,
	templates entity.PackageTemplateRepository,
	plans entity.PackagePlanRepository,
	packages entity.ServicePackageRepository,
	leads entity.LeadRepository,
	owners entity.OwnerRepository,
	crm CRMGateway,
	billing BillingGateway,
) *OutboundSyncer {
	s := &OutboundSyncer{
		Customers: customers,
		Templates: templates,
		Plans:     plans,
		Packages:  packages,
		Leads:     leads,
		Owners:    owners,
		CRM:       crm,
		Billing:   billing,
	}

	pd, st := entity.PlatformPipedrive, entity.PlatformStripe
	s.table = map[jobKey]jobFunc{
		{entity.TypeCustomer, entity.ActionCreate, pd}: s.customerCreatePipedrive,
		{entity.TypeCustomer, entity.ActionUpdate, pd}: s.customerUpdatePipedrive,
		{entity.TypeCustomer, entity.ActionDelete, pd}: s.customerDeletePipedrive,
		{entity.TypeCustomer, entity.ActionCreate, st}: s.customerCreateStripe,
		{entity.TypeCustomer, entity.ActionUpdate, st}: s.customerUpdateStripe,
		{entity.TypeCustomer, entity.ActionDelete, st}: s.customerDeleteStripe,

		{entity.TypePackageTemplate, entity.ActionCreate, pd}: s.templateCreatePipedrive,
		{entity.TypePackageTemplate, entity.ActionUpdate, pd}: s.templateUpdatePipedrive,
		{entity.TypePackageTemplate, entity.ActionDelete, pd}: s.templateDeletePipedrive,
		{entity.TypePackageTemplate, entity.ActionCreate, st}: s.templateCreateStripe,
		{entity.TypePackageTemplate, entity.ActionUpdate, st}: s.templateUpdateStripe,
		{entity.TypePackageTemplate, entity.ActionDelete, st}: s.templateDeleteStripe,

		{entity.TypePackagePlan, entity.ActionCreate, pd}: s.planCreatePipedrive,
		{entity.TypePackagePlan, entity.ActionUpdate, pd}: s.planUpdatePipedrive,
		{entity.TypePackagePlan, entity.ActionDelete, pd}: s.planDeletePipedrive,
		{entity.TypePackagePlan, entity.ActionCreate, st}: s.planCreateStripe,
		{entity.TypePackagePlan, entity.ActionUpdate, st}: s.planUpdateStripe,
		{entity.TypePackagePlan, entity.ActionDelete, st}: s.planDeleteStripe,

		{entity.TypeServicePackage, entity.ActionCreate, pd}: s.packageCreatePipedrive,
		{entity.TypeServicePackage, entity.ActionUpdate, pd}: s.packageUpdatePipedrive,
		{entity.TypeServicePackage, entity.ActionDelete, pd}: s.packageDeletePipedrive,
		{entity.TypeServicePackage, entity.ActionCreate, st}: s.packageCreateStripe,
		{entity.TypeServicePackage, entity.ActionUpdate, st}: s.packageUpdateStripe,
		{entity.TypeServicePackage, entity.ActionDelete, st}: s.packageDeleteStripe,

		{entity.TypeLead, entity.ActionCreate, pd}: s.leadCreatePipedrive,
		{entity.TypeLead, entity.ActionUpdate, pd}: s.leadUpdatePipedrive,
		{entity.TypeLead, entity.ActionDelete, pd}: s.leadDeletePipedrive,
	}

	return s
}

// Execute satisfies queue.SyncExecutor.
func (s *OutboundSyncer) Execute(ctx context.Context, job queue.SyncJob) error {
	fn, ok := s.table[jobKey{job.EntityType, job.Action, job.Platform}]
	if !ok {
		// Not retryable; log and ack.
		log.Printf("⚠️ [SYNC] no handler for %s %s on %s, dropping job", job.Action, job.EntityType, job.Platform)
		return nil
	}
	return fn(ctx, job)
}

// owner resolves the owning user for Pipedrive auth. Missing owners fall
// back to the shared company key (nil owner).
func (s *OutboundSyncer) owner(ctx context.Context, ownerID string) *entity.Owner {
	if ownerID == "" {
		return nil
	}
	owner, err := s.Owners.FindByID(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, entity.ErrOwnerNotFound) {
			log.Printf("⚠️ [SYNC] owner lookup %s failed: %v", ownerID, err)
		}
		return nil
	}
	return owner
}

// --- customers ---

func (s *OutboundSyncer) customerCreatePipedrive(ctx context.Context, job queue.SyncJob) error {
	c, err := s.Customers.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}
	if c.PipedriveID != 0 {
		return nil // already pushed, e.g. a retried duplicate
	}
	pid, err := s.CRM.CreatePerson(ctx, s.owner(ctx, job.OwnerID), c)
	if err != nil {
		return err
	}
	return s.Customers.SetPlatformIDs(ctx, c.ID, pid, c.StripeCustomerID)
}

func (s *OutboundSyncer) customerUpdatePipedrive(ctx context.Context, job queue.SyncJob) error {
	c, err := s.Customers.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}
	if c.PipedriveID == 0 {
		return s.customerCreatePipedrive(ctx, job)
	}
	return s.CRM.UpdatePerson(ctx, s.owner(ctx, job.OwnerID), c)
}

func (s *OutboundSyncer) customerDeletePipedrive(ctx context.Context, job queue.SyncJob) error {
	if job.Deleted == nil || job.Deleted.PipedriveID == 0 {
		return nil // the row never made it to Pipedrive
	}
	return s.CRM.DeletePerson(ctx, s.owner(ctx, job.OwnerID), job.Deleted.PipedriveID)
}

func (s *OutboundSyncer) customerCreateStripe(ctx context.Context, job queue.SyncJob) error {
	c, err := s.Customers.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}
	if c.StripeCustomerID != "" {
		return nil
	}
	sid, err := s.Billing.CreateCustomer(ctx, c)
	if err != nil {
		return err
	}
	return s.Customers.SetPlatformIDs(ctx, c.ID, c.PipedriveID, sid)
}

func (s *OutboundSyncer) customerUpdateStripe(ctx context.Context, job queue.SyncJob) error {
	c, err := s.Customers.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}
	if c.StripeCustomerID == "" {
		return s.customerCreateStripe(ctx, job)
	}
	return s.Billing.UpdateCustomer(ctx, c)
}

func (s *OutboundSyncer) customerDeleteStripe(ctx context.Context, job queue.SyncJob) error {
	if job.Deleted == nil || job.Deleted.StripeID == "" {
		return nil
	}
	return s.Billing.DeleteCustomer(ctx, job.Deleted.StripeID)
}

// --- package templates ---

func (s *OutboundSyncer) templateCreatePipedrive(ctx context.Context, job queue.SyncJob) error {
	t, err := s.Templates.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}
	if t.PipedriveID != 0 {
		return nil
	}
	pid, err := s.CRM.CreateProduct(ctx, s.owner(ctx, job.OwnerID), t)
	if err != nil {
		return err
	}
	return s.Templates.SetPlatformIDs(ctx, t.ID, pid, t.StripeProductID, t.StripePriceID)
}

func (s *OutboundSyncer) templateUpdatePipedrive(ctx context.Context, job queue.SyncJob) error {
	t, err := s.Templates.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}
	if t.PipedriveID == 0 {
		return s.templateCreatePipedrive(ctx, job)
	}
	return s.CRM.UpdateProduct(ctx, s.owner(ctx, job.OwnerID), t)
}

func (s *OutboundSyncer) templateDeletePipedrive(ctx context.Context, job queue.SyncJob) error {
	if job.Deleted == nil || job.Deleted.PipedriveID == 0 {
		return nil
	}
	return s.CRM.DeleteProduct(ctx, s.owner(ctx, job.OwnerID), job.Deleted.PipedriveID)
}

func (s *OutboundSyncer) templateCreateStripe(ctx context.Context, job queue.SyncJob) error {
	t, err := s.Templates.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}
	if t.StripeProductID != "" {
		return nil
	}
	productID, priceID, err := s.Billing.CreateProduct(ctx, t)
	if err != nil {
		return err
	}
	return s.Templates.SetPlatformIDs(ctx, t.ID, t.PipedriveID, productID, priceID)
}

func (s *OutboundSyncer) templateUpdateStripe(ctx context.Context, job queue.SyncJob) error {
	t, err := s.Templates.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}
	if t.StripeProductID == "" {
		return s.templateCreateStripe(ctx, job)
	}
	return s.Billing.UpdateProduct(ctx, t)
}

func (s *OutboundSyncer) templateDeleteStripe(ctx context.Context, job queue.SyncJob) error {
	if job.Deleted == nil || job.Deleted.StripeID == "" {
		return nil
	}
	return s.Billing.ArchiveProduct(ctx, job.Deleted.StripeID)
}

// --- package plans ---

func (s *OutboundSyncer) planCreatePipedrive(ctx context.Context, job queue.SyncJob) error {
	p, err := s.Plans.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if p.PipedriveID != 0 {
		return nil
	}
	c, err := s.Customers.FindByID(ctx, p.CustomerID)
	if err != nil {
		return fmt.Errorf("load plan customer: %w", err)
	}
	if c.PipedriveID == 0 {
		// Person push hasn't landed yet; fail so the retry picks it up
		// after the customer's own sync completes.
		return fmt.Errorf("customer %s has no pipedrive person yet", c.ID)
	}
	dealID, err := s.CRM.CreateDeal(ctx, s.owner(ctx, job.OwnerID), p, c.PipedriveID)
	if err != nil {
		return err
	}
	if err := s.Plans.SetPlatformIDs(ctx, p.ID, dealID, p.StripeSubscriptionID); err != nil {
		return err
	}
	return s.attachPlanProducts(ctx, job, p.ID, dealID)
}

// attachPlanProducts mirrors the plan's service packages onto the deal.
func (s *OutboundSyncer) attachPlanProducts(ctx context.Context, job queue.SyncJob, planID string, dealID int64) error {
	lines, err := s.Packages.FindByPlanID(ctx, planID)
	if err != nil {
		return nil
	}
	owner := s.owner(ctx, job.OwnerID)
	for _, sp := range lines {
		if sp.PipedriveAttachmentID != 0 {
			continue
		}
		t, err := s.Templates.FindByID(ctx, sp.TemplateID)
		if err != nil || t.PipedriveID == 0 {
			continue
		}
		attachID, err := s.CRM.AttachProductToDeal(ctx, owner, dealID, t.PipedriveID, sp.Quantity, sp.CostCents)
		if err != nil {
			log.Printf("⚠️ [SYNC] attach product %s to deal %d failed: %v", sp.ID, dealID, err)
			continue
		}
		if err := s.Packages.SetPlatformIDs(ctx, sp.ID, attachID, sp.StripeSubscriptionItemID); err != nil {
			return err
		}
	}
	return nil
}

func (s *OutboundSyncer) planUpdatePipedrive(ctx context.Context, job queue.SyncJob) error {
	p, err := s.Plans.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if p.PipedriveID == 0 {
		return s.planCreatePipedrive(ctx, job)
	}
	if err := s.CRM.UpdateDeal(ctx, s.owner(ctx, job.OwnerID), p); err != nil {
		return err
	}
	return s.attachPlanProducts(ctx, job, p.ID, p.PipedriveID)
}

func (s *OutboundSyncer) planDeletePipedrive(ctx context.Context, job queue.SyncJob) error {
	if job.Deleted == nil || job.Deleted.PipedriveID == 0 {
		return nil
	}
	return s.CRM.DeleteDeal(ctx, s.owner(ctx, job.OwnerID), job.Deleted.PipedriveID)
}

func (s *OutboundSyncer) planCreateStripe(ctx context.Context, job queue.SyncJob) error {
	p, err := s.Plans.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if p.StripeSubscriptionID != "" {
		return nil
	}
	c, err := s.Customers.FindByID(ctx, p.CustomerID)
	if err != nil {
		return fmt.Errorf("load plan customer: %w", err)
	}
	if c.StripeCustomerID == "" {
		return fmt.Errorf("customer %s has no stripe customer yet", c.ID)
	}

	lines, err := s.Packages.FindByPlanID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("load plan lines: %w", err)
	}
	priceIDs := make(map[string]string, len(lines))
	for _, sp := range lines {
		t, err := s.Templates.FindByID(ctx, sp.TemplateID)
		if err != nil {
			return fmt.Errorf("load template %s: %w", sp.TemplateID, err)
		}
		if t.StripePriceID == "" {
			return fmt.Errorf("template %s has no stripe price yet", t.ID)
		}
		priceIDs[sp.TemplateID] = t.StripePriceID
	}

	subID, itemIDs, err := s.Billing.CreateSubscription(ctx, p, c.StripeCustomerID, lines, priceIDs)
	if err != nil {
		return err
	}
	if err := s.Plans.SetPlatformIDs(ctx, p.ID, p.PipedriveID, subID); err != nil {
		return err
	}
	for _, sp := range lines {
		if itemID, ok := itemIDs[sp.ID]; ok {
			if err := s.Packages.SetPlatformIDs(ctx, sp.ID, sp.PipedriveAttachmentID, itemID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *OutboundSyncer) planUpdateStripe(ctx context.Context, job queue.SyncJob) error {
	p, err := s.Plans.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if p.StripeSubscriptionID == "" {
		return s.planCreateStripe(ctx, job)
	}
	// Stripe has no mutable title on subscriptions; quantity/price changes
	// travel as service-package updates. Nothing to push here beyond
	// cancellation, which is a delete.
	return nil
}

func (s *OutboundSyncer) planDeleteStripe(ctx context.Context, job queue.SyncJob) error {
	if job.Deleted == nil || job.Deleted.StripeID == "" {
		return nil
	}
	return s.Billing.CancelSubscription(ctx, job.Deleted.StripeID)
}

// --- service packages ---

func (s *OutboundSyncer) packageCreatePipedrive(ctx context.Context, job queue.SyncJob) error {
	sp, err := s.Packages.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load service package: %w", err)
	}
	if sp.PipedriveAttachmentID != 0 {
		return nil
	}
	p, err := s.Plans.FindByID(ctx, sp.PlanID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if p.PipedriveID == 0 {
		return fmt.Errorf("plan %s has no pipedrive deal yet", p.ID)
	}
	t, err := s.Templates.FindByID(ctx, sp.TemplateID)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}
	if t.PipedriveID == 0 {
		return fmt.Errorf("template %s has no pipedrive product yet", t.ID)
	}
	attachID, err := s.CRM.AttachProductToDeal(ctx, s.owner(ctx, job.OwnerID), p.PipedriveID, t.PipedriveID, sp.Quantity, sp.CostCents)
	if err != nil {
		return err
	}
	return s.Packages.SetPlatformIDs(ctx, sp.ID, attachID, sp.StripeSubscriptionItemID)
}

func (s *OutboundSyncer) packageUpdatePipedrive(ctx context.Context, job queue.SyncJob) error {
	sp, err := s.Packages.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load service package: %w", err)
	}
	if sp.PipedriveAttachmentID == 0 {
		return s.packageCreatePipedrive(ctx, job)
	}
	p, err := s.Plans.FindByID(ctx, sp.PlanID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	t, err := s.Templates.FindByID(ctx, sp.TemplateID)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}
	// Pipedrive attachments aren't updatable in place; replace it.
	owner := s.owner(ctx, job.OwnerID)
	if err := s.CRM.DetachProductFromDeal(ctx, owner, p.PipedriveID, sp.PipedriveAttachmentID); err != nil {
		return err
	}
	attachID, err := s.CRM.AttachProductToDeal(ctx, owner, p.PipedriveID, t.PipedriveID, sp.Quantity, sp.CostCents)
	if err != nil {
		return err
	}
	return s.Packages.SetPlatformIDs(ctx, sp.ID, attachID, sp.StripeSubscriptionItemID)
}

func (s *OutboundSyncer) packageDeletePipedrive(ctx context.Context, job queue.SyncJob) error {
	if job.Deleted == nil || job.Deleted.PipedriveID == 0 || job.Deleted.DealID == 0 {
		return nil
	}
	return s.CRM.DetachProductFromDeal(ctx, s.owner(ctx, job.OwnerID), job.Deleted.DealID, job.Deleted.PipedriveID)
}

func (s *OutboundSyncer) packageCreateStripe(ctx context.Context, job queue.SyncJob) error {
	sp, err := s.Packages.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load service package: %w", err)
	}
	if sp.StripeSubscriptionItemID != "" {
		return nil
	}
	p, err := s.Plans.FindByID(ctx, sp.PlanID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if p.StripeSubscriptionID == "" {
		return fmt.Errorf("plan %s has no stripe subscription yet", p.ID)
	}
	t, err := s.Templates.FindByID(ctx, sp.TemplateID)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}
	if t.StripePriceID == "" {
		return fmt.Errorf("template %s has no stripe price yet", t.ID)
	}
	itemID, err := s.Billing.CreateSubscriptionItem(ctx, p.StripeSubscriptionID, t.StripePriceID, sp.Quantity)
	if err != nil {
		return err
	}
	return s.Packages.SetPlatformIDs(ctx, sp.ID, sp.PipedriveAttachmentID, itemID)
}

func (s *OutboundSyncer) packageUpdateStripe(ctx context.Context, job queue.SyncJob) error {
	sp, err := s.Packages.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load service package: %w", err)
	}
	if sp.StripeSubscriptionItemID == "" {
		return s.packageCreateStripe(ctx, job)
	}
	return s.Billing.UpdateSubscriptionItem(ctx, sp.StripeSubscriptionItemID, sp.Quantity)
}

func (s *OutboundSyncer) packageDeleteStripe(ctx context.Context, job queue.SyncJob) error {
	if job.Deleted == nil || job.Deleted.StripeID == "" {
		return nil
	}
	return s.Billing.DeleteSubscriptionItem(ctx, job.Deleted.StripeID)
}

// --- leads ---

func (s *OutboundSyncer) leadCreatePipedrive(ctx context.Context, job queue.SyncJob) error {
	l, err := s.Leads.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load lead: %w", err)
	}
	if l.PipedriveID != "" {
		return nil
	}
	c, err := s.Customers.FindByID(ctx, l.CustomerID)
	if err != nil {
		return fmt.Errorf("load lead customer: %w", err)
	}
	if c.PipedriveID == 0 {
		return fmt.Errorf("customer %s has no pipedrive person yet", c.ID)
	}
	pid, err := s.CRM.CreateLead(ctx, s.owner(ctx, job.OwnerID), l, c.PipedriveID)
	if err != nil {
		return err
	}
	return s.Leads.SetPlatformIDs(ctx, l.ID, pid)
}

func (s *OutboundSyncer) leadUpdatePipedrive(ctx context.Context, job queue.SyncJob) error {
	l, err := s.Leads.FindByID(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("load lead: %w", err)
	}
	if l.PipedriveID == "" {
		return s.leadCreatePipedrive(ctx, job)
	}
	return s.CRM.UpdateLead(ctx, s.owner(ctx, job.OwnerID), l)
}

func (s *OutboundSyncer) leadDeletePipedrive(ctx context.Context, job queue.SyncJob) error {
	if job.Deleted == nil || job.Deleted.PipedriveRef == "" {
		return nil
	}
	return s.CRM.DeleteLead(ctx, s.owner(ctx, job.OwnerID), job.Deleted.PipedriveRef)
}
