package usecase

import (
	"context"
	"fmt"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/queue"
)

// PackageTemplateService owns local writes to the sellable offerings.
type PackageTemplateService struct {
	Repo       entity.PackageTemplateRepository
	Dispatcher *SyncDispatcher
}

func NewPackageTemplateService(repo entity.PackageTemplateRepository, dispatcher *SyncDispatcher) *PackageTemplateService {
	return &PackageTemplateService{Repo: repo, Dispatcher: dispatcher}
}

func (s *PackageTemplateService) Create(ctx context.Context, t *entity.PackageTemplate, opts SyncOptions) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return fmt.Errorf("failed to create package template: %w", err)
	}
	return s.Dispatcher.Dispatch(ctx, s.ref(t), entity.ActionCreate, opts)
}

func (s *PackageTemplateService) Update(ctx context.Context, t *entity.PackageTemplate, opts SyncOptions) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, t); err != nil {
		return fmt.Errorf("failed to update package template: %w", err)
	}
	return s.Dispatcher.Dispatch(ctx, s.ref(t), entity.ActionUpdate, opts)
}

func (s *PackageTemplateService) Delete(ctx context.Context, t *entity.PackageTemplate, opts SyncOptions) error {
	if err := s.Repo.Delete(ctx, t.ID); err != nil {
		return fmt.Errorf("failed to delete package template: %w", err)
	}
	ref := s.ref(t)
	ref.Deleted = &queue.DeletedRefs{
		PipedriveID:   t.PipedriveID,
		StripeID:      t.StripeProductID,
		StripePriceID: t.StripePriceID,
	}
	return s.Dispatcher.Dispatch(ctx, ref, entity.ActionDelete, opts)
}

func (s *PackageTemplateService) ref(t *entity.PackageTemplate) SyncRef {
	return SyncRef{Type: entity.TypePackageTemplate, ID: t.ID, OwnerID: t.OwnerID}
}

// PackagePlanService owns local writes to plans and their service-package
// lines.
type PackagePlanService struct {
	Repo       entity.PackagePlanRepository
	Packages   entity.ServicePackageRepository
	Dispatcher *SyncDispatcher
}

func NewPackagePlanService(repo entity.PackagePlanRepository, packages entity.ServicePackageRepository, dispatcher *SyncDispatcher) *PackagePlanService {
	return &PackagePlanService{Repo: repo, Packages: packages, Dispatcher: dispatcher}
}

func (s *PackagePlanService) Create(ctx context.Context, p *entity.PackagePlan, opts SyncOptions) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return fmt.Errorf("failed to create package plan: %w", err)
	}
	return s.Dispatcher.Dispatch(ctx, s.ref(p), entity.ActionCreate, opts)
}

func (s *PackagePlanService) Update(ctx context.Context, p *entity.PackagePlan, opts SyncOptions) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update package plan: %w", err)
	}
	return s.Dispatcher.Dispatch(ctx, s.ref(p), entity.ActionUpdate, opts)
}

// Delete removes the plan and its service packages. The platform side
// (subscription cancel, deal delete) follows via the dispatched job.
func (s *PackagePlanService) Delete(ctx context.Context, p *entity.PackagePlan, opts SyncOptions) error {
	lines, err := s.Packages.FindByPlanID(ctx, p.ID)
	if err == nil {
		for _, sp := range lines {
			if err := s.Packages.Delete(ctx, sp.ID); err != nil {
				return fmt.Errorf("failed to delete service package %s: %w", sp.ID, err)
			}
		}
	}
	if err := s.Repo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to delete package plan: %w", err)
	}
	ref := s.ref(p)
	ref.Deleted = &queue.DeletedRefs{PipedriveID: p.PipedriveID, StripeID: p.StripeSubscriptionID}
	return s.Dispatcher.Dispatch(ctx, ref, entity.ActionDelete, opts)
}

func (s *PackagePlanService) ref(p *entity.PackagePlan) SyncRef {
	return SyncRef{Type: entity.TypePackagePlan, ID: p.ID, OwnerID: p.OwnerID}
}

// ServicePackageService owns local writes to individual plan lines.
type ServicePackageService struct {
	Repo       entity.ServicePackageRepository
	Plans      entity.PackagePlanRepository
	Dispatcher *SyncDispatcher
}

func NewServicePackageService(repo entity.ServicePackageRepository, plans entity.PackagePlanRepository, dispatcher *SyncDispatcher) *ServicePackageService {
	return &ServicePackageService{Repo: repo, Plans: plans, Dispatcher: dispatcher}
}

func (s *ServicePackageService) Create(ctx context.Context, sp *entity.ServicePackage, opts SyncOptions) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Create(ctx, sp); err != nil {
		return fmt.Errorf("failed to create service package: %w", err)
	}
	return s.Dispatcher.Dispatch(ctx, s.ref(ctx, sp), entity.ActionCreate, opts)
}

func (s *ServicePackageService) Update(ctx context.Context, sp *entity.ServicePackage, opts SyncOptions) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, sp); err != nil {
		return fmt.Errorf("failed to update service package: %w", err)
	}
	return s.Dispatcher.Dispatch(ctx, s.ref(ctx, sp), entity.ActionUpdate, opts)
}

func (s *ServicePackageService) Delete(ctx context.Context, sp *entity.ServicePackage, opts SyncOptions) error {
	var dealID int64
	if plan, err := s.Plans.FindByID(ctx, sp.PlanID); err == nil {
		dealID = plan.PipedriveID
	}
	if err := s.Repo.Delete(ctx, sp.ID); err != nil {
		return fmt.Errorf("failed to delete service package: %w", err)
	}
	ref := s.ref(ctx, sp)
	ref.Deleted = &queue.DeletedRefs{
		PipedriveID: sp.PipedriveAttachmentID,
		DealID:      dealID,
		StripeID:    sp.StripeSubscriptionItemID,
	}
	return s.Dispatcher.Dispatch(ctx, ref, entity.ActionDelete, opts)
}

func (s *ServicePackageService) ref(ctx context.Context, sp *entity.ServicePackage) SyncRef {
	ownerID := ""
	if plan, err := s.Plans.FindByID(ctx, sp.PlanID); err == nil {
		ownerID = plan.OwnerID
	}
	return SyncRef{Type: entity.TypeServicePackage, ID: sp.ID, OwnerID: ownerID}
}
