package usecase

import (
	"context"
	"fmt"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/queue"
)

// LeadService owns local lead writes. Leads only exist in Pipedrive, so it
// forces the Stripe flag off no matter what the caller asked for.
type LeadService struct {
	Repo       entity.LeadRepository
	Dispatcher *SyncDispatcher
}

func NewLeadService(repo entity.LeadRepository, dispatcher *SyncDispatcher) *LeadService {
	return &LeadService{Repo: repo, Dispatcher: dispatcher}
}

func (s *LeadService) Create(ctx context.Context, l *entity.Lead, opts SyncOptions) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Create(ctx, l); err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	opts.Stripe = false
	return s.Dispatcher.Dispatch(ctx, s.ref(l), entity.ActionCreate, opts)
}

func (s *LeadService) Update(ctx context.Context, l *entity.Lead, opts SyncOptions) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, l); err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	opts.Stripe = false
	return s.Dispatcher.Dispatch(ctx, s.ref(l), entity.ActionUpdate, opts)
}

func (s *LeadService) Delete(ctx context.Context, l *entity.Lead, opts SyncOptions) error {
	if err := s.Repo.Delete(ctx, l.ID); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	opts.Stripe = false
	ref := s.ref(l)
	ref.Deleted = &queue.DeletedRefs{PipedriveRef: l.PipedriveID}
	return s.Dispatcher.Dispatch(ctx, ref, entity.ActionDelete, opts)
}

func (s *LeadService) ref(l *entity.Lead) SyncRef {
	return SyncRef{Type: entity.TypeLead, ID: l.ID, OwnerID: l.OwnerID}
}
