package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/queue"
)

// CustomerService owns local customer writes. Every write persists first
// (local writes succeed regardless of downstream sync) and then hands off
// to the dispatcher with the caller's platform flags.
type CustomerService struct {
	Repo       entity.CustomerRepository
	Dispatcher *SyncDispatcher
	Tasks      TaskBoard
	Email      EmailService
}

func NewCustomerService(repo entity.CustomerRepository, dispatcher *SyncDispatcher, tasks TaskBoard, email EmailService) *CustomerService {
	return &CustomerService{Repo: repo, Dispatcher: dispatcher, Tasks: tasks, Email: email}
}

func (s *CustomerService) Create(ctx context.Context, c *entity.Customer, opts SyncOptions) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	s.sideEffects(ctx, c)

	return s.Dispatcher.Dispatch(ctx, s.ref(c), entity.ActionCreate, opts)
}

func (s *CustomerService) Update(ctx context.Context, c *entity.Customer, opts SyncOptions) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return s.Dispatcher.Dispatch(ctx, s.ref(c), entity.ActionUpdate, opts)
}

func (s *CustomerService) Delete(ctx context.Context, c *entity.Customer, opts SyncOptions) error {
	if err := s.Repo.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	ref := s.ref(c)
	ref.Deleted = &queue.DeletedRefs{PipedriveID: c.PipedriveID, StripeID: c.StripeCustomerID}
	return s.Dispatcher.Dispatch(ctx, ref, entity.ActionDelete, opts)
}

func (s *CustomerService) ref(c *entity.Customer) SyncRef {
	return SyncRef{Type: entity.TypeCustomer, ID: c.ID, OwnerID: c.OwnerID}
}

// sideEffects runs the new-customer extras: welcome email and a Monday.com
// onboarding item. Both are best effort.
func (s *CustomerService) sideEffects(ctx context.Context, c *entity.Customer) {
	if s.Email != nil {
		if err := s.Email.SendWelcome(c.Email, c.FullName()); err != nil {
			log.Printf("⚠️ welcome email to %s failed: %v", c.Email, err)
		}
	}
	if s.Tasks != nil {
		_, err := s.Tasks.CreateItem(ctx, "Onboarding", c.FullName(), map[string]string{
			"email": c.Email,
			"phone": c.Phone,
		})
		if err != nil {
			log.Printf("⚠️ monday item for %s failed: %v", c.FullName(), err)
		}
	}
}
