package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/queue"
)

func TestDispatchWithNoPlatformsDoesNothing(t *testing.T) {
	leases := new(MockSyncLeaseRepository)
	producer := new(MockSyncProducer)
	dispatcher := NewSyncDispatcher(leases, producer)

	err := dispatcher.Dispatch(context.Background(), SyncRef{Type: entity.TypeCustomer, ID: "cus-1"}, entity.ActionUpdate, SyncNone())

	assert.NoError(t, err)
	leases.AssertNotCalled(t, "FindForEntity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	leases.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	producer.AssertNotCalled(t, "PublishSync", mock.Anything, mock.Anything)
}

func TestDispatchRegistersLeaseBeforePublishing(t *testing.T) {
	leases := new(MockSyncLeaseRepository)
	producer := new(MockSyncProducer)
	dispatcher := NewSyncDispatcher(leases, producer)

	leases.On("FindForEntity", mock.Anything, entity.TypeCustomer, entity.ActionCreate, "cus-1").Return(nil, entity.ErrLeaseNotFound)

	var saved *entity.SyncLease
	leases.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*entity.SyncLease)
	}).Return(nil)

	var jobs []queue.SyncJob
	producer.On("PublishSync", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		jobs = append(jobs, args.Get(1).(queue.SyncJob))
	}).Return(nil)

	err := dispatcher.Dispatch(context.Background(), SyncRef{Type: entity.TypeCustomer, ID: "cus-1", OwnerID: "own-1"}, entity.ActionCreate, SyncBoth())

	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.True(t, saved.ExpectPipedriveEcho)
	assert.True(t, saved.ExpectStripeEcho)
	assert.False(t, saved.PipedriveEchoed)
	assert.False(t, saved.StripeEchoed)
	assert.Equal(t, "cus-1", saved.EntityID)

	assert.Len(t, jobs, 2)
	assert.Equal(t, entity.PlatformPipedrive, jobs[0].Platform)
	assert.Equal(t, entity.PlatformStripe, jobs[1].Platform)
	assert.Equal(t, "own-1", jobs[0].OwnerID)
}

func TestDispatchToSinglePlatformPreArmsTheOther(t *testing.T) {
	leases := new(MockSyncLeaseRepository)
	producer := new(MockSyncProducer)
	dispatcher := NewSyncDispatcher(leases, producer)

	leases.On("FindForEntity", mock.Anything, entity.TypePackagePlan, entity.ActionUpdate, "plan-1").Return(nil, entity.ErrLeaseNotFound)

	var saved *entity.SyncLease
	leases.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*entity.SyncLease)
	}).Return(nil)

	var jobs []queue.SyncJob
	producer.On("PublishSync", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		jobs = append(jobs, args.Get(1).(queue.SyncJob))
	}).Return(nil)

	err := dispatcher.Dispatch(context.Background(), SyncRef{Type: entity.TypePackagePlan, ID: "plan-1"}, entity.ActionUpdate, SyncOnly(entity.PlatformStripe))

	assert.NoError(t, err)
	// The platform we never pushed to counts as already echoed, so the lease
	// completes on Stripe's webhook alone.
	assert.True(t, saved.PipedriveEchoed)
	assert.False(t, saved.StripeEchoed)
	assert.True(t, saved.ExpectStripeEcho)
	assert.False(t, saved.ExpectPipedriveEcho)

	assert.Len(t, jobs, 1)
	assert.Equal(t, entity.PlatformStripe, jobs[0].Platform)
}

func TestDispatchFoldsIntoExistingLease(t *testing.T) {
	leases := new(MockSyncLeaseRepository)
	producer := new(MockSyncProducer)
	dispatcher := NewSyncDispatcher(leases, producer)

	existing := entity.NewSyncLease(entity.TypeCustomer, entity.ActionUpdate, "cus-1", true, true)
	existing.MarkEchoed(entity.PlatformPipedrive)

	leases.On("FindForEntity", mock.Anything, entity.TypeCustomer, entity.ActionUpdate, "cus-1").Return(existing, nil)
	leases.On("Save", mock.Anything, existing).Return(nil)
	producer.On("PublishSync", mock.Anything, mock.Anything).Return(nil)

	err := dispatcher.Dispatch(context.Background(), SyncRef{Type: entity.TypeCustomer, ID: "cus-1"}, entity.ActionUpdate, SyncOnly(entity.PlatformPipedrive))

	assert.NoError(t, err)
	// Re-pushing to Pipedrive re-arms its echo on the in-flight lease.
	assert.False(t, existing.PipedriveEchoed)
	assert.True(t, existing.ExpectPipedriveEcho)
	leases.AssertCalled(t, "Save", mock.Anything, existing)
}

func TestDispatchKeepsGoingWhenPublishFails(t *testing.T) {
	leases := new(MockSyncLeaseRepository)
	producer := new(MockSyncProducer)
	dispatcher := NewSyncDispatcher(leases, producer)

	leases.On("FindForEntity", mock.Anything, entity.TypeLead, entity.ActionCreate, "lead-1").Return(nil, entity.ErrLeaseNotFound)
	leases.On("Save", mock.Anything, mock.Anything).Return(nil)
	producer.On("PublishSync", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	// The local write already happened; a broker failure must not bubble up.
	err := dispatcher.Dispatch(context.Background(), SyncRef{Type: entity.TypeLead, ID: "lead-1"}, entity.ActionCreate, SyncOnly(entity.PlatformPipedrive))

	assert.NoError(t, err)
}

func TestDispatchFailsWhenLeaseCannotBeSaved(t *testing.T) {
	leases := new(MockSyncLeaseRepository)
	producer := new(MockSyncProducer)
	dispatcher := NewSyncDispatcher(leases, producer)

	leases.On("FindForEntity", mock.Anything, entity.TypeCustomer, entity.ActionDelete, "cus-1").Return(nil, entity.ErrLeaseNotFound)
	leases.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := dispatcher.Dispatch(context.Background(), SyncRef{Type: entity.TypeCustomer, ID: "cus-1"}, entity.ActionDelete, SyncBoth())

	assert.Error(t, err)
	// Without the lease the echoes could not be suppressed, so nothing may
	// be enqueued.
	producer.AssertNotCalled(t, "PublishSync", mock.Anything, mock.Anything)
}
