package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/greyland/roseware-sync/internal/entity"
)

type MockSyncLeaseRepository struct {
	mock.Mock
}

func (m *MockSyncLeaseRepository) FindForEntity(ctx context.Context, t entity.EntityType, action entity.SyncAction, entityID string) (*entity.SyncLease, error) {
	args := m.Called(ctx, t, action, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SyncLease), args.Error(1)
}

func (m *MockSyncLeaseRepository) FindAnyFor(ctx context.Context, t entity.EntityType, action entity.SyncAction) (*entity.SyncLease, error) {
	args := m.Called(ctx, t, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SyncLease), args.Error(1)
}

func (m *MockSyncLeaseRepository) Save(ctx context.Context, lease *entity.SyncLease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockSyncLeaseRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSyncLeaseRepository) DeleteOlderThan(ctx context.Context, age time.Duration) ([]entity.SyncLease, error) {
	args := m.Called(ctx, age)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.SyncLease), args.Error(1)
}

func TestReapDeletesLeasesPastTheirTTL(t *testing.T) {
	leases := new(MockSyncLeaseRepository)

	stale := *entity.NewSyncLease(entity.TypeCustomer, entity.ActionUpdate, "cus-1", true, true)
	stale.CreatedAt = time.Now().Add(-time.Minute)

	leases.On("DeleteOlderThan", mock.Anything, 30*time.Second).Return([]entity.SyncLease{stale}, nil)

	reaper := NewLeaseReaper(leases, 30*time.Second, 15*time.Second)
	reaper.reap(context.Background())

	leases.AssertCalled(t, "DeleteOlderThan", mock.Anything, 30*time.Second)
}

func TestReapSurvivesRepositoryErrors(t *testing.T) {
	leases := new(MockSyncLeaseRepository)
	leases.On("DeleteOlderThan", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	reaper := NewLeaseReaper(leases, time.Minute, time.Minute)
	assert.NotPanics(t, func() {
		reaper.reap(context.Background())
	})
}

func TestNewLeaseReaperAppliesDefaults(t *testing.T) {
	reaper := NewLeaseReaper(new(MockSyncLeaseRepository), 0, 0)

	assert.Equal(t, 30*time.Second, reaper.ttl)
	assert.Equal(t, 15*time.Second, reaper.tickInterval)
}
