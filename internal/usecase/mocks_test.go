package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/queue"
)

// MockSyncLeaseRepository

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

// MockSyncProducer

type MockSyncProducer struct {
	mock.Mock
}

func (m *MockSyncProducer) PublishSync(ctx context.Context, job queue.SyncJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockTogglesRepository

type MockTogglesRepository struct {
	mock.Mock
}

func (m *MockTogglesRepository) Get(ctx context.Context) (entity.Toggles, error) {
	args := m.Called(ctx)
	return args.Get(0).(entity.Toggles), args.Error(1)
}

func (m *MockTogglesRepository) Set(ctx context.Context, t entity.Toggles) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// MockCustomerRepository

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *entity.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, c *entity.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByPipedriveID(ctx context.Context, pipedriveID int64) (*entity.Customer, error) {
	args := m.Called(ctx, pipedriveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByStripeID(ctx context.Context, stripeCustomerID string) (*entity.Customer, error) {
	args := m.Called(ctx, stripeCustomerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) SetPlatformIDs(ctx context.Context, id string, pipedriveID int64, stripeCustomerID string) error {
	args := m.Called(ctx, id, pipedriveID, stripeCustomerID)
	return args.Error(0)
}

// MockPackageTemplateRepository

type MockPackageTemplateRepository struct {
	mock.Mock
}

func (m *MockPackageTemplateRepository) Create(ctx context.Context, t *entity.PackageTemplate) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockPackageTemplateRepository) Update(ctx context.Context, t *entity.PackageTemplate) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockPackageTemplateRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPackageTemplateRepository) FindByID(ctx context.Context, id string) (*entity.PackageTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PackageTemplate), args.Error(1)
}

func (m *MockPackageTemplateRepository) FindByPipedriveID(ctx context.Context, pipedriveID int64) (*entity.PackageTemplate, error) {
	args := m.Called(ctx, pipedriveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PackageTemplate), args.Error(1)
}

func (m *MockPackageTemplateRepository) FindByStripeProductID(ctx context.Context, stripeProductID string) (*entity.PackageTemplate, error) {
	args := m.Called(ctx, stripeProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PackageTemplate), args.Error(1)
}

func (m *MockPackageTemplateRepository) FindByStripePriceID(ctx context.Context, stripePriceID string) (*entity.PackageTemplate, error) {
	args := m.Called(ctx, stripePriceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PackageTemplate), args.Error(1)
}

func (m *MockPackageTemplateRepository) SetPlatformIDs(ctx context.Context, id string, pipedriveID int64, stripeProductID, stripePriceID string) error {
	args := m.Called(ctx, id, pipedriveID, stripeProductID, stripePriceID)
	return args.Error(0)
}

// MockPackagePlanRepository

type MockPackagePlanRepository struct {
	mock.Mock
}

func (m *MockPackagePlanRepository) Create(ctx context.Context, p *entity.PackagePlan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPackagePlanRepository) Update(ctx context.Context, p *entity.PackagePlan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPackagePlanRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPackagePlanRepository) FindByID(ctx context.Context, id string) (*entity.PackagePlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PackagePlan), args.Error(1)
}

func (m *MockPackagePlanRepository) FindByPipedriveID(ctx context.Context, pipedriveID int64) (*entity.PackagePlan, error) {
	args := m.Called(ctx, pipedriveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PackagePlan), args.Error(1)
}

func (m *MockPackagePlanRepository) FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*entity.PackagePlan, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PackagePlan), args.Error(1)
}

func (m *MockPackagePlanRepository) SetPlatformIDs(ctx context.Context, id string, pipedriveID int64, stripeSubscriptionID string) error {
	args := m.Called(ctx, id, pipedriveID, stripeSubscriptionID)
	return args.Error(0)
}

// MockServicePackageRepository

type MockServicePackageRepository struct {
	mock.Mock
}

func (m *MockServicePackageRepository) Create(ctx context.Context, sp *entity.ServicePackage) error {
	args := m.Called(ctx, sp)
	return args.Error(0)
}

func (m *MockServicePackageRepository) Update(ctx context.Context, sp *entity.ServicePackage) error {
	args := m.Called(ctx, sp)
	return args.Error(0)
}

func (m *MockServicePackageRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServicePackageRepository) FindByID(ctx context.Context, id string) (*entity.ServicePackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ServicePackage), args.Error(1)
}

func (m *MockServicePackageRepository) FindByPlanID(ctx context.Context, planID string) ([]entity.ServicePackage, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ServicePackage), args.Error(1)
}

func (m *MockServicePackageRepository) FindByStripeItemID(ctx context.Context, itemID string) (*entity.ServicePackage, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ServicePackage), args.Error(1)
}

func (m *MockServicePackageRepository) SetPlatformIDs(ctx context.Context, id string, pipedriveAttachmentID int64, stripeItemID string) error {
	args := m.Called(ctx, id, pipedriveAttachmentID, stripeItemID)
	return args.Error(0)
}

// MockLeadRepository

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, l *entity.Lead) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLeadRepository) Update(ctx context.Context, l *entity.Lead) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByPipedriveID(ctx context.Context, pipedriveID string) (*entity.Lead, error) {
	args := m.Called(ctx, pipedriveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) SetPlatformIDs(ctx context.Context, id string, pipedriveID string) error {
	args := m.Called(ctx, id, pipedriveID)
	return args.Error(0)
}

// MockOwnerRepository

type MockOwnerRepository struct {
	mock.Mock
}

func (m *MockOwnerRepository) FindByID(ctx context.Context, id string) (*entity.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Owner), args.Error(1)
}

// MockCRMGateway

type MockCRMGateway struct {
	mock.Mock
}

func (m *MockCRMGateway) CreatePerson(ctx context.Context, owner *entity.Owner, c *entity.Customer) (int64, error) {
	args := m.Called(ctx, owner, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCRMGateway) UpdatePerson(ctx context.Context, owner *entity.Owner, c *entity.Customer) error {
	args := m.Called(ctx, owner, c)
	return args.Error(0)
}

func (m *MockCRMGateway) DeletePerson(ctx context.Context, owner *entity.Owner, pipedriveID int64) error {
	args := m.Called(ctx, owner, pipedriveID)
	return args.Error(0)
}

func (m *MockCRMGateway) CreateProduct(ctx context.Context, owner *entity.Owner, t *entity.PackageTemplate) (int64, error) {
	args := m.Called(ctx, owner, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCRMGateway) UpdateProduct(ctx context.Context, owner *entity.Owner, t *entity.PackageTemplate) error {
	args := m.Called(ctx, owner, t)
	return args.Error(0)
}

func (m *MockCRMGateway) DeleteProduct(ctx context.Context, owner *entity.Owner, pipedriveID int64) error {
	args := m.Called(ctx, owner, pipedriveID)
	return args.Error(0)
}

func (m *MockCRMGateway) CreateDeal(ctx context.Context, owner *entity.Owner, p *entity.PackagePlan, personID int64) (int64, error) {
	args := m.Called(ctx, owner, p, personID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCRMGateway) UpdateDeal(ctx context.Context, owner *entity.Owner, p *entity.PackagePlan) error {
	args := m.Called(ctx, owner, p)
	return args.Error(0)
}

func (m *MockCRMGateway) DeleteDeal(ctx context.Context, owner *entity.Owner, pipedriveID int64) error {
	args := m.Called(ctx, owner, pipedriveID)
	return args.Error(0)
}

func (m *MockCRMGateway) AttachProductToDeal(ctx context.Context, owner *entity.Owner, dealID, productID int64, quantity int, priceCents int64) (int64, error) {
	args := m.Called(ctx, owner, dealID, productID, quantity, priceCents)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCRMGateway) DetachProductFromDeal(ctx context.Context, owner *entity.Owner, dealID, attachmentID int64) error {
	args := m.Called(ctx, owner, dealID, attachmentID)
	return args.Error(0)
}

func (m *MockCRMGateway) ListDealProducts(ctx context.Context, owner *entity.Owner, dealID int64) ([]DealProduct, error) {
	args := m.Called(ctx, owner, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]DealProduct), args.Error(1)
}

func (m *MockCRMGateway) CreateLead(ctx context.Context, owner *entity.Owner, l *entity.Lead, personID int64) (string, error) {
	args := m.Called(ctx, owner, l, personID)
	return args.String(0), args.Error(1)
}

func (m *MockCRMGateway) UpdateLead(ctx context.Context, owner *entity.Owner, l *entity.Lead) error {
	args := m.Called(ctx, owner, l)
	return args.Error(0)
}

func (m *MockCRMGateway) DeleteLead(ctx context.Context, owner *entity.Owner, pipedriveID string) error {
	args := m.Called(ctx, owner, pipedriveID)
	return args.Error(0)
}

// MockBillingGateway

type MockBillingGateway struct {
	mock.Mock
}

func (m *MockBillingGateway) CreateCustomer(ctx context.Context, c *entity.Customer) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func (m *MockBillingGateway) UpdateCustomer(ctx context.Context, c *entity.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockBillingGateway) DeleteCustomer(ctx context.Context, stripeCustomerID string) error {
	args := m.Called(ctx, stripeCustomerID)
	return args.Error(0)
}

func (m *MockBillingGateway) CreateProduct(ctx context.Context, t *entity.PackageTemplate) (string, string, error) {
	args := m.Called(ctx, t)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockBillingGateway) UpdateProduct(ctx context.Context, t *entity.PackageTemplate) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockBillingGateway) ArchiveProduct(ctx context.Context, stripeProductID string) error {
	args := m.Called(ctx, stripeProductID)
	return args.Error(0)
}

func (m *MockBillingGateway) CreateSubscription(ctx context.Context, p *entity.PackagePlan, stripeCustomerID string, items []entity.ServicePackage, priceIDs map[string]string) (string, map[string]string, error) {
	args := m.Called(ctx, p, stripeCustomerID, items, priceIDs)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(map[string]string), args.Error(2)
}

func (m *MockBillingGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func (m *MockBillingGateway) CreateSubscriptionItem(ctx context.Context, subscriptionID, priceID string, quantity int) (string, error) {
	args := m.Called(ctx, subscriptionID, priceID, quantity)
	return args.String(0), args.Error(1)
}

func (m *MockBillingGateway) UpdateSubscriptionItem(ctx context.Context, itemID string, quantity int) error {
	args := m.Called(ctx, itemID, quantity)
	return args.Error(0)
}

func (m *MockBillingGateway) DeleteSubscriptionItem(ctx context.Context, itemID string) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

// MockTaskBoard

type MockTaskBoard struct {
	mock.Mock
}

func (m *MockTaskBoard) CreateItem(ctx context.Context, boardName, itemName string, columns map[string]string) (string, error) {
	args := m.Called(ctx, boardName, itemName, columns)
	return args.String(0), args.Error(1)
}

// MockEmailService

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendWelcome(to, name string) error {
	args := m.Called(to, name)
	return args.Error(0)
}
