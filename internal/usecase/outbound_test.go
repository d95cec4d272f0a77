package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/queue"
)

type syncerMocks struct {
	customers *MockCustomerRepository
	templates *MockPackageTemplateRepository
	plans     *MockPackagePlanRepository
	packages  *MockServicePackageRepository
	leads     *MockLeadRepository
	owners    *MockOwnerRepository
	crm       *MockCRMGateway
	billing   *MockBillingGateway
}

func newSyncerUnderTest() (*OutboundSyncer, syncerMocks) {
	m := syncerMocks{
		customers: new(MockCustomerRepository),
		templates: new(MockPackageTemplateRepository),
		plans:     new(MockPackagePlanRepository),
		packages:  new(MockServicePackageRepository),
		leads:     new(MockLeadRepository),
		owners:    new(MockOwnerRepository),
		crm:       new(MockCRMGateway),
		billing:   new(MockBillingGateway),
	}
	s := NewOutboundSyncer(m.customers, m.templates, m.plans, m.packages, m.leads, m.owners, m.crm, m.billing)
	return s, m
}

func TestExecuteCustomerCreatePipedriveWritesBackID(t *testing.T) {
	s, m := newSyncerUnderTest()

	c := &entity.Customer{ID: "cus-1", FirstName: "Ana", Email: "ana@example.com"}
	m.customers.On("FindByID", mock.Anything, "cus-1").Return(c, nil)
	m.crm.On("CreatePerson", mock.Anything, (*entity.Owner)(nil), c).Return(int64(42), nil)
	m.customers.On("SetPlatformIDs", mock.Anything, "cus-1", int64(42), "").Return(nil)

	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "cus-1",
		EntityType: entity.TypeCustomer,
		Action:     entity.ActionCreate,
		Platform:   entity.PlatformPipedrive,
	})

	assert.NoError(t, err)
	m.customers.AssertCalled(t, "SetPlatformIDs", mock.Anything, "cus-1", int64(42), "")
}

func TestExecuteCustomerCreateSkipsAlreadyPushedRow(t *testing.T) {
	s, m := newSyncerUnderTest()

	// A retried duplicate after the first attempt already landed.
	c := &entity.Customer{ID: "cus-1", PipedriveID: 42}
	m.customers.On("FindByID", mock.Anything, "cus-1").Return(c, nil)

	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "cus-1",
		EntityType: entity.TypeCustomer,
		Action:     entity.ActionCreate,
		Platform:   entity.PlatformPipedrive,
	})

	assert.NoError(t, err)
	m.crm.AssertNotCalled(t, "CreatePerson", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteCustomerUpdateFallsBackToCreateWithoutPlatformID(t *testing.T) {
	s, m := newSyncerUnderTest()

	c := &entity.Customer{ID: "cus-1", FirstName: "Ana"}
	m.customers.On("FindByID", mock.Anything, "cus-1").Return(c, nil)
	m.billing.On("CreateCustomer", mock.Anything, c).Return("cus_str_1", nil)
	m.customers.On("SetPlatformIDs", mock.Anything, "cus-1", int64(0), "cus_str_1").Return(nil)

	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "cus-1",
		EntityType: entity.TypeCustomer,
		Action:     entity.ActionUpdate,
		Platform:   entity.PlatformStripe,
	})

	assert.NoError(t, err)
	m.billing.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything)
	m.billing.AssertCalled(t, "CreateCustomer", mock.Anything, c)
}

func TestExecuteCustomerDeleteUsesSnapshottedRefs(t *testing.T) {
	s, m := newSyncerUnderTest()

	m.crm.On("DeletePerson", mock.Anything, (*entity.Owner)(nil), int64(42)).Return(nil)

	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "cus-1",
		EntityType: entity.TypeCustomer,
		Action:     entity.ActionDelete,
		Platform:   entity.PlatformPipedrive,
		Deleted:    &queue.DeletedRefs{PipedriveID: 42},
	})

	assert.NoError(t, err)
	// The local row is already gone; nothing may try to load it.
	m.customers.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestExecuteCustomerDeleteWithoutRefsIsANoOp(t *testing.T) {
	s, m := newSyncerUnderTest()

	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "cus-1",
		EntityType: entity.TypeCustomer,
		Action:     entity.ActionDelete,
		Platform:   entity.PlatformStripe,
		Deleted:    &queue.DeletedRefs{},
	})

	assert.NoError(t, err)
	m.billing.AssertNotCalled(t, "DeleteCustomer", mock.Anything, mock.Anything)
}

func TestExecutePlanCreateStripeBuildsSubscriptionWithLineItems(t *testing.T) {
	s, m := newSyncerUnderTest()

	p := &entity.PackagePlan{ID: "plan-1", CustomerID: "cus-1", Title: "Growth"}
	c := &entity.Customer{ID: "cus-1", StripeCustomerID: "cus_str_1"}
	lines := []entity.ServicePackage{
		{ID: "sp-1", PlanID: "plan-1", TemplateID: "tpl-1", Quantity: 2},
	}
	tpl := &entity.PackageTemplate{ID: "tpl-1", StripePriceID: "price_1"}

	m.plans.On("FindByID", mock.Anything, "plan-1").Return(p, nil)
	m.customers.On("FindByID", mock.Anything, "cus-1").Return(c, nil)
	m.packages.On("FindByPlanID", mock.Anything, "plan-1").Return(lines, nil)
	m.templates.On("FindByID", mock.Anything, "tpl-1").Return(tpl, nil)
	m.billing.On("CreateSubscription", mock.Anything, p, "cus_str_1", lines, map[string]string{"tpl-1": "price_1"}).
		Return("sub_1", map[string]string{"sp-1": "si_1"}, nil)
	m.plans.On("SetPlatformIDs", mock.Anything, "plan-1", int64(0), "sub_1").Return(nil)
	m.packages.On("SetPlatformIDs", mock.Anything, "sp-1", int64(0), "si_1").Return(nil)

	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "plan-1",
		EntityType: entity.TypePackagePlan,
		Action:     entity.ActionCreate,
		Platform:   entity.PlatformStripe,
	})

	assert.NoError(t, err)
	m.packages.AssertCalled(t, "SetPlatformIDs", mock.Anything, "sp-1", int64(0), "si_1")
}

func TestExecutePlanCreateStripeFailsUntilCustomerIsPushed(t *testing.T) {
	s, m := newSyncerUnderTest()

	p := &entity.PackagePlan{ID: "plan-1", CustomerID: "cus-1"}
	c := &entity.Customer{ID: "cus-1"} // no stripe customer yet

	m.plans.On("FindByID", mock.Anything, "plan-1").Return(p, nil)
	m.customers.On("FindByID", mock.Anything, "cus-1").Return(c, nil)

	// The error puts the job on the retry queue; by the next attempt the
	// customer's own push should have landed.
	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "plan-1",
		EntityType: entity.TypePackagePlan,
		Action:     entity.ActionCreate,
		Platform:   entity.PlatformStripe,
	})

	assert.Error(t, err)
	m.billing.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutePlanCreatePipedriveAttachesProducts(t *testing.T) {
	s, m := newSyncerUnderTest()

	p := &entity.PackagePlan{ID: "plan-1", CustomerID: "cus-1", Title: "Growth"}
	c := &entity.Customer{ID: "cus-1", PipedriveID: 42}
	lines := []entity.ServicePackage{
		{ID: "sp-1", PlanID: "plan-1", TemplateID: "tpl-1", Quantity: 2, CostCents: 5000},
	}
	tpl := &entity.PackageTemplate{ID: "tpl-1", PipedriveID: 7}

	m.plans.On("FindByID", mock.Anything, "plan-1").Return(p, nil)
	m.customers.On("FindByID", mock.Anything, "cus-1").Return(c, nil)
	m.crm.On("CreateDeal", mock.Anything, (*entity.Owner)(nil), p, int64(42)).Return(int64(99), nil)
	m.plans.On("SetPlatformIDs", mock.Anything, "plan-1", int64(99), "").Return(nil)
	m.packages.On("FindByPlanID", mock.Anything, "plan-1").Return(lines, nil)
	m.templates.On("FindByID", mock.Anything, "tpl-1").Return(tpl, nil)
	m.crm.On("AttachProductToDeal", mock.Anything, (*entity.Owner)(nil), int64(99), int64(7), 2, int64(5000)).Return(int64(123), nil)
	m.packages.On("SetPlatformIDs", mock.Anything, "sp-1", int64(123), "").Return(nil)

	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "plan-1",
		EntityType: entity.TypePackagePlan,
		Action:     entity.ActionCreate,
		Platform:   entity.PlatformPipedrive,
	})

	assert.NoError(t, err)
	m.crm.AssertCalled(t, "AttachProductToDeal", mock.Anything, (*entity.Owner)(nil), int64(99), int64(7), 2, int64(5000))
}

func TestExecutePackageUpdatePipedriveReplacesAttachment(t *testing.T) {
	s, m := newSyncerUnderTest()

	sp := &entity.ServicePackage{ID: "sp-1", PlanID: "plan-1", TemplateID: "tpl-1", Quantity: 3, CostCents: 7500, PipedriveAttachmentID: 123}
	p := &entity.PackagePlan{ID: "plan-1", PipedriveID: 99}
	tpl := &entity.PackageTemplate{ID: "tpl-1", PipedriveID: 7}

	m.packages.On("FindByID", mock.Anything, "sp-1").Return(sp, nil)
	m.plans.On("FindByID", mock.Anything, "plan-1").Return(p, nil)
	m.templates.On("FindByID", mock.Anything, "tpl-1").Return(tpl, nil)
	m.crm.On("DetachProductFromDeal", mock.Anything, (*entity.Owner)(nil), int64(99), int64(123)).Return(nil)
	m.crm.On("AttachProductToDeal", mock.Anything, (*entity.Owner)(nil), int64(99), int64(7), 3, int64(7500)).Return(int64(124), nil)
	m.packages.On("SetPlatformIDs", mock.Anything, "sp-1", int64(124), "").Return(nil)

	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "sp-1",
		EntityType: entity.TypeServicePackage,
		Action:     entity.ActionUpdate,
		Platform:   entity.PlatformPipedrive,
	})

	assert.NoError(t, err)
	m.crm.AssertCalled(t, "DetachProductFromDeal", mock.Anything, (*entity.Owner)(nil), int64(99), int64(123))
}

func TestExecuteTemplateDeleteStripeArchivesProduct(t *testing.T) {
	s, m := newSyncerUnderTest()

	m.billing.On("ArchiveProduct", mock.Anything, "prod_1").Return(nil)

	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "tpl-1",
		EntityType: entity.TypePackageTemplate,
		Action:     entity.ActionDelete,
		Platform:   entity.PlatformStripe,
		Deleted:    &queue.DeletedRefs{StripeID: "prod_1"},
	})

	assert.NoError(t, err)
	m.billing.AssertCalled(t, "ArchiveProduct", mock.Anything, "prod_1")
}

func TestExecuteLeadCreateResolvesOwnerForAuth(t *testing.T) {
	s, m := newSyncerUnderTest()

	l := &entity.Lead{ID: "lead-1", CustomerID: "cus-1", Title: "Upsell"}
	c := &entity.Customer{ID: "cus-1", PipedriveID: 42}
	owner := &entity.Owner{ID: "own-1", PipedriveOAuthToken: "tok"}

	m.leads.On("FindByID", mock.Anything, "lead-1").Return(l, nil)
	m.customers.On("FindByID", mock.Anything, "cus-1").Return(c, nil)
	m.owners.On("FindByID", mock.Anything, "own-1").Return(owner, nil)
	m.crm.On("CreateLead", mock.Anything, owner, l, int64(42)).Return("pl-uuid-1", nil)
	m.leads.On("SetPlatformIDs", mock.Anything, "lead-1", "pl-uuid-1").Return(nil)

	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "lead-1",
		EntityType: entity.TypeLead,
		Action:     entity.ActionCreate,
		Platform:   entity.PlatformPipedrive,
		OwnerID:    "own-1",
	})

	assert.NoError(t, err)
	m.crm.AssertCalled(t, "CreateLead", mock.Anything, owner, l, int64(42))
}

func TestExecuteUnroutableJobIsDropped(t *testing.T) {
	s, m := newSyncerUnderTest()

	// Leads never sync to Stripe; the job is acked, not retried.
	err := s.Execute(context.Background(), queue.SyncJob{
		EntityID:   "lead-1",
		EntityType: entity.TypeLead,
		Action:     entity.ActionCreate,
		Platform:   entity.PlatformStripe,
	})

	assert.NoError(t, err)
	m.leads.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
