package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrEmailAlreadyExists = errors.New("a customer with this email already exists")
)

type Customer struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	// External ids, zero until the first successful push comes back.
	PipedriveID      int64  `json:"pipedrive_id"`
	StripeCustomerID string `json:"stripe_customer_id"`

	// Provenance: which platform authored the record / its latest version.
	OriginalSyncFrom string `json:"original_sync_from"`
	LastSyncedFrom   string `json:"last_synced_from"`

	PipedriveSynced bool `json:"pipedrive_synced"`
	StripeSynced    bool `json:"stripe_synced"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCustomer(ownerID, firstName, lastName, email, phone, source string) (*Customer, error) {
	c := &Customer{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		FirstName:        firstName,
		LastName:         lastName,
		Email:            email,
		Phone:            phone,
		OriginalSyncFrom: source,
		LastSyncedFrom:   source,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Customer) Validate() error {
	if c.FirstName == "" {
		return errors.New("first name is required")
	}
	if c.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

type CustomerRepository interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByPipedriveID(ctx context.Context, pipedriveID int64) (*Customer, error)
	FindByStripeID(ctx context.Context, stripeCustomerID string) (*Customer, error)
	// SetPlatformIDs persists ids returned by an outbound push. It is a plain
	// column update and never re-enters the sync dispatcher.
	SetPlatformIDs(ctx context.Context, id string, pipedriveID int64, stripeCustomerID string) error
}
