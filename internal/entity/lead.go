package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrLeadNotFound = errors.New("lead not found")

// Lead is a sales opportunity attached to a customer. Leads live in
// Pipedrive only; Stripe has no notion of them.
type Lead struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	OwnerID    string `json:"owner_id"`
	Title      string `json:"title"`
	ValueCents int64  `json:"value_cents"`

	PipedriveID string `json:"pipedrive_id"` // Pipedrive lead ids are uuids

	OriginalSyncFrom string `json:"original_sync_from"`
	LastSyncedFrom   string `json:"last_synced_from"`

	PipedriveSynced bool `json:"pipedrive_synced"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewLead(customerID, ownerID, title string, valueCents int64, source string) (*Lead, error) {
	l := &Lead{
		ID:               uuid.New().String(),
		CustomerID:       customerID,
		OwnerID:          ownerID,
		Title:            title,
		ValueCents:       valueCents,
		OriginalSyncFrom: source,
		LastSyncedFrom:   source,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Lead) Validate() error {
	if l.CustomerID == "" {
		return errors.New("customer is required")
	}
	if l.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

type LeadRepository interface {
	Create(ctx context.Context, l *Lead) error
	Update(ctx context.Context, l *Lead) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	FindByPipedriveID(ctx context.Context, pipedriveID string) (*Lead, error)
	SetPlatformIDs(ctx context.Context, id string, pipedriveID string) error
}
