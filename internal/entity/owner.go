package entity

import (
	"context"
	"errors"
)

var ErrOwnerNotFound = errors.New("owner not found")

// Owner is the staff employee or customer account that owns a synced record.
// The owner decides how outbound Pipedrive calls authenticate: owners with
// their own OAuth token use it, everyone else rides the shared company key.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`

	// Per-owner OAuth bearer token for Pipedrive, empty for shared-key auth.
	PipedriveOAuthToken string `json:"-"`
}

func (o *Owner) HasOwnPipedriveToken() bool {
	return o != nil && o.PipedriveOAuthToken != ""
}

type OwnerRepository interface {
	FindByID(ctx context.Context, id string) (*Owner, error)
}
