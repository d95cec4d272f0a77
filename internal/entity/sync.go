package entity

import "fmt"

// Platform identifies one of the external systems we mirror records into.
type Platform string

const (
	PlatformPipedrive Platform = "pipedrive"
	PlatformStripe    Platform = "stripe"
)

// Opposite returns the other sync platform. A change that arrived from one
// platform is propagated to the opposite one only.
func (p Platform) Opposite() Platform {
	if p == PlatformPipedrive {
		return PlatformStripe
	}
	return PlatformPipedrive
}

func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformPipedrive, PlatformStripe:
		return Platform(s), nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// EntityType tags which local table a sync job or webhook refers to.
type EntityType string

const (
	TypeCustomer        EntityType = "customer"
	TypePackageTemplate EntityType = "package_template"
	TypePackagePlan     EntityType = "package_plan"
	TypeServicePackage  EntityType = "service_package"
	TypeLead            EntityType = "lead"
)

func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case TypeCustomer, TypePackageTemplate, TypePackagePlan, TypeServicePackage, TypeLead:
		return EntityType(s), nil
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// SyncAction is the kind of change being synchronized.
type SyncAction string

const (
	ActionCreate SyncAction = "create"
	ActionUpdate SyncAction = "update"
	ActionDelete SyncAction = "delete"
)

func ParseSyncAction(s string) (SyncAction, error) {
	switch SyncAction(s) {
	case ActionCreate, ActionUpdate, ActionDelete:
		return SyncAction(s), nil
	}
	return "", fmt.Errorf("unknown sync action %q", s)
}

// Provenance values for OriginalSyncFrom / LastSyncedFrom.
const (
	SourceRoseware  = "roseware"
	SourcePipedrive = "pipedrive"
	SourceStripe    = "stripe"
)
