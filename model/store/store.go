package store

import (
	"mosaic/model/model"
	storePostgres "mosaic/model/store/postgres"
)

// Store is the persistence contract for the unification layer: tenant and
// connection lookups, field-mapping resolution, reconciliation and the
// unified read path.
type Store interface {
	CreateLinkedUser(linkedUser *model.LinkedUser) (int, error)
	GetLinkedUser(id string) (*model.LinkedUser, int)
	GetAllLinkedUsers() ([]model.LinkedUser, int)

	CreateConnection(connection *model.Connection) (int, error)
	GetConnection(linkedUserID, providerSlug string) (*model.Connection, int)

	CreateAttribute(attribute *model.Attribute) (int, error)
	GetAttributes(providerSlug, linkedUserID, objectKind string) ([]model.Attribute, int)

	CreateWebhookEndpoint(endpoint *model.WebhookEndpoint) (int, error)
	GetActiveWebhookEndpoints(linkedUserID string) ([]model.WebhookEndpoint, int)

	CreateSyncEvent(event *model.SyncEvent) (int, error)

	ReconcileCompany(linkedUserID, providerSlug string, candidate *model.UnifiedCompany,
		raw map[string]interface{}) (*model.ReconcileResult, int, error)
	ReconcileUser(linkedUserID, providerSlug string, candidate *model.UnifiedUser,
		raw map[string]interface{}) (*model.ReconcileResult, int, error)
	ReconcileNote(linkedUserID, providerSlug string, candidate *model.UnifiedNote,
		raw map[string]interface{}) (*model.ReconcileResult, int, error)
	ReconcileComment(linkedUserID, providerSlug string, candidate *model.UnifiedComment,
		raw map[string]interface{}) (*model.ReconcileResult, int, error)

	GetCompany(id string, includeRaw bool) (*model.UnifiedCompany, int)
	GetCompanies(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedCompany, int)
	GetUser(id string, includeRaw bool) (*model.UnifiedUser, int)
	GetUsers(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedUser, int)
	GetNote(id string, includeRaw bool) (*model.UnifiedNote, int)
	GetNotes(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedNote, int)
	GetComment(id string, includeRaw bool) (*model.UnifiedComment, int)
	GetComments(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedComment, int)

	GetUserRemoteID(id string) (string, int)
	GetCompanyRemoteID(id string) (string, int)
}

func GetStore() Store {
	return &storePostgres.Postgres{}
}
