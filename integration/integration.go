package integration

import (
	"mosaic/model/model"
)

// RawRecord is a provider-native record as pulled or pushed over the wire.
// Adapters normalize the provider id under the "id" key before handing
// records to mappers.
type RawRecord map[string]interface{}

// Response carries a single provider-native record plus the upstream status.
type Response struct {
	Data       RawRecord
	StatusCode int
	Message    string
}

// ListResponse carries a page-flattened list of provider-native records.
type ListResponse struct {
	Data       []RawRecord
	StatusCode int
	Message    string
}

// ConnectionSource resolves credentials for a (tenant, provider) pair.
// Satisfied by the store.
type ConnectionSource interface {
	GetConnection(linkedUserID, providerSlug string) (*model.Connection, int)
}

// RemoteIDResolver rewrites canonical record references into provider-native
// ids on the desunify path. Satisfied by the store.
type RemoteIDResolver interface {
	GetUserRemoteID(id string) (string, int)
	GetCompanyRemoteID(id string) (string, int)
}

// Adapter is the transport side of a provider integration for one object
// kind. Push writes one record to the provider; Pull lists all records for a
// tenant, requesting extraProperties on providers that gate fields behind a
// property list.
type Adapter interface {
	Push(record RawRecord, linkedUserID string) (*Response, error)
	Pull(linkedUserID string, extraProperties []string) (*ListResponse, error)
}

// Per-kind mapper contracts. Desunify turns a unified record into the
// provider-native write shape; Unify turns pulled provider records into
// unified candidates. UnifyOne is the single-record form used on the push
// readback path.

type CompanyMapper interface {
	Desunify(source *model.UnifiedCompany, mappings []model.Attribute) (RawRecord, error)
	UnifyOne(record RawRecord, mappings []model.Attribute) (*model.UnifiedCompany, error)
	Unify(records []RawRecord, mappings []model.Attribute) ([]model.UnifiedCompany, error)
}

type UserMapper interface {
	Desunify(source *model.UnifiedUser, mappings []model.Attribute) (RawRecord, error)
	UnifyOne(record RawRecord, mappings []model.Attribute) (*model.UnifiedUser, error)
	Unify(records []RawRecord, mappings []model.Attribute) ([]model.UnifiedUser, error)
}

type NoteMapper interface {
	Desunify(source *model.UnifiedNote, mappings []model.Attribute) (RawRecord, error)
	UnifyOne(record RawRecord, mappings []model.Attribute) (*model.UnifiedNote, error)
	Unify(records []RawRecord, mappings []model.Attribute) ([]model.UnifiedNote, error)
}

type CommentMapper interface {
	Desunify(source *model.UnifiedComment, mappings []model.Attribute) (RawRecord, error)
	UnifyOne(record RawRecord, mappings []model.Attribute) (*model.UnifiedComment, error)
	Unify(records []RawRecord, mappings []model.Attribute) ([]model.UnifiedComment, error)
}

// Bindings pair the transport adapter with the kind-specific mapper for one
// provider. The registry hands these out as a unit.

type CompanyBinding struct {
	Adapter Adapter
	Mapper  CompanyMapper
}

type UserBinding struct {
	Adapter Adapter
	Mapper  UserMapper
}

type NoteBinding struct {
	Adapter Adapter
	Mapper  NoteMapper
}

type CommentBinding struct {
	Adapter Adapter
	Mapper  CommentMapper
}

// ApplyCustomFieldMappings copies mapped provider properties from a raw
// record into the unified custom-field list. Slugs whose remote property is
// absent from the record are skipped.
func ApplyCustomFieldMappings(record RawRecord, mappings []model.Attribute) model.CustomFields {
	fields := make(model.CustomFields, 0, len(mappings))
	for i := range mappings {
		value, ok := record[mappings[i].RemoteProperty]
		if !ok {
			continue
		}
		fields.Set(mappings[i].Slug, value)
	}

	return fields
}

// ApplyDesunifyMappings writes unified custom-field values onto a raw record
// under their provider-native property names. Slugs without a mapping are
// dropped.
func ApplyDesunifyMappings(record RawRecord, fields model.CustomFields, mappings []model.Attribute) {
	bySlug := make(map[string]string, len(mappings))
	for i := range mappings {
		bySlug[mappings[i].Slug] = mappings[i].RemoteProperty
	}

	for i := range fields {
		remoteProperty, ok := bySlug[fields[i].Slug]
		if !ok {
			continue
		}
		record[remoteProperty] = fields[i].Value
	}
}
