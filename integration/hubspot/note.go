package hubspot

import (
	"net/http"
	"net/url"
	"strings"

	"mosaic/integration"
	"mosaic/model/model"
	U "mosaic/util"
)

const notesPath = "/crm/v3/objects/notes"

var noteProperties = []string{"hs_note_body", "hubspot_owner_id"}

type NoteAdapter struct {
	Client *Client
}

func (a *NoteAdapter) Push(record integration.RawRecord, linkedUserID string) (*integration.Response, error) {
	payload := map[string]interface{}{"properties": record}
	object, status, err := a.Client.doJSON(http.MethodPost, notesPath,
		linkedUserID, U.OBJECT_KIND_NOTE, nil, payload)
	if err != nil {
		return nil, err
	}

	return &integration.Response{Data: flattenObject(object), StatusCode: status}, nil
}

func (a *NoteAdapter) Pull(linkedUserID string, extraProperties []string) (*integration.ListResponse, error) {
	properties := append(append([]string{}, noteProperties...), extraProperties...)

	query := url.Values{}
	query.Set("properties", strings.Join(properties, ","))
	query.Set("limit", "100")

	records := make([]integration.RawRecord, 0)
	lastStatus := http.StatusOK
	for {
		payload, status, err := a.Client.doJSON(http.MethodGet, notesPath,
			linkedUserID, U.OBJECT_KIND_NOTE, query, nil)
		if err != nil {
			return nil, err
		}

		records = append(records, resultObjects(payload)...)
		lastStatus = status

		after := nextPageAfter(payload)
		if after == "" {
			break
		}
		query.Set("after", after)
	}

	return &integration.ListResponse{Data: records, StatusCode: lastStatus}, nil
}

// NoteMapper rewrites the canonical owner reference into the hubspot owner
// id on the way out. Canonical references are never reconstructed on the way
// in; the raw payload keeps the provider-side linkage.
type NoteMapper struct {
	Resolver integration.RemoteIDResolver
}

func (m *NoteMapper) Desunify(source *model.UnifiedNote, mappings []model.Attribute) (integration.RawRecord, error) {
	if source == nil {
		return nil, &model.ValidationError{Field: "note", Reason: "nil unified note"}
	}

	record := integration.RawRecord{}
	if source.Content != "" {
		record["hs_note_body"] = source.Content
	}
	if source.UserID != "" {
		remoteID, status := m.Resolver.GetUserRemoteID(source.UserID)
		if status != http.StatusFound {
			return nil, &model.ValidationError{
				Field: "user_id", Reason: "unknown canonical user reference"}
		}
		record["hubspot_owner_id"] = remoteID
	}

	integration.ApplyDesunifyMappings(record, source.FieldMappings, mappings)
	return record, nil
}

func (m *NoteMapper) UnifyOne(record integration.RawRecord, mappings []model.Attribute) (*model.UnifiedNote, error) {
	unified := &model.UnifiedNote{
		Content: U.GetPropertyValueAsString(record["hs_note_body"]),
	}
	unified.FieldMappings = integration.ApplyCustomFieldMappings(record, mappings)

	return unified, nil
}

func (m *NoteMapper) Unify(records []integration.RawRecord, mappings []model.Attribute) ([]model.UnifiedNote, error) {
	unified := make([]model.UnifiedNote, 0, len(records))
	for i := range records {
		one, err := m.UnifyOne(records[i], mappings)
		if err != nil {
			return nil, err
		}
		unified = append(unified, *one)
	}

	return unified, nil
}
