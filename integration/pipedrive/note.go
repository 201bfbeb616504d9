package pipedrive

import (
	"net/http"

	"mosaic/integration"
	"mosaic/model/model"
	U "mosaic/util"
)

const notesPath = "/notes"

type NoteAdapter struct {
	Client *Client
}

func (a *NoteAdapter) Push(record integration.RawRecord, linkedUserID string) (*integration.Response, error) {
	payload, status, err := a.Client.doJSON(http.MethodPost, notesPath,
		linkedUserID, U.OBJECT_KIND_NOTE, nil, record)
	if err != nil {
		return nil, err
	}

	return &integration.Response{Data: dataObject(payload), StatusCode: status}, nil
}

func (a *NoteAdapter) Pull(linkedUserID string, extraProperties []string) (*integration.ListResponse, error) {
	records, status, err := a.Client.pull(notesPath, linkedUserID, U.OBJECT_KIND_NOTE)
	if err != nil {
		return nil, err
	}

	return &integration.ListResponse{Data: records, StatusCode: status}, nil
}

// NoteMapper rewrites canonical company and user references into pipedrive
// ids on the way out.
type NoteMapper struct {
	Resolver integration.RemoteIDResolver
}

func (m *NoteMapper) Desunify(source *model.UnifiedNote, mappings []model.Attribute) (integration.RawRecord, error) {
	if source == nil {
		return nil, &model.ValidationError{Field: "note", Reason: "nil unified note"}
	}

	record := integration.RawRecord{}
	if source.Content != "" {
		record["content"] = source.Content
	}
	if source.CompanyID != "" {
		remoteID, status := m.Resolver.GetCompanyRemoteID(source.CompanyID)
		if status != http.StatusFound {
			return nil, &model.ValidationError{
				Field: "company_id", Reason: "unknown canonical company reference"}
		}
		record["org_id"] = remoteID
	}
	if source.UserID != "" {
		remoteID, status := m.Resolver.GetUserRemoteID(source.UserID)
		if status != http.StatusFound {
			return nil, &model.ValidationError{
				Field: "user_id", Reason: "unknown canonical user reference"}
		}
		record["user_id"] = remoteID
	}

	integration.ApplyDesunifyMappings(record, source.FieldMappings, mappings)
	return record, nil
}

func (m *NoteMapper) UnifyOne(record integration.RawRecord, mappings []model.Attribute) (*model.UnifiedNote, error) {
	unified := &model.UnifiedNote{
		Content: U.GetPropertyValueAsString(record["content"]),
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
