package pipedrive

import (
	"net/http"

	"mosaic/integration"
	"mosaic/model/model"
	U "mosaic/util"
)

const usersPath = "/users"

type UserAdapter struct {
	Client *Client
}

func (a *UserAdapter) Push(record integration.RawRecord, linkedUserID string) (*integration.Response, error) {
	payload, status, err := a.Client.doJSON(http.MethodPost, usersPath,
		linkedUserID, U.OBJECT_KIND_USER, nil, record)
	if err != nil {
		return nil, err
	}

	return &integration.Response{Data: dataObject(payload), StatusCode: status}, nil
}

func (a *UserAdapter) Pull(linkedUserID string, extraProperties []string) (*integration.ListResponse, error) {
	records, status, err := a.Client.pull(usersPath, linkedUserID, U.OBJECT_KIND_USER)
	if err != nil {
		return nil, err
	}

	return &integration.ListResponse{Data: records, StatusCode: status}, nil
}

type UserMapper struct{}

func (m *UserMapper) Desunify(source *model.UnifiedUser, mappings []model.Attribute) (integration.RawRecord, error) {
	if source == nil {
		return nil, &model.ValidationError{Field: "user", Reason: "nil unified user"}
	}

	record := integration.RawRecord{}
	if source.Name != "" {
		record["name"] = source.Name
	}
	if source.Email != "" {
		record["email"] = source.Email
	}

	integration.ApplyDesunifyMappings(record, source.FieldMappings, mappings)
	return record, nil
}

func (m *UserMapper) UnifyOne(record integration.RawRecord, mappings []model.Attribute) (*model.UnifiedUser, error) {
	unified := &model.UnifiedUser{
		Name:  U.GetPropertyValueAsString(record["name"]),
		Email: U.GetPropertyValueAsString(record["email"]),
	}
	unified.FieldMappings = integration.ApplyCustomFieldMappings(record, mappings)

	return unified, nil
}

func (m *UserMapper) Unify(records []integration.RawRecord, mappings []model.Attribute) ([]model.UnifiedUser, error) {
	unified := make([]model.UnifiedUser, 0, len(records))
	for i := range records {
		one, err := m.UnifyOne(records[i], mappings)
		if err != nil {
			return nil, err
		}
		unified = append(unified, *one)
	}

	return unified, nil
}
