package hubspot

import (
	"net/http"
	"net/url"
	"strings"

	"mosaic/integration"
	"mosaic/model/model"
	U "mosaic/util"
)

const ownersPath = "/crm/v3/owners"

// UserAdapter maps the unified user kind onto hubspot owners. The owners
// endpoint has no property filter, so extraProperties is ignored; custom
// fields still resolve against whatever the payload carries.
type UserAdapter struct {
	Client *Client
}

func (a *UserAdapter) Push(record integration.RawRecord, linkedUserID string) (*integration.Response, error) {
	object, status, err := a.Client.doJSON(http.MethodPost, ownersPath,
		linkedUserID, U.OBJECT_KIND_USER, nil, record)
	if err != nil {
		return nil, err
	}

	return &integration.Response{Data: flattenOwner(object), StatusCode: status}, nil
}

func (a *UserAdapter) Pull(linkedUserID string, extraProperties []string) (*integration.ListResponse, error) {
	query := url.Values{}
	query.Set("limit", "100")

	records := make([]integration.RawRecord, 0)
	lastStatus := http.StatusOK
	for {
		payload, status, err := a.Client.doJSON(http.MethodGet, ownersPath,
			linkedUserID, U.OBJECT_KIND_USER, query, nil)
		if err != nil {
			return nil, err
		}

		results, _ := payload["results"].([]interface{})
		for _, result := range results {
			object, ok := result.(map[string]interface{})
			if !ok {
				continue
			}
			records = append(records, flattenOwner(object))
		}
		lastStatus = status

		after := nextPageAfter(payload)
		if after == "" {
			break
		}
		query.Set("after", after)
	}

	return &integration.ListResponse{Data: records, StatusCode: lastStatus}, nil
}

// flattenOwner keeps the owner payload flat and coerces the id to a string.
func flattenOwner(object map[string]interface{}) integration.RawRecord {
	record := integration.RawRecord{}
	for key, value := range object {
		record[key] = value
	}
	record["id"] = U.GetPropertyValueAsString(object["id"])

	return record
}

type UserMapper struct{}

func (m *UserMapper) Desunify(source *model.UnifiedUser, mappings []model.Attribute) (integration.RawRecord, error) {
	if source == nil {
		return nil, &model.ValidationError{Field: "user", Reason: "nil unified user"}
	}

	record := integration.RawRecord{}
	if source.Email != "" {
		record["email"] = source.Email
	}
	if source.Name != "" {
		first, last := splitName(source.Name)
		record["firstName"] = first
		if last != "" {
			record["lastName"] = last
		}
	}

	integration.ApplyDesunifyMappings(record, source.FieldMappings, mappings)
	return record, nil
}

func (m *UserMapper) UnifyOne(record integration.RawRecord, mappings []model.Attribute) (*model.UnifiedUser, error) {
	first := U.GetPropertyValueAsString(record["firstName"])
	last := U.GetPropertyValueAsString(record["lastName"])

	unified := &model.UnifiedUser{
		Name:  strings.TrimSpace(first + " " + last),
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

func splitName(name string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}

	return parts[0], parts[1]
}
