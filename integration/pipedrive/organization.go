package pipedrive

import (
	"net/http"
	"strings"

	"mosaic/integration"
	"mosaic/model/model"
	U "mosaic/util"
)

const organizationsPath = "/organizations"

// OrganizationAdapter maps the unified company kind onto pipedrive
// organizations.
type OrganizationAdapter struct {
	Client *Client
}

func (a *OrganizationAdapter) Push(record integration.RawRecord, linkedUserID string) (*integration.Response, error) {
	payload, status, err := a.Client.doJSON(http.MethodPost, organizationsPath,
		linkedUserID, U.OBJECT_KIND_COMPANY, nil, record)
	if err != nil {
		return nil, err
	}

	return &integration.Response{Data: dataObject(payload), StatusCode: status}, nil
}

func (a *OrganizationAdapter) Pull(linkedUserID string, extraProperties []string) (*integration.ListResponse, error) {
	records, status, err := a.Client.pull(organizationsPath, linkedUserID, U.OBJECT_KIND_COMPANY)
	if err != nil {
		return nil, err
	}

	return &integration.ListResponse{Data: records, StatusCode: status}, nil
}

type OrganizationMapper struct{}

func (m *OrganizationMapper) Desunify(source *model.UnifiedCompany, mappings []model.Attribute) (integration.RawRecord, error) {
	if source == nil {
		return nil, &model.ValidationError{Field: "company", Reason: "nil unified company"}
	}

	record := integration.RawRecord{}
	if source.Name != "" {
		record["name"] = source.Name
	}
	if source.NumberOfEmployees > 0 {
		record["people_count"] = source.NumberOfEmployees
	}
	if len(source.Addresses) > 0 {
		if address := joinAddress(&source.Addresses[0]); address != "" {
			record["address"] = address
		}
	}

	integration.ApplyDesunifyMappings(record, source.FieldMappings, mappings)
	return record, nil
}

func (m *OrganizationMapper) UnifyOne(record integration.RawRecord, mappings []model.Attribute) (*model.UnifiedCompany, error) {
	unified := &model.UnifiedCompany{
		Name:              U.GetPropertyValueAsString(record["name"]),
		NumberOfEmployees: int(U.GetPropertyValueAsFloat64(record["people_count"])),
	}

	if address := U.GetPropertyValueAsString(record["address"]); address != "" {
		unified.Addresses = []model.Address{{Street1: address}}
	}

	unified.FieldMappings = integration.ApplyCustomFieldMappings(record, mappings)
	return unified, nil
}

func (m *OrganizationMapper) Unify(records []integration.RawRecord, mappings []model.Attribute) ([]model.UnifiedCompany, error) {
	unified := make([]model.UnifiedCompany, 0, len(records))
	for i := range records {
		one, err := m.UnifyOne(records[i], mappings)
		if err != nil {
			return nil, err
		}
		unified = append(unified, *one)
	}

	return unified, nil
}

// joinAddress renders a structured address as the single-line form pipedrive
// stores.
func joinAddress(address *model.Address) string {
	parts := make([]string, 0, 4)
	for _, part := range []string{address.Street1, address.City, address.State, address.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, ", ")
}
