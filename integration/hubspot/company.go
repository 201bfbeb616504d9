package hubspot

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mosaic/integration"
	"mosaic/model/model"
	U "mosaic/util"
)

const companiesPath = "/crm/v3/objects/companies"

// Core company properties requested on every pull, independent of tenant
// field mappings.
var companyProperties = []string{"name", "industry", "numberofemployees", "phone", "city", "state"}

type CompanyAdapter struct {
	Client *Client
}

func (a *CompanyAdapter) Push(record integration.RawRecord, linkedUserID string) (*integration.Response, error) {
	payload := map[string]interface{}{"properties": record}
	object, status, err := a.Client.doJSON(http.MethodPost, companiesPath,
		linkedUserID, U.OBJECT_KIND_COMPANY, nil, payload)
	if err != nil {
		return nil, err
	}

	return &integration.Response{Data: flattenObject(object), StatusCode: status}, nil
}

func (a *CompanyAdapter) Pull(linkedUserID string, extraProperties []string) (*integration.ListResponse, error) {
	properties := append(append([]string{}, companyProperties...), extraProperties...)

	query := url.Values{}
	query.Set("properties", strings.Join(properties, ","))
	query.Set("limit", "100")

	records := make([]integration.RawRecord, 0)
	lastStatus := http.StatusOK
	for {
		payload, status, err := a.Client.doJSON(http.MethodGet, companiesPath,
			linkedUserID, U.OBJECT_KIND_COMPANY, query, nil)
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

type CompanyMapper struct{}

func (m *CompanyMapper) Desunify(source *model.UnifiedCompany, mappings []model.Attribute) (integration.RawRecord, error) {
	if source == nil {
		return nil, &model.ValidationError{Field: "company", Reason: "nil unified company"}
	}

	record := integration.RawRecord{}
	if source.Name != "" {
		record["name"] = source.Name
	}
	if source.Industry != "" {
		record["industry"] = source.Industry
	}
	if source.NumberOfEmployees > 0 {
		record["numberofemployees"] = strconv.Itoa(source.NumberOfEmployees)
	}
	if len(source.PhoneNumbers) > 0 && source.PhoneNumbers[0].PhoneNumber != "" {
		record["phone"] = source.PhoneNumbers[0].PhoneNumber
	}
	if len(source.Addresses) > 0 {
		if source.Addresses[0].City != "" {
			record["city"] = source.Addresses[0].City
		}
		if source.Addresses[0].State != "" {
			record["state"] = source.Addresses[0].State
		}
	}

	integration.ApplyDesunifyMappings(record, source.FieldMappings, mappings)
	return record, nil
}

func (m *CompanyMapper) UnifyOne(record integration.RawRecord, mappings []model.Attribute) (*model.UnifiedCompany, error) {
	unified := &model.UnifiedCompany{
		Name:              U.GetPropertyValueAsString(record["name"]),
		Industry:          U.GetPropertyValueAsString(record["industry"]),
		NumberOfEmployees: int(U.GetPropertyValueAsFloat64(record["numberofemployees"])),
	}

	if phone := U.GetPropertyValueAsString(record["phone"]); phone != "" {
		unified.PhoneNumbers = []model.Phone{{PhoneNumber: phone}}
	}

	city := U.GetPropertyValueAsString(record["city"])
	state := U.GetPropertyValueAsString(record["state"])
	if city != "" || state != "" {
		unified.Addresses = []model.Address{{City: city, State: state}}
	}

	unified.FieldMappings = integration.ApplyCustomFieldMappings(record, mappings)
	return unified, nil
}

func (m *CompanyMapper) Unify(records []integration.RawRecord, mappings []model.Attribute) ([]model.UnifiedCompany, error) {
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
