package hubspot

import (
	"testing"

	"mosaic/integration"
	"mosaic/model/model"

	"github.com/stretchr/testify/assert"
)

func TestCompanyMapperUnifyOne(t *testing.T) {
	mapper := &CompanyMapper{}

	record := integration.RawRecord{
		"id":                "512",
		"name":              "Globex",
		"industry":          "Manufacturing",
		"numberofemployees": "250",
		"phone":             "+1 555 0100",
		"city":              "Springfield",
		"state":             "OR",
	}

	unified, err := mapper.UnifyOne(record, nil)
	assert.Nil(t, err)
	assert.Equal(t, "Globex", unified.Name)
	assert.Equal(t, "Manufacturing", unified.Industry)
	assert.Equal(t, 250, unified.NumberOfEmployees)
	assert.Equal(t, []model.Phone{{PhoneNumber: "+1 555 0100"}}, unified.PhoneNumbers)
	assert.Equal(t, []model.Address{{City: "Springfield", State: "OR"}}, unified.Addresses)
}

func TestCompanyMapperRoundTrip(t *testing.T) {
	mapper := &CompanyMapper{}

	source := &model.UnifiedCompany{
		Name:              "Globex",
		Industry:          "Manufacturing",
		NumberOfEmployees: 250,
		PhoneNumbers:      []model.Phone{{PhoneNumber: "+1 555 0100"}},
		Addresses:         []model.Address{{City: "Springfield", State: "OR"}},
	}

	record, err := mapper.Desunify(source, nil)
	assert.Nil(t, err)
	assert.Equal(t, "Globex", record["name"])
	assert.Equal(t, "250", record["numberofemployees"])
	assert.Equal(t, "Springfield", record["city"])

	unified, err := mapper.UnifyOne(record, nil)
	assert.Nil(t, err)
	assert.Equal(t, source.Name, unified.Name)
	assert.Equal(t, source.Industry, unified.Industry)
	assert.Equal(t, source.NumberOfEmployees, unified.NumberOfEmployees)
	assert.Equal(t, source.PhoneNumbers, unified.PhoneNumbers)
	assert.Equal(t, source.Addresses, unified.Addresses)
}

func TestCompanyMapperCustomFieldMappings(t *testing.T) {
	mapper := &CompanyMapper{}
	mappings := []model.Attribute{
		{Slug: "fav_dish", RemoteProperty: "hs_fav_dish"},
		{Slug: "region", RemoteProperty: "hs_region"},
	}

	record := integration.RawRecord{
		"id":          "512",
		"name":        "Globex",
		"hs_fav_dish": "pizza",
		// hs_region absent: the slug must be skipped, not zero-filled
	}

	unified, err := mapper.UnifyOne(record, mappings)
	assert.Nil(t, err)

	dish, found := unified.FieldMappings.Get("fav_dish")
	assert.True(t, found)
	assert.Equal(t, "pizza", dish)

	_, found = unified.FieldMappings.Get("region")
	assert.False(t, found)

	source := &model.UnifiedCompany{
		Name:          "Globex",
		FieldMappings: model.CustomFields{{Slug: "fav_dish", Value: "sushi"}, {Slug: "unmapped", Value: "x"}},
	}
	out, err := mapper.Desunify(source, mappings)
	assert.Nil(t, err)
	assert.Equal(t, "sushi", out["hs_fav_dish"])
	_, exists := out["unmapped"]
	assert.False(t, exists)
}

func TestFlattenObjectNormalizesID(t *testing.T) {
	record := flattenObject(map[string]interface{}{
		"id": float64(512),
		"properties": map[string]interface{}{
			"name": "Globex",
		},
	})

	assert.Equal(t, "512", record["id"])
	assert.Equal(t, "Globex", record["name"])
}

func TestUserMapperNameSplit(t *testing.T) {
	mapper := &UserMapper{}

	record, err := mapper.Desunify(&model.UnifiedUser{Name: "Jane Q Public", Email: "jane@globex.test"}, nil)
	assert.Nil(t, err)
	assert.Equal(t, "Jane", record["firstName"])
	assert.Equal(t, "Q Public", record["lastName"])

	unified, err := mapper.UnifyOne(integration.RawRecord{
		"id":        "9",
		"firstName": "Jane",
		"lastName":  "Q Public",
		"email":     "jane@globex.test",
	}, nil)
	assert.Nil(t, err)
	assert.Equal(t, "Jane Q Public", unified.Name)
	assert.Equal(t, "jane@globex.test", unified.Email)
}
