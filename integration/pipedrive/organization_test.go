package pipedrive

import (
	"testing"

	"mosaic/integration"
	"mosaic/model/model"

	"github.com/stretchr/testify/assert"
)

func TestOrganizationMapperUnifyOne(t *testing.T) {
	mapper := &OrganizationMapper{}

	unified, err := mapper.UnifyOne(integration.RawRecord{
		"id":           "42",
		"name":         "Globex",
		"people_count": float64(250),
		"address":      "742 Evergreen Terrace, Springfield",
	}, nil)
	assert.Nil(t, err)
	assert.Equal(t, "Globex", unified.Name)
	assert.Equal(t, 250, unified.NumberOfEmployees)
	assert.Equal(t, []model.Address{{Street1: "742 Evergreen Terrace, Springfield"}}, unified.Addresses)
}

func TestOrganizationMapperDesunifyAddressJoin(t *testing.T) {
	mapper := &OrganizationMapper{}

	record, err := mapper.Desunify(&model.UnifiedCompany{
		Name:              "Globex",
		NumberOfEmployees: 250,
		Addresses: []model.Address{{
			Street1: "742 Evergreen Terrace",
			City:    "Springfield",
			State:   "OR",
		}},
	}, nil)
	assert.Nil(t, err)
	assert.Equal(t, "Globex", record["name"])
	assert.Equal(t, 250, record["people_count"])
	assert.Equal(t, "742 Evergreen Terrace, Springfield, OR", record["address"])
}

func TestFlattenDataNormalizesNumericID(t *testing.T) {
	record := flattenData(map[string]interface{}{
		"id":   float64(42),
		"name": "Globex",
	})

	assert.Equal(t, "42", record["id"])
}

func TestNextPageStart(t *testing.T) {
	start, more := nextPageStart(map[string]interface{}{
		"additional_data": map[string]interface{}{
			"pagination": map[string]interface{}{
				"more_items_in_collection": true,
				"next_start":               float64(100),
			},
		},
	})
	assert.True(t, more)
	assert.Equal(t, 100, start)

	_, more = nextPageStart(map[string]interface{}{
		"additional_data": map[string]interface{}{
			"pagination": map[string]interface{}{
				"more_items_in_collection": false,
			},
		},
	})
	assert.False(t, more)

	_, more = nextPageStart(map[string]interface{}{})
	assert.False(t, more)
}
