package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomFieldsGetLaterEntryWins(t *testing.T) {
	fields := CustomFields{
		{Slug: "fav_dish", Value: "pizza"},
		{Slug: "fav_color", Value: "red"},
		{Slug: "fav_dish", Value: "sushi"},
	}

	value, found := fields.Get("fav_dish")
	assert.True(t, found)
	assert.Equal(t, "sushi", value)

	_, found = fields.Get("missing")
	assert.False(t, found)
}

func TestCustomFieldsSetPreservesPosition(t *testing.T) {
	fields := CustomFields{
		{Slug: "fav_dish", Value: "pizza"},
		{Slug: "fav_color", Value: "red"},
	}

	fields.Set("fav_dish", "sushi")
	assert.Equal(t, "fav_dish", fields[0].Slug)
	assert.Equal(t, "sushi", fields[0].Value)
	assert.Len(t, fields, 2)

	fields.Set("fav_season", "summer")
	assert.Len(t, fields, 3)
	assert.Equal(t, "fav_season", fields[2].Slug)
}

func TestCustomFieldsWireShape(t *testing.T) {
	fields := CustomFields{
		{Slug: "fav_dish", Value: "pizza"},
		{Slug: "seats", Value: float64(12)},
	}

	encoded, err := json.Marshal(fields)
	assert.Nil(t, err)
	assert.Equal(t, `[{"fav_dish":"pizza"},{"seats":12}]`, string(encoded))

	var decoded CustomFields
	assert.Nil(t, json.Unmarshal(encoded, &decoded))
	assert.Len(t, decoded, 2)

	dish, found := decoded.Get("fav_dish")
	assert.True(t, found)
	assert.Equal(t, "pizza", dish)

	seats, found := decoded.Get("seats")
	assert.True(t, found)
	assert.Equal(t, float64(12), seats)
}

func TestCustomFieldsUnmarshalRejectsNonList(t *testing.T) {
	var decoded CustomFields
	assert.NotNil(t, json.Unmarshal([]byte(`{"fav_dish":"pizza"}`), &decoded))
}
