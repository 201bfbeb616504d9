package util

import (
	"github.com/jinzhu/gorm/dialects/postgres"
)

func IsEmptyPostgresJsonb(jsonb *postgres.Jsonb) bool {
	if jsonb == nil {
		return true
	}

	jsonStr := string(jsonb.RawMessage)
	return jsonStr == "" || jsonStr == "null" || jsonStr == "{}"
}
