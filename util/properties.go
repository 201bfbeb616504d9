package util

import (
	"fmt"
	"strconv"
)

// GetPropertyValueAsString coerces a raw provider property into string form.
// Numeric values come out of encoding/json as float64; whole floats are
// rendered without the fractional part so remote ids survive the round trip.
func GetPropertyValueAsString(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func GetPropertyValueAsFloat64(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// IsEmptyPropertyValue reports whether a custom-field value counts as falsy
// for EAV persistence. Falsy values are stored as the literal string "null".
func IsEmptyPropertyValue(value interface{}) bool {
	if value == nil {
		return true
	}

	switch v := value.(type) {
	case string:
		return v == ""
	case float64:
		return v == 0
	case int:
		return v == 0
	case bool:
		return !v
	default:
		return false
	}
}
