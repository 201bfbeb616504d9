package model

import (
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const slowExecutionThreshold = 100 * time.Millisecond

// LogOnSlowExecutionWithParams logs store operations exceeding the slow
// threshold. Use with defer at the top of a store method.
func LogOnSlowExecutionWithParams(startTime time.Time, logFields *log.Fields) {
	elapsed := time.Since(startTime)
	if elapsed < slowExecutionThreshold {
		return
	}

	log.WithFields(*logFields).WithField("took", elapsed.String()).
		Warn("Slow db execution.")
}

// GetRecordOriginID extracts the provider-native identifier from a raw
// record. Adapters normalize pulled records so the id sits under "id";
// numeric ids are coerced to their string form.
func GetRecordOriginID(record map[string]interface{}) string {
	value, exists := record["id"]
	if !exists || value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return ""
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
