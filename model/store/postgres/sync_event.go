package postgres

import (
	"errors"
	"net/http"
	"time"

	C "mosaic/config"
	"mosaic/model/model"

	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"
)

// CreateSyncEvent appends one audit row. Events are never updated or deleted.
func (store *Postgres) CreateSyncEvent(event *model.SyncEvent) (int, error) {
	logFields := log.Fields{
		"type":           event.Type,
		"status":         event.Status,
		"provider":       event.Provider,
		"linked_user_id": event.LinkedUserID,
	}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if event.Type == "" || event.Status == "" {
		logCtx.Error("Missing required parameters.")
		return http.StatusBadRequest, errors.New("missing required fields type, status")
	}

	if event.ID == "" {
		event.ID = xid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	db := C.GetServices().Db
	if err := db.Create(event).Error; err != nil {
		logCtx.WithError(err).Error("Failed to create sync event.")
		return http.StatusInternalServerError, err
	}

	return http.StatusCreated, nil
}
