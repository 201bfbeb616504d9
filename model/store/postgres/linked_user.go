package postgres

import (
	"errors"
	"net/http"
	"time"

	C "mosaic/config"
	"mosaic/model/model"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

func (store *Postgres) CreateLinkedUser(linkedUser *model.LinkedUser) (int, error) {
	logFields := log.Fields{"alias": linkedUser.Alias}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	if linkedUser.ID == "" {
		linkedUser.ID = uuid.New().String()
	}
	linkedUser.Active = true

	db := C.GetServices().Db
	if err := db.Create(linkedUser).Error; err != nil {
		log.WithFields(logFields).WithError(err).Error("Failed to create linked user.")
		return http.StatusInternalServerError, err
	}

	return http.StatusCreated, nil
}

func (store *Postgres) GetLinkedUser(id string) (*model.LinkedUser, int) {
	logFields := log.Fields{"linked_user_id": id}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if id == "" {
		logCtx.Error("Missing linked_user_id.")
		return nil, http.StatusBadRequest
	}

	var linkedUser model.LinkedUser
	db := C.GetServices().Db
	err := db.Where("id = ?", id).Limit(1).Find(&linkedUser).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		logCtx.WithError(err).Error("Failed to get linked user.")
		return nil, http.StatusInternalServerError
	}

	return &linkedUser, http.StatusFound
}

func (store *Postgres) GetAllLinkedUsers() ([]model.LinkedUser, int) {
	logFields := log.Fields{}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	var linkedUsers []model.LinkedUser
	db := C.GetServices().Db
	err := db.Where("active = ?", true).Order("created_at").Find(&linkedUsers).Error
	if err != nil {
		log.WithError(err).Error("Failed to get linked users.")
		return nil, http.StatusInternalServerError
	}

	if len(linkedUsers) == 0 {
		return nil, http.StatusNotFound
	}

	return linkedUsers, http.StatusFound
}

func (store *Postgres) CreateConnection(connection *model.Connection) (int, error) {
	logFields := log.Fields{
		"linked_user_id": connection.LinkedUserID,
		"provider_slug":  connection.ProviderSlug,
	}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if connection.LinkedUserID == "" || connection.ProviderSlug == "" || connection.AccessToken == "" {
		logCtx.Error("Missing required parameters.")
		return http.StatusBadRequest, errors.New("missing required fields linked_user_id, provider_slug, access_token")
	}

	if connection.ID == "" {
		connection.ID = uuid.New().String()
	}

	db := C.GetServices().Db
	if err := db.Create(connection).Error; err != nil {
		if IsDuplicateRecordError(err) {
			return http.StatusConflict, nil
		}

		logCtx.WithError(err).Error("Failed to create connection.")
		return http.StatusInternalServerError, err
	}

	return http.StatusCreated, nil
}

// GetConnection resolves the credential handle for a (tenant, provider) pair.
// StatusNotFound means the pair has no connection and a sweep should skip it.
func (store *Postgres) GetConnection(linkedUserID, providerSlug string) (*model.Connection, int) {
	logFields := log.Fields{
		"linked_user_id": linkedUserID,
		"provider_slug":  providerSlug,
	}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if linkedUserID == "" || providerSlug == "" {
		logCtx.Error("Missing required parameters.")
		return nil, http.StatusBadRequest
	}

	var connection model.Connection
	db := C.GetServices().Db
	err := db.Where("linked_user_id = ? AND provider_slug = ?",
		linkedUserID, providerSlug).Limit(1).Find(&connection).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		logCtx.WithError(err).Error("Failed to get connection.")
		return nil, http.StatusInternalServerError
	}

	return &connection, http.StatusFound
}

func (store *Postgres) CreateWebhookEndpoint(endpoint *model.WebhookEndpoint) (int, error) {
	logFields := log.Fields{"linked_user_id": endpoint.LinkedUserID, "url": endpoint.URL}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if endpoint.LinkedUserID == "" || endpoint.URL == "" {
		logCtx.Error("Missing required parameters.")
		return http.StatusBadRequest, errors.New("missing required fields linked_user_id, url")
	}

	if endpoint.ID == "" {
		endpoint.ID = uuid.New().String()
	}
	endpoint.Active = true

	db := C.GetServices().Db
	if err := db.Create(endpoint).Error; err != nil {
		logCtx.WithError(err).Error("Failed to create webhook endpoint.")
		return http.StatusInternalServerError, err
	}

	return http.StatusCreated, nil
}

func (store *Postgres) GetActiveWebhookEndpoints(linkedUserID string) ([]model.WebhookEndpoint, int) {
	logFields := log.Fields{"linked_user_id": linkedUserID}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	if linkedUserID == "" {
		return nil, http.StatusBadRequest
	}

	var endpoints []model.WebhookEndpoint
	db := C.GetServices().Db
	err := db.Where("linked_user_id = ? AND active = ?", linkedUserID, true).
		Find(&endpoints).Error
	if err != nil {
		log.WithFields(logFields).WithError(err).Error("Failed to get webhook endpoints.")
		return nil, http.StatusInternalServerError
	}

	if len(endpoints) == 0 {
		return nil, http.StatusNotFound
	}

	return endpoints, http.StatusFound
}
