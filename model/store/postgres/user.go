package postgres

import (
	"encoding/json"
	"net/http"
	"time"

	C "mosaic/config"
	"mosaic/model/model"
	U "mosaic/util"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

func (store *Postgres) ReconcileUser(linkedUserID, providerSlug string,
	candidate *model.UnifiedUser, raw map[string]interface{}) (*model.ReconcileResult, int, error) {
	logFields := log.Fields{
		"linked_user_id": linkedUserID,
		"provider_slug":  providerSlug,
	}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if linkedUserID == "" || providerSlug == "" || candidate == nil {
		logCtx.Error("Missing required parameters.")
		return nil, http.StatusBadRequest, &model.ValidationError{
			Field: "linked_user_id", Reason: "missing required reconcile parameters"}
	}

	originID := model.GetRecordOriginID(raw)
	if originID == "" {
		return nil, http.StatusBadRequest,
			model.NewMissingOriginIDError(providerSlug, U.OBJECT_KIND_USER)
	}

	rawBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, http.StatusBadRequest, &model.ValidationError{
			Field: "remote_data", Reason: "raw record not serializable"}
	}

	unlock := lockIdentity(originID, providerSlug, linkedUserID)
	defer unlock()

	db := C.GetServices().Db
	tx := db.Begin()
	if tx.Error != nil {
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "begin", Err: tx.Error}
	}
	defer rollbackOnPanic(tx)

	var existing model.CRMUser
	err = tx.Where("remote_id = ? AND remote_platform = ? AND linked_user_id = ?",
		originID, providerSlug, linkedUserID).Limit(1).Find(&existing).Error
	notFound := gorm.IsRecordNotFoundError(err)
	if err != nil && !notFound {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to look up user by identity.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "user_lookup", Err: err}
	}

	result := &model.ReconcileResult{}
	if !notFound {
		updates := make(map[string]interface{})
		if candidate.Name != "" {
			updates["name"] = candidate.Name
		}
		if candidate.Email != "" {
			updates["email"] = candidate.Email
		}

		if len(updates) > 0 {
			if err := tx.Model(&model.CRMUser{}).Where("id = ?", existing.ID).
				Updates(updates).Error; err != nil {
				tx.Rollback()
				logCtx.WithError(err).Error("Failed to update user.")
				return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "user_update", Err: err}
			}
		}

		result.ID = existing.ID
		result.Action = model.SyncActionUpdated
	} else {
		user := model.CRMUser{
			ID:             uuid.New().String(),
			LinkedUserID:   linkedUserID,
			RemoteID:       originID,
			RemotePlatform: providerSlug,
			Name:           candidate.Name,
			Email:          candidate.Email,
		}
		if err := tx.Create(&user).Error; err != nil {
			tx.Rollback()
			logCtx.WithError(err).Error("Failed to create user.")
			return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "user_create", Err: err}
		}

		result.ID = user.ID
		result.Action = model.SyncActionCreated
	}

	if err := upsertCustomFieldValues(tx, result.ID, providerSlug, linkedUserID,
		U.OBJECT_KIND_USER, candidate.FieldMappings); err != nil {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to upsert user custom fields.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "user_custom_fields", Err: err}
	}

	if err := upsertRemoteData(tx, result.ID, rawBytes); err != nil {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to upsert user remote data.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "user_remote_data", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "commit", Err: err}
	}

	if result.Action == model.SyncActionCreated {
		return result, http.StatusCreated, nil
	}
	return result, http.StatusAccepted, nil
}

func assembleUnifiedUser(db *gorm.DB, user *model.CRMUser, includeRaw bool) (*model.UnifiedUser, int) {
	unified := &model.UnifiedUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}

	fields, status := getCustomFieldsForOwner(db, user.ID)
	if status != http.StatusFound {
		return nil, status
	}
	unified.FieldMappings = fields

	if includeRaw {
		raw, status := getRemoteDataForOwner(db, user.ID)
		if status == http.StatusFound {
			unified.RemoteData = raw
		} else if status != http.StatusNotFound {
			return nil, status
		}
	}

	return unified, http.StatusFound
}

func (store *Postgres) GetUser(id string, includeRaw bool) (*model.UnifiedUser, int) {
	logFields := log.Fields{"user_id": id}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	if id == "" {
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	var user model.CRMUser
	err := db.Where("id = ?", id).Limit(1).Find(&user).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		log.WithFields(logFields).WithError(err).Error("Failed to get user.")
		return nil, http.StatusInternalServerError
	}

	return assembleUnifiedUser(db, &user, includeRaw)
}

func (store *Postgres) GetUsers(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedUser, int) {
	logFields := log.Fields{"provider_slug": providerSlug, "linked_user_id": linkedUserID}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	if providerSlug == "" || linkedUserID == "" {
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	var users []model.CRMUser
	err := db.Where("remote_platform = ? AND linked_user_id = ?",
		providerSlug, linkedUserID).Order("created_at").Find(&users).Error
	if err != nil {
		log.WithFields(logFields).WithError(err).Error("Failed to get users.")
		return nil, http.StatusInternalServerError
	}

	unified := make([]model.UnifiedUser, 0, len(users))
	for i := range users {
		one, status := assembleUnifiedUser(db, &users[i], includeRaw)
		if status != http.StatusFound {
			return nil, status
		}
		unified = append(unified, *one)
	}

	return unified, http.StatusFound
}

// GetUserRemoteID resolves a canonical user id to its provider-native id,
// for desunify-side reference rewriting.
func (store *Postgres) GetUserRemoteID(id string) (string, int) {
	if id == "" {
		return "", http.StatusBadRequest
	}

	db := C.GetServices().Db
	var user model.CRMUser
	err := db.Where("id = ?", id).Select("remote_id").Limit(1).Find(&user).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return "", http.StatusNotFound
		}
		return "", http.StatusInternalServerError
	}

	return user.RemoteID, http.StatusFound
}
