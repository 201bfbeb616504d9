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

func (store *Postgres) ReconcileNote(linkedUserID, providerSlug string,
	candidate *model.UnifiedNote, raw map[string]interface{}) (*model.ReconcileResult, int, error) {
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
			model.NewMissingOriginIDError(providerSlug, U.OBJECT_KIND_NOTE)
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

	var existing model.CRMNote
	err = tx.Where("remote_id = ? AND remote_platform = ? AND linked_user_id = ?",
		originID, providerSlug, linkedUserID).Limit(1).Find(&existing).Error
	notFound := gorm.IsRecordNotFoundError(err)
	if err != nil && !notFound {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to look up note by identity.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "note_lookup", Err: err}
	}

	result := &model.ReconcileResult{}
	if !notFound {
		updates := make(map[string]interface{})
		if candidate.Content != "" {
			updates["content"] = candidate.Content
		}
		if candidate.CompanyID != "" {
			updates["company_id"] = candidate.CompanyID
		}
		if candidate.UserID != "" {
			updates["user_id"] = candidate.UserID
		}

		if len(updates) > 0 {
			if err := tx.Model(&model.CRMNote{}).Where("id = ?", existing.ID).
				Updates(updates).Error; err != nil {
				tx.Rollback()
				logCtx.WithError(err).Error("Failed to update note.")
				return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "note_update", Err: err}
			}
		}

		result.ID = existing.ID
		result.Action = model.SyncActionUpdated
	} else {
		note := model.CRMNote{
			ID:             uuid.New().String(),
			LinkedUserID:   linkedUserID,
			RemoteID:       originID,
			RemotePlatform: providerSlug,
			Content:        candidate.Content,
			CompanyID:      candidate.CompanyID,
			UserID:         candidate.UserID,
		}
		if err := tx.Create(&note).Error; err != nil {
			tx.Rollback()
			logCtx.WithError(err).Error("Failed to create note.")
			return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "note_create", Err: err}
		}

		result.ID = note.ID
		result.Action = model.SyncActionCreated
	}

	if err := upsertCustomFieldValues(tx, result.ID, providerSlug, linkedUserID,
		U.OBJECT_KIND_NOTE, candidate.FieldMappings); err != nil {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to upsert note custom fields.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "note_custom_fields", Err: err}
	}

	if err := upsertRemoteData(tx, result.ID, rawBytes); err != nil {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to upsert note remote data.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "note_remote_data", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "commit", Err: err}
	}

	if result.Action == model.SyncActionCreated {
		return result, http.StatusCreated, nil
	}
	return result, http.StatusAccepted, nil
}

func assembleUnifiedNote(db *gorm.DB, note *model.CRMNote, includeRaw bool) (*model.UnifiedNote, int) {
	unified := &model.UnifiedNote{
		ID:        note.ID,
		Content:   note.Content,
		CompanyID: note.CompanyID,
		UserID:    note.UserID,
	}

	fields, status := getCustomFieldsForOwner(db, note.ID)
	if status != http.StatusFound {
		return nil, status
	}
	unified.FieldMappings = fields

	if includeRaw {
		raw, status := getRemoteDataForOwner(db, note.ID)
		if status == http.StatusFound {
			unified.RemoteData = raw
		} else if status != http.StatusNotFound {
			return nil, status
		}
	}

	return unified, http.StatusFound
}

func (store *Postgres) GetNote(id string, includeRaw bool) (*model.UnifiedNote, int) {
	logFields := log.Fields{"note_id": id}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	if id == "" {
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	var note model.CRMNote
	err := db.Where("id = ?", id).Limit(1).Find(&note).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		log.WithFields(logFields).WithError(err).Error("Failed to get note.")
		return nil, http.StatusInternalServerError
	}

	return assembleUnifiedNote(db, &note, includeRaw)
}

func (store *Postgres) GetNotes(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedNote, int) {
	logFields := log.Fields{"provider_slug": providerSlug, "linked_user_id": linkedUserID}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	if providerSlug == "" || linkedUserID == "" {
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	var notes []model.CRMNote
	err := db.Where("remote_platform = ? AND linked_user_id = ?",
		providerSlug, linkedUserID).Order("created_at").Find(&notes).Error
	if err != nil {
		log.WithFields(logFields).WithError(err).Error("Failed to get notes.")
		return nil, http.StatusInternalServerError
	}

	unified := make([]model.UnifiedNote, 0, len(notes))
	for i := range notes {
		one, status := assembleUnifiedNote(db, &notes[i], includeRaw)
		if status != http.StatusFound {
			return nil, status
		}
		unified = append(unified, *one)
	}

	return unified, http.StatusFound
}
