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

func (store *Postgres) ReconcileComment(linkedUserID, providerSlug string,
	candidate *model.UnifiedComment, raw map[string]interface{}) (*model.ReconcileResult, int, error) {
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
			model.NewMissingOriginIDError(providerSlug, U.OBJECT_KIND_COMMENT)
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

	var existing model.TicketingComment
	err = tx.Where("remote_id = ? AND remote_platform = ? AND linked_user_id = ?",
		originID, providerSlug, linkedUserID).Limit(1).Find(&existing).Error
	notFound := gorm.IsRecordNotFoundError(err)
	if err != nil && !notFound {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to look up comment by identity.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "comment_lookup", Err: err}
	}

	result := &model.ReconcileResult{}
	if !notFound {
		updates := make(map[string]interface{})
		if candidate.Body != "" {
			updates["body"] = candidate.Body
		}
		if candidate.HTMLBody != "" {
			updates["html_body"] = candidate.HTMLBody
		}
		if candidate.AuthorID != "" {
			updates["author_id"] = candidate.AuthorID
		}
		// is_private is a boolean core field mapped by fixed provider rules;
		// it is always present on a unified comment and always written.
		updates["is_private"] = candidate.IsPrivate

		if err := tx.Model(&model.TicketingComment{}).Where("id = ?", existing.ID).
			Updates(updates).Error; err != nil {
			tx.Rollback()
			logCtx.WithError(err).Error("Failed to update comment.")
			return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "comment_update", Err: err}
		}

		result.ID = existing.ID
		result.Action = model.SyncActionUpdated
	} else {
		comment := model.TicketingComment{
			ID:             uuid.New().String(),
			LinkedUserID:   linkedUserID,
			RemoteID:       originID,
			RemotePlatform: providerSlug,
			Body:           candidate.Body,
			HTMLBody:       candidate.HTMLBody,
			IsPrivate:      candidate.IsPrivate,
			AuthorID:       candidate.AuthorID,
		}
		if err := tx.Create(&comment).Error; err != nil {
			tx.Rollback()
			logCtx.WithError(err).Error("Failed to create comment.")
			return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "comment_create", Err: err}
		}

		result.ID = comment.ID
		result.Action = model.SyncActionCreated
	}

	if err := upsertCustomFieldValues(tx, result.ID, providerSlug, linkedUserID,
		U.OBJECT_KIND_COMMENT, candidate.FieldMappings); err != nil {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to upsert comment custom fields.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "comment_custom_fields", Err: err}
	}

	if err := upsertRemoteData(tx, result.ID, rawBytes); err != nil {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to upsert comment remote data.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "comment_remote_data", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "commit", Err: err}
	}

	if result.Action == model.SyncActionCreated {
		return result, http.StatusCreated, nil
	}
	return result, http.StatusAccepted, nil
}

func assembleUnifiedComment(db *gorm.DB, comment *model.TicketingComment, includeRaw bool) (*model.UnifiedComment, int) {
	unified := &model.UnifiedComment{
		ID:        comment.ID,
		Body:      comment.Body,
		HTMLBody:  comment.HTMLBody,
		IsPrivate: comment.IsPrivate,
		AuthorID:  comment.AuthorID,
	}

	fields, status := getCustomFieldsForOwner(db, comment.ID)
	if status != http.StatusFound {
		return nil, status
	}
	unified.FieldMappings = fields

	if includeRaw {
		raw, status := getRemoteDataForOwner(db, comment.ID)
		if status == http.StatusFound {
			unified.RemoteData = raw
		} else if status != http.StatusNotFound {
			return nil, status
		}
	}

	return unified, http.StatusFound
}

func (store *Postgres) GetComment(id string, includeRaw bool) (*model.UnifiedComment, int) {
	logFields := log.Fields{"comment_id": id}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	if id == "" {
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	var comment model.TicketingComment
	err := db.Where("id = ?", id).Limit(1).Find(&comment).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		log.WithFields(logFields).WithError(err).Error("Failed to get comment.")
		return nil, http.StatusInternalServerError
	}

	return assembleUnifiedComment(db, &comment, includeRaw)
}

func (store *Postgres) GetComments(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedComment, int) {
	logFields := log.Fields{"provider_slug": providerSlug, "linked_user_id": linkedUserID}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	if providerSlug == "" || linkedUserID == "" {
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	var comments []model.TicketingComment
	err := db.Where("remote_platform = ? AND linked_user_id = ?",
		providerSlug, linkedUserID).Order("created_at").Find(&comments).Error
	if err != nil {
		log.WithFields(logFields).WithError(err).Error("Failed to get comments.")
		return nil, http.StatusInternalServerError
	}

	unified := make([]model.UnifiedComment, 0, len(comments))
	for i := range comments {
		one, status := assembleUnifiedComment(db, &comments[i], includeRaw)
		if status != http.StatusFound {
			return nil, status
		}
		unified = append(unified, *one)
	}

	return unified, http.StatusFound
}
