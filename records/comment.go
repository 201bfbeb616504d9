package records

import (
	"net/http"
	"time"

	"mosaic/model/model"
	U "mosaic/util"

	log "github.com/sirupsen/logrus"
)

func (s *Service) AddComment(linkedUserID, providerSlug string,
	input *model.UnifiedComment) (*model.UnifiedComment, int, error) {
	logFields := log.Fields{
		"linked_user_id": linkedUserID,
		"provider_slug":  providerSlug,
	}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if err := s.validateWrite(linkedUserID, providerSlug, U.OBJECT_KIND_COMMENT); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if input == nil {
		return nil, http.StatusBadRequest, &model.ValidationError{
			Field: "comment", Reason: "missing comment payload"}
	}

	binding, err := s.Registry.Comment(providerSlug)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	mappings := s.mappingsFor(providerSlug, linkedUserID, U.OBJECT_KIND_COMMENT)

	record, err := binding.Mapper.Desunify(input, mappings)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	response, err := binding.Adapter.Push(record, linkedUserID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to push comment to provider.")
		s.recordEvent(U.OBJECT_KIND_COMMENT, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, http.StatusBadGateway, err
	}

	candidate, err := binding.Mapper.UnifyOne(response.Data, mappings)
	if err != nil {
		s.recordEvent(U.OBJECT_KIND_COMMENT, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, http.StatusBadGateway, err
	}

	candidate.AuthorID = input.AuthorID

	result, status, err := s.Store.ReconcileComment(linkedUserID, providerSlug, candidate, response.Data)
	if err != nil {
		logCtx.WithError(err).Error("Failed to reconcile pushed comment.")
		s.recordEvent(U.OBJECT_KIND_COMMENT, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, status, err
	}

	comment, getStatus := s.Store.GetComment(result.ID, true)
	if getStatus != http.StatusFound {
		return nil, http.StatusInternalServerError, &model.PersistenceError{
			Op: "comment_readback", Err: model.ErrNotFound}
	}

	eventID := s.recordEvent(U.OBJECT_KIND_COMMENT, result.Action,
		U.SYNC_STATUS_SUCCESS, model.SyncMethodPush, providerSlug, linkedUserID)
	s.notify(eventID, U.OBJECT_KIND_COMMENT, result.Action, linkedUserID, comment)

	return comment, status, nil
}

func (s *Service) AddComments(linkedUserID, providerSlug string,
	inputs []model.UnifiedComment) ([]model.UnifiedComment, int, error) {
	results := make([]model.UnifiedComment, 0, len(inputs))
	var lastErr error
	lastStatus := http.StatusCreated
	for i := range inputs {
		comment, status, err := s.AddComment(linkedUserID, providerSlug, &inputs[i])
		if err != nil {
			log.WithFields(log.Fields{
				"linked_user_id": linkedUserID,
				"provider_slug":  providerSlug,
				"index":          i,
			}).WithError(err).Error("Failed to add comment in batch.")
			lastErr = err
			lastStatus = status
			continue
		}
		results = append(results, *comment)
	}

	if len(results) == 0 && lastErr != nil {
		return nil, lastStatus, lastErr
	}

	return results, http.StatusCreated, nil
}

func (s *Service) GetComment(id string, includeRaw bool) (*model.UnifiedComment, int) {
	return s.Store.GetComment(id, includeRaw)
}

func (s *Service) GetComments(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedComment, int) {
	comments, status := s.Store.GetComments(providerSlug, linkedUserID, includeRaw)
	if status == http.StatusFound {
		s.recordEvent(U.OBJECT_KIND_COMMENT, model.SyncActionPulled,
			U.SYNC_STATUS_SUCCESS, model.SyncMethodGet, providerSlug, linkedUserID)
	}

	return comments, status
}
