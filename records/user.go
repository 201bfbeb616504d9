package records

import (
	"net/http"
	"time"

	"mosaic/model/model"
	U "mosaic/util"

	log "github.com/sirupsen/logrus"
)

func (s *Service) AddUser(linkedUserID, providerSlug string,
	input *model.UnifiedUser) (*model.UnifiedUser, int, error) {
	logFields := log.Fields{
		"linked_user_id": linkedUserID,
		"provider_slug":  providerSlug,
	}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if err := s.validateWrite(linkedUserID, providerSlug, U.OBJECT_KIND_USER); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if input == nil {
		return nil, http.StatusBadRequest, &model.ValidationError{
			Field: "user", Reason: "missing user payload"}
	}

	binding, err := s.Registry.User(providerSlug)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	mappings := s.mappingsFor(providerSlug, linkedUserID, U.OBJECT_KIND_USER)

	record, err := binding.Mapper.Desunify(input, mappings)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	response, err := binding.Adapter.Push(record, linkedUserID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to push user to provider.")
		s.recordEvent(U.OBJECT_KIND_USER, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, http.StatusBadGateway, err
	}

	candidate, err := binding.Mapper.UnifyOne(response.Data, mappings)
	if err != nil {
		s.recordEvent(U.OBJECT_KIND_USER, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, http.StatusBadGateway, err
	}

	result, status, err := s.Store.ReconcileUser(linkedUserID, providerSlug, candidate, response.Data)
	if err != nil {
		logCtx.WithError(err).Error("Failed to reconcile pushed user.")
		s.recordEvent(U.OBJECT_KIND_USER, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, status, err
	}

	user, getStatus := s.Store.GetUser(result.ID, true)
	if getStatus != http.StatusFound {
		return nil, http.StatusInternalServerError, &model.PersistenceError{
			Op: "user_readback", Err: model.ErrNotFound}
	}

	eventID := s.recordEvent(U.OBJECT_KIND_USER, result.Action,
		U.SYNC_STATUS_SUCCESS, model.SyncMethodPush, providerSlug, linkedUserID)
	s.notify(eventID, U.OBJECT_KIND_USER, result.Action, linkedUserID, user)

	return user, status, nil
}

func (s *Service) AddUsers(linkedUserID, providerSlug string,
	inputs []model.UnifiedUser) ([]model.UnifiedUser, int, error) {
	results := make([]model.UnifiedUser, 0, len(inputs))
	var lastErr error
	lastStatus := http.StatusCreated
	for i := range inputs {
		user, status, err := s.AddUser(linkedUserID, providerSlug, &inputs[i])
		if err != nil {
			log.WithFields(log.Fields{
				"linked_user_id": linkedUserID,
				"provider_slug":  providerSlug,
				"index":          i,
			}).WithError(err).Error("Failed to add user in batch.")
			lastErr = err
			lastStatus = status
			continue
		}
		results = append(results, *user)
	}

	if len(results) == 0 && lastErr != nil {
		return nil, lastStatus, lastErr
	}

	return results, http.StatusCreated, nil
}

func (s *Service) GetUser(id string, includeRaw bool) (*model.UnifiedUser, int) {
	return s.Store.GetUser(id, includeRaw)
}

func (s *Service) GetUsers(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedUser, int) {
	users, status := s.Store.GetUsers(providerSlug, linkedUserID, includeRaw)
	if status == http.StatusFound {
		s.recordEvent(U.OBJECT_KIND_USER, model.SyncActionPulled,
			U.SYNC_STATUS_SUCCESS, model.SyncMethodGet, providerSlug, linkedUserID)
	}

	return users, status
}
