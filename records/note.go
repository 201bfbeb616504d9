package records

import (
	"net/http"
	"time"

	"mosaic/model/model"
	U "mosaic/util"

	log "github.com/sirupsen/logrus"
)

func (s *Service) AddNote(linkedUserID, providerSlug string,
	input *model.UnifiedNote) (*model.UnifiedNote, int, error) {
	logFields := log.Fields{
		"linked_user_id": linkedUserID,
		"provider_slug":  providerSlug,
	}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if err := s.validateWrite(linkedUserID, providerSlug, U.OBJECT_KIND_NOTE); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if input == nil {
		return nil, http.StatusBadRequest, &model.ValidationError{
			Field: "note", Reason: "missing note payload"}
	}

	binding, err := s.Registry.Note(providerSlug)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	mappings := s.mappingsFor(providerSlug, linkedUserID, U.OBJECT_KIND_NOTE)

	record, err := binding.Mapper.Desunify(input, mappings)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	response, err := binding.Adapter.Push(record, linkedUserID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to push note to provider.")
		s.recordEvent(U.OBJECT_KIND_NOTE, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, http.StatusBadGateway, err
	}

	candidate, err := binding.Mapper.UnifyOne(response.Data, mappings)
	if err != nil {
		s.recordEvent(U.OBJECT_KIND_NOTE, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, http.StatusBadGateway, err
	}

	// canonical references come from the caller, not from the provider
	// payload; carry them onto the reconciled row.
	candidate.CompanyID = input.CompanyID
	candidate.UserID = input.UserID

	result, status, err := s.Store.ReconcileNote(linkedUserID, providerSlug, candidate, response.Data)
	if err != nil {
		logCtx.WithError(err).Error("Failed to reconcile pushed note.")
		s.recordEvent(U.OBJECT_KIND_NOTE, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, status, err
	}

	note, getStatus := s.Store.GetNote(result.ID, true)
	if getStatus != http.StatusFound {
		return nil, http.StatusInternalServerError, &model.PersistenceError{
			Op: "note_readback", Err: model.ErrNotFound}
	}

	eventID := s.recordEvent(U.OBJECT_KIND_NOTE, result.Action,
		U.SYNC_STATUS_SUCCESS, model.SyncMethodPush, providerSlug, linkedUserID)
	s.notify(eventID, U.OBJECT_KIND_NOTE, result.Action, linkedUserID, note)

	return note, status, nil
}

func (s *Service) AddNotes(linkedUserID, providerSlug string,
	inputs []model.UnifiedNote) ([]model.UnifiedNote, int, error) {
	results := make([]model.UnifiedNote, 0, len(inputs))
	var lastErr error
	lastStatus := http.StatusCreated
	for i := range inputs {
		note, status, err := s.AddNote(linkedUserID, providerSlug, &inputs[i])
		if err != nil {
			log.WithFields(log.Fields{
				"linked_user_id": linkedUserID,
				"provider_slug":  providerSlug,
				"index":          i,
			}).WithError(err).Error("Failed to add note in batch.")
			lastErr = err
			lastStatus = status
			continue
		}
		results = append(results, *note)
	}

	if len(results) == 0 && lastErr != nil {
		return nil, lastStatus, lastErr
	}

	return results, http.StatusCreated, nil
}

func (s *Service) GetNote(id string, includeRaw bool) (*model.UnifiedNote, int) {
	return s.Store.GetNote(id, includeRaw)
}

func (s *Service) GetNotes(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedNote, int) {
	notes, status := s.Store.GetNotes(providerSlug, linkedUserID, includeRaw)
	if status == http.StatusFound {
		s.recordEvent(U.OBJECT_KIND_NOTE, model.SyncActionPulled,
			U.SYNC_STATUS_SUCCESS, model.SyncMethodGet, providerSlug, linkedUserID)
	}

	return notes, status
}
