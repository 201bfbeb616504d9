package records

import (
	"net/http"
	"time"

	"mosaic/model/model"
	U "mosaic/util"

	log "github.com/sirupsen/logrus"
)

func (s *Service) AddCompany(linkedUserID, providerSlug string,
	input *model.UnifiedCompany) (*model.UnifiedCompany, int, error) {
	logFields := log.Fields{
		"linked_user_id": linkedUserID,
		"provider_slug":  providerSlug,
	}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if err := s.validateWrite(linkedUserID, providerSlug, U.OBJECT_KIND_COMPANY); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if input == nil {
		return nil, http.StatusBadRequest, &model.ValidationError{
			Field: "company", Reason: "missing company payload"}
	}

	binding, err := s.Registry.Company(providerSlug)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	mappings := s.mappingsFor(providerSlug, linkedUserID, U.OBJECT_KIND_COMPANY)

	record, err := binding.Mapper.Desunify(input, mappings)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	response, err := binding.Adapter.Push(record, linkedUserID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to push company to provider.")
		s.recordEvent(U.OBJECT_KIND_COMPANY, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, http.StatusBadGateway, err
	}

	candidate, err := binding.Mapper.UnifyOne(response.Data, mappings)
	if err != nil {
		s.recordEvent(U.OBJECT_KIND_COMPANY, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, http.StatusBadGateway, err
	}

	// the canonical owner reference comes from the caller, not from the
	// provider payload.
	candidate.UserID = input.UserID

	result, status, err := s.Store.ReconcileCompany(linkedUserID, providerSlug, candidate, response.Data)
	if err != nil {
		logCtx.WithError(err).Error("Failed to reconcile pushed company.")
		s.recordEvent(U.OBJECT_KIND_COMPANY, model.SyncActionCreated,
			U.SYNC_STATUS_FAILURES, model.SyncMethodPush, providerSlug, linkedUserID)
		return nil, status, err
	}

	company, getStatus := s.Store.GetCompany(result.ID, true)
	if getStatus != http.StatusFound {
		return nil, http.StatusInternalServerError, &model.PersistenceError{
			Op: "company_readback", Err: model.ErrNotFound}
	}

	eventID := s.recordEvent(U.OBJECT_KIND_COMPANY, result.Action,
		U.SYNC_STATUS_SUCCESS, model.SyncMethodPush, providerSlug, linkedUserID)
	s.notify(eventID, U.OBJECT_KIND_COMPANY, result.Action, linkedUserID, company)

	return company, status, nil
}

// AddCompanies pushes a batch one record at a time. A failed record is
// logged and skipped so the rest of the batch still lands.
func (s *Service) AddCompanies(linkedUserID, providerSlug string,
	inputs []model.UnifiedCompany) ([]model.UnifiedCompany, int, error) {
	results := make([]model.UnifiedCompany, 0, len(inputs))
	var lastErr error
	lastStatus := http.StatusCreated
	for i := range inputs {
		company, status, err := s.AddCompany(linkedUserID, providerSlug, &inputs[i])
		if err != nil {
			log.WithFields(log.Fields{
				"linked_user_id": linkedUserID,
				"provider_slug":  providerSlug,
				"index":          i,
			}).WithError(err).Error("Failed to add company in batch.")
			lastErr = err
			lastStatus = status
			continue
		}
		results = append(results, *company)
	}

	if len(results) == 0 && lastErr != nil {
		return nil, lastStatus, lastErr
	}

	return results, http.StatusCreated, nil
}

func (s *Service) GetCompany(id string, includeRaw bool) (*model.UnifiedCompany, int) {
	return s.Store.GetCompany(id, includeRaw)
}

func (s *Service) GetCompanies(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedCompany, int) {
	companies, status := s.Store.GetCompanies(providerSlug, linkedUserID, includeRaw)
	if status == http.StatusFound {
		s.recordEvent(U.OBJECT_KIND_COMPANY, model.SyncActionPulled,
			U.SYNC_STATUS_SUCCESS, model.SyncMethodGet, providerSlug, linkedUserID)
	}

	return companies, status
}
