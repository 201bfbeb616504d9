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

// ReconcileCompany applies one unified candidate to the store. Sparse-patch
// contract: a present field overwrites, an absent field never clears.
// Sub-collections are paired by position; stored rows beyond the candidate's
// length stay untouched. The whole write is one transaction serialized per
// identity triple.
func (store *Postgres) ReconcileCompany(linkedUserID, providerSlug string,
	candidate *model.UnifiedCompany, raw map[string]interface{}) (*model.ReconcileResult, int, error) {
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
			model.NewMissingOriginIDError(providerSlug, U.OBJECT_KIND_COMPANY)
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

	var existing model.CRMCompany
	err = tx.Where("remote_id = ? AND remote_platform = ? AND linked_user_id = ?",
		originID, providerSlug, linkedUserID).Limit(1).Find(&existing).Error
	notFound := gorm.IsRecordNotFoundError(err)
	if err != nil && !notFound {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to look up company by identity.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "company_lookup", Err: err}
	}

	result := &model.ReconcileResult{}
	if !notFound {
		updates := make(map[string]interface{})
		if candidate.Name != "" {
			updates["name"] = candidate.Name
		}
		if candidate.Industry != "" {
			updates["industry"] = candidate.Industry
		}
		if candidate.NumberOfEmployees != 0 {
			updates["number_of_employees"] = candidate.NumberOfEmployees
		}
		if candidate.UserID != "" {
			updates["user_id"] = candidate.UserID
		}

		if len(updates) > 0 {
			if err := tx.Model(&model.CRMCompany{}).Where("id = ?", existing.ID).
				Updates(updates).Error; err != nil {
				tx.Rollback()
				logCtx.WithError(err).Error("Failed to update company.")
				return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "company_update", Err: err}
			}
		}

		result.ID = existing.ID
		result.Action = model.SyncActionUpdated
	} else {
		company := model.CRMCompany{
			ID:                uuid.New().String(),
			LinkedUserID:      linkedUserID,
			RemoteID:          originID,
			RemotePlatform:    providerSlug,
			Name:              candidate.Name,
			Industry:          candidate.Industry,
			NumberOfEmployees: candidate.NumberOfEmployees,
			UserID:            candidate.UserID,
		}
		if err := tx.Create(&company).Error; err != nil {
			tx.Rollback()
			logCtx.WithError(err).Error("Failed to create company.")
			return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "company_create", Err: err}
		}

		result.ID = company.ID
		result.Action = model.SyncActionCreated
	}

	if err := upsertCompanySubCollections(tx, result.ID, candidate); err != nil {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to upsert company sub-collections.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "company_sub_collections", Err: err}
	}

	if err := upsertCustomFieldValues(tx, result.ID, providerSlug, linkedUserID,
		U.OBJECT_KIND_COMPANY, candidate.FieldMappings); err != nil {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to upsert company custom fields.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "company_custom_fields", Err: err}
	}

	if err := upsertRemoteData(tx, result.ID, rawBytes); err != nil {
		tx.Rollback()
		logCtx.WithError(err).Error("Failed to upsert company remote data.")
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "company_remote_data", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, http.StatusInternalServerError, &model.PersistenceError{Op: "commit", Err: err}
	}

	if result.Action == model.SyncActionCreated {
		return result, http.StatusCreated, nil
	}
	return result, http.StatusAccepted, nil
}

func upsertCompanySubCollections(tx *gorm.DB, companyID string, candidate *model.UnifiedCompany) error {
	if len(candidate.EmailAddresses) > 0 {
		var existing []model.CRMEmailAddress
		if err := tx.Where("company_id = ?", companyID).Order("position").
			Find(&existing).Error; err != nil {
			return err
		}

		for i, email := range candidate.EmailAddresses {
			if i < len(existing) {
				if err := tx.Model(&model.CRMEmailAddress{}).Where("id = ?", existing[i].ID).
					Updates(map[string]interface{}{
						"email_address":      email.EmailAddress,
						"email_address_type": email.EmailAddressType,
					}).Error; err != nil {
					return err
				}
				continue
			}

			row := model.CRMEmailAddress{
				ID:               uuid.New().String(),
				CompanyID:        companyID,
				Position:         i,
				EmailAddress:     email.EmailAddress,
				EmailAddressType: email.EmailAddressType,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
	}

	if len(candidate.PhoneNumbers) > 0 {
		var existing []model.CRMPhoneNumber
		if err := tx.Where("company_id = ?", companyID).Order("position").
			Find(&existing).Error; err != nil {
			return err
		}

		for i, phone := range candidate.PhoneNumbers {
			if i < len(existing) {
				if err := tx.Model(&model.CRMPhoneNumber{}).Where("id = ?", existing[i].ID).
					Updates(map[string]interface{}{
						"phone_number": phone.PhoneNumber,
						"phone_type":   phone.PhoneType,
					}).Error; err != nil {
					return err
				}
				continue
			}

			row := model.CRMPhoneNumber{
				ID:          uuid.New().String(),
				CompanyID:   companyID,
				Position:    i,
				PhoneNumber: phone.PhoneNumber,
				PhoneType:   phone.PhoneType,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
	}

	if len(candidate.Addresses) > 0 {
		var existing []model.CRMAddress
		if err := tx.Where("company_id = ?", companyID).Order("position").
			Find(&existing).Error; err != nil {
			return err
		}

		for i, address := range candidate.Addresses {
			if i < len(existing) {
				if err := tx.Model(&model.CRMAddress{}).Where("id = ?", existing[i].ID).
					Updates(map[string]interface{}{
						"street_1":     address.Street1,
						"street_2":     address.Street2,
						"city":         address.City,
						"state":        address.State,
						"postal_code":  address.PostalCode,
						"country":      address.Country,
						"address_type": address.AddressType,
					}).Error; err != nil {
					return err
				}
				continue
			}

			row := model.CRMAddress{
				ID:          uuid.New().String(),
				CompanyID:   companyID,
				Position:    i,
				Street1:     address.Street1,
				Street2:     address.Street2,
				City:        address.City,
				State:       address.State,
				PostalCode:  address.PostalCode,
				Country:     address.Country,
				AddressType: address.AddressType,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func assembleUnifiedCompany(db *gorm.DB, company *model.CRMCompany, includeRaw bool) (*model.UnifiedCompany, int) {
	unified := &model.UnifiedCompany{
		ID:                company.ID,
		Name:              company.Name,
		Industry:          company.Industry,
		NumberOfEmployees: company.NumberOfEmployees,
		UserID:            company.UserID,
	}

	var emails []model.CRMEmailAddress
	if err := db.Where("company_id = ?", company.ID).Order("position").
		Find(&emails).Error; err != nil {
		return nil, http.StatusInternalServerError
	}
	for i := range emails {
		unified.EmailAddresses = append(unified.EmailAddresses, model.Email{
			EmailAddress:     emails[i].EmailAddress,
			EmailAddressType: emails[i].EmailAddressType,
		})
	}

	var phones []model.CRMPhoneNumber
	if err := db.Where("company_id = ?", company.ID).Order("position").
		Find(&phones).Error; err != nil {
		return nil, http.StatusInternalServerError
	}
	for i := range phones {
		unified.PhoneNumbers = append(unified.PhoneNumbers, model.Phone{
			PhoneNumber: phones[i].PhoneNumber,
			PhoneType:   phones[i].PhoneType,
		})
	}

	var addresses []model.CRMAddress
	if err := db.Where("company_id = ?", company.ID).Order("position").
		Find(&addresses).Error; err != nil {
		return nil, http.StatusInternalServerError
	}
	for i := range addresses {
		unified.Addresses = append(unified.Addresses, model.Address{
			Street1:     addresses[i].Street1,
			Street2:     addresses[i].Street2,
			City:        addresses[i].City,
			State:       addresses[i].State,
			PostalCode:  addresses[i].PostalCode,
			Country:     addresses[i].Country,
			AddressType: addresses[i].AddressType,
		})
	}

	fields, status := getCustomFieldsForOwner(db, company.ID)
	if status != http.StatusFound {
		return nil, status
	}
	unified.FieldMappings = fields

	if includeRaw {
		raw, status := getRemoteDataForOwner(db, company.ID)
		if status == http.StatusFound {
			unified.RemoteData = raw
		} else if status != http.StatusNotFound {
			return nil, status
		}
	}

	return unified, http.StatusFound
}

func (store *Postgres) GetCompany(id string, includeRaw bool) (*model.UnifiedCompany, int) {
	logFields := log.Fields{"company_id": id}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if id == "" {
		logCtx.Error("Missing company id.")
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	var company model.CRMCompany
	err := db.Where("id = ?", id).Limit(1).Find(&company).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		logCtx.WithError(err).Error("Failed to get company.")
		return nil, http.StatusInternalServerError
	}

	return assembleUnifiedCompany(db, &company, includeRaw)
}

func (store *Postgres) GetCompanies(providerSlug, linkedUserID string, includeRaw bool) ([]model.UnifiedCompany, int) {
	logFields := log.Fields{"provider_slug": providerSlug, "linked_user_id": linkedUserID}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if providerSlug == "" || linkedUserID == "" {
		logCtx.Error("Missing required parameters.")
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	var companies []model.CRMCompany
	err := db.Where("remote_platform = ? AND linked_user_id = ?",
		providerSlug, linkedUserID).Order("created_at").Find(&companies).Error
	if err != nil {
		logCtx.WithError(err).Error("Failed to get companies.")
		return nil, http.StatusInternalServerError
	}

	unified := make([]model.UnifiedCompany, 0, len(companies))
	for i := range companies {
		one, status := assembleUnifiedCompany(db, &companies[i], includeRaw)
		if status != http.StatusFound {
			return nil, status
		}
		unified = append(unified, *one)
	}

	return unified, http.StatusFound
}

// GetCompanyRemoteID resolves a canonical company id to its provider-native
// id, for desunify-side reference rewriting.
func (store *Postgres) GetCompanyRemoteID(id string) (string, int) {
	if id == "" {
		return "", http.StatusBadRequest
	}

	db := C.GetServices().Db
	var company model.CRMCompany
	err := db.Where("id = ?", id).Select("remote_id").Limit(1).Find(&company).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return "", http.StatusNotFound
		}
		return "", http.StatusInternalServerError
	}

	return company.RemoteID, http.StatusFound
}
