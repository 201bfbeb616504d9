package postgres

import (
	"errors"
	"net/http"

	"mosaic/model/model"
	U "mosaic/util"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

// getOrCreateEntity returns the EAV anchor for a canonical record, creating
// it on the first custom-field-bearing sync.
func getOrCreateEntity(db *gorm.DB, ownerID string) (*model.Entity, error) {
	var entity model.Entity
	err := db.Where("resource_owner_id = ?", ownerID).Limit(1).Find(&entity).Error
	if err == nil {
		return &entity, nil
	}

	if !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}

	entity = model.Entity{
		ID:              uuid.New().String(),
		ResourceOwnerID: ownerID,
	}
	if err := db.Create(&entity).Error; err != nil {
		return nil, err
	}

	return &entity, nil
}

// upsertCustomFieldValues persists a candidate's field-mapping entries.
// Slugs without a matching attribute in the (provider, tenant, kind) scope
// are dropped silently; falsy values are stored as the literal "null".
func upsertCustomFieldValues(db *gorm.DB, ownerID, providerSlug, linkedUserID, objectKind string,
	fields model.CustomFields) error {
	if len(fields) == 0 {
		return nil
	}

	entity, err := getOrCreateEntity(db, ownerID)
	if err != nil {
		return err
	}

	for i := range fields {
		attribute, status := getAttributeByScope(db, fields[i].Slug, providerSlug, linkedUserID, objectKind)
		if status == http.StatusNotFound {
			continue
		}
		if status != http.StatusFound {
			return errors.New("failed to resolve attribute for slug " + fields[i].Slug)
		}

		data := U.GetPropertyValueAsString(fields[i].Value)
		if U.IsEmptyPropertyValue(fields[i].Value) {
			data = "null"
		}

		var value model.AttributeValue
		err := db.Where("entity_id = ? AND attribute_id = ?", entity.ID, attribute.ID).
			Limit(1).Find(&value).Error
		if err != nil {
			if !gorm.IsRecordNotFoundError(err) {
				return err
			}

			value = model.AttributeValue{
				ID:          uuid.New().String(),
				EntityID:    entity.ID,
				AttributeID: attribute.ID,
				Data:        data,
			}
			if err := db.Create(&value).Error; err != nil {
				return err
			}
			continue
		}

		if err := db.Model(&model.AttributeValue{}).Where("id = ?", value.ID).
			Update("data", data).Error; err != nil {
			return err
		}
	}

	return nil
}

type customFieldRow struct {
	Slug string
	Data string
}

// getCustomFieldsForOwner reassembles the field-mapping sequence for a
// canonical record by joining entity, values and attributes. Duplicate slugs
// keep their first position; the later value wins.
func getCustomFieldsForOwner(db *gorm.DB, ownerID string) (model.CustomFields, int) {
	var rows []customFieldRow
	err := db.Table("attribute_values").
		Joins("JOIN entities ON entities.id = attribute_values.entity_id").
		Joins("JOIN attributes ON attributes.id = attribute_values.attribute_id").
		Where("entities.resource_owner_id = ?", ownerID).
		Order("attribute_values.created_at").
		Select("attributes.slug AS slug, attribute_values.data AS data").
		Scan(&rows).Error
	if err != nil {
		log.WithField("owner_id", ownerID).WithError(err).
			Error("Failed to get custom field values.")
		return nil, http.StatusInternalServerError
	}

	fields := make(model.CustomFields, 0, len(rows))
	for i := range rows {
		fields.Set(rows[i].Slug, rows[i].Data)
	}

	return fields, http.StatusFound
}
