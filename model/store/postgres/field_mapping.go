package postgres

import (
	"errors"
	"net/http"
	"time"

	C "mosaic/config"
	"mosaic/model/model"
	U "mosaic/util"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

// Field-mapping sets are read on every sweep unit and direct push; the
// resolver keeps them in a bounded in-process cache keyed by scope.
var attributeCache *lru.Cache

func init() {
	attributeCache, _ = lru.New(512)
}

func attributeCacheKey(providerSlug, linkedUserID, objectKind string) string {
	return providerSlug + "|" + linkedUserID + "|" + objectKind
}

func (store *Postgres) CreateAttribute(attribute *model.Attribute) (int, error) {
	logFields := log.Fields{
		"slug":            attribute.Slug,
		"source":          attribute.Source,
		"linked_user_id":  attribute.LinkedUserID,
		"object_kind":     attribute.ObjectKind,
		"remote_property": attribute.RemoteProperty,
	}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if attribute.Slug == "" || attribute.Source == "" || attribute.LinkedUserID == "" ||
		attribute.ObjectKind == "" || attribute.RemoteProperty == "" {
		logCtx.Error("Missing required parameters.")
		return http.StatusBadRequest, errors.New("missing required fields slug, source, linked_user_id, object_kind, remote_property")
	}

	if !U.IsValidProviderForObjectKind(attribute.Source, attribute.ObjectKind) {
		logCtx.Error("Invalid provider for object kind.")
		return http.StatusBadRequest, errors.New("invalid provider for object kind")
	}

	if attribute.ID == "" {
		attribute.ID = uuid.New().String()
	}

	db := C.GetServices().Db
	if err := db.Create(attribute).Error; err != nil {
		if IsDuplicateRecordError(err) {
			return http.StatusConflict, nil
		}

		logCtx.WithError(err).Error("Failed to create attribute.")
		return http.StatusInternalServerError, err
	}

	attributeCache.Remove(attributeCacheKey(attribute.Source, attribute.LinkedUserID, attribute.ObjectKind))
	return http.StatusCreated, nil
}

// GetAttributes resolves the tenant's field-mapping set for one
// (provider, object kind) scope. An empty set is a normal outcome, not 404.
func (store *Postgres) GetAttributes(providerSlug, linkedUserID, objectKind string) ([]model.Attribute, int) {
	logFields := log.Fields{
		"provider_slug":  providerSlug,
		"linked_user_id": linkedUserID,
		"object_kind":    objectKind,
	}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	logCtx := log.WithFields(logFields)
	if providerSlug == "" || linkedUserID == "" || objectKind == "" {
		logCtx.Error("Missing required parameters.")
		return nil, http.StatusBadRequest
	}

	cacheKey := attributeCacheKey(providerSlug, linkedUserID, objectKind)
	if cached, exists := attributeCache.Get(cacheKey); exists {
		return cached.([]model.Attribute), http.StatusFound
	}

	var attributes []model.Attribute
	db := C.GetServices().Db
	err := db.Where("source = ? AND linked_user_id = ? AND object_kind = ?",
		providerSlug, linkedUserID, objectKind).Order("created_at").Find(&attributes).Error
	if err != nil {
		logCtx.WithError(err).Error("Failed to get attributes.")
		return nil, http.StatusInternalServerError
	}

	attributeCache.Add(cacheKey, attributes)
	return attributes, http.StatusFound
}

// getAttributeByScope is the reconciler-side lookup: the slug must match the
// same (provider, tenant) scope as the owning record's sync. Runs on the
// caller's handle so it stays inside reconciliation transactions.
func getAttributeByScope(db *gorm.DB, slug, providerSlug, linkedUserID, objectKind string) (*model.Attribute, int) {
	var attribute model.Attribute
	err := db.Where("slug = ? AND source = ? AND linked_user_id = ? AND object_kind = ?",
		slug, providerSlug, linkedUserID, objectKind).Limit(1).Find(&attribute).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		log.WithFields(log.Fields{"slug": slug, "provider_slug": providerSlug}).
			WithError(err).Error("Failed to get attribute by scope.")
		return nil, http.StatusInternalServerError
	}

	return &attribute, http.StatusFound
}
