// Package records is the direct write and read surface of the unification
// layer. A write desunifies the input, pushes it to the provider, unifies the
// provider's acknowledged record, reconciles it into canonical storage and
// notifies tenant webhooks.
package records

import (
	"mosaic/integration/registry"
	"mosaic/model/model"
	"mosaic/model/store"
	U "mosaic/util"
	"mosaic/webhooks"

	log "github.com/sirupsen/logrus"
)

type Service struct {
	Store    store.Store
	Registry *registry.Registry
}

func NewService(s store.Store, r *registry.Registry) *Service {
	return &Service{Store: s, Registry: r}
}

// recordEvent appends one audit row and returns its id for webhook
// correlation. Audit failures are logged, never propagated.
func (s *Service) recordEvent(objectKind string, action model.SyncAction,
	status, method, provider, linkedUserID string) string {
	event := &model.SyncEvent{
		Type:         model.SyncEventType(U.VerticalForObjectKind(objectKind), objectKind, string(action)),
		Status:       status,
		Method:       method,
		Provider:     provider,
		LinkedUserID: linkedUserID,
	}
	if _, err := s.Store.CreateSyncEvent(event); err != nil {
		log.WithFields(log.Fields{
			"type":           event.Type,
			"linked_user_id": linkedUserID,
		}).WithError(err).Error("Failed to record sync event.")
	}

	return event.ID
}

func (s *Service) notify(eventID, objectKind string, action model.SyncAction,
	linkedUserID string, data interface{}) {
	eventType := model.SyncEventType(U.VerticalForObjectKind(objectKind), objectKind, string(action))
	webhooks.Notify(s.Store, eventID, eventType, linkedUserID, data)
}

func (s *Service) validateWrite(linkedUserID, providerSlug, objectKind string) error {
	if linkedUserID == "" {
		return &model.ValidationError{Field: "linked_user_id", Reason: "missing linked user id"}
	}
	if !U.IsValidProviderForObjectKind(providerSlug, objectKind) {
		return &model.ValidationError{
			Field: "provider_slug", Reason: "provider does not support " + objectKind}
	}

	return nil
}

// mappingsFor resolves the tenant's field mappings for a write or read. An
// empty mapping set is normal and comes back as nil.
func (s *Service) mappingsFor(providerSlug, linkedUserID, objectKind string) []model.Attribute {
	mappings, _ := s.Store.GetAttributes(providerSlug, linkedUserID, objectKind)
	return mappings
}
