package postgres

import (
	"encoding/json"
	"net/http"
	"time"

	"mosaic/model/model"
	U "mosaic/util"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/jinzhu/gorm/dialects/postgres"
	log "github.com/sirupsen/logrus"
)

// upsertRemoteData overwrites the cached raw payload for a canonical record.
// One row per owner, always the most recent successful unify.
func upsertRemoteData(db *gorm.DB, ownerID string, raw json.RawMessage) error {
	jsonb := &postgres.Jsonb{RawMessage: raw}

	var existing model.RemoteData
	err := db.Where("resource_owner_id = ?", ownerID).Limit(1).Find(&existing).Error
	if err != nil {
		if !gorm.IsRecordNotFoundError(err) {
			return err
		}

		remoteData := model.RemoteData{
			ID:              uuid.New().String(),
			ResourceOwnerID: ownerID,
			Format:          "json",
			Data:            jsonb,
			CapturedAt:      time.Now().UTC(),
		}
		return db.Create(&remoteData).Error
	}

	return db.Model(&model.RemoteData{}).Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"data":        jsonb,
			"captured_at": time.Now().UTC(),
		}).Error
}

func getRemoteDataForOwner(db *gorm.DB, ownerID string) (json.RawMessage, int) {
	var remoteData model.RemoteData
	err := db.Where("resource_owner_id = ?", ownerID).Limit(1).Find(&remoteData).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		log.WithField("owner_id", ownerID).WithError(err).Error("Failed to get remote data.")
		return nil, http.StatusInternalServerError
	}

	if U.IsEmptyPostgresJsonb(remoteData.Data) {
		return nil, http.StatusNotFound
	}

	return remoteData.Data.RawMessage, http.StatusFound
}
