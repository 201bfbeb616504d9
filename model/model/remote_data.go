package model

import (
	"time"

	"github.com/jinzhu/gorm/dialects/postgres"
)

// RemoteData caches the verbatim last-seen provider payload for one canonical
// record. Full overwrite on every successful sync.
type RemoteData struct {
	ID              string          `gorm:"primary_key:true;auto_increment:false" json:"id"`
	ResourceOwnerID string          `gorm:"not null;unique_index" json:"resource_owner_id"`
	Format          string          `gorm:"default:'json'" json:"format"`
	Data            *postgres.Jsonb `json:"data"`
	CapturedAt      time.Time       `json:"captured_at"`
}
