package model

import "time"

const (
	SyncMethodPull = "PULL"
	SyncMethodPush = "POST"
	SyncMethodGet  = "GET"
)

// Event type format: <vertical>.<object>.<action>, e.g. crm.company.pulled.
func SyncEventType(vertical, objectKind, action string) string {
	return vertical + "." + objectKind + "." + action
}

// SyncEvent is an append-only audit row, one per sweep unit or direct
// operation. Event ids are xid strings assigned by the store.
type SyncEvent struct {
	ID           string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	Type         string    `gorm:"not null" json:"type"`
	Status       string    `gorm:"not null" json:"status"`
	Method       string    `json:"method"`
	Provider     string    `json:"provider"`
	LinkedUserID string    `gorm:"index" json:"linked_user_id"`
	Timestamp    time.Time `json:"timestamp"`
}

type SyncAction string

const (
	SyncActionCreated SyncAction = "created"
	SyncActionUpdated SyncAction = "updated"
	SyncActionPulled  SyncAction = "pulled"
)

// ReconcileResult reports what one reconciliation did to one candidate.
type ReconcileResult struct {
	ID     string
	Action SyncAction
}
