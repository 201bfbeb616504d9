package model

import (
	"encoding/json"
	"time"
)

// CRMUser is the canonical CRM user row (a person on the provider side, not
// a tenant of this system; tenants are linked users).
type CRMUser struct {
	ID             string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	LinkedUserID   string    `gorm:"not null;unique_index:uix_crm_users_identity" json:"linked_user_id"`
	RemoteID       string    `gorm:"not null;unique_index:uix_crm_users_identity" json:"remote_id"`
	RemotePlatform string    `gorm:"not null;unique_index:uix_crm_users_identity" json:"remote_platform"`
	Name           string    `gorm:"default:null" json:"name"`
	Email          string    `gorm:"default:null" json:"email"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UnifiedUser struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name,omitempty"`
	Email         string          `json:"email,omitempty"`
	FieldMappings CustomFields    `json:"field_mappings"`
	RemoteData    json.RawMessage `json:"remote_data,omitempty"`
}
