package model

import (
	"encoding/json"
	"time"
)

type CRMNote struct {
	ID             string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	LinkedUserID   string    `gorm:"not null;unique_index:uix_crm_notes_identity" json:"linked_user_id"`
	RemoteID       string    `gorm:"not null;unique_index:uix_crm_notes_identity" json:"remote_id"`
	RemotePlatform string    `gorm:"not null;unique_index:uix_crm_notes_identity" json:"remote_platform"`
	Content        string    `gorm:"default:null" json:"content"`
	CompanyID      string    `gorm:"default:null" json:"company_id"`
	UserID         string    `gorm:"default:null" json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UnifiedNote struct {
	ID            string          `json:"id,omitempty"`
	Content       string          `json:"content,omitempty"`
	CompanyID     string          `json:"company_id,omitempty"`
	UserID        string          `json:"user_id,omitempty"`
	FieldMappings CustomFields    `json:"field_mappings"`
	RemoteData    json.RawMessage `json:"remote_data,omitempty"`
}
