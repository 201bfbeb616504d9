package model

import (
	"encoding/json"
	"time"
)

// TicketingComment is the canonical comment row for the ticketing vertical.
type TicketingComment struct {
	ID             string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	LinkedUserID   string    `gorm:"not null;unique_index:uix_ticketing_comments_identity" json:"linked_user_id"`
	RemoteID       string    `gorm:"not null;unique_index:uix_ticketing_comments_identity" json:"remote_id"`
	RemotePlatform string    `gorm:"not null;unique_index:uix_ticketing_comments_identity" json:"remote_platform"`
	Body           string    `gorm:"default:null" json:"body"`
	HTMLBody       string    `gorm:"default:null" json:"html_body"`
	IsPrivate      bool      `gorm:"default:false" json:"is_private"`
	AuthorID       string    `gorm:"default:null" json:"author_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UnifiedComment struct {
	ID            string          `json:"id,omitempty"`
	Body          string          `json:"body,omitempty"`
	HTMLBody      string          `json:"html_body,omitempty"`
	IsPrivate     bool            `json:"is_private"`
	AuthorID      string          `json:"author_id,omitempty"`
	FieldMappings CustomFields    `json:"field_mappings"`
	RemoteData    json.RawMessage `json:"remote_data,omitempty"`
}
