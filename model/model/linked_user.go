package model

import "time"

// LinkedUser is a tenant: an isolated customer scope owning connections,
// field mappings and canonical records.
type LinkedUser struct {
	ID        string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	Alias     string    `gorm:"default:null" json:"alias"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Connection is an opaque credential handle for a (tenant, provider) pair.
// Token decryption and refresh live outside this system.
type Connection struct {
	ID           string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	LinkedUserID string    `gorm:"not null;unique_index:uix_connections_pair" json:"linked_user_id"`
	ProviderSlug string    `gorm:"not null;unique_index:uix_connections_pair" json:"provider_slug"`
	AccessToken  string    `gorm:"not null" json:"-"`
	InstanceURL  string    `gorm:"default:null" json:"instance_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type WebhookEndpoint struct {
	ID           string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	LinkedUserID string    `gorm:"not null;index" json:"linked_user_id"`
	URL          string    `gorm:"not null" json:"url"`
	Secret       string    `gorm:"default:null" json:"-"`
	Active       bool      `gorm:"default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
