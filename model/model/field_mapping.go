package model

import "time"

// Attribute is a tenant- and provider-scoped custom field definition: it maps
// a canonical slug to the provider-native property name for one object kind.
type Attribute struct {
	ID             string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	Slug           string    `gorm:"not null;unique_index:uix_attributes_scope" json:"slug"`
	Source         string    `gorm:"not null;unique_index:uix_attributes_scope" json:"source"`
	LinkedUserID   string    `gorm:"not null;unique_index:uix_attributes_scope" json:"linked_user_id"`
	ObjectKind     string    `gorm:"not null;unique_index:uix_attributes_scope" json:"object_kind"`
	RemoteProperty string    `gorm:"not null" json:"remote_property"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Entity anchors EAV values to exactly one canonical record. Created lazily
// on the first custom-field-bearing sync and reused thereafter.
type Entity struct {
	ID              string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	ResourceOwnerID string    `gorm:"not null;unique_index" json:"resource_owner_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// AttributeValue is one custom-field value row. One row per
// (entity, attribute) pair, overwritten on every sync that carries the slug.
type AttributeValue struct {
	ID          string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	EntityID    string    `gorm:"not null;unique_index:uix_attribute_values_pair" json:"entity_id"`
	AttributeID string    `gorm:"not null;unique_index:uix_attribute_values_pair" json:"attribute_id"`
	Data        string    `gorm:"not null" json:"data"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RemotePropertyNames extracts the provider-native property names from a
// mapping set, in definition order.
func RemotePropertyNames(attributes []Attribute) []string {
	names := make([]string, 0, len(attributes))
	for i := range attributes {
		names = append(names, attributes[i].RemoteProperty)
	}

	return names
}
