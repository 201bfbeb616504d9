package model

import (
	"encoding/json"
	"time"
)

// CRMCompany is the canonical company row. The identity triple
// (remote_id, remote_platform, linked_user_id) is unique per kind and
// immutable once written; the generated id never changes after creation.
type CRMCompany struct {
	ID                string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	LinkedUserID      string    `gorm:"not null;unique_index:uix_crm_companies_identity" json:"linked_user_id"`
	RemoteID          string    `gorm:"not null;unique_index:uix_crm_companies_identity" json:"remote_id"`
	RemotePlatform    string    `gorm:"not null;unique_index:uix_crm_companies_identity" json:"remote_platform"`
	Name              string    `gorm:"default:null" json:"name"`
	Industry          string    `gorm:"default:null" json:"industry"`
	NumberOfEmployees int       `gorm:"default:null" json:"number_of_employees"`
	UserID            string    `gorm:"default:null" json:"user_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CRMEmailAddress struct {
	ID               string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	CompanyID        string    `gorm:"index;not null" json:"company_id"`
	Position         int       `gorm:"not null" json:"position"`
	EmailAddress     string    `json:"email_address"`
	EmailAddressType string    `json:"email_address_type"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CRMPhoneNumber struct {
	ID          string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	CompanyID   string    `gorm:"index;not null" json:"company_id"`
	Position    int       `gorm:"not null" json:"position"`
	PhoneNumber string    `json:"phone_number"`
	PhoneType   string    `json:"phone_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CRMAddress struct {
	ID          string    `gorm:"primary_key:true;auto_increment:false" json:"id"`
	CompanyID   string    `gorm:"index;not null" json:"company_id"`
	Position    int       `gorm:"not null" json:"position"`
	Street1     string    `json:"street_1"`
	Street2     string    `json:"street_2"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	PostalCode  string    `json:"postal_code"`
	Country     string    `json:"country"`
	AddressType string    `json:"address_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Wire-level sub-collection shapes shared by unified inputs and outputs.
type Email struct {
	EmailAddress     string `json:"email_address"`
	EmailAddressType string `json:"email_address_type,omitempty"`
}

type Phone struct {
	PhoneNumber string `json:"phone_number"`
	PhoneType   string `json:"phone_type,omitempty"`
}

type Address struct {
	Street1     string `json:"street_1,omitempty"`
	Street2     string `json:"street_2,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Country     string `json:"country,omitempty"`
	AddressType string `json:"address_type,omitempty"`
}

// UnifiedCompany is the canonical wire shape for companies. It serves both
// as mapper input (id empty) and as assembled output.
type UnifiedCompany struct {
	ID                string          `json:"id,omitempty"`
	Name              string          `json:"name,omitempty"`
	Industry          string          `json:"industry,omitempty"`
	NumberOfEmployees int             `json:"number_of_employees,omitempty"`
	UserID            string          `json:"user_id,omitempty"`
	EmailAddresses    []Email         `json:"email_addresses,omitempty"`
	PhoneNumbers      []Phone         `json:"phone_numbers,omitempty"`
	Addresses         []Address       `json:"addresses,omitempty"`
	FieldMappings     CustomFields    `json:"field_mappings"`
	RemoteData        json.RawMessage `json:"remote_data,omitempty"`
}
