package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// CustomField is one tenant-defined field entry on a unified record. The wire
// shape is an ordered list of single-key objects: [{"slug": value}, ...].
type CustomField struct {
	Slug  string
	Value interface{}
}

type CustomFields []CustomField

// Get returns the value for a slug. When the same slug appears more than
// once the later entry wins.
func (f CustomFields) Get(slug string) (interface{}, bool) {
	var value interface{}
	found := false
	for i := range f {
		if f[i].Slug == slug {
			value = f[i].Value
			found = true
		}
	}

	return value, found
}

// Set overwrites the entry for slug in place, or appends a new one. Entry
// order is preserved so the wire shape stays stable across updates.
func (f *CustomFields) Set(slug string, value interface{}) {
	for i := range *f {
		if (*f)[i].Slug == slug {
			(*f)[i].Value = value
			return
		}
	}

	*f = append(*f, CustomField{Slug: slug, Value: value})
}

func (f CustomFields) Slugs() []string {
	slugs := make([]string, 0, len(f))
	for i := range f {
		slugs = append(slugs, f[i].Slug)
	}

	return slugs
}

func (f CustomFields) MarshalJSON() ([]byte, error) {
	entries := make([]map[string]interface{}, 0, len(f))
	for i := range f {
		entries = append(entries, map[string]interface{}{f[i].Slug: f[i].Value})
	}

	return json.Marshal(entries)
}

func (f *CustomFields) UnmarshalJSON(data []byte) error {
	var entries []map[string]interface{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "invalid field_mappings payload")
	}

	fields := make(CustomFields, 0, len(entries))
	for _, entry := range entries {
		for slug, value := range entry {
			fields = append(fields, CustomField{Slug: slug, Value: value})
		}
	}

	*f = fields
	return nil
}
