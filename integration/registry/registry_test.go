package registry

import (
	"net/http"
	"testing"

	"mosaic/integration"
	"mosaic/model/model"
	U "mosaic/util"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type stubConnections struct{}

func (s *stubConnections) GetConnection(linkedUserID, providerSlug string) (*model.Connection, int) {
	return nil, http.StatusNotFound
}

type stubResolver struct{}

func (s *stubResolver) GetUserRemoteID(id string) (string, int) {
	return "", http.StatusNotFound
}

func (s *stubResolver) GetCompanyRemoteID(id string) (string, int) {
	return "", http.StatusNotFound
}

func TestBuildDefaultCoversProviderMatrix(t *testing.T) {
	r, err := BuildDefault(&stubConnections{}, &stubResolver{})
	assert.Nil(t, err)

	for _, objectKind := range U.AllObjectKinds() {
		for _, slug := range U.ProvidersByObjectKind[objectKind] {
			switch objectKind {
			case U.OBJECT_KIND_COMPANY:
				binding, err := r.Company(slug)
				assert.Nil(t, err)
				assert.NotNil(t, binding.Adapter)
				assert.NotNil(t, binding.Mapper)
			case U.OBJECT_KIND_USER:
				binding, err := r.User(slug)
				assert.Nil(t, err)
				assert.NotNil(t, binding.Adapter)
				assert.NotNil(t, binding.Mapper)
			case U.OBJECT_KIND_NOTE:
				binding, err := r.Note(slug)
				assert.Nil(t, err)
				assert.NotNil(t, binding.Adapter)
				assert.NotNil(t, binding.Mapper)
			case U.OBJECT_KIND_COMMENT:
				binding, err := r.Comment(slug)
				assert.Nil(t, err)
				assert.NotNil(t, binding.Adapter)
				assert.NotNil(t, binding.Mapper)
			}
		}
	}
}

func TestUnknownProviderLookup(t *testing.T) {
	r, err := BuildDefault(&stubConnections{}, &stubResolver{})
	assert.Nil(t, err)

	_, err = r.Company("salesforce")
	assert.NotNil(t, err)
	assert.Equal(t, ErrUnknownProvider, errors.Cause(err))

	// zendesk only binds comments, not companies.
	_, err = r.Company(U.PROVIDER_NAME_ZENDESK)
	assert.NotNil(t, err)
	assert.Equal(t, ErrUnknownProvider, errors.Cause(err))
}

func TestDuplicateRegistrationFails(t *testing.T) {
	r := New()

	binding := integration.CompanyBinding{}
	assert.Nil(t, r.RegisterCompany(U.PROVIDER_NAME_HUBSPOT, binding))
	assert.NotNil(t, r.RegisterCompany(U.PROVIDER_NAME_HUBSPOT, binding))
}

func TestRegistrationRejectsUnsupportedKind(t *testing.T) {
	r := New()

	// zendesk does not serve the company kind.
	err := r.RegisterCompany(U.PROVIDER_NAME_ZENDESK, integration.CompanyBinding{})
	assert.NotNil(t, err)

	// pipedrive stays direct-writable for users even though the sweep
	// excludes it.
	assert.Nil(t, r.RegisterUser(U.PROVIDER_NAME_PIPEDRIVE, integration.UserBinding{}))
}
