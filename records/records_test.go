package records

import (
	"net/http"
	"os"
	"testing"

	C "mosaic/config"
	"mosaic/integration"
	"mosaic/integration/hubspot"
	"mosaic/integration/registry"
	"mosaic/model/model"
	"mosaic/model/store"
	storePostgres "mosaic/model/store/postgres"
	U "mosaic/util"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	if err := C.InitTestServices(); err != nil {
		os.Exit(1)
	}
	if err := storePostgres.AutoMigrate(); err != nil {
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// stubAdapter acknowledges every push with a fixed remote id, the way a
// provider echoes the created object back. failOn rejects one specific
// record by name so batch tests can fail a single sibling.
type stubAdapter struct {
	remoteID string
	fail     bool
	failOn   string
	pushed   []integration.RawRecord
}

func (a *stubAdapter) Push(record integration.RawRecord, linkedUserID string) (*integration.Response, error) {
	if a.fail || (a.failOn != "" && record["name"] == a.failOn) {
		return nil, &model.UpstreamError{
			Kind:         model.UpstreamOther,
			Provider:     U.PROVIDER_NAME_HUBSPOT,
			ObjectKind:   U.OBJECT_KIND_COMPANY,
			LinkedUserID: linkedUserID,
			Err:          errors.New("provider unavailable"),
		}
	}

	a.pushed = append(a.pushed, record)

	out := integration.RawRecord{"id": a.remoteID}
	for key, value := range record {
		out[key] = value
	}

	return &integration.Response{Data: out, StatusCode: http.StatusCreated}, nil
}

func (a *stubAdapter) Pull(linkedUserID string, extraProperties []string) (*integration.ListResponse, error) {
	return &integration.ListResponse{Data: nil, StatusCode: http.StatusOK}, nil
}

func newTestService(t *testing.T, adapter *stubAdapter) (*Service, string) {
	appStore := store.GetStore()

	r := registry.New()
	err := r.RegisterCompany(U.PROVIDER_NAME_HUBSPOT, integration.CompanyBinding{
		Adapter: adapter,
		Mapper:  &hubspot.CompanyMapper{},
	})
	assert.Nil(t, err)

	linkedUser := &model.LinkedUser{Alias: "acme"}
	status, err := appStore.CreateLinkedUser(linkedUser)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)

	return NewService(appStore, r), linkedUser.ID
}

func TestAddCompanyPushThenReconcile(t *testing.T) {
	adapter := &stubAdapter{remoteID: "remote-100"}
	service, tenant := newTestService(t, adapter)

	input := &model.UnifiedCompany{Name: "Globex", Industry: "Manufacturing"}
	company, status, err := service.AddCompany(tenant, U.PROVIDER_NAME_HUBSPOT, input)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, company.ID)
	assert.Equal(t, "Globex", company.Name)
	assert.Len(t, adapter.pushed, 1)
	assert.Equal(t, "Globex", adapter.pushed[0]["name"])

	// the provider acknowledging the same remote id makes the second write
	// an update of the same canonical record
	again, status, err := service.AddCompany(tenant, U.PROVIDER_NAME_HUBSPOT, input)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, company.ID, again.ID)
}

func TestAddCompanyUpstreamFailure(t *testing.T) {
	adapter := &stubAdapter{remoteID: "remote-101", fail: true}
	service, tenant := newTestService(t, adapter)

	_, status, err := service.AddCompany(tenant, U.PROVIDER_NAME_HUBSPOT,
		&model.UnifiedCompany{Name: "Globex"})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.True(t, model.IsUpstreamError(err))

	companies, _ := service.GetCompanies(U.PROVIDER_NAME_HUBSPOT, tenant, false)
	assert.Empty(t, companies)
}

func TestAddCompanyRejectsUnknownScope(t *testing.T) {
	adapter := &stubAdapter{remoteID: "remote-102"}
	service, tenant := newTestService(t, adapter)

	// zendesk does not serve companies at all
	_, status, err := service.AddCompany(tenant, U.PROVIDER_NAME_ZENDESK,
		&model.UnifiedCompany{Name: "Globex"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.True(t, model.IsValidationError(err))

	// pipedrive does, but this registry has no binding for it
	_, status, err = service.AddCompany(tenant, U.PROVIDER_NAME_PIPEDRIVE,
		&model.UnifiedCompany{Name: "Globex"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, registry.ErrUnknownProvider, errors.Cause(err))
}

func TestAddCompaniesBatchIsolation(t *testing.T) {
	adapter := &stubAdapter{remoteID: "remote-103", failOn: "Flaky"}
	service, tenant := newTestService(t, adapter)

	inputs := []model.UnifiedCompany{
		{Name: "First"},
		{Name: "Flaky"}, // push rejected upstream, siblings must still land
		{Name: "Second"},
	}
	companies, status, err := service.AddCompanies(tenant, U.PROVIDER_NAME_HUBSPOT, inputs)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)
	// the surviving pushes acknowledge the same remote id, so the batch
	// converges on one canonical record
	assert.Len(t, companies, 2)
	assert.Equal(t, companies[0].ID, companies[1].ID)
	assert.Len(t, adapter.pushed, 2)
}

func TestAddCompaniesBatchAllFailed(t *testing.T) {
	adapter := &stubAdapter{remoteID: "remote-104", fail: true}
	service, tenant := newTestService(t, adapter)

	companies, status, err := service.AddCompanies(tenant, U.PROVIDER_NAME_HUBSPOT,
		[]model.UnifiedCompany{{Name: "First"}, {Name: "Second"}})
	assert.Nil(t, companies)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.True(t, model.IsUpstreamError(err))
}
