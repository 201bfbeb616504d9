package record_sync

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	C "mosaic/config"
	"mosaic/integration"
	"mosaic/integration/hubspot"
	"mosaic/integration/registry"
	"mosaic/model/model"
	"mosaic/model/store"
	storePostgres "mosaic/model/store/postgres"
	U "mosaic/util"

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

// stubPullAdapter serves a fixed record set, the way a provider collection
// endpoint would. Records are scoped to one tenant so sweeps over tenants
// seeded by earlier tests pull nothing.
type stubPullAdapter struct {
	tenant  string
	records []integration.RawRecord
}

func (a *stubPullAdapter) Push(record integration.RawRecord, linkedUserID string) (*integration.Response, error) {
	return &integration.Response{Data: record, StatusCode: http.StatusCreated}, nil
}

func (a *stubPullAdapter) Pull(linkedUserID string, extraProperties []string) (*integration.ListResponse, error) {
	if a.tenant != "" && a.tenant != linkedUserID {
		return &integration.ListResponse{StatusCode: http.StatusOK}, nil
	}

	return &integration.ListResponse{Data: a.records, StatusCode: http.StatusOK}, nil
}

func seedTenantWithConnection(t *testing.T, providerSlug string) string {
	appStore := store.GetStore()

	linkedUser := &model.LinkedUser{Alias: "acme"}
	status, err := appStore.CreateLinkedUser(linkedUser)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)

	status, err = appStore.CreateConnection(&model.Connection{
		LinkedUserID: linkedUser.ID,
		ProviderSlug: providerSlug,
		AccessToken:  "token",
	})
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)

	return linkedUser.ID
}

func buildStubRegistry(t *testing.T, tenant string, companies []integration.RawRecord) *registry.Registry {
	r := registry.New()

	assert.Nil(t, r.RegisterCompany(U.PROVIDER_NAME_HUBSPOT, integration.CompanyBinding{
		Adapter: &stubPullAdapter{tenant: tenant, records: companies},
		Mapper:  &hubspot.CompanyMapper{},
	}))
	assert.Nil(t, r.RegisterUser(U.PROVIDER_NAME_HUBSPOT, integration.UserBinding{
		Adapter: &stubPullAdapter{tenant: tenant},
		Mapper:  &hubspot.UserMapper{},
	}))
	assert.Nil(t, r.RegisterNote(U.PROVIDER_NAME_HUBSPOT, integration.NoteBinding{
		Adapter: &stubPullAdapter{tenant: tenant},
		Mapper:  &hubspot.NoteMapper{Resolver: store.GetStore()},
	}))

	return r
}

func TestSweepAllReconcilesAndIsolatesBadRecords(t *testing.T) {
	tenant := seedTenantWithConnection(t, U.PROVIDER_NAME_HUBSPOT)

	companies := []integration.RawRecord{
		{"id": "c-1", "name": "Globex"},
		{"id": "c-2", "name": "Initech"},
		{"name": "NoID Corp"}, // no origin id, must be skipped without aborting the unit
	}
	r := buildStubRegistry(t, tenant, companies)

	job := NewJob(store.GetStore(), r, Config{IntervalMinutes: 20, NumRoutines: 2})
	sweepStatus := job.SweepAll(context.Background())

	// hubspot company, user and note units run; the pipedrive, zendesk and
	// front units have no connection and are skipped
	assert.Equal(t, 3, sweepStatus.UnitsRun)
	assert.Equal(t, 4, sweepStatus.UnitsSkipped)
	assert.Equal(t, 0, sweepStatus.UnitsFailed)
	assert.Equal(t, 2, sweepStatus.RecordsCreated)
	assert.Equal(t, 0, sweepStatus.RecordsUpdated)
	assert.Equal(t, 1, sweepStatus.RecordsFailed)

	pulled, status := store.GetStore().GetCompanies(U.PROVIDER_NAME_HUBSPOT, tenant, false)
	assert.Equal(t, http.StatusFound, status)
	assert.Len(t, pulled, 2)

	// the second sweep converges on updates, never duplicates
	sweepStatus = job.SweepAll(context.Background())
	assert.Equal(t, 0, sweepStatus.RecordsCreated)
	assert.Equal(t, 2, sweepStatus.RecordsUpdated)
	assert.Equal(t, 1, sweepStatus.RecordsFailed)

	pulled, _ = store.GetStore().GetCompanies(U.PROVIDER_NAME_HUBSPOT, tenant, false)
	assert.Len(t, pulled, 2)
}

func TestSweepAllHonorsCancellation(t *testing.T) {
	tenant := seedTenantWithConnection(t, U.PROVIDER_NAME_HUBSPOT)

	r := buildStubRegistry(t, tenant, nil)
	job := NewJob(store.GetStore(), r, Config{IntervalMinutes: 20, NumRoutines: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweepStatus := job.SweepAll(ctx)
	assert.Equal(t, 0, sweepStatus.UnitsRun)
	assert.Equal(t, 0, sweepStatus.UnitsFailed)
}

func TestSweepMixedPullUpdatesKnownAndCreatesNew(t *testing.T) {
	tenant := seedTenantWithConnection(t, U.PROVIDER_NAME_HUBSPOT)
	appStore := store.GetStore()

	// one canonical record already exists for remote id c-10
	_, status, err := appStore.ReconcileCompany(tenant, U.PROVIDER_NAME_HUBSPOT,
		&model.UnifiedCompany{Name: "Known Corp"},
		map[string]interface{}{"id": "c-10", "name": "Known Corp"})
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)

	r := buildStubRegistry(t, tenant, []integration.RawRecord{
		{"id": "c-10", "name": "Known Corp"},
		{"id": "c-11", "name": "Fresh Corp"},
	})
	job := NewJob(appStore, r, Config{IntervalMinutes: 20, NumRoutines: 1})
	sweepStatus := job.SweepAll(context.Background())

	assert.Equal(t, 1, sweepStatus.RecordsCreated)
	assert.Equal(t, 1, sweepStatus.RecordsUpdated)
	assert.Equal(t, 0, sweepStatus.RecordsFailed)

	pulled, getStatus := appStore.GetCompanies(U.PROVIDER_NAME_HUBSPOT, tenant, false)
	assert.Equal(t, http.StatusFound, getStatus)
	assert.Len(t, pulled, 2)
}

func TestSweepWebhookCarriesReconciledRecords(t *testing.T) {
	received := make(chan []byte, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		received <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tenant := seedTenantWithConnection(t, U.PROVIDER_NAME_HUBSPOT)
	appStore := store.GetStore()

	status, err := appStore.CreateWebhookEndpoint(&model.WebhookEndpoint{
		LinkedUserID: tenant,
		URL:          srv.URL,
		Secret:       "s3cret",
		Active:       true,
	})
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)

	r := buildStubRegistry(t, tenant, []integration.RawRecord{
		{"id": "wh-1", "name": "Globex"},
	})
	job := NewJob(appStore, r, Config{IntervalMinutes: 20, NumRoutines: 1})
	job.SweepAll(context.Background())

	// delivery is fire and forget; wait for the company unit's event and
	// assert its payload carries the reconciled record, not just counts
	deadline := time.After(2 * time.Second)
	for {
		select {
		case body := <-received:
			var event map[string]interface{}
			assert.Nil(t, json.Unmarshal(body, &event))
			assert.Equal(t, tenant, event["linked_user_id"])

			data, _ := event["data"].(map[string]interface{})
			records, _ := data["records"].([]interface{})
			if len(records) == 0 {
				continue
			}

			record, _ := records[0].(map[string]interface{})
			assert.Equal(t, "Globex", record["name"])
			assert.Equal(t, float64(1), data["created"])
			return
		case <-deadline:
			assert.FailNow(t, "no webhook delivery carried the reconciled records")
		}
	}
}
