package postgres

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	C "mosaic/config"
	"mosaic/model/model"
	U "mosaic/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	if err := C.InitTestServices(); err != nil {
		os.Exit(1)
	}
	if err := AutoMigrate(); err != nil {
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func newTenant(t *testing.T) string {
	store := &Postgres{}
	linkedUser := &model.LinkedUser{Alias: "acme"}
	status, err := store.CreateLinkedUser(linkedUser)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)

	return linkedUser.ID
}

func TestReconcileCompanyCreateThenSparsePatch(t *testing.T) {
	store := &Postgres{}
	tenant := newTenant(t)

	raw := map[string]interface{}{"id": "512", "name": "Globex"}
	candidate := &model.UnifiedCompany{
		Name:              "Globex",
		Industry:          "Manufacturing",
		NumberOfEmployees: 250,
	}

	result, status, err := store.ReconcileCompany(tenant, U.PROVIDER_NAME_HUBSPOT, candidate, raw)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, model.SyncActionCreated, result.Action)
	firstID := result.ID

	// a later pull carrying only the industry must not clear the rest
	patch := &model.UnifiedCompany{Industry: "Logistics"}
	result, status, err = store.ReconcileCompany(tenant, U.PROVIDER_NAME_HUBSPOT, patch, raw)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, model.SyncActionUpdated, result.Action)
	assert.Equal(t, firstID, result.ID)

	company, status := store.GetCompany(firstID, false)
	assert.Equal(t, http.StatusFound, status)
	assert.Equal(t, "Globex", company.Name)
	assert.Equal(t, "Logistics", company.Industry)
	assert.Equal(t, 250, company.NumberOfEmployees)
}

func TestReconcileDistinctTriplesStayDistinct(t *testing.T) {
	store := &Postgres{}
	tenant := newTenant(t)

	raw := map[string]interface{}{"id": "77", "name": "Initech"}
	candidate := &model.UnifiedCompany{Name: "Initech"}

	first, status, err := store.ReconcileCompany(tenant, U.PROVIDER_NAME_HUBSPOT, candidate, raw)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)

	// same remote id on another provider is another record
	second, status, err := store.ReconcileCompany(tenant, U.PROVIDER_NAME_PIPEDRIVE, candidate, raw)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.NotEqual(t, first.ID, second.ID)

	// and so is the same pair under another tenant
	otherTenant := newTenant(t)
	third, status, err := store.ReconcileCompany(otherTenant, U.PROVIDER_NAME_HUBSPOT, candidate, raw)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestReconcileRejectsMissingOriginID(t *testing.T) {
	store := &Postgres{}
	tenant := newTenant(t)

	raw := map[string]interface{}{"name": "NoID Corp"}
	_, status, err := store.ReconcileCompany(tenant, U.PROVIDER_NAME_HUBSPOT,
		&model.UnifiedCompany{Name: "NoID Corp"}, raw)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.True(t, model.IsValidationError(err))
}

func TestReconcileCompanySubCollectionsPositionalUpsert(t *testing.T) {
	store := &Postgres{}
	tenant := newTenant(t)

	raw := map[string]interface{}{"id": "901", "name": "Hooli"}
	first := &model.UnifiedCompany{
		Name: "Hooli",
		PhoneNumbers: []model.Phone{
			{PhoneNumber: "+1 555 0001"},
			{PhoneNumber: "+1 555 0002"},
		},
	}
	result, _, err := store.ReconcileCompany(tenant, U.PROVIDER_NAME_HUBSPOT, first, raw)
	assert.Nil(t, err)

	// one phone in the next pull updates position 0 and leaves position 1
	second := &model.UnifiedCompany{
		PhoneNumbers: []model.Phone{{PhoneNumber: "+1 555 9999"}},
	}
	_, _, err = store.ReconcileCompany(tenant, U.PROVIDER_NAME_HUBSPOT, second, raw)
	assert.Nil(t, err)

	company, status := store.GetCompany(result.ID, false)
	assert.Equal(t, http.StatusFound, status)
	assert.Equal(t, []model.Phone{
		{PhoneNumber: "+1 555 9999"},
		{PhoneNumber: "+1 555 0002"},
	}, company.PhoneNumbers)
}

func TestReconcileCustomFieldScoping(t *testing.T) {
	store := &Postgres{}
	tenant := newTenant(t)

	status, err := store.CreateAttribute(&model.Attribute{
		Slug:           "fav_dish",
		Source:         U.PROVIDER_NAME_HUBSPOT,
		LinkedUserID:   tenant,
		ObjectKind:     U.OBJECT_KIND_COMPANY,
		RemoteProperty: "hs_fav_dish",
	})
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)

	raw := map[string]interface{}{"id": "640", "name": "Umbrella"}
	candidate := &model.UnifiedCompany{
		Name: "Umbrella",
		FieldMappings: model.CustomFields{
			{Slug: "fav_dish", Value: "pizza"},
			{Slug: "never_defined", Value: "dropped"},
		},
	}
	result, _, err := store.ReconcileCompany(tenant, U.PROVIDER_NAME_HUBSPOT, candidate, raw)
	assert.Nil(t, err)

	company, getStatus := store.GetCompany(result.ID, false)
	assert.Equal(t, http.StatusFound, getStatus)

	dish, found := company.FieldMappings.Get("fav_dish")
	assert.True(t, found)
	assert.Equal(t, "pizza", dish)

	_, found = company.FieldMappings.Get("never_defined")
	assert.False(t, found)

	// falsy values persist as the literal "null"
	candidate = &model.UnifiedCompany{
		FieldMappings: model.CustomFields{{Slug: "fav_dish", Value: ""}},
	}
	_, _, err = store.ReconcileCompany(tenant, U.PROVIDER_NAME_HUBSPOT, candidate, raw)
	assert.Nil(t, err)

	company, _ = store.GetCompany(result.ID, false)
	dish, found = company.FieldMappings.Get("fav_dish")
	assert.True(t, found)
	assert.Equal(t, "null", dish)
}

func TestReconcilePreservesRawPayload(t *testing.T) {
	store := &Postgres{}
	tenant := newTenant(t)

	raw := map[string]interface{}{
		"id":           "333",
		"name":         "Soylent",
		"undocumented": map[string]interface{}{"nested": true},
	}
	result, _, err := store.ReconcileCompany(tenant, U.PROVIDER_NAME_HUBSPOT,
		&model.UnifiedCompany{Name: "Soylent"}, raw)
	assert.Nil(t, err)

	company, status := store.GetCompany(result.ID, true)
	assert.Equal(t, http.StatusFound, status)
	assert.NotNil(t, company.RemoteData)

	expected, err := json.Marshal(raw)
	assert.Nil(t, err)
	assert.JSONEq(t, string(expected), string(company.RemoteData))

	// without the flag the raw payload stays out of the response
	company, _ = store.GetCompany(result.ID, false)
	assert.Nil(t, company.RemoteData)
}

func TestReconcileConcurrentSameIdentity(t *testing.T) {
	store := &Postgres{}
	tenant := newTenant(t)

	raw := map[string]interface{}{"id": "808", "name": "Massive Dynamic"}

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, _, err := store.ReconcileCompany(tenant, U.PROVIDER_NAME_HUBSPOT,
				&model.UnifiedCompany{Name: "Massive Dynamic"}, raw)
			assert.Nil(t, err)
			ids[i] = result.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(ids); i++ {
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestReconcileCommentVisibilityAlwaysWritten(t *testing.T) {
	store := &Postgres{}
	tenant := newTenant(t)

	raw := map[string]interface{}{"id": "41", "body": "first"}
	result, status, err := store.ReconcileComment(tenant, U.PROVIDER_NAME_ZENDESK,
		&model.UnifiedComment{Body: "first", IsPrivate: true}, raw)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusCreated, status)

	// the visibility flip must land even though false is the zero value
	_, status, err = store.ReconcileComment(tenant, U.PROVIDER_NAME_ZENDESK,
		&model.UnifiedComment{Body: "first", IsPrivate: false}, raw)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusAccepted, status)

	comment, getStatus := store.GetComment(result.ID, false)
	assert.Equal(t, http.StatusFound, getStatus)
	assert.False(t, comment.IsPrivate)
}

func TestGetRemoteIDResolution(t *testing.T) {
	store := &Postgres{}
	tenant := newTenant(t)

	raw := map[string]interface{}{"id": "owner-9", "name": "Jane"}
	result, _, err := store.ReconcileUser(tenant, U.PROVIDER_NAME_HUBSPOT,
		&model.UnifiedUser{Name: "Jane"}, raw)
	assert.Nil(t, err)

	remoteID, status := store.GetUserRemoteID(result.ID)
	assert.Equal(t, http.StatusFound, status)
	assert.Equal(t, "owner-9", remoteID)

	_, status = store.GetUserRemoteID(uuid.New().String())
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLockIdentityStripesAreStableAndSerialize(t *testing.T) {
	// the same triple always lands on the same stripe
	assert.Same(t, identityLockStripe("r-1", U.PROVIDER_NAME_HUBSPOT, "lu-1"),
		identityLockStripe("r-1", U.PROVIDER_NAME_HUBSPOT, "lu-1"))

	release := lockIdentity("r-1", U.PROVIDER_NAME_HUBSPOT, "lu-1")

	acquired := make(chan struct{})
	go func() {
		unlock := lockIdentity("r-1", U.PROVIDER_NAME_HUBSPOT, "lu-1")
		unlock()
		close(acquired)
	}()

	select {
	case <-acquired:
		assert.Fail(t, "acquired the identity lock while it was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		assert.Fail(t, "identity lock was never released")
	}
}
