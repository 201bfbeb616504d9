package util

const (
	PROVIDER_NAME_HUBSPOT   = "hubspot"
	PROVIDER_NAME_PIPEDRIVE = "pipedrive"
	PROVIDER_NAME_ZENDESK   = "zendesk"
	PROVIDER_NAME_FRONT     = "front"
)

const (
	OBJECT_KIND_COMPANY = "company"
	OBJECT_KIND_USER    = "user"
	OBJECT_KIND_NOTE    = "note"
	OBJECT_KIND_COMMENT = "comment"
)

const (
	SYNC_STATUS_SUCCESS  = "success"
	SYNC_STATUS_FAILURES = "fail"
)

// ProvidersByObjectKind is the closed set of providers supporting each object
// kind. Registry wiring and sweep fan-out both derive from this table.
var ProvidersByObjectKind = map[string][]string{
	OBJECT_KIND_COMPANY: {PROVIDER_NAME_HUBSPOT, PROVIDER_NAME_PIPEDRIVE},
	OBJECT_KIND_USER:    {PROVIDER_NAME_HUBSPOT, PROVIDER_NAME_PIPEDRIVE},
	OBJECT_KIND_NOTE:    {PROVIDER_NAME_HUBSPOT, PROVIDER_NAME_PIPEDRIVE},
	OBJECT_KIND_COMMENT: {PROVIDER_NAME_ZENDESK, PROVIDER_NAME_FRONT},
}

// SyncExcludedProvidersByObjectKind lists providers skipped by the scheduled
// sweep for a given kind. Direct push/read for the pair stays allowed.
var SyncExcludedProvidersByObjectKind = map[string]map[string]bool{
	OBJECT_KIND_USER: {PROVIDER_NAME_PIPEDRIVE: true},
}

const (
	VERTICAL_CRM       = "crm"
	VERTICAL_TICKETING = "ticketing"
)

// VerticalForObjectKind maps an object kind to its event-type vertical.
func VerticalForObjectKind(objectKind string) string {
	if objectKind == OBJECT_KIND_COMMENT {
		return VERTICAL_TICKETING
	}

	return VERTICAL_CRM
}

func AllObjectKinds() []string {
	return []string{OBJECT_KIND_COMPANY, OBJECT_KIND_USER, OBJECT_KIND_NOTE, OBJECT_KIND_COMMENT}
}

func IsValidProviderForObjectKind(provider, objectKind string) bool {
	for _, slug := range ProvidersByObjectKind[objectKind] {
		if slug == provider {
			return true
		}
	}

	return false
}

// SyncProvidersForObjectKind returns the sweep-eligible providers for a kind,
// i.e. the supported set minus the static exclusion list.
func SyncProvidersForObjectKind(objectKind string) []string {
	excluded := SyncExcludedProvidersByObjectKind[objectKind]

	providers := make([]string, 0)
	for _, slug := range ProvidersByObjectKind[objectKind] {
		if excluded[slug] {
			continue
		}
		providers = append(providers, slug)
	}

	return providers
}
