// Package record_sync runs the scheduled reconciliation sweep: for every
// active tenant and every sweep-eligible (provider, object kind) pair it
// pulls provider records, unifies them and reconciles each candidate into
// canonical storage.
package record_sync

import (
	"context"
	"net/http"
	"sync"
	"time"

	"mosaic/integration/registry"
	"mosaic/model/model"
	"mosaic/model/store"
	U "mosaic/util"
	"mosaic/webhooks"

	"github.com/jinzhu/now"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	IntervalMinutes int
	NumRoutines     int
}

type Job struct {
	Store    store.Store
	Registry *registry.Registry
	Conf     Config
}

func NewJob(s store.Store, r *registry.Registry, conf Config) *Job {
	if conf.IntervalMinutes <= 0 {
		conf.IntervalMinutes = 20
	}
	if conf.NumRoutines <= 0 {
		conf.NumRoutines = 1
	}

	return &Job{Store: s, Registry: r, Conf: conf}
}

// SweepStatus aggregates counts across all units of one sweep.
type SweepStatus struct {
	mu sync.Mutex

	UnitsRun       int
	UnitsSkipped   int
	UnitsFailed    int
	RecordsCreated int
	RecordsUpdated int
	RecordsFailed  int
}

func (s *SweepStatus) addUnit(counts unitCounts, err error, skipped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if skipped {
		s.UnitsSkipped++
		return
	}
	if err != nil {
		s.UnitsFailed++
		return
	}

	s.UnitsRun++
	s.RecordsCreated += counts.created
	s.RecordsUpdated += counts.updated
	s.RecordsFailed += counts.failed
}

type unitCounts struct {
	created int
	updated int
	failed  int
}

// unit is one (tenant, provider, object kind) sweep cell.
type unit struct {
	linkedUserID string
	providerSlug string
	objectKind   string
}

// StartScheduler sweeps once immediately, then on every interval boundary
// until the context is cancelled. Blocks.
func (j *Job) StartScheduler(ctx context.Context) {
	interval := time.Duration(j.Conf.IntervalMinutes) * time.Minute

	j.SweepAll(ctx)

	// align the first tick to a wall-clock minute boundary so restarts
	// keep a stable cadence.
	firstTick := now.BeginningOfMinute().Add(interval)
	timer := time.NewTimer(time.Until(firstTick))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	j.SweepAll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.SweepAll(ctx)
		}
	}
}

// SweepAll fans the unit grid out over a bounded worker pool. Cancellation
// is honored between units; a running unit always finishes.
func (j *Job) SweepAll(ctx context.Context) *SweepStatus {
	logFields := log.Fields{"num_routines": j.Conf.NumRoutines}
	defer model.LogOnSlowExecutionWithParams(time.Now(), &logFields)

	sweepStatus := &SweepStatus{}

	linkedUsers, status := j.Store.GetAllLinkedUsers()
	if status != http.StatusFound {
		if status != http.StatusNotFound {
			log.WithFields(logFields).Error("Failed to list linked users for sweep.")
		}
		return sweepStatus
	}

	units := make([]unit, 0)
	for _, objectKind := range U.AllObjectKinds() {
		for _, providerSlug := range U.SyncProvidersForObjectKind(objectKind) {
			for i := range linkedUsers {
				units = append(units, unit{
					linkedUserID: linkedUsers[i].ID,
					providerSlug: providerSlug,
					objectKind:   objectKind,
				})
			}
		}
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, j.Conf.NumRoutines)
	for _, u := range units {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(u unit) {
			defer wg.Done()
			defer func() { <-sem }()
			j.runUnit(u, sweepStatus)
		}(u)
	}
	wg.Wait()

	log.WithFields(log.Fields{
		"units_run":       sweepStatus.UnitsRun,
		"units_skipped":   sweepStatus.UnitsSkipped,
		"units_failed":    sweepStatus.UnitsFailed,
		"records_created": sweepStatus.RecordsCreated,
		"records_updated": sweepStatus.RecordsUpdated,
		"records_failed":  sweepStatus.RecordsFailed,
	}).Info("Completed record sync sweep.")

	return sweepStatus
}

func (j *Job) runUnit(u unit, sweepStatus *SweepStatus) {
	logFields := log.Fields{
		"linked_user_id": u.linkedUserID,
		"provider_slug":  u.providerSlug,
		"object_kind":    u.objectKind,
	}
	logCtx := log.WithFields(logFields)

	// tenants without a connection for this provider are not an error,
	// they just have nothing to sync here.
	if _, status := j.Store.GetConnection(u.linkedUserID, u.providerSlug); status != http.StatusFound {
		sweepStatus.addUnit(unitCounts{}, nil, true)
		return
	}

	counts, affected, err := j.syncUnit(u)
	if err != nil {
		logCtx.WithError(err).Error("Record sync unit failed.")
		j.recordSweepEvent(u, U.SYNC_STATUS_FAILURES)
		sweepStatus.addUnit(unitCounts{}, err, false)
		return
	}

	eventID := j.recordSweepEvent(u, U.SYNC_STATUS_SUCCESS)
	eventType := model.SyncEventType(U.VerticalForObjectKind(u.objectKind),
		u.objectKind, string(model.SyncActionPulled))
	webhooks.Notify(j.Store, eventID, eventType, u.linkedUserID, map[string]interface{}{
		"provider": u.providerSlug,
		"records":  affected,
		"created":  counts.created,
		"updated":  counts.updated,
		"failed":   counts.failed,
	})

	sweepStatus.addUnit(counts, nil, false)
}

func (j *Job) recordSweepEvent(u unit, status string) string {
	event := &model.SyncEvent{
		Type: model.SyncEventType(U.VerticalForObjectKind(u.objectKind),
			u.objectKind, string(model.SyncActionPulled)),
		Status:       status,
		Method:       model.SyncMethodPull,
		Provider:     u.providerSlug,
		LinkedUserID: u.linkedUserID,
	}
	if _, err := j.Store.CreateSyncEvent(event); err != nil {
		log.WithFields(log.Fields{
			"linked_user_id": u.linkedUserID,
			"provider_slug":  u.providerSlug,
		}).WithError(err).Error("Failed to record sweep event.")
	}

	return event.ID
}

func (j *Job) syncUnit(u unit) (unitCounts, []interface{}, error) {
	switch u.objectKind {
	case U.OBJECT_KIND_COMPANY:
		return j.syncCompanies(u)
	case U.OBJECT_KIND_USER:
		return j.syncUsers(u)
	case U.OBJECT_KIND_NOTE:
		return j.syncNotes(u)
	case U.OBJECT_KIND_COMMENT:
		return j.syncComments(u)
	}

	return unitCounts{}, nil, nil
}

// Per-kind unit bodies. Each pulls the full provider collection, unifies it
// and reconciles candidate by candidate: one bad record is counted and
// skipped, never aborts the unit. The reconciled canonical records are
// collected so the unit's webhook event can carry them.

func (j *Job) syncCompanies(u unit) (unitCounts, []interface{}, error) {
	counts := unitCounts{}
	affected := make([]interface{}, 0)

	binding, err := j.Registry.Company(u.providerSlug)
	if err != nil {
		return counts, nil, err
	}

	mappings, _ := j.Store.GetAttributes(u.providerSlug, u.linkedUserID, u.objectKind)
	response, err := binding.Adapter.Pull(u.linkedUserID, model.RemotePropertyNames(mappings))
	if err != nil {
		return counts, nil, err
	}

	candidates, err := binding.Mapper.Unify(response.Data, mappings)
	if err != nil {
		return counts, nil, err
	}

	for i := range candidates {
		result, _, err := j.Store.ReconcileCompany(u.linkedUserID, u.providerSlug,
			&candidates[i], response.Data[i])
		if err != nil {
			counts.failed++
			log.WithFields(log.Fields{
				"linked_user_id": u.linkedUserID,
				"provider_slug":  u.providerSlug,
			}).WithError(err).Error("Failed to reconcile pulled company.")
			continue
		}
		tallyAction(&counts, result.Action)
		if record, status := j.Store.GetCompany(result.ID, false); status == http.StatusFound {
			affected = append(affected, record)
		}
	}

	return counts, affected, nil
}

func (j *Job) syncUsers(u unit) (unitCounts, []interface{}, error) {
	counts := unitCounts{}
	affected := make([]interface{}, 0)

	binding, err := j.Registry.User(u.providerSlug)
	if err != nil {
		return counts, nil, err
	}

	mappings, _ := j.Store.GetAttributes(u.providerSlug, u.linkedUserID, u.objectKind)
	response, err := binding.Adapter.Pull(u.linkedUserID, model.RemotePropertyNames(mappings))
	if err != nil {
		return counts, nil, err
	}

	candidates, err := binding.Mapper.Unify(response.Data, mappings)
	if err != nil {
		return counts, nil, err
	}

	for i := range candidates {
		result, _, err := j.Store.ReconcileUser(u.linkedUserID, u.providerSlug,
			&candidates[i], response.Data[i])
		if err != nil {
			counts.failed++
			log.WithFields(log.Fields{
				"linked_user_id": u.linkedUserID,
				"provider_slug":  u.providerSlug,
			}).WithError(err).Error("Failed to reconcile pulled user.")
			continue
		}
		tallyAction(&counts, result.Action)
		if record, status := j.Store.GetUser(result.ID, false); status == http.StatusFound {
			affected = append(affected, record)
		}
	}

	return counts, affected, nil
}

func (j *Job) syncNotes(u unit) (unitCounts, []interface{}, error) {
	counts := unitCounts{}
	affected := make([]interface{}, 0)

	binding, err := j.Registry.Note(u.providerSlug)
	if err != nil {
		return counts, nil, err
	}

	mappings, _ := j.Store.GetAttributes(u.providerSlug, u.linkedUserID, u.objectKind)
	response, err := binding.Adapter.Pull(u.linkedUserID, model.RemotePropertyNames(mappings))
	if err != nil {
		return counts, nil, err
	}

	candidates, err := binding.Mapper.Unify(response.Data, mappings)
	if err != nil {
		return counts, nil, err
	}

	for i := range candidates {
		result, _, err := j.Store.ReconcileNote(u.linkedUserID, u.providerSlug,
			&candidates[i], response.Data[i])
		if err != nil {
			counts.failed++
			log.WithFields(log.Fields{
				"linked_user_id": u.linkedUserID,
				"provider_slug":  u.providerSlug,
			}).WithError(err).Error("Failed to reconcile pulled note.")
			continue
		}
		tallyAction(&counts, result.Action)
		if record, status := j.Store.GetNote(result.ID, false); status == http.StatusFound {
			affected = append(affected, record)
		}
	}

	return counts, affected, nil
}

func (j *Job) syncComments(u unit) (unitCounts, []interface{}, error) {
	counts := unitCounts{}
	affected := make([]interface{}, 0)

	binding, err := j.Registry.Comment(u.providerSlug)
	if err != nil {
		return counts, nil, err
	}

	mappings, _ := j.Store.GetAttributes(u.providerSlug, u.linkedUserID, u.objectKind)
	response, err := binding.Adapter.Pull(u.linkedUserID, model.RemotePropertyNames(mappings))
	if err != nil {
		return counts, nil, err
	}

	candidates, err := binding.Mapper.Unify(response.Data, mappings)
	if err != nil {
		return counts, nil, err
	}

	for i := range candidates {
		result, _, err := j.Store.ReconcileComment(u.linkedUserID, u.providerSlug,
			&candidates[i], response.Data[i])
		if err != nil {
			counts.failed++
			log.WithFields(log.Fields{
				"linked_user_id": u.linkedUserID,
				"provider_slug":  u.providerSlug,
			}).WithError(err).Error("Failed to reconcile pulled comment.")
			continue
		}
		tallyAction(&counts, result.Action)
		if record, status := j.Store.GetComment(result.ID, false); status == http.StatusFound {
			affected = append(affected, record)
		}
	}

	return counts, affected, nil
}

func tallyAction(counts *unitCounts, action model.SyncAction) {
	switch action {
	case model.SyncActionCreated:
		counts.created++
	case model.SyncActionUpdated:
		counts.updated++
	}
}
