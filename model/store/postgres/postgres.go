package postgres

import (
	"hash/fnv"
	"strings"
	"sync"

	C "mosaic/config"
	"mosaic/model/model"

	"github.com/jinzhu/gorm"
)

// Postgres implements the store contract on gorm. Tests run the same code on
// the sqlite dialect.
type Postgres struct {
}

func IsDuplicateRecordError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// AutoMigrate creates the full table set. Entry points call this once at
// startup; schema evolution tooling is out of scope.
func AutoMigrate() error {
	db := C.GetServices().Db
	return db.AutoMigrate(
		&model.LinkedUser{},
		&model.Connection{},
		&model.WebhookEndpoint{},
		&model.Attribute{},
		&model.Entity{},
		&model.AttributeValue{},
		&model.RemoteData{},
		&model.SyncEvent{},
		&model.CRMCompany{},
		&model.CRMEmailAddress{},
		&model.CRMPhoneNumber{},
		&model.CRMAddress{},
		&model.CRMUser{},
		&model.CRMNote{},
		&model.TicketingComment{},
	).Error
}

// identityLocks serializes reconciliations per identity triple so that
// overlapping sweeps cannot race between "not found" and "create" and mint
// duplicate canonical records. The triple hashes onto a fixed stripe set, so
// memory stays constant no matter how many identities the process reconciles;
// two triples sharing a stripe only contend, they never lose isolation.
const identityLockStripes = 64

var identityLocks [identityLockStripes]sync.Mutex

func identityLockStripe(remoteID, providerSlug, linkedUserID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(remoteID + "|" + providerSlug + "|" + linkedUserID))
	return &identityLocks[h.Sum32()%identityLockStripes]
}

func lockIdentity(remoteID, providerSlug, linkedUserID string) func() {
	lock := identityLockStripe(remoteID, providerSlug, linkedUserID)
	lock.Lock()
	return lock.Unlock
}

// rollbackOnPanic keeps a half-committed record from surviving a panic inside
// a reconciliation transaction.
func rollbackOnPanic(tx *gorm.DB) {
	if r := recover(); r != nil {
		tx.Rollback()
		panic(r)
	}
}
