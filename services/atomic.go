package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/swagdogge/intramon-collectible-game/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const txRetries = 3

// runAtomic executes fn inside a database transaction and retries a bounded
// number of times when the store reports a conflicting concurrent write.
// Conflicts that outlive the retry budget surface as ErrTransient, which is
// always safe for the caller to retry: every operation in this service is
// either naturally idempotent or guarded by its own check step.
func runAtomic(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < txRetries; attempt++ {
		err = db.Transaction(fn)
		if err == nil || !isConflict(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return fmt.Errorf("%w: %v", models.ErrTransient, err)
}

// isConflict recognizes serialization failures and deadlocks (Postgres
// 40001/40P01) plus sqlite's busy signal from tests.
func isConflict(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "40001") ||
		strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "database is locked")
}

// lockForUpdate adds a SELECT ... FOR UPDATE row lock where the store
// supports it. sqlite (the test store) has a single writer and rejects the
// clause, so it is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
