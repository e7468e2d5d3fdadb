// workers/evaluation_sync_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"github.com/swagdogge/intramon-collectible-game/models"
	"github.com/swagdogge/intramon-collectible-game/services"

	"gorm.io/gorm"
)

// EvaluationSyncWorker periodically pulls evaluation IDs from the external
// presence service for recently-seen players and grants the rewards they
// have not received yet. The grant path is insert-or-ignore per evaluation,
// so overlapping sync runs are harmless.
type EvaluationSyncWorker struct {
	db       *gorm.DB
	players  *services.PlayerService
	presence services.PresenceAPI
	interval time.Duration
	window   time.Duration // how far back "recently seen" reaches
}

func NewEvaluationSyncWorker(db *gorm.DB, players *services.PlayerService, presence services.PresenceAPI) *EvaluationSyncWorker {
	return &EvaluationSyncWorker{
		db:       db,
		players:  players,
		presence: presence,
		interval: 5 * time.Minute,
		window:   7 * 24 * time.Hour,
	}
}

func (w *EvaluationSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Evaluation Sync Worker (presence service → inbox grants)…")
	go w.run(ctx)
}

func (w *EvaluationSyncWorker) run(ctx context.Context) {
	if err := w.syncBatch(ctx); err != nil {
		log.Printf("⚠️ Initial evaluation sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx); err != nil {
				log.Printf("❌ Evaluation sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Evaluation Sync Worker stopped")
			return
		}
	}
}

// syncBatch grants pending evaluation rewards for every player seen within
// the activity window.
func (w *EvaluationSyncWorker) syncBatch(ctx context.Context) error {
	since := time.Now().Add(-w.window)

	var playerIDs []string
	if err := w.db.Model(&models.Player{}).
		Where("updated_at >= ?", since).
		Pluck("id", &playerIDs).Error; err != nil {
		return err
	}
	if len(playerIDs) == 0 {
		return nil
	}

	var grantedTotal, errorCount int
	for _, playerID := range playerIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		evalIDs, err := w.presence.EvaluationIDs(ctx, playerID)
		if err != nil {
			errorCount++
			log.Printf("[EVAL_SYNC] ⚠️ Failed to fetch evaluations for %s: %v", playerID, err)
			continue
		}
		granted, err := w.players.GrantEvaluationRewards(playerID, evalIDs)
		grantedTotal += granted
		if err != nil {
			errorCount++
			log.Printf("[EVAL_SYNC] ⚠️ Grant failed for %s: %v", playerID, err)
		}
	}

	if grantedTotal > 0 || errorCount > 0 {
		log.Printf("[EVAL_SYNC] ✅ Checked %d player(s): %d new reward(s), %d error(s)",
			len(playerIDs), grantedTotal, errorCount)
	}
	return nil
}
