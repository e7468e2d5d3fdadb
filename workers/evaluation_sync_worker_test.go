package workers

import (
	"context"
	"fmt"
	"testing"

	"github.com/swagdogge/intramon-collectible-game/catalog"
	"github.com/swagdogge/intramon-collectible-game/models"
	"github.com/swagdogge/intramon-collectible-game/services"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubPresence struct {
	evalsByPlayer map[string][]int64
}

func (s *stubPresence) TotalPresenceHours(ctx context.Context, playerID string) (float64, error) {
	return 0, nil
}

func (s *stubPresence) EvaluationIDs(ctx context.Context, playerID string) ([]int64, error) {
	evals, ok := s.evalsByPlayer[playerID]
	if !ok {
		return nil, fmt.Errorf("player %s unknown to presence service", playerID)
	}
	return evals, nil
}

func openWorkerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(10000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.Player{},
		&models.GrantedEvaluation{},
		&models.MonsterInstance{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSyncBatchGrantsNewEvaluations(t *testing.T) {
	db := openWorkerTestDB(t)
	players := services.NewPlayerService(db, catalog.NewSeeded(1), uuid.NewString)
	presence := &stubPresence{evalsByPlayer: map[string][]int64{
		"p1": {101, 102},
		"p2": {201},
	}}

	for _, id := range []string{"p1", "p2"} {
		if err := db.Create(&models.Player{ID: id, Name: id}).Error; err != nil {
			t.Fatalf("seed player: %v", err)
		}
	}

	w := NewEvaluationSyncWorker(db, players, presence)
	if err := w.syncBatch(context.Background()); err != nil {
		t.Fatalf("syncBatch: %v", err)
	}

	var rewards int64
	db.Model(&models.MonsterInstance{}).Where("reason = ?", models.ReasonEval).Count(&rewards)
	if rewards != 3 {
		t.Errorf("eval rewards = %d, want 3", rewards)
	}

	// A second pass with the same data grants nothing new.
	if err := w.syncBatch(context.Background()); err != nil {
		t.Fatalf("second syncBatch: %v", err)
	}
	db.Model(&models.MonsterInstance{}).Where("reason = ?", models.ReasonEval).Count(&rewards)
	if rewards != 3 {
		t.Errorf("eval rewards after re-sync = %d, want 3", rewards)
	}
}

func TestSyncBatchSurvivesPresenceErrors(t *testing.T) {
	db := openWorkerTestDB(t)
	players := services.NewPlayerService(db, catalog.NewSeeded(1), uuid.NewString)
	presence := &stubPresence{evalsByPlayer: map[string][]int64{
		"p2": {201},
	}}

	for _, id := range []string{"p1", "p2"} {
		if err := db.Create(&models.Player{ID: id, Name: id}).Error; err != nil {
			t.Fatalf("seed player: %v", err)
		}
	}

	w := NewEvaluationSyncWorker(db, players, presence)
	if err := w.syncBatch(context.Background()); err != nil {
		t.Fatalf("syncBatch: %v", err)
	}

	// p1's fetch failed but p2 still got its reward.
	var rewards int64
	db.Model(&models.MonsterInstance{}).Where("player_id = ? AND reason = ?", "p2", models.ReasonEval).Count(&rewards)
	if rewards != 1 {
		t.Errorf("p2 rewards = %d, want 1", rewards)
	}
}
