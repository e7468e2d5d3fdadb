package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/swagdogge/intramon-collectible-game/catalog"
	"github.com/swagdogge/intramon-collectible-game/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns an isolated in-memory database. A single connection is
// shared so sqlite's single writer serializes concurrent test goroutines the
// way row locks do in production.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(10000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.Player{},
		&models.GrantedEvaluation{},
		&models.MonsterInstance{},
		&models.ClaimCode{},
		&models.ClaimCodeRedemption{},
		&models.Gift{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedPlayer(t *testing.T, db *gorm.DB, id, name string) {
	t.Helper()
	if err := db.Create(&models.Player{ID: id, Name: name}).Error; err != nil {
		t.Fatalf("seed player %s: %v", id, err)
	}
}

// seedInstance puts a monster directly into the given location, bypassing the
// grant paths, and keeps the cached count in sync.
func seedInstance(t *testing.T, db *gorm.DB, playerID, instanceID, location string) models.MonsterInstance {
	t.Helper()
	inst := models.MonsterInstance{
		InstanceID: instanceID,
		PlayerID:   playerID,
		Location:   location,
		TemplateID: "fire-common",
		Rarity:     catalog.RarityCommon,
		Attack:     65,
		Defense:    35,
		HP:         75,
	}
	if err := db.Create(&inst).Error; err != nil {
		t.Fatalf("seed instance %s: %v", instanceID, err)
	}
	if location == models.LocationCollection {
		if err := db.Model(&models.Player{}).Where("id = ?", playerID).
			Update("monster_count", gorm.Expr("monster_count + 1")).Error; err != nil {
			t.Fatalf("bump monster count: %v", err)
		}
	}
	return inst
}

func getPlayer(t *testing.T, db *gorm.DB, id string) models.Player {
	t.Helper()
	var p models.Player
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		t.Fatalf("fetch player %s: %v", id, err)
	}
	return p
}

func countInLocation(t *testing.T, db *gorm.DB, playerID, location string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.MonsterInstance{}).
		Where("player_id = ? AND location = ?", playerID, location).
		Count(&n).Error; err != nil {
		t.Fatalf("count instances: %v", err)
	}
	return n
}

// sequentialIDs returns an id generator yielding inst-1, inst-2, …
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func futureTime() time.Time {
	return time.Now().Add(24 * time.Hour)
}
