// services/inventory_service.go
package services

import (
	"errors"

	"github.com/swagdogge/intramon-collectible-game/models"

	"gorm.io/gorm"
)

// InventoryService is the sole authority over a player's collection, inbox
// and cached monster count. Every public method is one atomic step; the
// unexported *Tx helpers run against an already-open transaction so composed
// operations (gifting) stay all-or-nothing across both players.
type InventoryService struct {
	DB *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{DB: db}
}

// PromoteOne moves exactly one inbox instance into the permanent collection.
// Two concurrent promotions of the same instance cannot both succeed: the
// player row is locked first and the update is conditional on the instance
// still sitting in the inbox.
func (s *InventoryService) PromoteOne(playerID, instanceID string) error {
	return runAtomic(s.DB, func(tx *gorm.DB) error {
		return promoteOneTx(tx, playerID, instanceID)
	})
}

// PromoteAll drains the inbox into the collection. An empty inbox is a
// successful no-op. A deposit racing this call either lands before the
// player lock (and is promoted) or after (and stays pending) — never lost.
func (s *InventoryService) PromoteAll(playerID string) error {
	return runAtomic(s.DB, func(tx *gorm.DB) error {
		return promoteAllTx(tx, playerID)
	})
}

// DepositToInbox appends a minted or transferred instance to the player's
// inbox. This primitive does not deduplicate; idempotency is the caller's
// responsibility.
func (s *InventoryService) DepositToInbox(playerID string, inst models.MonsterInstance) error {
	return runAtomic(s.DB, func(tx *gorm.DB) error {
		return depositToInboxTx(tx, playerID, inst)
	})
}

// RemoveFromCollectionIfOwned atomically checks ownership and removes the
// instance from the collection, returning its final snapshot. This is the
// anti-double-spend guard gifting is built on.
func (s *InventoryService) RemoveFromCollectionIfOwned(playerID, instanceID string) (*models.MonsterInstance, error) {
	var removed *models.MonsterInstance
	err := runAtomic(s.DB, func(tx *gorm.DB) error {
		inst, err := removeFromCollectionIfOwnedTx(tx, playerID, instanceID)
		if err != nil {
			return err
		}
		removed = inst
		return nil
	})
	return removed, err
}

// Collection lists the player's permanent collection, oldest first.
func (s *InventoryService) Collection(playerID string) ([]models.MonsterInstance, error) {
	return s.listByLocation(playerID, models.LocationCollection)
}

// Inbox lists the player's pending grants, oldest first.
func (s *InventoryService) Inbox(playerID string) ([]models.MonsterInstance, error) {
	return s.listByLocation(playerID, models.LocationInbox)
}

func (s *InventoryService) listByLocation(playerID, location string) ([]models.MonsterInstance, error) {
	var instances []models.MonsterInstance
	err := s.DB.Where("player_id = ? AND location = ?", playerID, location).
		Order("created_at ASC").
		Find(&instances).Error
	return instances, err
}

// --- tx-scoped primitives ---

func lockPlayerTx(tx *gorm.DB, playerID string) (*models.Player, error) {
	var player models.Player
	if err := lockForUpdate(tx).Where("id = ?", playerID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

func promoteOneTx(tx *gorm.DB, playerID, instanceID string) error {
	if _, err := lockPlayerTx(tx, playerID); err != nil {
		return err
	}
	res := tx.Model(&models.MonsterInstance{}).
		Where("instance_id = ? AND player_id = ? AND location = ?",
			instanceID, playerID, models.LocationInbox).
		Updates(map[string]interface{}{
			"location": models.LocationCollection,
			"reason":   "",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrInstanceNotFound
	}
	return refreshMonsterCountTx(tx, playerID)
}

func promoteAllTx(tx *gorm.DB, playerID string) error {
	if _, err := lockPlayerTx(tx, playerID); err != nil {
		return err
	}
	if err := tx.Model(&models.MonsterInstance{}).
		Where("player_id = ? AND location = ?", playerID, models.LocationInbox).
		Updates(map[string]interface{}{
			"location": models.LocationCollection,
			"reason":   "",
		}).Error; err != nil {
		return err
	}
	return refreshMonsterCountTx(tx, playerID)
}

func depositToInboxTx(tx *gorm.DB, playerID string, inst models.MonsterInstance) error {
	if _, err := lockPlayerTx(tx, playerID); err != nil {
		return err
	}
	inst.PlayerID = playerID
	inst.Location = models.LocationInbox
	return tx.Create(&inst).Error
}

func removeFromCollectionIfOwnedTx(tx *gorm.DB, playerID, instanceID string) (*models.MonsterInstance, error) {
	if _, err := lockPlayerTx(tx, playerID); err != nil {
		return nil, err
	}
	var inst models.MonsterInstance
	if err := lockForUpdate(tx).
		Where("instance_id = ? AND player_id = ? AND location = ?",
			instanceID, playerID, models.LocationCollection).
		First(&inst).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotOwned
		}
		return nil, err
	}
	if err := tx.Delete(&models.MonsterInstance{}, "instance_id = ?", instanceID).Error; err != nil {
		return nil, err
	}
	if err := refreshMonsterCountTx(tx, playerID); err != nil {
		return nil, err
	}
	return &inst, nil
}

// refreshMonsterCountTx re-derives the cached count from the collection rows.
// Called inside every transaction that touches the collection, so the cache
// can never drift.
func refreshMonsterCountTx(tx *gorm.DB, playerID string) error {
	var count int64
	if err := tx.Model(&models.MonsterInstance{}).
		Where("player_id = ? AND location = ?", playerID, models.LocationCollection).
		Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&models.Player{}).
		Where("id = ?", playerID).
		Update("monster_count", count).Error
}
