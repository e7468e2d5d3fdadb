// services/gift_service.go
package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/swagdogge/intramon-collectible-game/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GiftService transfers one owned monster instance from a sender's
// collection into a recipient's inbox. The whole transfer — ownership check,
// removal, deposit, audit record — is one transaction spanning both player
// records: there is no observable state where the instance exists in neither
// place, or in both.
type GiftService struct {
	DB        *gorm.DB
	NewGiftID func() string
}

func NewGiftService(db *gorm.DB, idgen func() string) *GiftService {
	return &GiftService{DB: db, NewGiftID: idgen}
}

// Gift moves instanceID from sender to recipient. NotFound if either player
// is missing, NotOwned if the instance is not currently in the sender's
// collection (inbox monsters are not giftable).
func (s *GiftService) Gift(senderID, recipientID, instanceID string) (*models.Gift, error) {
	var gift *models.Gift
	err := runAtomic(s.DB, func(tx *gorm.DB) error {
		// Lock both player rows in ID order so two crossing gifts cannot
		// deadlock.
		first, second := senderID, recipientID
		if second < first {
			first, second = second, first
		}
		if _, err := lockPlayerTx(tx, first); err != nil {
			return err
		}
		if second != first {
			if _, err := lockPlayerTx(tx, second); err != nil {
				return err
			}
		}

		inst, err := removeFromCollectionIfOwnedTx(tx, senderID, instanceID)
		if err != nil {
			return err
		}

		moved := *inst
		moved.Reason = models.ReasonGift
		if err := depositToInboxTx(tx, recipientID, moved); err != nil {
			return err
		}

		snapshot, err := json.Marshal(moved)
		if err != nil {
			return err
		}
		g := models.Gift{
			ID:           s.NewGiftID(),
			FromPlayerID: senderID,
			ToPlayerID:   recipientID,
			InstanceID:   inst.InstanceID,
			Monster:      datatypes.JSON(snapshot),
		}
		if err := tx.Create(&g).Error; err != nil {
			return err
		}
		gift = &g
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🎁 Gift: %s → %s (instance %s)", senderID, recipientID, instanceID)
	return gift, nil
}

// RecentGifts returns the latest gifts received by a player, newest first.
func (s *GiftService) RecentGifts(playerID string, limit int) ([]models.Gift, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var gifts []models.Gift
	err := s.DB.Where("to_player_id = ?", playerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&gifts).Error
	return gifts, err
}

// DismissGift removes a gift notification record. Only the recipient can
// dismiss it; the transferred instance itself is untouched.
func (s *GiftService) DismissGift(giftID, playerID string) error {
	res := s.DB.Where("id = ? AND to_player_id = ?", giftID, playerID).
		Delete(&models.Gift{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrGiftNotFound
	}
	return nil
}

// CleanupOldGifts deletes gift notification records older than the retention
// window and reports how many were removed.
func (s *GiftService) CleanupOldGifts(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := s.DB.Where("created_at < ?", cutoff).Delete(&models.Gift{})
	return res.RowsAffected, res.Error
}
