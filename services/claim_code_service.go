// services/claim_code_service.go
package services

import (
	"errors"
	"strings"
	"time"

	"github.com/swagdogge/intramon-collectible-game/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClaimCodeService owns the claim code lifecycle: idempotent creation,
// case-insensitive lookup and the single-use-per-player commit.
//
// Validation and claiming are deliberately separate steps. Fulfillment (mint,
// inbox deposit) happens between them, and the commit of "this player used
// this code" is the minimal atomic step performed last.
type ClaimCodeService struct {
	DB *gorm.DB
}

func NewClaimCodeService(db *gorm.DB) *ClaimCodeService {
	return &ClaimCodeService{DB: db}
}

// NormalizeCode is the canonical storage and lookup form of a code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create registers a code. Safe to run on every bootstrap: an existing code
// keeps its expiry and its redemption history untouched.
func (s *ClaimCodeService) Create(code, templateID string, expiresAt time.Time) error {
	cc := models.ClaimCode{
		Code:       NormalizeCode(code),
		TemplateID: templateID,
		ExpiresAt:  expiresAt,
	}
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&cc).Error
}

// Lookup fetches a code case-insensitively.
func (s *ClaimCodeService) Lookup(code string) (*models.ClaimCode, error) {
	var cc models.ClaimCode
	if err := s.DB.Where("code = ?", NormalizeCode(code)).First(&cc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCodeNotFound
		}
		return nil, err
	}
	return &cc, nil
}

// ValidateForPlayer checks expiry and prior use without mutating anything.
// The result is advisory only — MarkClaimed re-checks under the unique index
// because a concurrent redemption may land in between.
func (s *ClaimCodeService) ValidateForPlayer(code, playerID string, now time.Time) (*models.ClaimCode, error) {
	cc, err := s.Lookup(code)
	if err != nil {
		return nil, err
	}
	if now.After(cc.ExpiresAt) {
		return nil, models.ErrCodeExpired
	}
	var count int64
	if err := s.DB.Model(&models.ClaimCodeRedemption{}).
		Where("code = ? AND player_id = ?", cc.Code, playerID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, models.ErrAlreadyClaimed
	}
	return cc, nil
}

// MarkClaimed records the redemption. The check-then-append is a single
// insert-or-ignore against the (code, player) unique index; losing the race
// surfaces as ErrAlreadyClaimed.
func (s *ClaimCodeService) MarkClaimed(code, playerID string) error {
	normalized := NormalizeCode(code)
	return runAtomic(s.DB, func(tx *gorm.DB) error {
		var cc models.ClaimCode
		if err := tx.Where("code = ?", normalized).First(&cc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrCodeNotFound
			}
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ClaimCodeRedemption{Code: normalized, PlayerID: playerID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrAlreadyClaimed
		}
		return nil
	})
}

// ClaimedBy lists the players that have redeemed a code, oldest first.
func (s *ClaimCodeService) ClaimedBy(code string) ([]string, error) {
	var playerIDs []string
	err := s.DB.Model(&models.ClaimCodeRedemption{}).
		Where("code = ?", NormalizeCode(code)).
		Order("created_at ASC").
		Pluck("player_id", &playerIDs).Error
	return playerIDs, err
}
