// services/crystal_service.go
package services

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/swagdogge/intramon-collectible-game/models"

	"gorm.io/gorm"
)

// Crystal accrual tuning. One crystal per tracked presence hour, refreshable
// at most once per hour.
const (
	CrystalsPerHour = 1.0
	AccrualCooldown = time.Hour
)

// CrystalService converts externally-reported presence time into crystals.
// The checkpoint guarantees an elapsed interval is converted exactly once;
// the cooldown bounds polling frequency. Both live on the player row, so the
// whole step is one locked read-modify-write.
type CrystalService struct {
	DB    *gorm.DB
	Clock clockwork.Clock
}

func NewCrystalService(db *gorm.DB, clock clockwork.Clock) *CrystalService {
	return &CrystalService{DB: db, Clock: clock}
}

// AccrualResult reports one refresh outcome.
type AccrualResult struct {
	Earned          int64   `json:"earned"`
	Balance         int64   `json:"crystals"`
	CheckpointHours float64 `json:"checkpoint_hours"`
}

// Accrue applies the delta between the reported cumulative presence hours
// and the player's checkpoint.
//
// A call inside the cooldown window fails with ThrottledError and changes
// nothing. A non-throttled call always advances the cooldown timestamp, even
// when it earns zero. A reported value below the checkpoint (a replayed or
// regressed source read) earns zero and leaves the checkpoint at its maximum.
// Fractional hours earn nothing now but stay in the checkpoint delta for the
// next call.
func (s *CrystalService) Accrue(playerID string, totalElapsedHours float64) (*AccrualResult, error) {
	now := s.Clock.Now()
	var result *AccrualResult
	err := runAtomic(s.DB, func(tx *gorm.DB) error {
		player, err := lockPlayerTx(tx, playerID)
		if err != nil {
			return err
		}

		if player.LastAccrualAt != nil {
			elapsed := now.Sub(*player.LastAccrualAt)
			if elapsed < AccrualCooldown {
				return &models.ThrottledError{RetryAfter: AccrualCooldown - elapsed}
			}
		}

		var earned int64
		if gained := totalElapsedHours - player.PresenceCheckpointHours; gained > 0 {
			earned = int64(math.Floor(gained * CrystalsPerHour))
			player.Crystals += earned
			player.PresenceCheckpointHours = totalElapsedHours
		}
		player.LastAccrualAt = &now

		if err := tx.Save(player).Error; err != nil {
			return err
		}
		result = &AccrualResult{
			Earned:          earned,
			Balance:         player.Crystals,
			CheckpointHours: player.PresenceCheckpointHours,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
