// services/players.go
package services

import (
	"errors"
	"log"

	"github.com/swagdogge/intramon-collectible-game/catalog"
	"github.com/swagdogge/intramon-collectible-game/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlayerService creates and reads player records. Creation is the single
// normalization point: a player row is born with an empty inbox, a zero
// count and a zero balance, so no later read ever has to backfill defaults.
type PlayerService struct {
	DB            *gorm.DB
	Catalog       catalog.Provider
	NewInstanceID func() string
}

func NewPlayerService(db *gorm.DB, cat catalog.Provider, idgen func() string) *PlayerService {
	return &PlayerService{DB: db, Catalog: cat, NewInstanceID: idgen}
}

// EnsurePlayer fetches the player record, creating it on first login. A new
// player receives one weighted-random welcome monster in the inbox, exactly
// once: the grant shares the creation transaction, and a lost creation race
// falls back to the winner's row.
func (s *PlayerService) EnsurePlayer(playerID, name string) (*models.Player, error) {
	var player models.Player
	err := runAtomic(s.DB, func(tx *gorm.DB) error {
		err := tx.Where("id = ?", playerID).First(&player).Error
		if err == nil {
			if name != "" && player.Name != name {
				// Touch only the name column: a full-row Save would write
				// back the unlocked snapshot and could revert a concurrent
				// crystal or count update.
				player.Name = name
				return tx.Model(&models.Player{}).
					Where("id = ?", playerID).
					Update("name", name).Error
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		player = models.Player{ID: playerID, Name: name}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&player)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Concurrent first login won; reuse its record.
			return tx.Where("id = ?", playerID).First(&player).Error
		}

		tpl := s.Catalog.RandomTemplate()
		welcome := mintInstance(tpl, s.NewInstanceID(), models.ReasonWelcome)
		if err := depositToInboxTx(tx, playerID, welcome); err != nil {
			return err
		}
		log.Printf("👋 New player %s (%s), welcome monster %s queued", playerID, name, tpl.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// GetPlayer fetches an existing player.
func (s *PlayerService) GetPlayer(playerID string) (*models.Player, error) {
	var player models.Player
	if err := s.DB.Where("id = ?", playerID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

// FindByName resolves a display name to a player, for addressing gifts.
func (s *PlayerService) FindByName(name string) (*models.Player, error) {
	var player models.Player
	if err := s.DB.Where("name = ?", name).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

// GrantEvaluationRewards deposits one weighted-random monster per previously
// unseen evaluation ID. Each grant is insert-or-ignore on the
// (player, evaluation) unique index inside the same transaction as the
// deposit, so a replayed evaluation can never be rewarded twice. Returns how
// many evaluations were newly rewarded.
func (s *PlayerService) GrantEvaluationRewards(playerID string, evaluationIDs []int64) (int, error) {
	granted := 0
	for _, evalID := range evaluationIDs {
		var newly bool
		err := runAtomic(s.DB, func(tx *gorm.DB) error {
			newly = false
			if _, err := lockPlayerTx(tx, playerID); err != nil {
				return err
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.GrantedEvaluation{PlayerID: playerID, EvaluationID: evalID})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil // already rewarded
			}
			tpl := s.Catalog.RandomTemplate()
			inst := mintInstance(tpl, s.NewInstanceID(), models.ReasonEval)
			if err := depositToInboxTx(tx, playerID, inst); err != nil {
				return err
			}
			newly = true
			return nil
		})
		if err != nil {
			return granted, err
		}
		if newly {
			granted++
		}
	}
	return granted, nil
}

// mintInstance snapshots a template into a fresh instance. Stats are frozen
// here; later template rebalances do not touch minted monsters.
func mintInstance(tpl catalog.Template, instanceID, reason string) models.MonsterInstance {
	return models.MonsterInstance{
		InstanceID: instanceID,
		TemplateID: tpl.ID,
		Rarity:     tpl.Rarity,
		Attack:     tpl.Attack,
		Defense:    tpl.Defense,
		HP:         tpl.HP,
		Reason:     reason,
	}
}
