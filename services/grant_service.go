// services/grant_service.go
package services

import (
	"fmt"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/swagdogge/intramon-collectible-game/catalog"
	"github.com/swagdogge/intramon-collectible-game/models"
)

// Narrow collaborator contracts, satisfied by ClaimCodeService and
// InventoryService. Kept as interfaces so the commit path can be exercised
// against failing fakes.
type codeRegistry interface {
	ValidateForPlayer(code, playerID string, now time.Time) (*models.ClaimCode, error)
	MarkClaimed(code, playerID string) error
}

type inboxDepositor interface {
	DepositToInbox(playerID string, inst models.MonsterInstance) error
}

// GrantService fulfils a code redemption end to end:
// validate → resolve template → mint → deposit → mark claimed.
//
// The registry commit runs last and is best-effort. Once the monster sits in
// the player's inbox it is never revoked over a bookkeeping failure — a
// failed commit is logged and swallowed, accepting that the player may
// redeem the code again later. The inverse failure mode (player pays with a
// redemption slot and receives nothing) is the one this ordering rules out.
type GrantService struct {
	Codes         codeRegistry
	Inventory     inboxDepositor
	Catalog       catalog.Provider
	Clock         clockwork.Clock
	NewInstanceID func() string
}

func NewGrantService(codes *ClaimCodeService, inventory *InventoryService, cat catalog.Provider, clock clockwork.Clock, idgen func() string) *GrantService {
	return &GrantService{
		Codes:         codes,
		Inventory:     inventory,
		Catalog:       cat,
		Clock:         clock,
		NewInstanceID: idgen,
	}
}

// RedeemCode validates the code for the player and, on success, mints the
// granted template into the player's inbox with reason=code. Returns the
// minted instance even when the final claim commit fails.
func (s *GrantService) RedeemCode(playerID, code string) (*models.MonsterInstance, error) {
	cc, err := s.Codes.ValidateForPlayer(code, playerID, s.Clock.Now())
	if err != nil {
		return nil, err
	}

	tpl, ok := s.Catalog.Resolve(cc.TemplateID)
	if !ok {
		return nil, fmt.Errorf("claim code %s references unknown template %q", cc.Code, cc.TemplateID)
	}

	inst := mintInstance(tpl, s.NewInstanceID(), models.ReasonCode)
	if err := s.Inventory.DepositToInbox(playerID, inst); err != nil {
		return nil, err
	}

	if err := s.Codes.MarkClaimed(cc.Code, playerID); err != nil {
		log.Printf("⚠️ code %s granted to %s but claim commit failed: %v", cc.Code, playerID, err)
	}

	log.Printf("🎟️ Code %s redeemed by %s → %s", cc.Code, playerID, tpl.ID)
	return &inst, nil
}
