package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/swagdogge/intramon-collectible-game/models"

	"github.com/jonboulle/clockwork"
)

func newGrantFixture(t *testing.T) (*GrantService, *ClaimCodeService, *InventoryService, *clockwork.FakeClock) {
	t.Helper()
	db := openTestDB(t)
	codes := NewClaimCodeService(db)
	inventory := NewInventoryService(db)
	clock := clockwork.NewFakeClock()
	grants := NewGrantService(codes, inventory, fixedCatalog{testTemplate}, clock, sequentialIDs("inst"))
	seedPlayer(t, db, "42-91048", "alice")
	return grants, codes, inventory, clock
}

func TestRedeemCodeEndToEnd(t *testing.T) {
	grants, codes, inventory, clock := newGrantFixture(t)

	if err := codes.Create("HELLOWORLD", "ice-rare", clock.Now().Add(24*time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	inst, err := grants.RedeemCode("42-91048", "helloworld")
	if err != nil {
		t.Fatalf("RedeemCode: %v", err)
	}
	if inst.TemplateID != "ice-rare" || inst.Rarity != "Rare" {
		t.Errorf("minted = %+v", inst)
	}
	if inst.Attack != 48 || inst.Defense != 78 || inst.HP != 96 {
		t.Errorf("stats = %d/%d/%d, want 48/78/96", inst.Attack, inst.Defense, inst.HP)
	}
	if inst.Reason != models.ReasonCode {
		t.Errorf("Reason = %q, want code", inst.Reason)
	}

	inbox, err := inventory.Inbox("42-91048")
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if len(inbox) != 1 || inbox[0].InstanceID != inst.InstanceID {
		t.Fatalf("inbox = %+v, want the minted instance", inbox)
	}

	// Redemption was committed: a second attempt is rejected up front.
	if _, err := grants.RedeemCode("42-91048", "HELLOWORLD"); !errors.Is(err, models.ErrAlreadyClaimed) {
		t.Errorf("second redeem: err = %v, want ErrAlreadyClaimed", err)
	}
	// And nothing extra was deposited.
	inbox, _ = inventory.Inbox("42-91048")
	if len(inbox) != 1 {
		t.Errorf("inbox size = %d after rejected redeem, want 1", len(inbox))
	}
}

func TestRedeemCodeExpired(t *testing.T) {
	grants, codes, _, clock := newGrantFixture(t)

	if err := codes.Create("OLD", "ice-rare", clock.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := grants.RedeemCode("42-91048", "OLD"); !errors.Is(err, models.ErrCodeExpired) {
		t.Errorf("err = %v, want ErrCodeExpired", err)
	}
}

func TestRedeemCodeUnknown(t *testing.T) {
	grants, _, _, _ := newGrantFixture(t)

	if _, err := grants.RedeemCode("42-91048", "NOPE"); !errors.Is(err, models.ErrCodeNotFound) {
		t.Errorf("err = %v, want ErrCodeNotFound", err)
	}
}

func TestRedeemCodeUnknownTemplate(t *testing.T) {
	grants, codes, inventory, clock := newGrantFixture(t)

	if err := codes.Create("BROKEN", "retired-template", clock.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := grants.RedeemCode("42-91048", "BROKEN"); err == nil {
		t.Fatal("redeem of unresolvable template succeeded")
	}
	// Nothing minted, nothing claimed.
	inbox, _ := inventory.Inbox("42-91048")
	if len(inbox) != 0 {
		t.Errorf("inbox size = %d, want 0", len(inbox))
	}
	claimedBy, _ := codes.ClaimedBy("BROKEN")
	if len(claimedBy) != 0 {
		t.Errorf("claimedBy = %v, want empty", claimedBy)
	}
}

// flakyRegistry validates through the real registry but fails the commit.
type flakyRegistry struct {
	*ClaimCodeService
}

func (f flakyRegistry) MarkClaimed(code, playerID string) error {
	return fmt.Errorf("%w: registry unreachable", models.ErrTransient)
}

func TestRedeemCodeKeepsGrantWhenCommitFails(t *testing.T) {
	grants, codes, inventory, clock := newGrantFixture(t)
	grants.Codes = flakyRegistry{codes}

	if err := codes.Create("FLAKY", "ice-rare", clock.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The grant lands even though the claim commit failed.
	inst, err := grants.RedeemCode("42-91048", "FLAKY")
	if err != nil {
		t.Fatalf("RedeemCode with failing commit: %v", err)
	}
	inbox, _ := inventory.Inbox("42-91048")
	if len(inbox) != 1 || inbox[0].InstanceID != inst.InstanceID {
		t.Fatalf("inbox = %+v, want the minted instance", inbox)
	}

	// The claim never committed, so the code still validates for the player.
	claimedBy, _ := codes.ClaimedBy("FLAKY")
	if len(claimedBy) != 0 {
		t.Errorf("claimedBy = %v, want empty after failed commit", claimedBy)
	}
}
