// Package catalog holds the monster template definitions and the
// rarity-weighted random selection used by every grant path.
package catalog

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/swagdogge/intramon-collectible-game/models"
)

// Rarity odds and stat multipliers applied to the base monsters.
const (
	RarityCommon = "Common"
	RarityRare   = "Rare"
	RarityEpic   = "Epic"
)

var rarityStats = []struct {
	Rarity string
	Mult   float64
	Chance float64
}{
	{RarityCommon, 1.0, 0.75},
	{RarityRare, 1.2, 0.20},
	{RarityEpic, 1.4, 0.05},
}

type baseMonster struct {
	Name    string
	Element string
	Attack  int
	Defense int
	HP      int
	Image   string
}

var baseMonsters = []baseMonster{
	{"Voltadillo", "Electro", 55, 40, 70, "/monsters/voltadillo.png"},
	{"Aqualet", "Water", 45, 55, 80, "/monsters/aqualet.png"},
	{"Emberpup", "Fire", 65, 35, 75, "/monsters/emberpup.png"},
	{"Leafup", "Plant", 50, 60, 85, "/monsters/leafup.png"},
	{"Frostooth", "Ice", 40, 65, 80, "/monsters/frostooth.png"},
	{"Pebblit", "Ground", 35, 80, 90, "/monsters/pebblit.png"},
}

// Template is one resolvable monster definition, a base monster with its
// rarity multiplier already applied. The ID is "<element>-<rarity>",
// lowercase (e.g. "ice-rare").
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Element string `json:"element"`
	Rarity  string `json:"rarity"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
	HP      int    `json:"hp"`
	Image   string `json:"image"`
}

// Provider is what the grant paths consume. Injected so tests can pin the
// roll outcome.
type Provider interface {
	Resolve(templateID string) (Template, bool)
	RandomTemplate() Template
}

// Catalog is the default Provider built from the base monster table.
type Catalog struct {
	templates map[string]Template
	byRarity  map[string][]Template

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rng *rand.Rand
}

// New builds the catalog with a time-seeded roll source.
func New() *Catalog {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded builds the catalog with a fixed seed, for deterministic tests.
func NewSeeded(seed int64) *Catalog {
	c := &Catalog{
		templates: make(map[string]Template),
		byRarity:  make(map[string][]Template),
		rng:       rand.New(rand.NewSource(seed)),
	}
	for _, base := range baseMonsters {
		for _, rs := range rarityStats {
			t := Template{
				ID:      strings.ToLower(base.Element) + "-" + strings.ToLower(rs.Rarity),
				Name:    base.Name,
				Element: base.Element,
				Rarity:  rs.Rarity,
				Attack:  scale(base.Attack, rs.Mult),
				Defense: scale(base.Defense, rs.Mult),
				HP:      scale(base.HP, rs.Mult),
				Image:   base.Image,
			}
			c.templates[t.ID] = t
			c.byRarity[t.Rarity] = append(c.byRarity[t.Rarity], t)
		}
	}
	return c
}

func scale(stat int, mult float64) int {
	return int(float64(stat)*mult + 0.5)
}

// Resolve returns the template for an ID, case-insensitively.
func (c *Catalog) Resolve(templateID string) (Template, bool) {
	t, ok := c.templates[strings.ToLower(templateID)]
	return t, ok
}

// RandomTemplate rolls a rarity first (epic 5%, rare 20%, common 75%), then
// picks uniformly within that rarity's pool.
func (c *Catalog) RandomTemplate() Template {
	c.mu.Lock()
	r := c.rng.Float64()
	var rarity string
	switch {
	case r < 0.05:
		rarity = RarityEpic
	case r < 0.25:
		rarity = RarityRare
	default:
		rarity = RarityCommon
	}
	pool := c.byRarity[rarity]
	t := pool[c.rng.Intn(len(pool))]
	c.mu.Unlock()
	return t
}

// EnrichedMonster merges a stored instance with its template's display
// fields. Instance stats win: they are the mint-time snapshot.
type EnrichedMonster struct {
	InstanceID string `json:"instance_id"`
	TemplateID string `json:"id"`
	Name       string `json:"name"`
	Element    string `json:"element"`
	Rarity     string `json:"rarity"`
	Attack     int    `json:"attack"`
	Defense    int    `json:"defense"`
	HP         int    `json:"hp"`
	Image      string `json:"image"`
	Reason     string `json:"reason,omitempty"`
}

// Enrich merges one instance with the provider's template data. Unknown
// templates (e.g. retired ones) still render from the snapshot alone.
func Enrich(p Provider, inst models.MonsterInstance) EnrichedMonster {
	e := EnrichedMonster{
		InstanceID: inst.InstanceID,
		TemplateID: inst.TemplateID,
		Rarity:     inst.Rarity,
		Attack:     inst.Attack,
		Defense:    inst.Defense,
		HP:         inst.HP,
		Reason:     inst.Reason,
	}
	if t, ok := p.Resolve(inst.TemplateID); ok {
		e.Name = t.Name
		e.Element = t.Element
		e.Image = t.Image
	}
	return e
}
