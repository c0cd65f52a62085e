// Package agents provides the critter data model, actions, goals, the
// per-tick roster, and genetic inheritance.
package agents

import (
	"fmt"
	"time"

	"github.com/talgya/critter-world/internal/world"
)

// CritterID is a stable identifier assigned by the repository on insert.
type CritterID int64

// Diet determines what a critter eats and who it fears.
type Diet uint8

const (
	DietHerbivore Diet = iota
	DietCarnivore
)

// String returns the storage name of a diet.
func (d Diet) String() string {
	switch d {
	case DietHerbivore:
		return "herbivore"
	case DietCarnivore:
		return "carnivore"
	default:
		return fmt.Sprintf("diet(%d)", uint8(d))
	}
}

// ParseDiet parses a storage name back into a Diet.
func ParseDiet(s string) (Diet, error) {
	switch s {
	case "herbivore":
		return DietHerbivore, nil
	case "carnivore":
		return DietCarnivore, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDiet, s)
}

// Prey reports whether a critter of diet d hunts critters of diet other.
func (d Diet) Prey(other Diet) bool {
	return d == DietCarnivore && other == DietHerbivore
}

// Genetics are the inherited traits of a critter.
type Genetics struct {
	Speed      float64 `db:"speed" json:"speed"`           // Max tiles per tick
	Size       float64 `db:"size" json:"size"`             // Drives max health and attack damage
	Metabolism float64 `db:"metabolism" json:"metabolism"` // Scales hunger from spent energy
	Lifespan   int     `db:"lifespan" json:"lifespan"`     // Ticks
	Perception int     `db:"perception" json:"perception"` // Sensing radius in tiles
	Commitment float64 `db:"commitment" json:"commitment"` // Score multiplier for the current goal
}

// Critter is a single simulated animal.
type Critter struct {
	ID       CritterID `db:"id" json:"id"`
	Diet     Diet      `db:"diet" json:"diet"`
	PlayerID *int64    `db:"player_id" json:"player_id,omitempty"`

	// Vitals
	Health float64 `db:"health" json:"health"`
	Energy float64 `db:"energy" json:"energy"`
	Hunger float64 `db:"hunger" json:"hunger"`
	Thirst float64 `db:"thirst" json:"thirst"`
	Age    int     `db:"age" json:"age"`

	Genetics

	// Location
	X  int `db:"x" json:"x"`
	Y  int `db:"y" json:"y"`
	VX int `db:"vx" json:"vx"` // Net displacement of the last move
	VY int `db:"vy" json:"vy"`

	BreedingCooldown int `db:"breeding_cooldown" json:"breeding_cooldown"`

	// Behavioral state carried to the next tick.
	Goal       Goal       `db:"goal" json:"goal"`
	LastAction ActionKind `db:"last_action" json:"last_action"`

	// Lineage
	ParentOneID CritterID `db:"parent_one_id" json:"parent_one_id"`
	ParentTwoID CritterID `db:"parent_two_id" json:"parent_two_id"`
	BornTick    uint64    `db:"born_tick" json:"born_tick"`

	// Ghost marks a critter that died earlier in the current tick.
	// Never persisted.
	Ghost bool `db:"-" json:"-"`
}

// Pos returns the critter's tile coordinate.
func (c *Critter) Pos() world.Point {
	return world.Point{X: c.X, Y: c.Y}
}

// Velocity returns the last net displacement.
func (c *Critter) Velocity() world.Point {
	return world.Point{X: c.VX, Y: c.VY}
}

// Distracted reports whether the critter spent its last tick eating or
// drinking, which makes it easier prey.
func (c *Critter) Distracted() bool {
	return c.LastAction == ActionEat || c.LastAction == ActionDrink
}

// CauseOfDeath enumerates how critters die.
type CauseOfDeath uint8

const (
	CauseStarvation CauseOfDeath = iota
	CauseThirst
	CauseOldAge
	CausePredation
)

func (c CauseOfDeath) String() string {
	switch c {
	case CauseStarvation:
		return "starvation"
	case CauseThirst:
		return "thirst"
	case CauseOldAge:
		return "old_age"
	case CausePredation:
		return "predation"
	default:
		return "unknown"
	}
}

// DeathRecord is an immutable snapshot of a critter at the moment it died.
type DeathRecord struct {
	OriginalID  CritterID    `db:"original_id" json:"original_id"`
	Diet        Diet         `db:"diet" json:"diet"`
	Cause       CauseOfDeath `db:"cause" json:"cause"`
	Age         int          `db:"age" json:"age"`
	PlayerID    *int64       `db:"player_id" json:"player_id,omitempty"`
	ParentOneID CritterID    `db:"parent_one_id" json:"parent_one_id"`
	ParentTwoID CritterID    `db:"parent_two_id" json:"parent_two_id"`
	Tick        uint64       `db:"tick" json:"tick"`
	DiedAt      time.Time    `db:"died_at" json:"died_at"`

	Genetics
}

// NewDeathRecord snapshots a critter.
func NewDeathRecord(c *Critter, cause CauseOfDeath, tick uint64, at time.Time) DeathRecord {
	return DeathRecord{
		OriginalID:  c.ID,
		Diet:        c.Diet,
		Cause:       cause,
		Age:         c.Age,
		PlayerID:    c.PlayerID,
		ParentOneID: c.ParentOneID,
		ParentTwoID: c.ParentTwoID,
		Tick:        tick,
		DiedAt:      at,
		Genetics:    c.Genetics,
	}
}
