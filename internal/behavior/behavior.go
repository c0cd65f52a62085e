// Package behavior implements the strategies a critter uses to turn a goal
// into a concrete action.
//
// Strategies never mutate state. The brain may call several of them for a
// single critter and keep only one proposal.
package behavior

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/pathfind"
	"github.com/talgya/critter-world/internal/world"
)

// Params tunes the strategies.
type Params struct {
	MinGrazeFood          float64 `yaml:"min_graze_food"`         // Food a grass tile must exceed to be worth eating
	StrategistProbability float64 `yaml:"strategist_probability"` // Chance to head for the richest patch over the nearest

	HuntHunger       float64 `yaml:"hunt_hunger"`
	AmbushHunger     float64 `yaml:"ambush_hunger"`
	AmbushRadius     int     `yaml:"ambush_radius"`
	DistractedBonus  float64 `yaml:"distracted_bonus"`
	DistancePenalty  float64 `yaml:"distance_penalty"`
	ChaseWillingness float64 `yaml:"chase_willingness"`

	CourtshipRadius int `yaml:"courtship_radius"`

	FlockingRadius     int     `yaml:"flocking_radius"`
	SeparationDistance float64 `yaml:"separation_distance"`
	SeparationWeight   float64 `yaml:"separation_weight"`
	AlignmentWeight    float64 `yaml:"alignment_weight"`
	CohesionWeight     float64 `yaml:"cohesion_weight"`

	DirectionChangeProbability float64 `yaml:"direction_change_probability"`
}

// DefaultParams returns the standard strategy tuning.
func DefaultParams() Params {
	return Params{
		MinGrazeFood:               1.0,
		StrategistProbability:      0.7,
		HuntHunger:                 50,
		AmbushHunger:               30,
		AmbushRadius:               2,
		DistractedBonus:            0.3,
		DistancePenalty:            0.5,
		ChaseWillingness:           1.5,
		CourtshipRadius:            2,
		FlockingRadius:             8,
		SeparationDistance:         1.5,
		SeparationWeight:           1.4,
		AlignmentWeight:            1.1,
		CohesionWeight:             1.2,
		DirectionChangeProbability: 0.1,
	}
}

// View is everything a strategy may look at.
type View struct {
	Tiles   world.TileSource
	Planner *pathfind.Planner
	Roster  *agents.Roster
	Rng     *rand.Rand
	Needs   agents.Params
	Params  Params
}

// Strategy proposes an action for a critter. The bool is false when the
// strategy has nothing to offer; the error is reserved for faults that
// must abort the tick.
type Strategy interface {
	Propose(c *agents.Critter, v *View) (agents.Action, bool, error)
}

// Capability names a slot in a diet's strategy registry.
type Capability string

const (
	Resting      Capability = "resting"
	Fleeing      Capability = "fleeing"
	Foraging     Capability = "foraging"
	WaterSeeking Capability = "water_seeking"
	MateSeeking  Capability = "mate_seeking"
	Breeding     Capability = "breeding"
	Moving       Capability = "moving"
)

// Registry maps capabilities to the strategies that provide them.
type Registry map[Capability]Strategy

// ForDiet assembles the strategy registry for a diet. Herbivores have no
// natural predators below them, so only they can flee.
func ForDiet(d agents.Diet) (Registry, error) {
	r := Registry{
		Resting:      RestingStrategy{},
		WaterSeeking: WaterSeekingStrategy{},
		MateSeeking:  MateSeekingStrategy{},
		Breeding:     BreedingStrategy{},
	}
	switch d {
	case agents.DietHerbivore:
		r[Foraging] = GrazingStrategy{}
		r[Fleeing] = FleeingStrategy{}
		r[Moving] = FlockingStrategy{}
	case agents.DietCarnivore:
		r[Foraging] = HuntingStrategy{}
		r[Moving] = WanderingStrategy{}
	default:
		return nil, fmt.Errorf("registry for %s: %w", d, agents.ErrUnknownDiet)
	}
	return r, nil
}

// moveToward paths from the critter to dest and proposes the first step.
// No path is not an error: the strategy simply has no proposal.
func (v *View) moveToward(c *agents.Critter, dest world.Point) (agents.Action, bool, error) {
	from := c.Pos()
	path, err := v.Planner.FindPath(v.Tiles, from, dest)
	if err != nil {
		return agents.Action{}, false, fmt.Errorf("critter %d path %s -> %s: %w", c.ID, from, dest, err)
	}
	if len(path) < 2 {
		slog.Debug("no path", "critter", c.ID, "from", from, "to", dest)
		return agents.Action{}, false, nil
	}
	return agents.MoveTo(from, path[1], dest), true, nil
}

// scan visits every tile in the square of the given radius around center,
// row by row, skipping the center itself.
func scan(tiles world.TileSource, center world.Point, radius int, fn func(t world.Tile)) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			fn(tiles.TileAt(center.X+dx, center.Y+dy))
		}
	}
}

// nearest returns the critter closest to p by Manhattan distance. Ties go to
// the earlier critter.
func nearest(p world.Point, cs []*agents.Critter) *agents.Critter {
	var best *agents.Critter
	bestDist := 0
	for _, c := range cs {
		d := world.Manhattan(p, c.Pos())
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func isCarnivore(c *agents.Critter) bool { return c.Diet == agents.DietCarnivore }
func isHerbivore(c *agents.Critter) bool { return c.Diet == agents.DietHerbivore }
