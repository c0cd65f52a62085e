package behavior

import (
	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/world"
)

// MateSeekingStrategy looks for an eligible mate anywhere within perception.
type MateSeekingStrategy struct{}

func (MateSeekingStrategy) Propose(c *agents.Critter, v *View) (agents.Action, bool, error) {
	return court(c, v, c.Perception)
}

// BreedingStrategy only considers mates within courtship range.
type BreedingStrategy struct{}

func (BreedingStrategy) Propose(c *agents.Critter, v *View) (agents.Action, bool, error) {
	return court(c, v, v.Params.CourtshipRadius)
}

func court(c *agents.Critter, v *View, radius int) (agents.Action, bool, error) {
	candidates := v.Roster.Visible(c, radius, func(o *agents.Critter) bool {
		return o.Diet == c.Diet && v.Needs.CanBreed(o)
	})
	mate := nearest(c.Pos(), candidates)
	if mate == nil {
		return agents.Action{}, false, nil
	}
	if world.Adjacent(c.Pos(), mate.Pos()) {
		return agents.Breed(mate.ID), true, nil
	}
	return v.moveToward(c, mate.Pos())
}
