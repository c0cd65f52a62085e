// Package brain picks a goal for each critter every tick and turns it into
// an action through the diet's strategy registry.
package brain

import (
	"errors"
	"fmt"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/behavior"
)

// ErrNoAction means no strategy, not even the moving fallback, produced an
// action.
var ErrNoAction = errors.New("brain produced no action")

// Decider chooses this tick's goal and action for a critter.
type Decider interface {
	Decide(c *agents.Critter, v *behavior.View) (agents.Goal, agents.Action, error)
}

// goalCapability maps each goal to the strategy that pursues it.
var goalCapability = map[agents.Goal]behavior.Capability{
	agents.GoalSurviveDanger: behavior.Fleeing,
	agents.GoalRecoverEnergy: behavior.Resting,
	agents.GoalQuenchThirst:  behavior.WaterSeeking,
	agents.GoalSateHunger:    behavior.Foraging,
	agents.GoalBreed:         behavior.Breeding,
	agents.GoalSeekMate:      behavior.MateSeeking,
	agents.GoalIdle:          behavior.Moving,
}

// registries caches the per-diet strategy registries.
type registries map[agents.Diet]behavior.Registry

func newRegistries() (registries, error) {
	rs := make(registries, 2)
	for _, d := range []agents.Diet{agents.DietHerbivore, agents.DietCarnivore} {
		r, err := behavior.ForDiet(d)
		if err != nil {
			return nil, err
		}
		rs[d] = r
	}
	return rs, nil
}

func (rs registries) forCritter(c *agents.Critter) (behavior.Registry, error) {
	r, ok := rs[c.Diet]
	if !ok {
		return nil, fmt.Errorf("critter %d: %w", c.ID, agents.ErrUnknownDiet)
	}
	return r, nil
}

// propose asks one capability for an action. A missing capability is the
// same as no proposal.
func propose(r behavior.Registry, capability behavior.Capability, c *agents.Critter, v *behavior.View) (agents.Action, bool, error) {
	s, ok := r[capability]
	if !ok {
		return agents.Action{}, false, nil
	}
	return s.Propose(c, v)
}

// dispatch runs the strategy for goal, falling back to the moving strategy
// when it has nothing to offer.
func dispatch(r behavior.Registry, goal agents.Goal, c *agents.Critter, v *behavior.View) (agents.Action, error) {
	capability, ok := goalCapability[goal]
	if !ok {
		capability = behavior.Moving
	}
	a, ok, err := propose(r, capability, c, v)
	if err != nil {
		return agents.Action{}, fmt.Errorf("%s: %w", capability, err)
	}
	if ok {
		return a, nil
	}
	if capability != behavior.Moving {
		a, ok, err = propose(r, behavior.Moving, c, v)
		if err != nil {
			return agents.Action{}, fmt.Errorf("%s fallback: %w", behavior.Moving, err)
		}
		if ok {
			return a, nil
		}
	}
	return agents.Action{}, fmt.Errorf("critter %d goal %s: %w", c.ID, goal, ErrNoAction)
}
