package behavior

import (
	"sort"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/world"
)

// HuntingStrategy attacks adjacent prey, chases the most vulnerable prey it
// can afford to catch, or lies in ambush.
type HuntingStrategy struct{}

func (HuntingStrategy) Propose(c *agents.Critter, v *View) (agents.Action, bool, error) {
	if adj := v.Roster.Visible(c, 1, isHerbivore); len(adj) > 0 {
		return agents.Attack(adj[0].ID), true, nil
	}

	p := v.Params
	if c.Hunger >= p.HuntHunger {
		a, ok, err := chase(c, v)
		if err != nil || ok {
			return a, ok, err
		}
	}

	if c.Hunger >= p.AmbushHunger &&
		c.Thirst < v.Needs.ThirstToStartDrinking &&
		c.Energy >= v.Needs.EnergyToStartResting &&
		len(v.Roster.Visible(c, p.AmbushRadius, isHerbivore)) == 0 {
		return agents.Ambush(), true, nil
	}
	return agents.Action{}, false, nil
}

type quarry struct {
	prey  *agents.Critter
	score float64
}

// chase ranks visible prey by vulnerability and paths to the best one that
// is within the predator's energy-limited reach.
func chase(c *agents.Critter, v *View) (agents.Action, bool, error) {
	p := v.Params
	pos := c.Pos()
	perception := float64(c.Perception)
	if perception <= 0 {
		return agents.Action{}, false, nil
	}
	reach := perception * (c.Energy / v.Needs.MaxEnergy) * p.ChaseWillingness

	var ranked []quarry
	for _, prey := range v.Roster.Visible(c, c.Perception, isHerbivore) {
		dist := float64(world.Chebyshev(pos, prey.Pos()))
		if dist > reach {
			continue
		}
		score := (1 - prey.Health/v.Needs.MaxHealth(prey)) +
			(1 - prey.Energy/v.Needs.MaxEnergy) -
			p.DistancePenalty*dist/perception
		if prey.Distracted() {
			score += p.DistractedBonus
		}
		ranked = append(ranked, quarry{prey: prey, score: score})
	}
	if len(ranked) == 0 {
		return agents.Action{}, false, nil
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	return v.moveToward(c, ranked[0].prey.Pos())
}
