package behavior

import (
	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/world"
)

// FleeingStrategy runs from the nearest visible carnivore toward the
// reachable tile that puts the most distance between them.
type FleeingStrategy struct{}

func (FleeingStrategy) Propose(c *agents.Critter, v *View) (agents.Action, bool, error) {
	threats := v.Roster.Visible(c, c.Perception, isCarnivore)
	if len(threats) == 0 {
		return agents.Action{}, false, nil
	}

	pos := c.Pos()
	threat := threats[0]
	for _, t := range threats[1:] {
		if world.DistSq(pos, t.Pos()) < world.DistSq(pos, threat.Pos()) {
			threat = t
		}
	}
	tp := threat.Pos()

	best := pos
	bestDist := world.DistSq(pos, tp)
	scan(v.Tiles, pos, int(c.Speed), func(t world.Tile) {
		if !t.Walkable() {
			return
		}
		if d := world.DistSq(t.Point(), tp); d > bestDist {
			best, bestDist = t.Point(), d
		}
	})

	if best != pos {
		a, ok, err := v.moveToward(c, best)
		if err != nil || ok {
			return a, ok, err
		}
	}

	// Cornered or no route: push straight away from the threat.
	return agents.Move(float64(pos.X-tp.X), float64(pos.Y-tp.Y)), true, nil
}
