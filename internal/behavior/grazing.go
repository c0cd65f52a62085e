package behavior

import (
	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/world"
)

// GrazingStrategy eats grass in place, or heads for a grass patch.
type GrazingStrategy struct{}

func (GrazingStrategy) Propose(c *agents.Critter, v *View) (agents.Action, bool, error) {
	threshold := v.Params.MinGrazeFood
	pos := c.Pos()

	here := v.Tiles.TileAt(pos.X, pos.Y)
	if here.Terrain == world.TerrainGrass && here.Food > threshold {
		return agents.Eat(), true, nil
	}

	var richest, closest world.Tile
	found := false
	scan(v.Tiles, pos, c.Perception, func(t world.Tile) {
		if t.Terrain != world.TerrainGrass || t.Food <= threshold {
			return
		}
		if !found {
			richest, closest, found = t, t, true
			return
		}
		if t.Food > richest.Food {
			richest = t
		}
		if world.Manhattan(pos, t.Point()) < world.Manhattan(pos, closest.Point()) {
			closest = t
		}
	})
	if !found {
		return agents.Action{}, false, nil
	}

	target := closest
	if v.Rng.Float64() < v.Params.StrategistProbability {
		target = richest
	}
	return v.moveToward(c, target.Point())
}
