package behavior

import (
	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/world"
)

// WaterSeekingStrategy drinks from adjacent water or walks to the nearest
// shore.
type WaterSeekingStrategy struct{}

func (WaterSeekingStrategy) Propose(c *agents.Critter, v *View) (agents.Action, bool, error) {
	pos := c.Pos()
	for _, n := range pos.Neighbors() {
		if !v.Tiles.TileAt(n.X, n.Y).Walkable() {
			return agents.Drink(), true, nil
		}
	}

	var water world.Point
	found := false
	scan(v.Tiles, pos, c.Perception, func(t world.Tile) {
		if t.Walkable() {
			return
		}
		if !found || world.Manhattan(pos, t.Point()) < world.Manhattan(pos, water) {
			water, found = t.Point(), true
		}
	})
	if !found {
		return agents.Action{}, false, nil
	}

	var shore world.Point
	found = false
	for _, n := range water.Neighbors() {
		if !v.Tiles.TileAt(n.X, n.Y).Walkable() {
			continue
		}
		if !found || world.Manhattan(pos, n) < world.Manhattan(pos, shore) {
			shore, found = n, true
		}
	}
	if !found {
		return agents.Action{}, false, nil
	}
	return v.moveToward(c, shore)
}
