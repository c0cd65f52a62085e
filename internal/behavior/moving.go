package behavior

import (
	"log/slog"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/world"
)

// FlockingStrategy steers a herbivore with its flockmates using cohesion,
// separation and alignment. Alone, it wanders.
type FlockingStrategy struct{}

func (FlockingStrategy) Propose(c *agents.Critter, v *View) (agents.Action, bool, error) {
	p := v.Params
	mates := v.Roster.Visible(c, p.FlockingRadius, isHerbivore)
	if len(mates) == 0 {
		return WanderingStrategy{}.Propose(c, v)
	}

	n := float64(len(mates))
	x, y := float64(c.X), float64(c.Y)
	sepSq := p.SeparationDistance * p.SeparationDistance

	var cx, cy, sx, sy, ax, ay float64
	for _, m := range mates {
		mx, my := float64(m.X), float64(m.Y)
		cx += mx
		cy += my
		if d := float64(world.DistSq(c.Pos(), m.Pos())); d > 0 && d < sepSq {
			sx += (x - mx) / d
			sy += (y - my) / d
		}
		ax += float64(m.VX)
		ay += float64(m.VY)
	}
	cx, cy = cx/n-x, cy/n-y
	ax, ay = ax/n, ay/n

	dx := sx*p.SeparationWeight + ax*p.AlignmentWeight + cx*p.CohesionWeight
	dy := sy*p.SeparationWeight + ay*p.AlignmentWeight + cy*p.CohesionWeight
	if dx == 0 && dy == 0 {
		return WanderingStrategy{}.Propose(c, v)
	}
	return agents.Move(dx, dy), true, nil
}

// WanderingStrategy keeps moving the way the critter was already heading,
// with an occasional random turn. It always proposes.
type WanderingStrategy struct{}

func (WanderingStrategy) Propose(c *agents.Critter, v *View) (agents.Action, bool, error) {
	pos := c.Pos()
	valid := make([]world.Point, 0, len(world.NeighborDirections))
	for _, d := range world.NeighborDirections {
		n := pos.Add(d)
		if v.Tiles.TileAt(n.X, n.Y).Walkable() {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		slog.Debug("critter trapped", "critter", c.ID, "pos", pos)
		return agents.Move(0, 0), true, nil
	}

	heading := world.Point{X: sign(c.VX), Y: sign(c.VY)}
	if heading != (world.Point{}) && contains(valid, heading) &&
		v.Rng.Float64() >= v.Params.DirectionChangeProbability {
		return agents.Move(float64(c.VX), float64(c.VY)), true, nil
	}

	d := valid[v.Rng.Intn(len(valid))]
	return agents.Move(float64(d.X), float64(d.Y)), true, nil
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func contains(ps []world.Point, p world.Point) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}
