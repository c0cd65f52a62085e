package brain

import (
	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/behavior"
	"github.com/talgya/critter-world/internal/world"
)

// Vital slots at the head of every state vector.
const (
	SlotCarnivore = iota // 1 for carnivores, 0 for herbivores
	SlotHealth           // health / max health
	SlotEnergy           // energy / max energy
	SlotHunger           // hunger / max hunger
	SlotThirst           // thirst / max thirst
	SlotAge              // age / (lifespan + 1)
	SlotCooldown         // breeding cooldown / full cooldown
	VitalSlots
)

// Sizes of the trailing critter vectors.
const (
	ThreatSlots = 5 // distance, dx, dy, health, energy
	PreySlots   = 5 // distance, dx, dy, health, energy
	MateSlots   = 3 // distance, dx, dy
)

// Layout gives the offset of each block in a state vector for a given
// perception radius. Grids are (2p+1)² row-major, north row first.
type Layout struct {
	Side   int
	Height int
	Grass  int
	Water  int
	Threat int
	Prey   int
	Mate   int
	Len    int
}

// LayoutFor computes the layout for perception p.
func LayoutFor(p int) Layout {
	side := 2*p + 1
	cells := side * side
	l := Layout{Side: side, Height: VitalSlots}
	l.Grass = l.Height + cells
	l.Water = l.Grass + cells
	l.Threat = l.Water + cells
	l.Prey = l.Threat + ThreatSlots
	l.Mate = l.Prey + PreySlots
	l.Len = l.Mate + MateSlots
	return l
}

// Encoder flattens what a critter knows into a state vector.
type Encoder struct {
	FullFood     float64 // Normalizes grass food
	FullCooldown float64 // Normalizes breeding cooldown
}

// Encode builds the state vector for c.
func (e Encoder) Encode(c *agents.Critter, v *behavior.View) []float64 {
	n := v.Needs
	p := c.Perception
	l := LayoutFor(p)
	s := make([]float64, l.Len)

	if c.Diet == agents.DietCarnivore {
		s[SlotCarnivore] = 1
	}
	s[SlotHealth] = ratio(c.Health, n.MaxHealth(c))
	s[SlotEnergy] = ratio(c.Energy, n.MaxEnergy)
	s[SlotHunger] = ratio(c.Hunger, n.MaxHunger)
	s[SlotThirst] = ratio(c.Thirst, n.MaxThirst)
	s[SlotAge] = float64(c.Age) / float64(c.Lifespan+1)
	s[SlotCooldown] = ratio(float64(c.BreedingCooldown), e.FullCooldown)

	i := 0
	for dy := -p; dy <= p; dy++ {
		for dx := -p; dx <= p; dx++ {
			t := v.Tiles.TileAt(c.X+dx, c.Y+dy)
			s[l.Height+i] = t.Elevation
			switch t.Terrain {
			case world.TerrainGrass:
				s[l.Grass+i] = ratio(t.Food, e.FullFood)
			case world.TerrainWater:
				s[l.Water+i] = 1
			}
			i++
		}
	}

	visible := v.Roster.Visible(c, p, nil)
	pos := c.Pos()
	switch c.Diet {
	case agents.DietHerbivore:
		var threat *agents.Critter
		for _, o := range visible {
			if o.Diet != agents.DietCarnivore {
				continue
			}
			if threat == nil || world.Manhattan(pos, o.Pos()) < world.Manhattan(pos, threat.Pos()) {
				threat = o
			}
		}
		if threat != nil {
			e.relative(s[l.Threat:l.Threat+ThreatSlots], c, threat, n)
		}
	case agents.DietCarnivore:
		var prey *agents.Critter
		for _, o := range visible {
			if o.Diet != agents.DietHerbivore {
				continue
			}
			if prey == nil || o.Health < prey.Health {
				prey = o
			}
		}
		if prey != nil {
			e.relative(s[l.Prey:l.Prey+PreySlots], c, prey, n)
		}
	}

	if c.BreedingCooldown == 0 {
		var mate *agents.Critter
		for _, o := range visible {
			if o.Diet != c.Diet || o.BreedingCooldown != 0 {
				continue
			}
			if mate == nil || world.Manhattan(pos, o.Pos()) < world.Manhattan(pos, mate.Pos()) {
				mate = o
			}
		}
		if mate != nil {
			e.relative(s[l.Mate:l.Mate+MateSlots], c, mate, n)
		}
	}
	return s
}

// relative writes distance and direction to o, plus o's condition when dst
// has room for it.
func (e Encoder) relative(dst []float64, c, o *agents.Critter, n agents.Params) {
	p := float64(c.Perception)
	if p < 1 {
		p = 1
	}
	dst[0] = float64(world.Manhattan(c.Pos(), o.Pos())) / p
	dst[1] = float64(o.X-c.X) / p
	dst[2] = float64(o.Y-c.Y) / p
	if len(dst) >= 5 {
		dst[3] = ratio(o.Health, n.MaxHealth(o))
		dst[4] = ratio(o.Energy, n.MaxEnergy)
	}
}

func ratio(v, full float64) float64 {
	if full == 0 {
		return 0
	}
	return v / full
}
