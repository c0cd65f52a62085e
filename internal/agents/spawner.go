// Critter spawning: the founding population and genetic inheritance.
package agents

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/talgya/critter-world/internal/world"
)

// Founder ids stand in for the parents of the first generation. They never
// name a real critter.
const (
	FounderOneID CritterID = -1
	FounderTwoID CritterID = -2
)

// SpawnConfig controls the founding population.
type SpawnConfig struct {
	Progenitors int `yaml:"progenitors"`
	SpawnRadius int `yaml:"spawn_radius"` // Progenitors land in [-r, r] on both axes

	SpeedMin float64 `yaml:"speed_min"`
	SpeedMax float64 `yaml:"speed_max"`
	SizeMin  float64 `yaml:"size_min"`
	SizeMax  float64 `yaml:"size_max"`

	Metabolism float64 `yaml:"metabolism"`
	Lifespan   int     `yaml:"lifespan"`
	Perception int     `yaml:"perception"`
	Commitment float64 `yaml:"commitment"`
}

// DefaultSpawnConfig returns the standard founding population settings.
func DefaultSpawnConfig() SpawnConfig {
	return SpawnConfig{
		Progenitors: 100,
		SpawnRadius: 200,
		SpeedMin:    3,
		SpeedMax:    7,
		SizeMin:     3,
		SizeMax:     7,
		Metabolism:  1.0,
		Lifespan:    5000,
		Perception:  5,
		Commitment:  1.25,
	}
}

// TraitMutation bounds the random drift of one trait.
type TraitMutation struct {
	Bound float64 `yaml:"bound"` // Delta is uniform in [-Bound, Bound]
	Floor float64 `yaml:"floor"` // Mutated value never drops below this
}

// MutationConfig controls inheritance.
type MutationConfig struct {
	Chance float64 `yaml:"chance"` // Per-trait probability of mutating

	Speed      TraitMutation `yaml:"speed"`
	Size       TraitMutation `yaml:"size"`
	Metabolism TraitMutation `yaml:"metabolism"`
	Lifespan   TraitMutation `yaml:"lifespan"`
	Perception TraitMutation `yaml:"perception"`
	Commitment TraitMutation `yaml:"commitment"`
}

// DefaultMutationConfig returns the standard mutation bounds.
func DefaultMutationConfig() MutationConfig {
	return MutationConfig{
		Chance:     0.1,
		Speed:      TraitMutation{Bound: 0.2, Floor: 1},
		Size:       TraitMutation{Bound: 0.2, Floor: 1},
		Metabolism: TraitMutation{Bound: 0.05, Floor: 0.1},
		Lifespan:   TraitMutation{Bound: 50, Floor: 100},
		Perception: TraitMutation{Bound: 1, Floor: 1},
		Commitment: TraitMutation{Bound: 0.05, Floor: 1},
	}
}

// spawnAttemptsPerTile bounds random sampling of the spawn box before the
// exhaustive scan.
const spawnAttemptsPerTile = 4

// Spawner creates critters.
type Spawner struct {
	rng      *rand.Rand
	params   Params
	spawn    SpawnConfig
	mutation MutationConfig
}

// NewSpawner creates a spawner with the given seed.
func NewSpawner(seed int64, params Params, spawn SpawnConfig, mutation MutationConfig) *Spawner {
	return &Spawner{
		rng:      rand.New(rand.NewSource(seed + 300)),
		params:   params,
		spawn:    spawn,
		mutation: mutation,
	}
}

// SpawnPopulation places the founding population on walkable tiles inside
// the spawn box. Diets are chosen uniformly.
func (s *Spawner) SpawnPopulation(tiles world.TileSource, tick uint64) ([]*Critter, error) {
	out := make([]*Critter, 0, s.spawn.Progenitors)
	for i := 0; i < s.spawn.Progenitors; i++ {
		pos, err := s.walkablePoint(tiles)
		if err != nil {
			return nil, err
		}
		diet := DietHerbivore
		if s.rng.Intn(2) == 1 {
			diet = DietCarnivore
		}
		out = append(out, s.Progenitor(pos, diet, tick))
	}
	return out, nil
}

// Progenitor creates a first-generation critter with randomized build.
func (s *Spawner) Progenitor(pos world.Point, diet Diet, tick uint64) *Critter {
	sc := s.spawn
	c := &Critter{
		Diet: diet,
		Genetics: Genetics{
			Speed:      uniform(s.rng, sc.SpeedMin, sc.SpeedMax),
			Size:       uniform(s.rng, sc.SizeMin, sc.SizeMax),
			Metabolism: sc.Metabolism,
			Lifespan:   sc.Lifespan,
			Perception: sc.Perception,
			Commitment: sc.Commitment,
		},
		X:           pos.X,
		Y:           pos.Y,
		ParentOneID: FounderOneID,
		ParentTwoID: FounderTwoID,
		BornTick:    tick,
	}
	s.fill(c)
	return c
}

// Reproduce creates the offspring of two parents. Each trait is inherited
// from a random parent and may then mutate. The child appears on the first
// parent's tile and shares its diet.
func (s *Spawner) Reproduce(p1, p2 *Critter, tick uint64) *Critter {
	m := s.mutation
	g := Genetics{
		Speed:      s.mutate(s.pick(p1.Speed, p2.Speed), m.Speed),
		Size:       s.mutate(s.pick(p1.Size, p2.Size), m.Size),
		Metabolism: s.mutate(s.pick(p1.Metabolism, p2.Metabolism), m.Metabolism),
		Lifespan:   int(math.Round(s.mutate(s.pick(float64(p1.Lifespan), float64(p2.Lifespan)), m.Lifespan))),
		Perception: int(math.Round(s.mutate(s.pick(float64(p1.Perception), float64(p2.Perception)), m.Perception))),
		Commitment: s.mutate(s.pick(p1.Commitment, p2.Commitment), m.Commitment),
	}
	c := &Critter{
		Diet:        p1.Diet,
		PlayerID:    p1.PlayerID,
		Genetics:    g,
		X:           p1.X,
		Y:           p1.Y,
		ParentOneID: p1.ID,
		ParentTwoID: p2.ID,
		BornTick:    tick,
	}
	s.fill(c)
	return c
}

// fill sets full vitals.
func (s *Spawner) fill(c *Critter) {
	c.Health = s.params.MaxHealth(c)
	c.Energy = s.params.MaxEnergy
	c.Goal = GoalIdle
}

func (s *Spawner) pick(a, b float64) float64 {
	if s.rng.Intn(2) == 0 {
		return a
	}
	return b
}

func (s *Spawner) mutate(v float64, tm TraitMutation) float64 {
	if s.rng.Float64() >= s.mutation.Chance {
		return v
	}
	v += uniform(s.rng, -tm.Bound, tm.Bound)
	if v < tm.Floor {
		v = tm.Floor
	}
	return v
}

// walkablePoint rejection-samples the spawn box for a non-water tile. When
// sampling keeps hitting water it falls back to a scan of the whole box, so
// a box with a single land tile still succeeds and an all-water box fails.
func (s *Spawner) walkablePoint(tiles world.TileSource) (world.Point, error) {
	r := max(s.spawn.SpawnRadius, 0)
	side := 2*r + 1
	for i := 0; i < side*side*spawnAttemptsPerTile; i++ {
		x := s.rng.Intn(side) - r
		y := s.rng.Intn(side) - r
		if tiles.TileAt(x, y).Walkable() {
			return world.Point{X: x, Y: y}, nil
		}
	}

	var land []world.Point
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if tiles.TileAt(x, y).Walkable() {
				land = append(land, world.Point{X: x, Y: y})
			}
		}
	}
	if len(land) == 0 {
		return world.Point{}, fmt.Errorf("spawn box of radius %d: %w", r, ErrNoLand)
	}
	return land[s.rng.Intn(len(land))], nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Migrant creates a founder of the given diet on a random walkable tile of
// the spawn box.
func (s *Spawner) Migrant(tiles world.TileSource, diet Diet, tick uint64) (*Critter, error) {
	pos, err := s.walkablePoint(tiles)
	if err != nil {
		return nil, err
	}
	return s.Progenitor(pos, diet, tick), nil
}
