package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/behavior"
	"github.com/talgya/critter-world/internal/brain"
	"github.com/talgya/critter-world/internal/world"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// scripted is a Decider that returns whatever the test tells it to.
type scripted struct {
	decide func(c *agents.Critter) (agents.Goal, agents.Action)
	calls  map[agents.CritterID]int
}

func script(fn func(c *agents.Critter) (agents.Goal, agents.Action)) *scripted {
	return &scripted{decide: fn, calls: map[agents.CritterID]int{}}
}

func (s *scripted) Decide(c *agents.Critter, _ *behavior.View) (agents.Goal, agents.Action, error) {
	s.calls[c.ID]++
	g, a := s.decide(c)
	return g, a, nil
}

func resting(*agents.Critter) (agents.Goal, agents.Action) {
	return agents.GoalRecoverEnergy, agents.Rest()
}

func newSim(t *testing.T, repo *memRepo, d brain.Decider) *Simulation {
	t.Helper()
	if d == nil {
		rb, err := brain.NewRuleBrain()
		require.NoError(t, err)
		d = rb
	}
	needs := agents.DefaultParams()
	sp := agents.NewSpawner(42, needs, agents.DefaultSpawnConfig(), agents.DefaultMutationConfig())
	opts := Options{
		Seed:     42,
		RunID:    "test-run",
		Params:   DefaultParams(),
		Needs:    needs,
		Behavior: behavior.DefaultParams(),
		Cost:     world.DefaultCostModel(),
		Now:      func() time.Time { return testNow },
	}
	return NewSimulation(opts, world.New(world.DefaultGenConfig(), nil), repo, d, sp)
}

func newCritter(id agents.CritterID, diet agents.Diet, p world.Point) *agents.Critter {
	return &agents.Critter{
		ID:     id,
		Diet:   diet,
		Health: 100,
		Energy: 100,
		X:      p.X,
		Y:      p.Y,
		Genetics: agents.Genetics{
			Speed: 4, Size: 5, Metabolism: 1, Lifespan: 5000, Perception: 5, Commitment: 1.25,
		},
		ParentOneID: agents.FounderOneID,
		ParentTwoID: agents.FounderTwoID,
	}
}

// walkableRun finds n consecutive walkable tiles heading east.
func walkableRun(t *testing.T, w *world.World, n int) world.Point {
	t.Helper()
	for y := -40; y <= 40; y++ {
	next:
		for x := -40; x <= 40; x++ {
			for i := 0; i < n; i++ {
				if !w.Procedural(x+i, y).Walkable() {
					continue next
				}
			}
			return world.Pt(x, y)
		}
	}
	t.Fatal("no walkable run near the origin")
	return world.Point{}
}

// floodedWorld returns a world whose generator puts every tile under water.
func floodedWorld() *world.World {
	cfg := world.DefaultGenConfig()
	cfg.WaterLevel = 10
	return world.New(cfg, nil)
}

// shore finds land tiles heading east with water right after them. It raises
// the water level so coastlines sit close to the origin.
func shore(t *testing.T, sim *Simulation, land int) world.Point {
	t.Helper()
	cfg := world.DefaultGenConfig()
	cfg.WaterLevel = 0
	sim.World = world.New(cfg, nil)
	for y := -200; y <= 200; y++ {
	next:
		for x := -200; x <= 200; x++ {
			for i := 0; i < land; i++ {
				if !sim.World.Procedural(x+i, y).Walkable() {
					continue next
				}
			}
			if !sim.World.Procedural(x+land, y).Walkable() {
				return world.Pt(x, y)
			}
		}
	}
	t.Fatal("no shoreline near the origin")
	return world.Point{}
}

func TestStep_grazingScenario(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	sim := newSim(t, repo, nil)
	w := sim.World

	// Prefer the canonical layout: food directly north of the origin.
	food, found := world.Pt(0, 1), false
	if w.Procedural(0, 1).Terrain == world.TerrainGrass && w.Procedural(0, 0).Walkable() {
		found = true
	}
	for y := -40; y <= 40 && !found; y++ {
		for x := -40; x <= 40 && !found; x++ {
			if w.Procedural(x, y).Terrain == world.TerrainGrass && w.Procedural(x, y-1).Walkable() {
				food, found = world.Pt(x, y), true
			}
		}
	}
	require.True(t, found, "no grass near the origin")
	start := world.Pt(food.X, food.Y-1)

	// Strip every other grass tile in sight so the target is unambiguous.
	for dy := -6; dy <= 6; dy++ {
		for dx := -6; dx <= 6; dx++ {
			p := start.Add(world.Pt(dx, dy))
			if p != food && w.Procedural(p.X, p.Y).Terrain == world.TerrainGrass {
				repo.food[p] = 0
			}
		}
	}

	c := newCritter(1, agents.DietHerbivore, start)
	c.Hunger = 40
	c.BreedingCooldown = 100
	repo.put(c)

	rep, err := sim.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rep.Tick)
	assert.Equal(t, 1, rep.Population)

	got, ok := repo.get(1)
	require.True(t, ok)
	assert.Equal(t, agents.GoalSateHunger, got.Goal)
	assert.Equal(t, agents.ActionMove, got.LastAction)
	assert.Equal(t, food, got.Pos())
	assert.Equal(t, world.Pt(0, 1), got.Velocity())
	afterMove := got.Hunger

	_, err = sim.Step(ctx)
	require.NoError(t, err)

	got, _ = repo.get(1)
	assert.Equal(t, agents.ActionEat, got.LastAction)
	assert.Less(t, got.Hunger, afterMove)
	assert.InDelta(t, 5.0, repo.food[food], 1e-9)
	assert.Equal(t, 5.0, w.TileAt(food.X, food.Y).Food, "cache mirrors the write")

	require.Len(t, repo.stats, 2)
	assert.Equal(t, uint64(2), repo.stats[1].Tick)
	assert.Equal(t, "test-run", repo.stats[1].RunID)
}

func TestStep_predation(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	d := script(func(c *agents.Critter) (agents.Goal, agents.Action) {
		if c.ID == 1 {
			return agents.GoalSateHunger, agents.Attack(2)
		}
		return resting(c)
	})
	sim := newSim(t, repo, d)
	sim.Params.MaxEscape = 0

	wolf := newCritter(1, agents.DietCarnivore, world.Pt(0, 0))
	wolf.Hunger = 50
	wolf.Energy = 50
	prey := newCritter(2, agents.DietHerbivore, world.Pt(1, 0))
	prey.Health = 3
	repo.put(wolf, prey)

	rep, err := sim.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Deaths)
	assert.Zero(t, d.calls[2], "dead prey never acts")

	_, alive := repo.get(2)
	assert.False(t, alive)
	require.Len(t, repo.deaths, 1)
	rec := repo.deaths[0]
	assert.Equal(t, agents.CritterID(2), rec.OriginalID)
	assert.Equal(t, agents.CausePredation, rec.Cause)
	assert.Equal(t, uint64(1), rec.Tick)
	assert.Equal(t, testNow, rec.DiedAt)
	assert.Equal(t, 5.0, rec.Size)

	got, _ := repo.get(1)
	// 50 + 0.05 upkeep - 40 from the kill + 0.025 metabolism
	assert.InDelta(t, 10.075, got.Hunger, 1e-9)
	assert.InDelta(t, 70.0, got.Energy, 1e-9)
	assert.Zero(t, got.Thirst)

	require.NotEmpty(t, sim.Events)
	assert.Equal(t, CategoryDeath, sim.Events[len(sim.Events)-1].Category)
}

func TestStep_attackEscape(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, script(func(c *agents.Critter) (agents.Goal, agents.Action) {
		if c.ID == 1 {
			return agents.GoalSateHunger, agents.Attack(2)
		}
		return resting(c)
	}))
	sim.Params.MaxEscape = 1
	sim.Params.EscapeBase = 100

	repo.put(newCritter(1, agents.DietCarnivore, world.Pt(0, 0)), newCritter(2, agents.DietHerbivore, world.Pt(1, 0)))

	_, err := sim.Step(context.Background())
	require.NoError(t, err)

	prey, ok := repo.get(2)
	require.True(t, ok)
	assert.Equal(t, 100.0, prey.Health)
	require.Len(t, sim.Events, 1)
	assert.Equal(t, CategoryEscape, sim.Events[0].Category)
}

func TestStep_ghostTargetAbortsTick(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, script(func(c *agents.Critter) (agents.Goal, agents.Action) {
		return agents.GoalSateHunger, agents.Attack(2)
	}))
	sim.Params.MaxEscape = 0

	prey := newCritter(2, agents.DietHerbivore, world.Pt(1, 0))
	prey.Health = 1
	repo.put(newCritter(1, agents.DietCarnivore, world.Pt(0, 0)), prey, newCritter(3, agents.DietCarnivore, world.Pt(2, 0)))

	_, err := sim.Step(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, agents.ErrGhostReference)

	// Rolled back: prey alive, nothing recorded.
	_, alive := repo.get(2)
	assert.True(t, alive)
	assert.Empty(t, repo.deaths)
	assert.Empty(t, repo.stats)
	assert.Zero(t, sim.LastTick)
	assert.Empty(t, sim.Events)
}

func TestKill_twiceIsFatal(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, nil)
	c := newCritter(1, agents.DietHerbivore, world.Pt(0, 0))

	tr := sim.newTick(context.Background(), repo, 1)
	tr.roster = agents.NewRoster([]*agents.Critter{c})

	require.NoError(t, tr.kill(c, agents.CauseStarvation))
	err := tr.kill(c, agents.CausePredation)
	require.Error(t, err)
	assert.True(t, errors.Is(err, agents.ErrAlreadyDead))
	assert.Len(t, tr.deaths, 1)
}

func TestStep_breeding(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, script(func(c *agents.Critter) (agents.Goal, agents.Action) {
		if c.ID == 1 {
			return agents.GoalBreed, agents.Breed(2)
		}
		return resting(c)
	}))

	repo.put(newCritter(1, agents.DietHerbivore, world.Pt(3, 3)), newCritter(2, agents.DietHerbivore, world.Pt(3, 4)))

	rep, err := sim.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Births)
	assert.Equal(t, 3, rep.Population)

	child, ok := repo.get(3)
	require.True(t, ok)
	assert.Equal(t, agents.CritterID(1), child.ParentOneID)
	assert.Equal(t, agents.CritterID(2), child.ParentTwoID)
	assert.Equal(t, uint64(1), child.BornTick)
	assert.Equal(t, world.Pt(3, 3), child.Pos())
	assert.Zero(t, child.Age)

	p1, _ := repo.get(1)
	p2, _ := repo.get(2)
	assert.Equal(t, 500, p1.BreedingCooldown)
	assert.Equal(t, 499, p2.BreedingCooldown, "partner ticks down on its own turn")
	assert.InDelta(t, 60.0, p1.Energy, 1e-9)
	assert.InDelta(t, 65.0, p2.Energy, 1e-9)

	// Upkeep only: halved drift of 0.05 plus 0.05 * 0.5 base metabolism.
	assert.InDelta(t, 0.075, p1.Hunger, 1e-9, "breeding adds no hunger")
	assert.InDelta(t, 0.075, p2.Hunger, 1e-9)
}

func TestStep_breedingWithBusyPartner(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, script(func(c *agents.Critter) (agents.Goal, agents.Action) {
		if c.ID == 1 {
			return agents.GoalBreed, agents.Breed(2)
		}
		return agents.GoalSateHunger, agents.Ambush()
	}))
	repo.put(newCritter(1, agents.DietCarnivore, world.Pt(3, 3)), newCritter(2, agents.DietCarnivore, world.Pt(3, 4)))

	_, err := sim.Step(context.Background())
	require.NoError(t, err)

	p1, _ := repo.get(1)
	p2, _ := repo.get(2)
	assert.InDelta(t, 60.0, p1.Energy, 1e-9)
	assert.InDelta(t, 60.0, p2.Energy, 1e-9)
	assert.InDelta(t, 0.075, p1.Hunger, 1e-9)
	assert.InDelta(t, 0.075, p2.Hunger, 1e-9)
}

func TestStep_needDeaths(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *agents.Critter)
		params func(p *Params)
		want   agents.CauseOfDeath
	}{
		{
			name:   "starvation",
			mutate: func(c *agents.Critter) { c.Health = 0.3; c.Hunger = 90; c.Thirst = 10 },
			want:   agents.CauseStarvation,
		},
		{
			name:   "thirst",
			mutate: func(c *agents.Critter) { c.Health = 0.3; c.Hunger = 10; c.Thirst = 90 },
			want:   agents.CauseThirst,
		},
		{
			name:   "old age",
			mutate: func(c *agents.Critter) { c.Age = 100; c.Lifespan = 10 },
			params: func(p *Params) { p.OldAgeDeathRate = 1 },
			want:   agents.CauseOldAge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			d := script(resting)
			sim := newSim(t, repo, d)
			if tt.params != nil {
				tt.params(&sim.Params)
			}
			c := newCritter(1, agents.DietHerbivore, world.Pt(0, 0))
			tt.mutate(c)
			repo.put(c)

			_, err := sim.Step(context.Background())
			require.NoError(t, err)
			require.Len(t, repo.deaths, 1)
			assert.Equal(t, tt.want, repo.deaths[0].Cause)
			assert.Zero(t, d.calls[1], "the dead do not decide")
			assert.Empty(t, repo.critters)
		})
	}
}

func TestStep_unknownActionRollsBack(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, script(func(*agents.Critter) (agents.Goal, agents.Action) {
		return agents.GoalIdle, agents.Action{Kind: agents.ActionKind(42)}
	}))
	repo.put(newCritter(1, agents.DietHerbivore, world.Pt(0, 0)))
	repo.food[world.Pt(0, 0)] = 3

	_, err := sim.Step(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, agents.ErrUnknownAction)

	got, _ := repo.get(1)
	assert.Zero(t, got.Age)
	assert.Equal(t, 3.0, repo.food[world.Pt(0, 0)], "regrowth rolled back")
	assert.Zero(t, sim.World.LoadedChunks(), "cache dropped")
}

func TestMove(t *testing.T) {
	east := agents.Move(1, 0)

	t.Run("blocked by an occupied tile", func(t *testing.T) {
		repo := newMemRepo()
		sim := newSim(t, repo, script(func(c *agents.Critter) (agents.Goal, agents.Action) {
			if c.ID == 1 {
				return agents.GoalIdle, east
			}
			return resting(c)
		}))
		p := walkableRun(t, sim.World, 2)
		mover := newCritter(1, agents.DietCarnivore, p)
		mover.VX = 1
		repo.put(mover, newCritter(2, agents.DietCarnivore, p.Add(world.Pt(1, 0))))

		_, err := sim.Step(context.Background())
		require.NoError(t, err)
		got, _ := repo.get(1)
		assert.Equal(t, p, got.Pos())
		assert.Equal(t, world.Point{}, got.Velocity())
		assert.Equal(t, agents.ActionMove, got.LastAction)
	})

	t.Run("halts at water", func(t *testing.T) {
		repo := newMemRepo()
		sim := newSim(t, repo, script(func(*agents.Critter) (agents.Goal, agents.Action) {
			return agents.GoalSurviveDanger, east
		}))
		p := shore(t, sim, 1)
		c := newCritter(1, agents.DietHerbivore, p)
		c.VX, c.VY = 1, 0
		repo.put(c)

		_, err := sim.Step(context.Background())
		require.NoError(t, err)
		got, _ := repo.get(1)
		assert.Equal(t, p, got.Pos())
		assert.Equal(t, world.Point{}, got.Velocity())
		assert.InDelta(t, 100.0, got.Energy, 1e-9, "no step, no energy spent")
	})

	t.Run("keeps steps taken before the water", func(t *testing.T) {
		repo := newMemRepo()
		sim := newSim(t, repo, script(func(*agents.Critter) (agents.Goal, agents.Action) {
			return agents.GoalSurviveDanger, east
		}))
		p := shore(t, sim, 2)
		repo.put(newCritter(1, agents.DietHerbivore, p))

		_, err := sim.Step(context.Background())
		require.NoError(t, err)
		got, _ := repo.get(1)
		assert.Equal(t, p.Add(world.Pt(1, 0)), got.Pos())
		assert.Equal(t, world.Point{}, got.Velocity())
		assert.Less(t, got.Energy, 100.0)
	})

	t.Run("too tired to step", func(t *testing.T) {
		repo := newMemRepo()
		sim := newSim(t, repo, script(func(*agents.Critter) (agents.Goal, agents.Action) {
			return agents.GoalIdle, east
		}))
		p := walkableRun(t, sim.World, 2)
		c := newCritter(1, agents.DietCarnivore, p)
		c.Energy = 0
		repo.put(c)

		_, err := sim.Step(context.Background())
		require.NoError(t, err)
		got, _ := repo.get(1)
		assert.Equal(t, p, got.Pos())
	})

	t.Run("hunting carnivore sprints", func(t *testing.T) {
		repo := newMemRepo()
		sim := newSim(t, repo, script(func(*agents.Critter) (agents.Goal, agents.Action) {
			return agents.GoalSateHunger, agents.Move(5, 0.4)
		}))
		p := walkableRun(t, sim.World, 4)
		c := newCritter(1, agents.DietCarnivore, p)
		c.Speed = 3.9
		repo.put(c)

		_, err := sim.Step(context.Background())
		require.NoError(t, err)
		got, _ := repo.get(1)
		assert.Equal(t, p.Add(world.Pt(3, 0)), got.Pos())
		assert.Equal(t, world.Pt(3, 0), got.Velocity())
		assert.Less(t, got.Energy, 100.0)
		assert.Greater(t, got.Hunger, 0.05+0.025, "energy spent raises hunger")
	})

	t.Run("stops at the destination", func(t *testing.T) {
		repo := newMemRepo()
		sim := newSim(t, repo, nil)
		p := walkableRun(t, sim.World, 4)
		sim.Brain = script(func(c *agents.Critter) (agents.Goal, agents.Action) {
			return agents.GoalSurviveDanger, agents.MoveTo(p, p.Add(world.Pt(1, 0)), p.Add(world.Pt(1, 0)))
		})
		c := newCritter(1, agents.DietHerbivore, p)
		c.Speed = 4
		repo.put(c)

		_, err := sim.Step(context.Background())
		require.NoError(t, err)
		got, _ := repo.get(1)
		assert.Equal(t, p.Add(world.Pt(1, 0)), got.Pos())
	})
}

func TestStep_regrowth(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, script(resting))
	repo.food[world.Pt(1, 1)] = 5
	repo.food[world.Pt(2, 2)] = 9.9

	_, err := sim.Step(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 5.2, repo.food[world.Pt(1, 1)], 1e-9, "spring doubles regrowth")
	assert.NotContains(t, repo.food, world.Pt(2, 2), "full tiles revert to procedural")
}

func TestStep_noRegrowthInWinter(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, script(resting))
	repo.stats = append(repo.stats, &Statistics{Tick: 750})
	repo.food[world.Pt(1, 1)] = 5

	rep, err := sim.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(751), rep.Tick)
	assert.Equal(t, SeasonWinter, rep.Season)
	assert.Equal(t, 5.0, repo.food[world.Pt(1, 1)])
	assert.Equal(t, SeasonWinter, sim.Season)

	require.NotEmpty(t, sim.Events)
	e := sim.Events[0]
	assert.Equal(t, CategorySeason, e.Category)
	assert.Equal(t, uint64(751), e.Tick)
	assert.Equal(t, "Spring gives way to Winter", e.Description)

	_, err = sim.Step(context.Background())
	require.NoError(t, err)
	for _, e := range sim.Events[1:] {
		assert.NotEqual(t, CategorySeason, e.Category, "announced once")
	}
}

func TestPopulate(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, nil)

	n, err := sim.Populate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, agents.DefaultSpawnConfig().Progenitors, n)
	assert.Len(t, repo.critters, n)

	n, err = sim.Populate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "populated worlds are left alone")
}

func TestStep_ruleBrainRunsPopulation(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, nil)
	_, err := sim.Populate(context.Background())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := sim.Step(context.Background())
		require.NoError(t, err)
	}
	require.Len(t, repo.stats, 5)
	last := repo.stats[4]
	assert.Equal(t, last.Population, last.Herbivores.Count+last.Carnivores.Count)
	assert.Equal(t, uint64(5), sim.LastTick)
}

func TestStep_migrantsRefillDwindlingDiet(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, script(resting))
	sim.Params.MinDietPopulation = 2
	repo.put(newCritter(1, agents.DietHerbivore, world.Pt(0, 0)), newCritter(2, agents.DietHerbivore, world.Pt(1, 0)))

	rep, err := sim.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Migrants)
	assert.Equal(t, 4, rep.Population)

	carnivores := 0
	for _, c := range repo.critters {
		if c.Diet == agents.DietCarnivore {
			carnivores++
			assert.Equal(t, agents.FounderOneID, c.ParentOneID)
			assert.True(t, sim.World.Procedural(c.X, c.Y).Walkable())
		}
	}
	assert.Equal(t, 2, carnivores)
	assert.Equal(t, CategoryMigration, sim.Events[len(sim.Events)-1].Category)
}

func TestPopulate_noLandAborts(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, nil)
	sim.World = floodedWorld()

	n, err := sim.Populate(context.Background())
	require.ErrorIs(t, err, agents.ErrNoLand)
	assert.Zero(t, n)
	assert.Empty(t, repo.critters)
}

func TestStep_migrationWithoutLandRollsBack(t *testing.T) {
	repo := newMemRepo()
	sim := newSim(t, repo, script(resting))
	sim.Params.MinDietPopulation = 1
	sim.World = floodedWorld()
	repo.put(newCritter(1, agents.DietHerbivore, world.Pt(0, 0)))

	_, err := sim.Step(context.Background())
	require.ErrorIs(t, err, agents.ErrNoLand)
	assert.Zero(t, sim.LastTick)
	assert.Empty(t, repo.stats)
	assert.Len(t, repo.critters, 1)
}
