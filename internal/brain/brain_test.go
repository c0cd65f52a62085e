package brain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/behavior"
	"github.com/talgya/critter-world/internal/pathfind"
	"github.com/talgya/critter-world/internal/world"
)

// meadow is flat grass everywhere except the listed water tiles.
type meadow map[world.Point]bool

func (m meadow) TileAt(x, y int) world.Tile {
	t := world.Tile{X: x, Y: y, Terrain: world.TerrainGrass, Food: 10}
	if m[world.Pt(x, y)] {
		t.Terrain = world.TerrainWater
		t.Food = 0
	}
	return t
}

func view(tiles world.TileSource, cs ...*agents.Critter) *behavior.View {
	return &behavior.View{
		Tiles:   tiles,
		Planner: pathfind.NewPlanner(world.DefaultCostModel()),
		Roster:  agents.NewRoster(cs),
		Rng:     rand.New(rand.NewSource(3)),
		Needs:   agents.DefaultParams(),
		Params:  behavior.DefaultParams(),
	}
}

func critter(id agents.CritterID, diet agents.Diet, x, y int) *agents.Critter {
	return &agents.Critter{
		ID: id, Diet: diet, Health: 100, Energy: 100, X: x, Y: y,
		Genetics: agents.Genetics{Speed: 4, Size: 5, Metabolism: 1, Lifespan: 5000, Perception: 5, Commitment: 1.25},
	}
}

func newRuleBrain(t *testing.T) *RuleBrain {
	t.Helper()
	b, err := NewRuleBrain()
	require.NoError(t, err)
	return b
}

func TestRuleBrain_criticalEnergy(t *testing.T) {
	c := critter(1, agents.DietHerbivore, 0, 0)
	c.Energy = 5
	c.Hunger = 90

	goal, a, err := newRuleBrain(t).Decide(c, view(meadow{}, c))
	require.NoError(t, err)
	assert.Equal(t, agents.GoalRecoverEnergy, goal)
	assert.Equal(t, agents.ActionRest, a.Kind)
}

func TestRuleBrain_fleeOverridesStarvation(t *testing.T) {
	c := critter(1, agents.DietHerbivore, 0, 0)
	c.Hunger = 95
	c.Energy = 5
	wolf := critter(2, agents.DietCarnivore, 3, 0)

	goal, a, err := newRuleBrain(t).Decide(c, view(meadow{}, c, wolf))
	require.NoError(t, err)
	assert.Equal(t, agents.GoalSurviveDanger, goal)
	assert.Equal(t, agents.ActionMove, a.Kind)
}

func TestRuleBrain_criticalThirstBeforeHunger(t *testing.T) {
	c := critter(1, agents.DietCarnivore, 0, 0)
	c.Thirst = 80
	c.Hunger = 85

	goal, a, err := newRuleBrain(t).Decide(c, view(meadow{world.Pt(1, 0): true}, c))
	require.NoError(t, err)
	assert.Equal(t, agents.GoalQuenchThirst, goal)
	assert.Equal(t, agents.ActionDrink, a.Kind)
}

func TestRuleBrain_adjacentBreeding(t *testing.T) {
	a1 := critter(1, agents.DietHerbivore, 0, 0)
	a2 := critter(2, agents.DietHerbivore, 0, 1)

	goal, a, err := newRuleBrain(t).Decide(a1, view(meadow{}, a1, a2))
	require.NoError(t, err)
	assert.Equal(t, agents.GoalBreed, goal)
	assert.Equal(t, agents.Breed(2), a)
}

func TestRuleBrain_hungryHerbivoreEats(t *testing.T) {
	c := critter(1, agents.DietHerbivore, 0, 0)
	c.Hunger = 40

	goal, a, err := newRuleBrain(t).Decide(c, view(meadow{}, c))
	require.NoError(t, err)
	assert.Equal(t, agents.GoalSateHunger, goal)
	assert.Equal(t, agents.ActionEat, a.Kind)
}

func TestRuleBrain_idleFallsBackToMoving(t *testing.T) {
	c := critter(1, agents.DietCarnivore, 0, 0)
	c.BreedingCooldown = 10

	goal, a, err := newRuleBrain(t).Decide(c, view(meadow{}, c))
	require.NoError(t, err)
	assert.Equal(t, agents.GoalIdle, goal)
	assert.Equal(t, agents.ActionMove, a.Kind)
}

func TestRuleBrain_unknownDiet(t *testing.T) {
	c := critter(1, agents.Diet(7), 0, 0)
	_, _, err := newRuleBrain(t).Decide(c, view(meadow{}, c))
	assert.ErrorIs(t, err, agents.ErrUnknownDiet)
}

func TestScores_hysteresis(t *testing.T) {
	n := agents.DefaultParams()
	c := critter(1, agents.DietHerbivore, 0, 0)
	c.Energy = 60
	c.BreedingCooldown = 5

	s := Scores(c, n)
	assert.Zero(t, s[agents.GoalRecoverEnergy], "60 is above the start threshold")
	assert.Equal(t, agents.GoalIdle, Best(s))

	c.Goal = agents.GoalRecoverEnergy
	s = Scores(c, n)
	assert.InDelta(t, (90.0-60.0)/90.0*2*1.25, s[agents.GoalRecoverEnergy], 1e-9)
	assert.Equal(t, agents.GoalRecoverEnergy, Best(s))
}

func TestScores_needUrgency(t *testing.T) {
	n := agents.DefaultParams()
	c := critter(1, agents.DietCarnivore, 0, 0)
	c.Thirst = 20
	c.Hunger = 55

	s := Scores(c, n)
	assert.InDelta(t, 1.0, s[agents.GoalQuenchThirst], 1e-9)
	assert.InDelta(t, 1.5, s[agents.GoalSateHunger], 1e-9)
	assert.Equal(t, agents.GoalSateHunger, Best(s))
}

func TestBest_tiesFollowGoalOrder(t *testing.T) {
	var s [agents.NumGoals]float64
	s[agents.GoalSeekMate] = 1
	s[agents.GoalQuenchThirst] = 1
	assert.Equal(t, agents.GoalQuenchThirst, Best(s))
}

func TestDispatch_noAction(t *testing.T) {
	c := critter(1, agents.DietHerbivore, 0, 0)
	r := behavior.Registry{behavior.Foraging: behavior.GrazingStrategy{}}

	_, err := dispatch(r, agents.GoalQuenchThirst, c, view(meadow{}, c))
	assert.ErrorIs(t, err, ErrNoAction)
}

type fixedPolicy struct {
	goal     agents.Goal
	observed int
	lastLen  int
}

func (p *fixedPolicy) SelectGoal(s []float64) agents.Goal {
	p.lastLen = len(s)
	return p.goal
}

func (p *fixedPolicy) Observe([]float64, agents.Goal, float64, []float64, bool) { p.observed++ }

func TestPolicyBrain_dispatchesChosenGoal(t *testing.T) {
	pol := &fixedPolicy{goal: agents.GoalQuenchThirst}
	b, err := NewPolicyBrain(pol, Encoder{FullFood: 10, FullCooldown: 500})
	require.NoError(t, err)

	c := critter(1, agents.DietHerbivore, 0, 0)
	goal, a, err := b.Decide(c, view(meadow{world.Pt(-1, -1): true}, c))
	require.NoError(t, err)
	assert.Equal(t, agents.GoalQuenchThirst, goal)
	assert.Equal(t, agents.ActionDrink, a.Kind)
	assert.Equal(t, LayoutFor(5).Len, pol.lastLen)
}

func TestEncode(t *testing.T) {
	c := critter(1, agents.DietHerbivore, 0, 0)
	c.Perception = 1
	c.Hunger = 50
	c.BreedingCooldown = 250
	wolf := critter(2, agents.DietCarnivore, 1, 0)
	wolf.Health = 50

	enc := Encoder{FullFood: 10, FullCooldown: 500}
	s := enc.Encode(c, view(meadow{world.Pt(0, -1): true}, c, wolf))

	l := LayoutFor(1)
	require.Len(t, s, l.Len)
	assert.Equal(t, 47, l.Len)
	assert.Equal(t, 0.0, s[SlotCarnivore])
	assert.InDelta(t, 0.5, s[SlotHunger], 1e-9)
	assert.InDelta(t, 0.5, s[SlotCooldown], 1e-9)

	// North-center cell of the 3x3 window is water.
	assert.Equal(t, 1.0, s[l.Water+1])
	assert.Equal(t, 0.0, s[l.Grass+1])
	assert.Equal(t, 1.0, s[l.Grass+4])

	assert.Equal(t, []float64{1, 1, 0, 0.5, 1}, s[l.Threat:l.Threat+ThreatSlots])
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, s[l.Prey:l.Prey+PreySlots])
}

func TestThresholdPolicy(t *testing.T) {
	n := agents.DefaultParams()
	p := NewThresholdPolicy(n)
	enc := Encoder{FullFood: 10, FullCooldown: 500}

	c := critter(1, agents.DietHerbivore, 0, 0)
	wolf := critter(2, agents.DietCarnivore, 2, 0)
	assert.Equal(t, agents.GoalSurviveDanger, p.SelectGoal(enc.Encode(c, view(meadow{}, c, wolf))))

	c.Thirst = 30
	assert.Equal(t, agents.GoalQuenchThirst, p.SelectGoal(enc.Encode(c, view(meadow{}, c))))

	c.Thirst = 0
	assert.Equal(t, agents.GoalSeekMate, p.SelectGoal(enc.Encode(c, view(meadow{}, c))))

	c.Energy = 8
	assert.Equal(t, agents.GoalRecoverEnergy, p.SelectGoal(enc.Encode(c, view(meadow{}, c))))
}
