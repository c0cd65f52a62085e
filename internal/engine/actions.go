package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/world"
)

// execute applies an action and returns the energy it cost.
func (t *tickRun) execute(c *agents.Critter, goal agents.Goal, a agents.Action) (float64, error) {
	p := t.sim.Params
	n := t.sim.Needs

	switch a.Kind {
	case agents.ActionRest:
		c.Energy = math.Min(n.MaxEnergy, c.Energy+p.EnergyRegen)
		return 0, nil

	case agents.ActionDrink:
		c.Thirst = math.Max(0, c.Thirst-p.DrinkAmount)
		return 0, nil

	case agents.ActionEat:
		return 0, t.eat(c)

	case agents.ActionAttack:
		return 0, t.attack(c, a.Target)

	case agents.ActionBreed:
		return 0, t.breed(c, a.Partner)

	case agents.ActionAmbush:
		return 0, nil

	case agents.ActionMove:
		return t.move(c, goal, a), nil

	default:
		return 0, fmt.Errorf("%w: %d", agents.ErrUnknownAction, a.Kind)
	}
}

func (t *tickRun) eat(c *agents.Critter) error {
	p := t.sim.Params
	w := t.sim.World
	tile := w.TileAt(c.X, c.Y)
	amount := math.Min(tile.Food, p.BiteSize)
	if amount <= 0 {
		return nil
	}
	c.Hunger -= amount / p.BiteSize * p.HungerPerBite
	c.Energy += amount
	c.Thirst -= amount * p.ThirstPerFood
	return w.UpdateFood(c.X, c.Y, tile.Food-amount)
}

func (t *tickRun) attack(pred *agents.Critter, target agents.CritterID) error {
	prey, err := t.roster.Resolve(target)
	if err != nil {
		return err
	}
	p := t.sim.Params

	escape := p.MaxEscape
	if pred.Speed > 0 {
		escape = math.Min(p.MaxEscape, p.EscapeBase*prey.Speed/pred.Speed)
	}
	if t.sim.Rng.Float64() < escape {
		t.event(CategoryEscape, prey.ID, pred.ID, "%s %d escaped %s %d", prey.Diet, prey.ID, pred.Diet, pred.ID)
		return nil
	}

	prey.Health -= pred.Size * p.DamagePerSize
	if prey.Health > 0 {
		t.event(CategorySurvival, prey.ID, pred.ID, "%s %d survived an attack by %s %d", prey.Diet, prey.ID, pred.Diet, pred.ID)
		return nil
	}

	if err := t.kill(prey, agents.CausePredation); err != nil {
		return err
	}
	pred.Hunger -= prey.Size * p.KillHungerPerSize
	pred.Energy += prey.Size * p.KillEnergyPerSize
	pred.Thirst -= prey.Size * p.KillThirstPerSize
	return nil
}

// breed debits both parents the same flat energy cost. Breeding adds no
// metabolic hunger to either of them.
func (t *tickRun) breed(c *agents.Critter, partnerID agents.CritterID) error {
	partner, err := t.roster.Resolve(partnerID)
	if err != nil {
		return err
	}
	p := t.sim.Params

	child := t.sim.Spawner.Reproduce(c, partner, t.tick)
	t.roster.AddBorn(child)

	for _, parent := range []*agents.Critter{c, partner} {
		parent.Energy -= p.BreedingEnergyCost
		parent.BreedingCooldown = p.BreedingCooldown
	}
	t.event(CategoryBirth, c.ID, partner.ID, "%s %d and %d had offspring", c.Diet, c.ID, partner.ID)
	return nil
}

// move walks the critter one tile at a time along the rounded direction of
// the action. It stops early at the destination, and halts with zero
// velocity at water, an occupied tile, or a step it cannot afford.
func (t *tickRun) move(c *agents.Critter, goal agents.Goal, a agents.Action) float64 {
	mag := math.Hypot(a.DX, a.DY)
	if mag == 0 {
		c.VX, c.VY = 0, 0
		return 0
	}
	dir := world.Point{X: int(math.Round(a.DX / mag)), Y: int(math.Round(a.DY / mag))}

	speed := int(c.Speed)
	steps := speed
	sprint := goal == agents.GoalSurviveDanger ||
		(c.Diet == agents.DietCarnivore && goal == agents.GoalSateHunger)
	if !sprint {
		steps = 1 + t.sim.Rng.Intn(max(1, speed-1))
	}

	w := t.sim.World
	cost := t.sim.Planner.Cost
	start := c.Pos()
	spent := 0.0
	for i := 0; i < steps; i++ {
		from := w.TileAt(c.X, c.Y)
		next := c.Pos().Add(dir)
		to := w.TileAt(next.X, next.Y)

		stepCost := cost.StepCost(from, to)
		if !to.Walkable() || t.roster.Occupied(next) || stepCost > c.Energy {
			slog.Debug("move halted", "critter", c.ID, "at", c.Pos(), "next", next)
			c.VX, c.VY = 0, 0
			return spent
		}
		c.Energy -= stepCost
		spent += stepCost
		t.roster.Move(c, next)

		if a.Dest != nil && next == *a.Dest {
			break
		}
	}
	c.VX, c.VY = c.X-start.X, c.Y-start.Y
	return spent
}
