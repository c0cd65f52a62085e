package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/behavior"
)

type death struct {
	critter *agents.Critter
	cause   agents.CauseOfDeath
}

// tickRun is the state of one tick in progress.
type tickRun struct {
	sim    *Simulation
	ctx    context.Context
	repo   Repository
	tick   uint64
	now    time.Time
	season Season

	roster   *agents.Roster
	view     *behavior.View
	deaths   []death
	migrants []*agents.Critter
	events   []Event
	stats    *Statistics
}

func (s *Simulation) newTick(ctx context.Context, repo Repository, tick uint64) *tickRun {
	return &tickRun{
		sim:    s,
		ctx:    ctx,
		repo:   repo,
		tick:   tick,
		now:    s.now().UTC(),
		season: SeasonAt(tick, s.Params.SeasonLength),
	}
}

func (t *tickRun) run() error {
	if t.season != t.sim.Season {
		t.event(CategorySeason, 0, 0, "%s gives way to %s", t.sim.Season, t.season)
	}
	if err := t.regrow(); err != nil {
		return fmt.Errorf("regrowth: %w", err)
	}

	live, err := t.repo.LiveCritters(t.ctx)
	if err != nil {
		return fmt.Errorf("load critters: %w", err)
	}
	t.roster = agents.NewRoster(live)
	s := t.sim
	t.view = &behavior.View{
		Tiles:   s.World,
		Planner: s.Planner,
		Roster:  t.roster,
		Rng:     s.Rng,
		Needs:   s.Needs,
		Params:  s.Behavior,
	}

	// Sequential in roster order: later critters see the moves, kills and
	// meals of earlier ones.
	for _, c := range t.roster.All() {
		if c.Ghost {
			continue
		}
		if err := t.update(c); err != nil {
			return fmt.Errorf("critter %d: %w", c.ID, err)
		}
	}
	if err := t.migrate(); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	if err := s.World.Err(); err != nil {
		return err
	}

	if err := t.persist(); err != nil {
		return err
	}

	t.stats = collectStats(t)
	if err := t.repo.AddStatisticsSnapshot(t.ctx, t.stats); err != nil {
		return fmt.Errorf("statistics: %w", err)
	}
	return nil
}

// regrow moves every depleted tile toward full food. Tiles that reach full
// lose their override and fall back to the procedural default.
func (t *tickRun) regrow() error {
	rate := t.sim.Params.RegrowthRate * t.season.GrowthMultiplier()
	if rate <= 0 {
		return nil
	}
	w := t.sim.World
	full := w.FullFood()
	depleted, err := t.repo.DepletedOverrides(t.ctx, full)
	if err != nil {
		return err
	}
	for _, o := range depleted {
		food := o.Food + rate
		if food >= full {
			err = w.ClearFood(o.X, o.Y)
		} else {
			err = w.UpdateFood(o.X, o.Y, food)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// update runs one critter's turn: upkeep, decision, action.
func (t *tickRun) update(c *agents.Critter) error {
	p := t.sim.Params
	n := t.sim.Needs

	c.Age++
	if c.BreedingCooldown > 0 {
		c.BreedingCooldown--
	}
	if lifespan := float64(c.Lifespan); lifespan > 0 && float64(c.Age) > p.OldAgeFraction*lifespan {
		if t.sim.Rng.Float64() < p.OldAgeDeathRate*float64(c.Age)/lifespan {
			return t.kill(c, agents.CauseOldAge)
		}
	}

	if c.Hunger < n.HungerToStart(c.Diet) && c.Thirst < n.ThirstToStartDrinking {
		c.Health += p.PassiveHeal
	}

	hunger := p.HungerPerTick
	if c.Goal == agents.GoalRecoverEnergy || c.Goal == agents.GoalIdle {
		hunger /= 2
	}
	c.Hunger += hunger
	c.Thirst += p.ThirstPerTick
	if n.Critical(c) {
		c.Health -= p.HealthDamage
	}
	n.Clamp(c)

	if c.Health <= 0 {
		cause := agents.CauseThirst
		if c.Hunger/n.CriticalHunger >= c.Thirst/n.CriticalThirst {
			cause = agents.CauseStarvation
		}
		return t.kill(c, cause)
	}

	goal, action, err := t.sim.Brain.Decide(c, t.view)
	if err != nil {
		return err
	}
	slog.Debug("decision", "tick", t.tick, "critter", c.ID, "goal", goal, "action", action)

	spent, err := t.execute(c, goal, action)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	c.Hunger += (spent + p.BaseMetabolicRate) * c.Metabolism * p.MetabolismScale
	c.Goal = goal
	c.LastAction = action.Kind
	n.Clamp(c)
	return nil
}

// kill marks a critter dead. Killing the same critter twice in one tick is
// a bookkeeping fault and aborts the tick.
func (t *tickRun) kill(c *agents.Critter, cause agents.CauseOfDeath) error {
	if err := t.roster.MarkDead(c.ID); err != nil {
		return err
	}
	t.deaths = append(t.deaths, death{critter: c, cause: cause})
	t.event(CategoryDeath, c.ID, 0, "%s %d died of %s at age %d", c.Diet, c.ID, cause, c.Age)
	return nil
}

// persist writes the outcome of the tick.
func (t *tickRun) persist() error {
	if err := t.repo.SaveCritters(t.ctx, t.roster.Live()); err != nil {
		return fmt.Errorf("save critters: %w", err)
	}
	for _, c := range t.roster.Born() {
		if err := t.repo.AddCritter(t.ctx, c); err != nil {
			return fmt.Errorf("add newborn: %w", err)
		}
	}
	for _, c := range t.migrants {
		if err := t.repo.AddCritter(t.ctx, c); err != nil {
			return fmt.Errorf("add migrant: %w", err)
		}
	}
	for _, d := range t.deaths {
		rec := agents.NewDeathRecord(d.critter, d.cause, t.tick, t.now)
		if err := t.repo.AddDeathRecord(t.ctx, rec); err != nil {
			return fmt.Errorf("death record %d: %w", d.critter.ID, err)
		}
		if err := t.repo.DeleteCritter(t.ctx, d.critter.ID); err != nil {
			return fmt.Errorf("delete critter %d: %w", d.critter.ID, err)
		}
	}
	return nil
}

func (t *tickRun) report() Report {
	r := Report{
		Tick:     t.tick,
		Season:   t.season,
		Births:   len(t.roster.Born()),
		Deaths:   len(t.deaths),
		Migrants: len(t.migrants),
		Events:   len(t.events),
	}
	if t.stats != nil {
		r.Population = t.stats.Population
	}
	return r
}
