// Simulation ties the world, the critters and the brain together and runs
// them one tick at a time.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/behavior"
	"github.com/talgya/critter-world/internal/brain"
	"github.com/talgya/critter-world/internal/pathfind"
	"github.com/talgya/critter-world/internal/world"
)

// Options configures a Simulation.
type Options struct {
	Seed     int64
	RunID    string
	Params   Params
	Needs    agents.Params
	Behavior behavior.Params
	Cost     world.CostModel
	MaxPath  int // Pathfinder expansion limit; 0 keeps the default

	// Now stamps events and death records. Defaults to time.Now.
	Now func() time.Time
}

// Simulation holds the long-lived simulation context. Per-tick state lives
// in the repository and is reloaded every step.
type Simulation struct {
	World   *world.World
	Store   Store
	Brain   brain.Decider
	Spawner *agents.Spawner
	Planner *pathfind.Planner
	Sink    EventSink // Optional

	RunID    string
	Params   Params
	Needs    agents.Params
	Behavior behavior.Params

	Rng      *rand.Rand
	Events   []Event // Recent events
	LastTick uint64  // Most recent tick committed
	Season   Season
	Stats    *Statistics // Snapshot of the last committed tick

	now func() time.Time
}

// Report summarizes one committed tick.
type Report struct {
	Tick       uint64
	Season     Season
	Population int
	Births     int
	Deaths     int
	Migrants   int
	Events     int
}

// NewSimulation wires a simulation together.
func NewSimulation(opts Options, w *world.World, store Store, b brain.Decider, sp *agents.Spawner) *Simulation {
	planner := pathfind.NewPlanner(opts.Cost)
	if opts.MaxPath > 0 {
		planner.MaxExpansions = opts.MaxPath
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Simulation{
		World:    w,
		Store:    store,
		Brain:    b,
		Spawner:  sp,
		Planner:  planner,
		RunID:    opts.RunID,
		Params:   opts.Params,
		Needs:    opts.Needs,
		Behavior: opts.Behavior,
		Rng:      rand.New(rand.NewSource(opts.Seed + 500)),
		now:      now,
	}
}

// Populate spawns the founding population if the world has no critters.
// It returns the number of critters created.
func (s *Simulation) Populate(ctx context.Context) (int, error) {
	n := 0
	err := s.Store.WithinTick(ctx, func(repo Repository) error {
		s.World.Attach(ctx, repo)
		live, err := repo.LiveCritters(ctx)
		if err != nil {
			return fmt.Errorf("load critters: %w", err)
		}
		if len(live) > 0 {
			return nil
		}
		last, err := repo.LastStatisticsTick(ctx)
		if err != nil {
			return fmt.Errorf("last tick: %w", err)
		}
		founders, err := s.Spawner.SpawnPopulation(s.World, last)
		if err != nil {
			return fmt.Errorf("spawn: %w", err)
		}
		for _, c := range founders {
			if err := repo.AddCritter(ctx, c); err != nil {
				return fmt.Errorf("add progenitor: %w", err)
			}
			n++
		}
		return s.World.Err()
	})
	if err != nil {
		s.World.DropCache()
		return 0, err
	}
	if n > 0 {
		slog.Info("world seeded", "progenitors", n)
	}
	return n, nil
}

// Step runs one tick inside one repository transaction. On any error the
// transaction is rolled back, the override cache is dropped, and nothing
// about the tick is published.
func (s *Simulation) Step(ctx context.Context) (Report, error) {
	var t *tickRun
	err := s.Store.WithinTick(ctx, func(repo Repository) error {
		s.World.Attach(ctx, repo)
		last, err := repo.LastStatisticsTick(ctx)
		if err != nil {
			return fmt.Errorf("last tick: %w", err)
		}
		t = s.newTick(ctx, repo, last+1)
		return t.run()
	})
	if err != nil {
		s.World.DropCache()
		tick := s.LastTick + 1
		if t != nil {
			tick = t.tick
		}
		return Report{}, fmt.Errorf("tick %d: %w", tick, err)
	}
	s.commit(t)
	return t.report(), nil
}

// commit publishes a committed tick.
func (s *Simulation) commit(t *tickRun) {
	s.LastTick = t.tick
	s.Stats = t.stats
	if t.season != s.Season {
		slog.Info("season changed", "tick", t.tick, "from", s.Season, "to", t.season)
		s.Season = t.season
	}

	for _, e := range t.events {
		slog.Debug("event", "tick", e.Tick, "category", e.Category, "description", e.Description)
	}
	s.Events = append(s.Events, t.events...)
	if limit := s.Params.MaxEvents; limit > 0 && len(s.Events) > limit {
		s.Events = s.Events[len(s.Events)-limit:]
	}
	if s.Sink != nil && len(t.events) > 0 {
		if err := s.Sink.WriteEvents(t.events); err != nil {
			slog.Warn("event sink failed", "tick", t.tick, "error", err)
		}
	}
}

// LogSummary writes a human-readable line about the last committed tick.
func (s *Simulation) LogSummary(r Report) {
	if s.Stats == nil {
		return
	}
	st := s.Stats
	slog.Info("tick report",
		"tick", humanize.Comma(int64(r.Tick)),
		"season", r.Season,
		"population", humanize.Comma(int64(st.Population)),
		"herbivores", st.Herbivores.Count,
		"carnivores", st.Carnivores.Count,
		"births", r.Births,
		"deaths", r.Deaths,
		"avg_health", fmt.Sprintf("%.1f", st.AvgHealth),
		"avg_hunger", fmt.Sprintf("%.1f", st.AvgHunger),
		"avg_thirst", fmt.Sprintf("%.1f", st.AvgThirst),
		"chunks", s.World.LoadedChunks(),
	)
}
