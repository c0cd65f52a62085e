// Command critterworld runs the critter ecosystem simulation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/api"
	"github.com/talgya/critter-world/internal/brain"
	"github.com/talgya/critter-world/internal/config"
	"github.com/talgya/critter-world/internal/engine"
	"github.com/talgya/critter-world/internal/eventlog"
	"github.com/talgya/critter-world/internal/persistence"
	"github.com/talgya/critter-world/internal/telemetry"
	"github.com/talgya/critter-world/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// ── Configuration ─────────────────────────────────────────────────
	cfg, err := config.Load(os.Getenv(config.EnvConfig))
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	runID := uuid.NewString()
	slog.Info("critter world starting", "run_id", runID, "brain", cfg.Engine.Brain)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	db, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Storage.DBPath)

	// Persisted food overrides only make sense on the terrain they were
	// written against, so a stored seed wins over the configured one.
	gen := cfg.World.Generation
	if stored, ok, err := db.GetMeta(ctx, "seed"); err != nil {
		return fmt.Errorf("read seed: %w", err)
	} else if ok {
		seed, err := strconv.ParseInt(stored, 10, 64)
		if err != nil {
			return fmt.Errorf("stored seed %q: %w", stored, err)
		}
		if seed != gen.Seed {
			slog.Warn("configured seed ignored for existing world", "configured", gen.Seed, "stored", seed)
			gen.Seed = seed
		}
	} else if err := db.SaveMeta(ctx, "seed", strconv.FormatInt(gen.Seed, 10)); err != nil {
		return fmt.Errorf("save seed: %w", err)
	}
	if err := db.SaveMeta(ctx, "last_run_id", runID); err != nil {
		return fmt.Errorf("save run id: %w", err)
	}

	// ── World (procedural, overrides loaded per tick) ─────────────────
	w := world.New(gen, nil)
	for t, n := range w.TerrainCounts(64) {
		slog.Info("terrain near origin", "type", world.TerrainName(t), "tiles", n)
	}

	// ── Brain ─────────────────────────────────────────────────────────
	var decider brain.Decider
	switch cfg.Engine.Brain {
	case config.BrainPolicy:
		enc := brain.Encoder{FullFood: gen.FullFood, FullCooldown: float64(cfg.Engine.BreedingCooldown)}
		decider, err = brain.NewPolicyBrain(brain.NewThresholdPolicy(cfg.Agents), enc)
	default:
		decider, err = brain.NewRuleBrain()
	}
	if err != nil {
		return fmt.Errorf("brain: %w", err)
	}

	// ── Simulation ────────────────────────────────────────────────────
	spawner := agents.NewSpawner(gen.Seed, cfg.Agents, cfg.Population.Spawn, cfg.Population.Mutation)
	sim := engine.NewSimulation(engine.Options{
		Seed:     gen.Seed,
		RunID:    runID,
		Params:   cfg.Engine.Params,
		Needs:    cfg.Agents,
		Behavior: cfg.Behavior,
		Cost:     cfg.World.Cost,
		MaxPath:  cfg.World.MaxPathExpansions,
	}, w, db, decider, spawner)

	latest, err := db.LatestStatistics(ctx)
	if err != nil {
		return err
	}
	if latest != nil {
		sim.LastTick = latest.Tick
		sim.Stats = latest
		sim.Season = engine.SeasonAt(latest.Tick, cfg.Engine.SeasonLength)
		slog.Info("resuming world",
			"tick", humanize.Comma(int64(latest.Tick)),
			"population", humanize.Comma(int64(latest.Population)),
			"season", sim.Season,
		)
	}

	n, err := sim.Populate(ctx)
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}
	if n > 0 {
		slog.Info("fresh world", "progenitors", humanize.Comma(int64(n)))
	}

	// ── Outputs ───────────────────────────────────────────────────────
	stats, err := telemetry.NewStatsWriter(cfg.Telemetry.StatsCSV)
	if err != nil {
		return err
	}
	defer stats.Close()

	if dir := cfg.Telemetry.EventDir; dir != "" {
		events := eventlog.New(dir, runID)
		defer events.Close()
		sim.Sink = events
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	var apiServer *api.Server
	if cfg.API.Port > 0 {
		apiServer = &api.Server{Port: cfg.API.Port}
		if cfg.API.RateLimit > 0 {
			apiServer.Limiter = api.NewRateLimiter(cfg.API.RateLimit, time.Minute)
		}
		apiServer.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			apiServer.Shutdown(ctx)
		}()
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Interval = cfg.Engine.Interval
	eng.Speed = cfg.Engine.Speed
	eng.MaxTicks = cfg.Engine.Ticks
	eng.OnTick = func(ctx context.Context, _ uint64) error {
		report, err := sim.Step(ctx)
		if err != nil {
			return err
		}
		if err := stats.Write(sim.Stats); err != nil {
			slog.Warn("stats export failed", "tick", report.Tick, "error", err)
		}
		if apiServer != nil {
			apiServer.Publish(api.Observe(sim, report))
		}
		if every := cfg.Engine.ReportEvery; every > 0 && report.Tick%every == 0 {
			sim.LogSummary(report)
		}
		return nil
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Println("Starting simulation... (Ctrl+C to stop)")
	runErr := eng.Run(ctx)

	if tally, err := db.DeathsByCause(ctx); err != nil {
		slog.Warn("death tally failed", "error", err)
	} else {
		for cause, n := range tally {
			slog.Info("deaths", "cause", cause, "count", humanize.Comma(int64(n)))
		}
	}
	fmt.Printf("Simulation stopped at tick %d. World state is in %s.\n", sim.LastTick, cfg.Storage.DBPath)
	return runErr
}
