// Package engine provides the tick loop and the simulation it drives.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Engine drives the simulation forward.
type Engine struct {
	Tick     uint64        // Ticks run by this engine
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval
	MaxTicks uint64        // Stop after this many ticks; 0 runs forever

	// OnTick runs one simulation step. An error stops the loop.
	OnTick func(ctx context.Context, tick uint64) error

	running atomic.Bool
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run starts the simulation loop. It blocks until Stop is called, ctx is
// cancelled, MaxTicks is reached, or a tick fails.
func (e *Engine) Run(ctx context.Context) error {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.running.Load() {
		if ctx.Err() != nil {
			break
		}
		if e.Speed <= 0 {
			// Paused
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		if err := e.step(ctx); err != nil {
			slog.Error("tick failed", "tick", e.Tick+1, "error", err)
			return err
		}
		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			break
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			select {
			case <-time.After(target - elapsed):
			case <-ctx.Done():
			}
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
	return nil
}

// Stop halts the loop after the current tick. Safe to call from any
// goroutine.
func (e *Engine) Stop() {
	e.running.Store(false)
}

func (e *Engine) step(ctx context.Context) error {
	if e.OnTick != nil {
		if err := e.OnTick(ctx, e.Tick+1); err != nil {
			return err
		}
	}
	e.Tick++
	return nil
}
