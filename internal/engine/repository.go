package engine

import (
	"context"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/world"
)

// Repository is the persistent state a tick reads and writes. Every call
// made during one tick goes through the same transaction.
type Repository interface {
	world.OverrideStore

	// Override returns the persisted food of a single tile, if any.
	Override(ctx context.Context, x, y int) (world.Override, bool, error)
	// DepletedOverrides returns every override below full food.
	DepletedOverrides(ctx context.Context, full float64) ([]world.Override, error)

	LiveCritters(ctx context.Context) ([]*agents.Critter, error)
	// AddCritter inserts a critter and assigns its ID.
	AddCritter(ctx context.Context, c *agents.Critter) error
	SaveCritters(ctx context.Context, cs []*agents.Critter) error
	DeleteCritter(ctx context.Context, id agents.CritterID) error
	AddDeathRecord(ctx context.Context, r agents.DeathRecord) error

	// LastStatisticsTick returns the tick of the newest snapshot, or 0.
	LastStatisticsTick(ctx context.Context) (uint64, error)
	AddStatisticsSnapshot(ctx context.Context, s *Statistics) error
}

// Store opens tick-scoped repositories.
type Store interface {
	// WithinTick runs fn in one transaction. It commits when fn returns nil
	// and rolls back otherwise.
	WithinTick(ctx context.Context, fn func(Repository) error) error
}
