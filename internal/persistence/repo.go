package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/engine"
	"github.com/talgya/critter-world/internal/world"
)

// txRepo is the engine.Repository for a single tick's transaction.
type txRepo struct {
	tx *sqlx.Tx
}

var _ engine.Repository = (*txRepo)(nil)

func (r *txRepo) RangeOverrides(ctx context.Context, minX, maxX, minY, maxY int) ([]world.Override, error) {
	var out []world.Override
	err := r.tx.SelectContext(ctx, &out,
		`SELECT x, y, food_available FROM tile_state
		 WHERE x BETWEEN ? AND ? AND y BETWEEN ? AND ?`,
		minX, maxX, minY, maxY,
	)
	return out, err
}

func (r *txRepo) Override(ctx context.Context, x, y int) (world.Override, bool, error) {
	var o world.Override
	err := r.tx.GetContext(ctx, &o,
		"SELECT x, y, food_available FROM tile_state WHERE x = ? AND y = ?", x, y)
	if errors.Is(err, sql.ErrNoRows) {
		return world.Override{}, false, nil
	}
	if err != nil {
		return world.Override{}, false, err
	}
	return o, true, nil
}

func (r *txRepo) UpsertOverride(ctx context.Context, x, y int, food float64) error {
	_, err := r.tx.ExecContext(ctx,
		`INSERT INTO tile_state (x, y, food_available) VALUES (?, ?, ?)
		 ON CONFLICT (x, y) DO UPDATE SET food_available = excluded.food_available`,
		x, y, food,
	)
	return err
}

func (r *txRepo) DeleteOverride(ctx context.Context, x, y int) error {
	_, err := r.tx.ExecContext(ctx, "DELETE FROM tile_state WHERE x = ? AND y = ?", x, y)
	return err
}

func (r *txRepo) DepletedOverrides(ctx context.Context, full float64) ([]world.Override, error) {
	var out []world.Override
	err := r.tx.SelectContext(ctx, &out,
		"SELECT x, y, food_available FROM tile_state WHERE food_available < ? ORDER BY x, y", full)
	return out, err
}

func (r *txRepo) LiveCritters(ctx context.Context) ([]*agents.Critter, error) {
	var out []*agents.Critter
	if err := r.tx.SelectContext(ctx, &out, "SELECT * FROM critters ORDER BY id"); err != nil {
		return nil, err
	}
	return out, nil
}

const insertCritter = `INSERT INTO critters
	(diet, player_id, health, energy, hunger, thirst, age,
	 speed, size, metabolism, lifespan, perception, commitment,
	 x, y, vx, vy, breeding_cooldown, goal, last_action,
	 parent_one_id, parent_two_id, born_tick)
	VALUES
	(:diet, :player_id, :health, :energy, :hunger, :thirst, :age,
	 :speed, :size, :metabolism, :lifespan, :perception, :commitment,
	 :x, :y, :vx, :vy, :breeding_cooldown, :goal, :last_action,
	 :parent_one_id, :parent_two_id, :born_tick)`

func (r *txRepo) AddCritter(ctx context.Context, c *agents.Critter) error {
	res, err := r.tx.NamedExecContext(ctx, insertCritter, c)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("critter id: %w", err)
	}
	c.ID = agents.CritterID(id)
	return nil
}

const updateCritter = `UPDATE critters SET
	health = :health, energy = :energy, hunger = :hunger, thirst = :thirst,
	age = :age, x = :x, y = :y, vx = :vx, vy = :vy,
	breeding_cooldown = :breeding_cooldown, goal = :goal, last_action = :last_action
	WHERE id = :id`

func (r *txRepo) SaveCritters(ctx context.Context, cs []*agents.Critter) error {
	if len(cs) == 0 {
		return nil
	}
	stmt, err := r.tx.PrepareNamedContext(ctx, updateCritter)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cs {
		if _, err := stmt.ExecContext(ctx, c); err != nil {
			return fmt.Errorf("update critter %d: %w", c.ID, err)
		}
	}
	return nil
}

func (r *txRepo) DeleteCritter(ctx context.Context, id agents.CritterID) error {
	_, err := r.tx.ExecContext(ctx, "DELETE FROM critters WHERE id = ?", id)
	return err
}

func (r *txRepo) AddDeathRecord(ctx context.Context, d agents.DeathRecord) error {
	_, err := r.tx.NamedExecContext(ctx, `INSERT INTO dead_critters
		(original_id, diet, cause, age, player_id, parent_one_id, parent_two_id, tick, died_at,
		 speed, size, metabolism, lifespan, perception, commitment)
		VALUES
		(:original_id, :diet, :cause, :age, :player_id, :parent_one_id, :parent_two_id, :tick, :died_at,
		 :speed, :size, :metabolism, :lifespan, :perception, :commitment)`, d)
	return err
}

func (r *txRepo) LastStatisticsTick(ctx context.Context) (uint64, error) {
	var tick uint64
	err := r.tx.GetContext(ctx, &tick, "SELECT COALESCE(MAX(tick), 0) FROM simulation_stats")
	return tick, err
}

func (r *txRepo) AddStatisticsSnapshot(ctx context.Context, s *engine.Statistics) error {
	_, err := r.tx.NamedExecContext(ctx, `INSERT INTO simulation_stats
		(tick, run_id, season, population, births, deaths,
		 avg_health, avg_energy, avg_hunger, avg_thirst,
		 goal_distribution, herbivore_stats, carnivore_stats, recorded_at)
		VALUES
		(:tick, :run_id, :season, :population, :births, :deaths,
		 :avg_health, :avg_energy, :avg_hunger, :avg_thirst,
		 :goal_distribution, :herbivore_stats, :carnivore_stats, :recorded_at)`, s)
	return err
}
