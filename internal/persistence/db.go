// Package persistence provides SQLite-based world state storage.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/engine"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; every tick is a single transaction anyway.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tile_state (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		food_available REAL NOT NULL,
		PRIMARY KEY (x, y)
	);

	CREATE TABLE IF NOT EXISTS critters (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		diet INTEGER NOT NULL,
		player_id INTEGER,
		health REAL NOT NULL,
		energy REAL NOT NULL,
		hunger REAL NOT NULL,
		thirst REAL NOT NULL,
		age INTEGER NOT NULL,
		speed REAL NOT NULL,
		size REAL NOT NULL,
		metabolism REAL NOT NULL,
		lifespan INTEGER NOT NULL,
		perception INTEGER NOT NULL,
		commitment REAL NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		vx INTEGER NOT NULL,
		vy INTEGER NOT NULL,
		breeding_cooldown INTEGER NOT NULL,
		goal INTEGER NOT NULL,
		last_action INTEGER NOT NULL,
		parent_one_id INTEGER NOT NULL,
		parent_two_id INTEGER NOT NULL,
		born_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dead_critters (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		original_id INTEGER NOT NULL UNIQUE,
		diet INTEGER NOT NULL,
		cause INTEGER NOT NULL,
		age INTEGER NOT NULL,
		player_id INTEGER,
		parent_one_id INTEGER NOT NULL,
		parent_two_id INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		died_at DATETIME NOT NULL,
		speed REAL NOT NULL,
		size REAL NOT NULL,
		metabolism REAL NOT NULL,
		lifespan INTEGER NOT NULL,
		perception INTEGER NOT NULL,
		commitment REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS simulation_stats (
		tick INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL,
		season TEXT NOT NULL,
		population INTEGER NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		avg_health REAL NOT NULL,
		avg_energy REAL NOT NULL,
		avg_hunger REAL NOT NULL,
		avg_thirst REAL NOT NULL,
		goal_distribution TEXT NOT NULL,
		herbivore_stats TEXT NOT NULL,
		carnivore_stats TEXT NOT NULL,
		recorded_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tile_state_food ON tile_state(food_available);
	CREATE INDEX IF NOT EXISTS idx_dead_critters_tick ON dead_critters(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// WithinTick runs fn inside one transaction, committing when it returns nil.
func (db *DB) WithinTick(ctx context.Context, fn func(engine.Repository) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&txRepo{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. A missing key yields ok == false.
func (db *DB) GetMeta(ctx context.Context, key string) (value string, ok bool, err error) {
	err = db.conn.GetContext(ctx, &value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// LatestStatistics returns the newest statistics snapshot, or nil for a
// fresh database.
func (db *DB) LatestStatistics(ctx context.Context) (*engine.Statistics, error) {
	var s engine.Statistics
	err := db.conn.GetContext(ctx, &s, "SELECT * FROM simulation_stats ORDER BY tick DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest statistics: %w", err)
	}
	return &s, nil
}

// DeathsByCause tallies every recorded death by cause.
func (db *DB) DeathsByCause(ctx context.Context) (map[agents.CauseOfDeath]int, error) {
	var rows []struct {
		Cause agents.CauseOfDeath `db:"cause"`
		N     int                 `db:"n"`
	}
	if err := db.conn.SelectContext(ctx, &rows,
		"SELECT cause, COUNT(*) AS n FROM dead_critters GROUP BY cause"); err != nil {
		return nil, fmt.Errorf("deaths by cause: %w", err)
	}
	out := make(map[agents.CauseOfDeath]int, len(rows))
	for _, r := range rows {
		out[r.Cause] = r.N
	}
	slog.Debug("death tally loaded", "causes", len(out))
	return out, nil
}
