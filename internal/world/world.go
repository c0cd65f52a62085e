package world

import (
	"context"
	"fmt"
	"log/slog"
)

// Override is a persisted food level for one tile. It is the only tile
// state that is ever stored.
type Override struct {
	X    int     `db:"x" json:"x"`
	Y    int     `db:"y" json:"y"`
	Food float64 `db:"food_available" json:"food_available"`
}

// OverrideStore is the persistence boundary for tile overrides.
type OverrideStore interface {
	RangeOverrides(ctx context.Context, minX, maxX, minY, maxY int) ([]Override, error)
	UpsertOverride(ctx context.Context, x, y int, food float64) error
	DeleteOverride(ctx context.Context, x, y int) error
}

type chunkKey struct {
	cx, cy int
}

// World answers tile queries by overlaying persisted overrides on the
// procedural baseline. Overrides are cached per chunk so a region costs one
// range query instead of one query per tile.
type World struct {
	gen   *Generator
	store OverrideStore
	ctx   context.Context

	chunks map[chunkKey]map[Point]float64

	// First store error since the last Attach; TileAt cannot return one.
	err error

	ChunkLoads int // Range queries issued, for diagnostics
}

// New creates a world over the given store. store may be nil for a purely
// procedural world.
func New(cfg GenConfig, store OverrideStore) *World {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultGenConfig().ChunkSize
	}
	return &World{
		gen:    NewGenerator(cfg),
		store:  store,
		ctx:    context.Background(),
		chunks: make(map[chunkKey]map[Point]float64),
	}
}

// Config returns the generation parameters.
func (w *World) Config() GenConfig {
	return w.gen.cfg
}

// FullFood is the food level of an untouched grass tile.
func (w *World) FullFood() float64 {
	return w.gen.cfg.FullFood
}

// Attach rebinds the override store and context, e.g. to a per-tick
// transaction. Cached chunks are kept and the sticky error is cleared.
func (w *World) Attach(ctx context.Context, store OverrideStore) {
	w.ctx = ctx
	w.store = store
	w.err = nil
}

// Err returns the first store error encountered since the last Attach.
func (w *World) Err() error {
	return w.err
}

// DropCache forgets every loaded chunk. Called after a tick is abandoned,
// since cached entries may reflect writes that were rolled back.
func (w *World) DropCache() {
	w.chunks = make(map[chunkKey]map[Point]float64)
}

// LoadedChunks returns the number of resident chunks.
func (w *World) LoadedChunks() int {
	return len(w.chunks)
}

// Procedural returns the baseline tile, ignoring persisted state.
func (w *World) Procedural(x, y int) Tile {
	return w.gen.Tile(x, y)
}

// TileAt returns the tile at (x, y) with any persisted food override applied.
func (w *World) TileAt(x, y int) Tile {
	t := w.gen.Tile(x, y)
	chunk := w.chunk(x, y)
	if food, ok := chunk[Point{X: x, Y: y}]; ok {
		t.Food = food
	}
	return t
}

// UpdateFood persists a new food level for a tile and mirrors it into the
// cache when the tile's chunk is resident.
func (w *World) UpdateFood(x, y int, food float64) error {
	if w.store != nil {
		if err := w.store.UpsertOverride(w.ctx, x, y, food); err != nil {
			return fmt.Errorf("update food at (%d,%d): %w", x, y, err)
		}
	}
	if chunk, ok := w.chunks[w.keyFor(x, y)]; ok {
		chunk[Point{X: x, Y: y}] = food
	}
	return nil
}

// ClearFood deletes a tile's override, reverting it to the procedural default.
func (w *World) ClearFood(x, y int) error {
	if w.store != nil {
		if err := w.store.DeleteOverride(w.ctx, x, y); err != nil {
			return fmt.Errorf("clear food at (%d,%d): %w", x, y, err)
		}
	}
	if chunk, ok := w.chunks[w.keyFor(x, y)]; ok {
		delete(chunk, Point{X: x, Y: y})
	}
	return nil
}

func (w *World) keyFor(x, y int) chunkKey {
	size := w.gen.cfg.ChunkSize
	return chunkKey{cx: floorDiv(x, size), cy: floorDiv(y, size)}
}

// chunk returns the cached overrides of the chunk containing (x, y),
// loading it with a single range query on first touch.
func (w *World) chunk(x, y int) map[Point]float64 {
	key := w.keyFor(x, y)
	if c, ok := w.chunks[key]; ok {
		return c
	}

	data := make(map[Point]float64)
	if w.store != nil {
		size := w.gen.cfg.ChunkSize
		minX := key.cx * size
		minY := key.cy * size
		overrides, err := w.store.RangeOverrides(w.ctx, minX, minX+size-1, minY, minY+size-1)
		w.ChunkLoads++
		if err != nil {
			if w.err == nil {
				w.err = fmt.Errorf("load chunk (%d,%d): %w", key.cx, key.cy, err)
			}
			// Do not cache a failed load.
			return data
		}
		for _, o := range overrides {
			data[Point{X: o.X, Y: o.Y}] = o.Food
		}
		slog.Debug("loaded chunk", "cx", key.cx, "cy", key.cy, "overrides", len(overrides))
	}
	w.chunks[key] = data
	return data
}

// TerrainCounts returns a summary of terrain distribution over a square
// region centered on the origin.
func (w *World) TerrainCounts(radius int) map[Terrain]int {
	counts := make(map[Terrain]int)
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			counts[w.gen.Tile(x, y).Terrain]++
		}
	}
	return counts
}
