// Package world provides the square tile grid, procedural terrain, and the
// chunked cache of persisted food overrides.
// The grid is unbounded: every integer (x, y) is a valid tile.
package world

import "fmt"

// Point is a tile coordinate on the grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns the point offset by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Terrain types for grid tiles.
type Terrain uint8

const (
	TerrainWater    Terrain = iota // Unwalkable; critters drink from adjacent tiles
	TerrainGrass                   // Walkable, carries food
	TerrainDirt                    // Walkable, barren
	TerrainMountain                // Walkable, high elevation
)

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainWater:
		return "Water"
	case TerrainGrass:
		return "Grass"
	case TerrainDirt:
		return "Dirt"
	case TerrainMountain:
		return "Mountain"
	default:
		return "Unknown"
	}
}

// Tile is the full state of a single grid square.
type Tile struct {
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Elevation float64 `json:"elevation"`
	Terrain   Terrain `json:"terrain"`
	Food      float64 `json:"food"` // Only meaningful on grass
}

// Point returns the tile's coordinate.
func (t Tile) Point() Point {
	return Point{X: t.X, Y: t.Y}
}

// Walkable reports whether critters may stand on the tile.
func (t Tile) Walkable() bool {
	return t.Terrain != TerrainWater
}

// TileSource is anything that can answer tile queries. The World implements
// it; tests substitute hand-built grids.
type TileSource interface {
	TileAt(x, y int) Tile
}

// NeighborDirections defines the eight neighbor offsets.
var NeighborDirections = [8]Point{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: -1, Y: -1},
	{X: -1, Y: 1},
	{X: 1, Y: -1},
	{X: 1, Y: 1},
}

// Neighbors returns the eight adjacent coordinates.
func (p Point) Neighbors() [8]Point {
	var result [8]Point
	for i, dir := range NeighborDirections {
		result[i] = p.Add(dir)
	}
	return result
}

// Chebyshev returns the king-move distance between two points.
func Chebyshev(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Manhattan returns the taxicab distance between two points.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// DistSq returns the squared Euclidean distance between two points.
func DistSq(a, b Point) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Adjacent reports whether b is one of a's eight neighbors (or a itself).
func Adjacent(a, b Point) bool {
	return Chebyshev(a, b) <= 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// floorDiv divides rounding toward negative infinity, so that chunk -1
// covers coordinates -32..-1.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
