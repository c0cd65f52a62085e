// Package pathfind provides energy-weighted A* search over world tiles.
package pathfind

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/talgya/critter-world/internal/world"
)

// ErrUnwalkable is returned when a search starts or ends on water.
var ErrUnwalkable = errors.New("unwalkable terrain")

// DefaultMaxExpansions bounds a search on the unbounded grid. Without it a
// target on an island would flood the whole continent.
const DefaultMaxExpansions = 2048

// Planner runs A* searches. The zero value is not usable; see NewPlanner.
type Planner struct {
	Cost          world.CostModel
	MaxExpansions int
}

// NewPlanner creates a planner with the given step cost model.
func NewPlanner(cost world.CostModel) *Planner {
	return &Planner{Cost: cost, MaxExpansions: DefaultMaxExpansions}
}

// node is an entry in the open set.
type node struct {
	pos    world.Point
	tile   world.Tile
	parent *node
	g, h   float64
	index  int // heap index, -1 once popped
}

func (n *node) f() float64 { return n.g + n.h }

// openSet implements heap.Interface ordered by total estimated cost.
type openSet []*node

func (s openSet) Len() int           { return len(s) }
func (s openSet) Less(i, j int) bool { return s[i].f() < s[j].f() }
func (s openSet) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
	s[i].index = i
	s[j].index = j
}

func (s *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*s)
	*s = append(*s, n)
}

func (s *openSet) Pop() any {
	old := *s
	n := len(old)
	nd := old[n-1]
	old[n-1] = nil
	nd.index = -1
	*s = old[:n-1]
	return nd
}

// FindPath returns the least-energy route from start to end, endpoints
// included. It returns an error wrapping ErrUnwalkable when either endpoint
// is water, and a nil path when no route exists within the search budget.
//
// The heuristic adds the energy of a direct "teleport" step to a scaled
// squared distance. It is not admissible, so returned routes are valid and
// water-free but not guaranteed optimal.
func (p *Planner) FindPath(tiles world.TileSource, start, end world.Point) ([]world.Point, error) {
	startTile := tiles.TileAt(start.X, start.Y)
	if !startTile.Walkable() {
		return nil, fmt.Errorf("pathfinding from %v: %w", start, ErrUnwalkable)
	}
	endTile := tiles.TileAt(end.X, end.Y)
	if !endTile.Walkable() {
		return nil, fmt.Errorf("pathfinding to %v: %w", end, ErrUnwalkable)
	}

	limit := p.MaxExpansions
	if limit <= 0 {
		limit = DefaultMaxExpansions
	}

	open := &openSet{}
	openIndex := make(map[world.Point]*node)
	closed := make(map[world.Point]struct{})

	first := &node{pos: start, tile: startTile}
	first.h = p.heuristic(startTile, endTile, start, end)
	heap.Push(open, first)
	openIndex[start] = first

	for expanded := 0; open.Len() > 0; expanded++ {
		if expanded >= limit {
			return nil, nil
		}

		current := heap.Pop(open).(*node)
		delete(openIndex, current.pos)
		closed[current.pos] = struct{}{}

		if current.pos == end {
			return reconstruct(current), nil
		}

		for _, next := range current.pos.Neighbors() {
			if _, done := closed[next]; done {
				continue
			}
			tile := tiles.TileAt(next.X, next.Y)
			if !tile.Walkable() {
				continue
			}

			g := current.g + p.Cost.StepCost(current.tile, tile)

			if existing, ok := openIndex[next]; ok {
				if g < existing.g {
					// Cheaper route to an open node: replace it in place.
					existing.g = g
					existing.parent = current
					heap.Fix(open, existing.index)
				}
				continue
			}

			child := &node{pos: next, tile: tile, parent: current, g: g}
			child.h = p.heuristic(tile, endTile, next, end)
			heap.Push(open, child)
			openIndex[next] = child
		}
	}

	return nil, nil
}

func (p *Planner) heuristic(from, goal world.Tile, a, b world.Point) float64 {
	distance := float64(world.DistSq(a, b))
	teleport := p.Cost.StepCost(from, goal)
	return distance*p.Cost.Base + (teleport - p.Cost.Base)
}

func reconstruct(n *node) []world.Point {
	var path []world.Point
	for cur := n; cur != nil; cur = cur.parent {
		path = append(path, cur.pos)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
