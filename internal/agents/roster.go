package agents

import (
	"fmt"

	"github.com/talgya/critter-world/internal/world"
)

// Roster is the arena of critters for a single tick. It is built from the
// live snapshot at the start of the tick; critters that die are flagged as
// ghosts and stay in place so ids and iteration order remain stable.
type Roster struct {
	critters []*Critter
	byID     map[CritterID]*Critter
	occupied map[world.Point]int // Live critters per tile
	born     []*Critter
}

// NewRoster indexes a snapshot of live critters.
func NewRoster(critters []*Critter) *Roster {
	r := &Roster{
		critters: critters,
		byID:     make(map[CritterID]*Critter, len(critters)),
		occupied: make(map[world.Point]int, len(critters)),
	}
	for _, c := range critters {
		r.byID[c.ID] = c
		if !c.Ghost {
			r.occupied[c.Pos()]++
		}
	}
	return r
}

// Len returns the number of critters in the snapshot, ghosts included.
func (r *Roster) Len() int {
	return len(r.critters)
}

// All returns the snapshot in iteration order, ghosts included.
func (r *Roster) All() []*Critter {
	return r.critters
}

// Live returns the critters that are still alive.
func (r *Roster) Live() []*Critter {
	out := make([]*Critter, 0, len(r.critters))
	for _, c := range r.critters {
		if !c.Ghost {
			out = append(out, c)
		}
	}
	return out
}

// Get returns the critter with the given id, or nil.
func (r *Roster) Get(id CritterID) *Critter {
	return r.byID[id]
}

// Resolve returns a live critter by id. Unknown ids and ghosts are errors.
func (r *Roster) Resolve(id CritterID) (*Critter, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("critter %d: %w", id, ErrGhostReference)
	}
	if c.Ghost {
		return nil, fmt.Errorf("critter %d died earlier this tick: %w", id, ErrGhostReference)
	}
	return c, nil
}

// Visible returns the live critters other than self within radius
// (Chebyshev) that satisfy keep, in roster order. keep may be nil.
func (r *Roster) Visible(self *Critter, radius int, keep func(*Critter) bool) []*Critter {
	var out []*Critter
	pos := self.Pos()
	for _, o := range r.critters {
		if o == self || o.Ghost {
			continue
		}
		if world.Chebyshev(pos, o.Pos()) > radius {
			continue
		}
		if keep != nil && !keep(o) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Occupied reports whether a live critter stands on p.
func (r *Roster) Occupied(p world.Point) bool {
	return r.occupied[p] > 0
}

// Move relocates a live critter and keeps the occupancy index current.
func (r *Roster) Move(c *Critter, to world.Point) {
	from := c.Pos()
	if !c.Ghost {
		r.vacate(from)
		r.occupied[to]++
	}
	c.X, c.Y = to.X, to.Y
}

// MarkDead flags a critter as a ghost. Marking the same critter twice is
// an error: it means two causes of death were applied in one tick.
func (r *Roster) MarkDead(id CritterID) error {
	c, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("mark dead %d: unknown critter", id)
	}
	if c.Ghost {
		return fmt.Errorf("mark dead %d: %w", id, ErrAlreadyDead)
	}
	c.Ghost = true
	r.vacate(c.Pos())
	return nil
}

// AddBorn queues a newborn. Newborns are not part of this tick's snapshot
// and do not act or occupy tiles until the next tick.
func (r *Roster) AddBorn(c *Critter) {
	r.born = append(r.born, c)
}

// Born returns the newborns queued this tick.
func (r *Roster) Born() []*Critter {
	return r.born
}

func (r *Roster) vacate(p world.Point) {
	if n := r.occupied[p]; n <= 1 {
		delete(r.occupied, p)
	} else {
		r.occupied[p] = n - 1
	}
}
