package engine

import (
	"context"
	"sort"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/world"
)

// memRepo is an in-memory Store and Repository. WithinTick snapshots the
// state and restores it when fn fails.
type memRepo struct {
	food     map[world.Point]float64
	critters map[agents.CritterID]agents.Critter
	deaths   []agents.DeathRecord
	stats    []*Statistics
	nextID   agents.CritterID
	ticks    int
}

func newMemRepo() *memRepo {
	return &memRepo{
		food:     map[world.Point]float64{},
		critters: map[agents.CritterID]agents.Critter{},
		nextID:   1,
	}
}

type memSnapshot struct {
	food     map[world.Point]float64
	critters map[agents.CritterID]agents.Critter
	deaths   int
	stats    int
	nextID   agents.CritterID
}

func (m *memRepo) WithinTick(_ context.Context, fn func(Repository) error) error {
	snap := memSnapshot{
		food:     make(map[world.Point]float64, len(m.food)),
		critters: make(map[agents.CritterID]agents.Critter, len(m.critters)),
		deaths:   len(m.deaths),
		stats:    len(m.stats),
		nextID:   m.nextID,
	}
	for k, v := range m.food {
		snap.food[k] = v
	}
	for k, v := range m.critters {
		snap.critters[k] = v
	}
	m.ticks++
	if err := fn(m); err != nil {
		m.food = snap.food
		m.critters = snap.critters
		m.deaths = m.deaths[:snap.deaths]
		m.stats = m.stats[:snap.stats]
		m.nextID = snap.nextID
		return err
	}
	return nil
}

func (m *memRepo) RangeOverrides(_ context.Context, minX, maxX, minY, maxY int) ([]world.Override, error) {
	var out []world.Override
	for p, f := range m.food {
		if p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY {
			out = append(out, world.Override{X: p.X, Y: p.Y, Food: f})
		}
	}
	return out, nil
}

func (m *memRepo) UpsertOverride(_ context.Context, x, y int, food float64) error {
	m.food[world.Pt(x, y)] = food
	return nil
}

func (m *memRepo) DeleteOverride(_ context.Context, x, y int) error {
	delete(m.food, world.Pt(x, y))
	return nil
}

func (m *memRepo) Override(_ context.Context, x, y int) (world.Override, bool, error) {
	f, ok := m.food[world.Pt(x, y)]
	return world.Override{X: x, Y: y, Food: f}, ok, nil
}

func (m *memRepo) DepletedOverrides(_ context.Context, full float64) ([]world.Override, error) {
	var out []world.Override
	for p, f := range m.food {
		if f < full {
			out = append(out, world.Override{X: p.X, Y: p.Y, Food: f})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out, nil
}

func (m *memRepo) LiveCritters(context.Context) ([]*agents.Critter, error) {
	out := make([]*agents.Critter, 0, len(m.critters))
	for _, c := range m.critters {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) AddCritter(_ context.Context, c *agents.Critter) error {
	c.ID = m.nextID
	m.nextID++
	m.critters[c.ID] = *c
	return nil
}

func (m *memRepo) SaveCritters(_ context.Context, cs []*agents.Critter) error {
	for _, c := range cs {
		m.critters[c.ID] = *c
	}
	return nil
}

func (m *memRepo) DeleteCritter(_ context.Context, id agents.CritterID) error {
	delete(m.critters, id)
	return nil
}

func (m *memRepo) AddDeathRecord(_ context.Context, r agents.DeathRecord) error {
	m.deaths = append(m.deaths, r)
	return nil
}

func (m *memRepo) LastStatisticsTick(context.Context) (uint64, error) {
	if len(m.stats) == 0 {
		return 0, nil
	}
	return m.stats[len(m.stats)-1].Tick, nil
}

func (m *memRepo) AddStatisticsSnapshot(_ context.Context, s *Statistics) error {
	m.stats = append(m.stats, s)
	return nil
}

// put stores a critter directly, bypassing id assignment.
func (m *memRepo) put(cs ...*agents.Critter) {
	for _, c := range cs {
		m.critters[c.ID] = *c
		if c.ID >= m.nextID {
			m.nextID = c.ID + 1
		}
	}
}

func (m *memRepo) get(id agents.CritterID) (agents.Critter, bool) {
	c, ok := m.critters[id]
	return c, ok
}
