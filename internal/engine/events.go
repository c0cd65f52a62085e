package engine

import (
	"fmt"
	"time"

	"github.com/talgya/critter-world/internal/agents"
)

// Event categories.
const (
	CategoryDeath     = "death"
	CategoryBirth     = "birth"
	CategoryEscape    = "escape"
	CategorySurvival  = "survival"
	CategorySeason    = "season"
	CategoryMigration = "migration"
)

// Event is a notable occurrence in the world.
type Event struct {
	RunID       string           `json:"run_id"`
	Tick        uint64           `json:"tick"`
	Time        time.Time        `json:"time"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Critter     agents.CritterID `json:"critter,omitempty"`
	Other       agents.CritterID `json:"other,omitempty"`
}

// EventSink receives the events of every committed tick.
type EventSink interface {
	WriteEvents(events []Event) error
}

func (t *tickRun) event(category string, c, other agents.CritterID, format string, args ...any) {
	t.events = append(t.events, Event{
		RunID:       t.sim.RunID,
		Tick:        t.tick,
		Time:        t.now,
		Category:    category,
		Description: fmt.Sprintf(format, args...),
		Critter:     c,
		Other:       other,
	})
}
