// Population floor: when a diet dwindles below the configured minimum,
// migrants of that diet arrive on random walkable tiles of the spawn box.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/critter-world/internal/agents"
)

// migrate tops up every diet whose living count fell below
// Params.MinDietPopulation. Migrants are founders: they have no parents in
// the roster and act from the next tick on.
func (t *tickRun) migrate() error {
	floor := t.sim.Params.MinDietPopulation
	if floor <= 0 {
		return nil
	}

	counts := map[agents.Diet]int{}
	for _, c := range t.roster.Live() {
		counts[c.Diet]++
	}
	for _, c := range t.roster.Born() {
		counts[c.Diet]++
	}

	for _, d := range []agents.Diet{agents.DietHerbivore, agents.DietCarnivore} {
		needed := floor - counts[d]
		if needed <= 0 {
			continue
		}
		for i := 0; i < needed; i++ {
			c, err := t.sim.Spawner.Migrant(t.sim.World, d, t.tick)
			if err != nil {
				return fmt.Errorf("%s migrant: %w", d, err)
			}
			t.migrants = append(t.migrants, c)
		}
		slog.Info("migrants arrive", "tick", t.tick, "diet", d, "count", needed)
		t.event(CategoryMigration, 0, 0, "%d %s migrants arrive", needed, d)
	}
	return nil
}
