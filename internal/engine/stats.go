package engine

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/talgya/critter-world/internal/agents"
)

// Statistics is the snapshot recorded at the end of every tick.
type Statistics struct {
	RunID  string `db:"run_id" json:"run_id"`
	Tick   uint64 `db:"tick" json:"tick"`
	Season string `db:"season" json:"season"`

	Population int `db:"population" json:"population"`
	Births     int `db:"births" json:"births"`
	Deaths     int `db:"deaths" json:"deaths"`

	AvgHealth float64 `db:"avg_health" json:"avg_health"`
	AvgEnergy float64 `db:"avg_energy" json:"avg_energy"`
	AvgHunger float64 `db:"avg_hunger" json:"avg_hunger"`
	AvgThirst float64 `db:"avg_thirst" json:"avg_thirst"`

	Goals      Counts    `db:"goal_distribution" json:"goal_distribution"`
	Herbivores DietStats `db:"herbivore_stats" json:"herbivore_stats"`
	Carnivores DietStats `db:"carnivore_stats" json:"carnivore_stats"`

	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// Histogram counts values by integer bin.
type Histogram map[int]int

// Counts tallies labels.
type Counts map[string]int

// HealthBins buckets critters by health relative to their maximum.
type HealthBins struct {
	Healthy  int `json:"healthy"`  // Above 70%
	Hurt     int `json:"hurt"`     // Above 30%
	Critical int `json:"critical"` // The rest
}

// Quartiles of a trait across a population.
type Quartiles struct {
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
}

// DietStats describes the living population of one diet.
type DietStats struct {
	Count  int                  `json:"count"`
	Age    Histogram            `json:"age"`
	Hunger Histogram            `json:"hunger"`
	Thirst Histogram            `json:"thirst"`
	Energy Histogram            `json:"energy"`
	Health HealthBins           `json:"health"`
	Goals  Counts               `json:"goals"`
	Traits map[string]Quartiles `json:"traits,omitempty"`
}

// Value stores the counts as JSON.
func (c Counts) Value() (driver.Value, error) { return jsonValue(c) }

// Value stores the diet summary as JSON.
func (d DietStats) Value() (driver.Value, error) { return jsonValue(d) }

// Scan reads a JSON column.
func (c *Counts) Scan(src any) error { return scanJSON(src, c) }

// Scan reads a JSON column.
func (d *DietStats) Scan(src any) error { return scanJSON(src, d) }

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(v), dst)
	case []byte:
		return json.Unmarshal(v, dst)
	default:
		return fmt.Errorf("scan json: unsupported type %T", src)
	}
}

// Traits summarized per diet.
var traitNames = []string{"speed", "size", "metabolism", "commitment", "perception"}

func traitValue(c *agents.Critter, name string) float64 {
	switch name {
	case "speed":
		return c.Speed
	case "size":
		return c.Size
	case "metabolism":
		return c.Metabolism
	case "commitment":
		return c.Commitment
	case "perception":
		return float64(c.Perception)
	}
	return math.NaN()
}

// collectStats summarizes the population alive at the end of the tick,
// newborns included.
func collectStats(t *tickRun) *Statistics {
	pop := append(t.roster.Live(), t.roster.Born()...)
	pop = append(pop, t.migrants...)
	return Summarize(pop, t.sim.Needs, Statistics{
		RunID:      t.sim.RunID,
		Tick:       t.tick,
		Season:     t.season.String(),
		Births:     len(t.roster.Born()),
		Deaths:     len(t.deaths),
		RecordedAt: t.now,
	})
}

// Summarize fills the population fields of base from the given critters.
func Summarize(pop []*agents.Critter, n agents.Params, base Statistics) *Statistics {
	s := base
	s.Population = len(pop)
	s.Goals = Counts{}
	s.Herbivores = newDietStats()
	s.Carnivores = newDietStats()

	var health, energy, hunger, thirst []float64
	byDiet := map[agents.Diet][]*agents.Critter{}
	for _, c := range pop {
		health = append(health, c.Health)
		energy = append(energy, c.Energy)
		hunger = append(hunger, c.Hunger)
		thirst = append(thirst, c.Thirst)
		s.Goals[c.Goal.String()]++

		d := &s.Herbivores
		if c.Diet == agents.DietCarnivore {
			d = &s.Carnivores
		}
		d.add(c, n)
		byDiet[c.Diet] = append(byDiet[c.Diet], c)
	}
	if len(pop) > 0 {
		s.AvgHealth = stat.Mean(health, nil)
		s.AvgEnergy = stat.Mean(energy, nil)
		s.AvgHunger = stat.Mean(hunger, nil)
		s.AvgThirst = stat.Mean(thirst, nil)
	}
	s.Herbivores.Traits = traitQuartiles(byDiet[agents.DietHerbivore])
	s.Carnivores.Traits = traitQuartiles(byDiet[agents.DietCarnivore])
	return &s
}

func newDietStats() DietStats {
	return DietStats{
		Age:    Histogram{},
		Hunger: Histogram{},
		Thirst: Histogram{},
		Energy: Histogram{},
		Goals:  Counts{},
	}
}

func (d *DietStats) add(c *agents.Critter, n agents.Params) {
	d.Count++
	d.Age[c.Age]++
	d.Hunger[int(math.Floor(c.Hunger))]++
	d.Thirst[int(math.Floor(c.Thirst))]++
	d.Energy[int(math.Floor(c.Energy))]++
	d.Goals[c.Goal.String()]++

	switch frac := c.Health / n.MaxHealth(c); {
	case frac > 0.7:
		d.Health.Healthy++
	case frac > 0.3:
		d.Health.Hurt++
	default:
		d.Health.Critical++
	}
}

func traitQuartiles(cs []*agents.Critter) map[string]Quartiles {
	if len(cs) == 0 {
		return nil
	}
	out := make(map[string]Quartiles, len(traitNames))
	xs := make([]float64, len(cs))
	for _, name := range traitNames {
		for i, c := range cs {
			xs[i] = traitValue(c, name)
		}
		sort.Float64s(xs)
		out[name] = Quartiles{
			Q1:     stat.Quantile(0.25, stat.LinInterp, xs, nil),
			Median: stat.Quantile(0.5, stat.LinInterp, xs, nil),
			Q3:     stat.Quantile(0.75, stat.LinInterp, xs, nil),
		}
	}
	return out
}
