// Package telemetry exports per-tick statistics as CSV.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/talgya/critter-world/internal/engine"
)

// StatsRow is the flat CSV form of an engine.Statistics snapshot.
type StatsRow struct {
	RunID      string `csv:"run_id"`
	Tick       uint64 `csv:"tick"`
	Season     string `csv:"season"`
	Population int    `csv:"population"`
	Births     int    `csv:"births"`
	Deaths     int    `csv:"deaths"`

	AvgHealth float64 `csv:"avg_health"`
	AvgEnergy float64 `csv:"avg_energy"`
	AvgHunger float64 `csv:"avg_hunger"`
	AvgThirst float64 `csv:"avg_thirst"`

	Herbivores      int     `csv:"herbivores"`
	HerbHealthy     int     `csv:"herb_healthy"`
	HerbHurt        int     `csv:"herb_hurt"`
	HerbCritical    int     `csv:"herb_critical"`
	HerbSpeedMedian float64 `csv:"herb_speed_median"`
	HerbSizeMedian  float64 `csv:"herb_size_median"`

	Carnivores      int     `csv:"carnivores"`
	CarnHealthy     int     `csv:"carn_healthy"`
	CarnHurt        int     `csv:"carn_hurt"`
	CarnCritical    int     `csv:"carn_critical"`
	CarnSpeedMedian float64 `csv:"carn_speed_median"`
	CarnSizeMedian  float64 `csv:"carn_size_median"`

	GoalSurviveDanger int `csv:"goal_survive_danger"`
	GoalRecoverEnergy int `csv:"goal_recover_energy"`
	GoalQuenchThirst  int `csv:"goal_quench_thirst"`
	GoalSateHunger    int `csv:"goal_sate_hunger"`
	GoalBreed         int `csv:"goal_breed"`
	GoalSeekMate      int `csv:"goal_seek_mate"`
	GoalIdle          int `csv:"goal_idle"`
}

// ToCSV flattens a statistics snapshot.
func ToCSV(s *engine.Statistics) StatsRow {
	h, c := s.Herbivores, s.Carnivores
	g := s.Goals
	return StatsRow{
		RunID:      s.RunID,
		Tick:       s.Tick,
		Season:     s.Season,
		Population: s.Population,
		Births:     s.Births,
		Deaths:     s.Deaths,

		AvgHealth: s.AvgHealth,
		AvgEnergy: s.AvgEnergy,
		AvgHunger: s.AvgHunger,
		AvgThirst: s.AvgThirst,

		Herbivores:      h.Count,
		HerbHealthy:     h.Health.Healthy,
		HerbHurt:        h.Health.Hurt,
		HerbCritical:    h.Health.Critical,
		HerbSpeedMedian: h.Traits["speed"].Median,
		HerbSizeMedian:  h.Traits["size"].Median,

		Carnivores:      c.Count,
		CarnHealthy:     c.Health.Healthy,
		CarnHurt:        c.Health.Hurt,
		CarnCritical:    c.Health.Critical,
		CarnSpeedMedian: c.Traits["speed"].Median,
		CarnSizeMedian:  c.Traits["size"].Median,

		GoalSurviveDanger: g["survive_danger"],
		GoalRecoverEnergy: g["recover_energy"],
		GoalQuenchThirst:  g["quench_thirst"],
		GoalSateHunger:    g["sate_hunger"],
		GoalBreed:         g["breed"],
		GoalSeekMate:      g["seek_mate"],
		GoalIdle:          g["idle"],
	}
}

// StatsWriter appends statistics rows to a CSV file. Appending to a file
// that already has rows continues it without a second header.
type StatsWriter struct {
	f             *os.File
	headerWritten bool
}

// NewStatsWriter opens path for appending. Returns nil if path is empty
// (output disabled); a nil writer ignores writes.
func NewStatsWriter(path string) (*StatsWriter, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &StatsWriter{f: f, headerWritten: info.Size() > 0}, nil
}

// Write appends one snapshot.
func (w *StatsWriter) Write(s *engine.Statistics) error {
	if w == nil || s == nil {
		return nil
	}

	records := []StatsRow{ToCSV(s)}

	if !w.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, w.f); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.f); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *StatsWriter) Close() error {
	if w == nil {
		return nil
	}
	return w.f.Close()
}
