// Procedural terrain using layered simplex noise.
// Elevation and terrain class are pure functions of (x, y, seed).
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// TerrainSeedOffset separates the grass/dirt noise field from the elevation field.
const TerrainSeedOffset = 1000

// GenConfig holds world generation parameters.
type GenConfig struct {
	Seed int64 `yaml:"seed"`

	HeightScale       float64 `yaml:"height_scale"`       // Larger = more zoomed in
	HeightOctaves     int     `yaml:"height_octaves"`     // Larger = more rugged
	HeightPersistence float64 `yaml:"height_persistence"` // Amplitude falloff per octave
	HeightLacunarity  float64 `yaml:"height_lacunarity"`  // Frequency growth per octave
	HeightMultiplier  float64 `yaml:"height_multiplier"`

	TerrainScale       float64 `yaml:"terrain_scale"`
	TerrainOctaves     int     `yaml:"terrain_octaves"`
	TerrainPersistence float64 `yaml:"terrain_persistence"`
	TerrainLacunarity  float64 `yaml:"terrain_lacunarity"`

	WaterLevel    float64 `yaml:"water_level"`    // Elevation below this is water
	MountainLevel float64 `yaml:"mountain_level"` // Elevation at or above this is mountain
	GrassLevel    float64 `yaml:"grass_level"`    // Terrain noise above this is grass

	FullFood  float64 `yaml:"full_food"`  // Food on an untouched grass tile
	ChunkSize int     `yaml:"chunk_size"` // Side length of an override cache chunk
}

// DefaultGenConfig returns the standard world configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:               42,
		HeightScale:        200.0,
		HeightOctaves:      6,
		HeightPersistence:  0.5,
		HeightLacunarity:   2.0,
		HeightMultiplier:   1.5,
		TerrainScale:       100.0,
		TerrainOctaves:     3,
		TerrainPersistence: 0.5,
		TerrainLacunarity:  2.0,
		WaterLevel:         -0.3,
		MountainLevel:      0.6,
		GrassLevel:         0.0,
		FullFood:           10.0,
		ChunkSize:          32,
	}
}

// Generator computes the procedural baseline of any tile.
type Generator struct {
	cfg          GenConfig
	heightNoise  opensimplex.Noise
	terrainNoise opensimplex.Noise
}

// NewGenerator creates a generator for the configured seed.
func NewGenerator(cfg GenConfig) *Generator {
	return &Generator{
		cfg:          cfg,
		heightNoise:  opensimplex.New(cfg.Seed),
		terrainNoise: opensimplex.New(cfg.Seed + TerrainSeedOffset),
	}
}

// Config returns the generation parameters.
func (g *Generator) Config() GenConfig {
	return g.cfg
}

// Tile returns the procedural tile at (x, y), ignoring any persisted state.
func (g *Generator) Tile(x, y int) Tile {
	c := g.cfg
	elev := octaveNoise(g.heightNoise,
		float64(x)/c.HeightScale, float64(y)/c.HeightScale,
		c.HeightOctaves, c.HeightPersistence, c.HeightLacunarity) * c.HeightMultiplier

	t := Tile{X: x, Y: y, Elevation: elev}
	switch {
	case elev < c.WaterLevel:
		t.Terrain = TerrainWater
	case elev >= c.MountainLevel:
		t.Terrain = TerrainMountain
	default:
		// Land: a second, independently seeded field decides fertile patches.
		v := octaveNoise(g.terrainNoise,
			float64(x)/c.TerrainScale, float64(y)/c.TerrainScale,
			c.TerrainOctaves, c.TerrainPersistence, c.TerrainLacunarity)
		t.Terrain = TerrainDirt
		if v > c.GrassLevel {
			t.Terrain = TerrainGrass
		}
	}

	if t.Terrain == TerrainGrass {
		t.Food = c.FullFood
	}
	return t
}

// octaveNoise generates fractal noise by layering multiple frequencies.
// The result is normalized back into the single-octave range.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, persistence, lacunarity float64) float64 {
	total := 0.0
	amplitude := 1.0
	frequency := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}

	if maxVal == 0 {
		return 0
	}
	return total / maxVal
}
