package agents

// Params holds the vital limits and the need thresholds shared by the
// brain, the strategies, and the engine.
type Params struct {
	MaxEnergy     float64 `yaml:"max_energy"`
	MaxHunger     float64 `yaml:"max_hunger"`
	MaxThirst     float64 `yaml:"max_thirst"`
	HealthPerSize float64 `yaml:"health_per_size"`

	// Start/stop pairs give each need hysteresis.
	EnergyToStartResting float64 `yaml:"energy_to_start_resting"`
	EnergyToStopResting  float64 `yaml:"energy_to_stop_resting"`
	CriticalEnergy       float64 `yaml:"critical_energy"`

	ThirstToStartDrinking float64 `yaml:"thirst_to_start_drinking"`
	ThirstToStopDrinking  float64 `yaml:"thirst_to_stop_drinking"`
	CriticalThirst        float64 `yaml:"critical_thirst"`

	HerbivoreHungerToStart float64 `yaml:"herbivore_hunger_to_start"`
	HerbivoreHungerToStop  float64 `yaml:"herbivore_hunger_to_stop"`
	CarnivoreHungerToStart float64 `yaml:"carnivore_hunger_to_start"`
	CarnivoreHungerToStop  float64 `yaml:"carnivore_hunger_to_stop"`
	CriticalHunger         float64 `yaml:"critical_hunger"`

	// Breeding eligibility.
	BreedHealthFraction       float64 `yaml:"breed_health_fraction"`
	MaxHungerToBreed          float64 `yaml:"max_hunger_to_breed"`
	MaxThirstToBreed          float64 `yaml:"max_thirst_to_breed"`
	HerbivoreMinEnergyToBreed float64 `yaml:"herbivore_min_energy_to_breed"`
	CarnivoreMinEnergyToBreed float64 `yaml:"carnivore_min_energy_to_breed"`
}

// DefaultParams returns the standard need thresholds.
func DefaultParams() Params {
	return Params{
		MaxEnergy:     100,
		MaxHunger:     100,
		MaxThirst:     100,
		HealthPerSize: 20,

		EnergyToStartResting: 30,
		EnergyToStopResting:  90,
		CriticalEnergy:       10,

		ThirstToStartDrinking: 20,
		ThirstToStopDrinking:  10,
		CriticalThirst:        75,

		HerbivoreHungerToStart: 25,
		HerbivoreHungerToStop:  10,
		CarnivoreHungerToStart: 30,
		CarnivoreHungerToStop:  15,
		CriticalHunger:         80,

		BreedHealthFraction:       0.9,
		MaxHungerToBreed:          15,
		MaxThirstToBreed:          15,
		HerbivoreMinEnergyToBreed: 50,
		CarnivoreMinEnergyToBreed: 60,
	}
}

// MaxHealth returns the health ceiling for a critter of the given size.
func (p Params) MaxHealth(c *Critter) float64 {
	return c.Size * p.HealthPerSize
}

// HungerToStart returns the hunger at which a critter of diet d starts eating.
func (p Params) HungerToStart(d Diet) float64 {
	if d == DietCarnivore {
		return p.CarnivoreHungerToStart
	}
	return p.HerbivoreHungerToStart
}

// HungerToStop returns the hunger below which a critter of diet d is sated.
func (p Params) HungerToStop(d Diet) float64 {
	if d == DietCarnivore {
		return p.CarnivoreHungerToStop
	}
	return p.HerbivoreHungerToStop
}

// MinEnergyToBreed returns the energy a critter of diet d needs to breed.
func (p Params) MinEnergyToBreed(d Diet) float64 {
	if d == DietCarnivore {
		return p.CarnivoreMinEnergyToBreed
	}
	return p.HerbivoreMinEnergyToBreed
}

// CanBreed reports whether c is healthy, fed, watered, rested and off
// cooldown.
func (p Params) CanBreed(c *Critter) bool {
	return c.Health >= p.BreedHealthFraction*p.MaxHealth(c) &&
		c.Hunger < p.MaxHungerToBreed &&
		c.Thirst < p.MaxThirstToBreed &&
		c.BreedingCooldown == 0 &&
		c.Energy >= p.MinEnergyToBreed(c.Diet)
}

// Critical reports whether any need has crossed its critical threshold.
func (p Params) Critical(c *Critter) bool {
	return c.Hunger > p.CriticalHunger || c.Thirst > p.CriticalThirst
}

// Clamp keeps vitals inside their ranges.
func (p Params) Clamp(c *Critter) {
	c.Energy = clamp(c.Energy, 0, p.MaxEnergy)
	c.Hunger = clamp(c.Hunger, 0, p.MaxHunger)
	c.Thirst = clamp(c.Thirst, 0, p.MaxThirst)
	if mh := p.MaxHealth(c); c.Health > mh {
		c.Health = mh
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
