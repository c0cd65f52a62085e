package engine

// Params holds the rates and amounts the tick applies.
type Params struct {
	HungerPerTick float64 `yaml:"hunger_per_tick"`
	ThirstPerTick float64 `yaml:"thirst_per_tick"`
	HealthDamage  float64 `yaml:"health_damage"` // Per tick while hunger or thirst is critical
	PassiveHeal   float64 `yaml:"passive_heal"`

	EnergyRegen   float64 `yaml:"energy_regen"`
	DrinkAmount   float64 `yaml:"drink_amount"`
	BiteSize      float64 `yaml:"bite_size"`       // Food eaten per EAT
	HungerPerBite float64 `yaml:"hunger_per_bite"` // Hunger removed by a full bite
	ThirstPerFood float64 `yaml:"thirst_per_food"` // Thirst removed per unit of food eaten

	BreedingEnergyCost float64 `yaml:"breeding_energy_cost"`
	BreedingCooldown   int     `yaml:"breeding_cooldown"`

	OldAgeFraction  float64 `yaml:"old_age_fraction"`   // Fraction of lifespan after which old age can kill
	OldAgeDeathRate float64 `yaml:"old_age_death_rate"` // Scaled by age/lifespan

	BaseMetabolicRate float64 `yaml:"base_metabolic_rate"`
	MetabolismScale   float64 `yaml:"metabolism_scale"`

	EscapeBase        float64 `yaml:"escape_base"`
	MaxEscape         float64 `yaml:"max_escape"`
	DamagePerSize     float64 `yaml:"damage_per_size"`
	KillHungerPerSize float64 `yaml:"kill_hunger_per_size"`
	KillEnergyPerSize float64 `yaml:"kill_energy_per_size"`
	KillThirstPerSize float64 `yaml:"kill_thirst_per_size"`

	RegrowthRate float64 `yaml:"regrowth_rate"`
	SeasonLength uint64  `yaml:"season_length"`

	// MinDietPopulation is the floor below which migrants of a diet arrive.
	// Zero disables migration.
	MinDietPopulation int `yaml:"min_diet_population"`

	MaxEvents int `yaml:"max_events"` // Recent events kept in memory
}

// DefaultParams returns the standard tick rates.
func DefaultParams() Params {
	return Params{
		HungerPerTick: 0.1,
		ThirstPerTick: 0.15,
		HealthDamage:  0.5,
		PassiveHeal:   0.1,

		EnergyRegen:   5,
		DrinkAmount:   25,
		BiteSize:      5,
		HungerPerBite: 10,
		ThirstPerFood: 0.2,

		BreedingEnergyCost: 40,
		BreedingCooldown:   500,

		OldAgeFraction:  0.8,
		OldAgeDeathRate: 0.002,

		BaseMetabolicRate: 0.05,
		MetabolismScale:   0.5,

		EscapeBase:        0.5,
		MaxEscape:         0.9,
		DamagePerSize:     4,
		KillHungerPerSize: 8,
		KillEnergyPerSize: 4,
		KillThirstPerSize: 2,

		RegrowthRate: 0.1,
		SeasonLength: 250,

		MinDietPopulation: 0,

		MaxEvents: 1000,
	}
}
