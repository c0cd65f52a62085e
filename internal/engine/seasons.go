// Seasons modulate how fast grass grows back.
package engine

// Season of the year.
type Season uint8

const (
	SeasonSpring Season = iota
	SeasonSummer
	SeasonAutumn
	SeasonWinter
)

func (s Season) String() string {
	switch s {
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonAutumn:
		return "Autumn"
	case SeasonWinter:
		return "Winter"
	default:
		return "Unknown"
	}
}

// SeasonAt returns the season of a tick. Ticks start at 1.
func SeasonAt(tick, length uint64) Season {
	if length == 0 || tick == 0 {
		return SeasonSpring
	}
	return Season(((tick - 1) / length) % 4)
}

// GrowthMultiplier scales grass regrowth. Nothing grows in winter.
func (s Season) GrowthMultiplier() float64 {
	switch s {
	case SeasonSpring:
		return 2.0
	case SeasonSummer:
		return 1.0
	case SeasonAutumn:
		return 0.5
	default:
		return 0
	}
}
