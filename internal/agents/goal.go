package agents

import "fmt"

// Goal is the need a critter pursues this tick. Exactly one is active.
type Goal uint8

const (
	GoalIdle Goal = iota
	GoalSurviveDanger
	GoalRecoverEnergy
	GoalQuenchThirst
	GoalSateHunger
	GoalBreed
	GoalSeekMate
)

// NumGoals is the number of goal values.
const NumGoals = 7

// AllGoals lists every goal in arbitration order.
var AllGoals = [NumGoals]Goal{
	GoalSurviveDanger,
	GoalRecoverEnergy,
	GoalQuenchThirst,
	GoalSateHunger,
	GoalBreed,
	GoalSeekMate,
	GoalIdle,
}

func (g Goal) String() string {
	switch g {
	case GoalIdle:
		return "idle"
	case GoalSurviveDanger:
		return "survive_danger"
	case GoalRecoverEnergy:
		return "recover_energy"
	case GoalQuenchThirst:
		return "quench_thirst"
	case GoalSateHunger:
		return "sate_hunger"
	case GoalBreed:
		return "breed"
	case GoalSeekMate:
		return "seek_mate"
	default:
		return fmt.Sprintf("goal(%d)", uint8(g))
	}
}
