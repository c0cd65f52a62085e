package brain

import (
	"fmt"
	"log/slog"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/behavior"
)

// RuleBrain arbitrates between goals by scoring each need.
//
// Order of precedence: a visible threat, then critical needs, then an
// adjacent breeding opportunity, then the highest score. The goal committed
// last tick keeps its score down to the need's stop threshold and is
// boosted by the critter's commitment, so critters finish what they start.
type RuleBrain struct {
	regs registries
}

// NewRuleBrain creates a rule brain for all diets.
func NewRuleBrain() (*RuleBrain, error) {
	rs, err := newRegistries()
	if err != nil {
		return nil, err
	}
	return &RuleBrain{regs: rs}, nil
}

// Decide implements Decider.
func (b *RuleBrain) Decide(c *agents.Critter, v *behavior.View) (agents.Goal, agents.Action, error) {
	r, err := b.regs.forCritter(c)
	if err != nil {
		return 0, agents.Action{}, err
	}

	if a, ok, err := propose(r, behavior.Fleeing, c, v); err != nil {
		return 0, agents.Action{}, fmt.Errorf("fleeing: %w", err)
	} else if ok {
		return agents.GoalSurviveDanger, a, nil
	}

	n := v.Needs
	goal, forced := agents.GoalIdle, true
	switch {
	case c.Energy <= n.CriticalEnergy:
		goal = agents.GoalRecoverEnergy
	case c.Thirst > n.CriticalThirst:
		goal = agents.GoalQuenchThirst
	case c.Hunger > n.CriticalHunger:
		goal = agents.GoalSateHunger
	default:
		forced = false
	}

	if !forced && n.CanBreed(c) {
		a, ok, err := propose(r, behavior.Breeding, c, v)
		if err != nil {
			return 0, agents.Action{}, fmt.Errorf("breeding: %w", err)
		}
		if ok && a.Kind == agents.ActionBreed {
			return agents.GoalBreed, a, nil
		}
	}

	if !forced {
		goal = Best(Scores(c, n))
	}
	slog.Debug("goal", "critter", c.ID, "goal", goal, "forced", forced)

	a, err := dispatch(r, goal, c, v)
	if err != nil {
		return 0, agents.Action{}, err
	}
	return goal, a, nil
}

// Scores computes the need score of every goal. Goals that are not wanted
// score zero.
func Scores(c *agents.Critter, n agents.Params) [agents.NumGoals]float64 {
	var s [agents.NumGoals]float64
	committed := c.Goal

	// threshold picks the stop threshold for the goal already being pursued.
	threshold := func(g agents.Goal, start, stop float64) float64 {
		if committed == g {
			return stop
		}
		return start
	}

	if t := threshold(agents.GoalRecoverEnergy, n.EnergyToStartResting, n.EnergyToStopResting); c.Energy < t && t > 0 {
		s[agents.GoalRecoverEnergy] = (t - c.Energy) / t * 2
	}
	if t := threshold(agents.GoalQuenchThirst, n.ThirstToStartDrinking, n.ThirstToStopDrinking); c.Thirst >= t {
		s[agents.GoalQuenchThirst] = urgency(c.Thirst, t, n.CriticalThirst)
	}
	if t := threshold(agents.GoalSateHunger, n.HungerToStart(c.Diet), n.HungerToStop(c.Diet)); c.Hunger >= t {
		s[agents.GoalSateHunger] = urgency(c.Hunger, t, n.CriticalHunger)
	}
	if n.CanBreed(c) {
		s[agents.GoalSeekMate] = 1.0
	}
	s[agents.GoalIdle] = 0.1

	if int(committed) < agents.NumGoals {
		s[committed] *= c.Commitment
	}
	return s
}

// urgency is 1 at the threshold and 2 at the critical level.
func urgency(v, threshold, critical float64) float64 {
	span := critical - threshold
	if span <= 0 {
		return 1
	}
	return 1 + (v-threshold)/span
}

// Best returns the highest-scoring goal. Ties go to the goal listed first
// in agents.AllGoals.
func Best(s [agents.NumGoals]float64) agents.Goal {
	best := agents.GoalIdle
	bestScore := -1.0
	for _, g := range agents.AllGoals {
		if s[g] > bestScore {
			best, bestScore = g, s[g]
		}
	}
	return best
}
