package brain

import (
	"fmt"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/behavior"
)

// PolicyProvider chooses a goal from a state vector. How it decides is its
// own business: a rule table, a trained model, a remote service.
type PolicyProvider interface {
	SelectGoal(state []float64) agents.Goal
	// Observe reports the outcome of a previous selection to providers that
	// learn. Static providers ignore it.
	Observe(state []float64, goal agents.Goal, reward float64, next []float64, terminal bool)
}

// PolicyBrain delegates goal selection to a PolicyProvider and dispatches
// the goal through the same strategy registry as RuleBrain.
type PolicyBrain struct {
	Policy  PolicyProvider
	Encoder Encoder
	regs    registries
}

// NewPolicyBrain creates a brain backed by policy.
func NewPolicyBrain(policy PolicyProvider, enc Encoder) (*PolicyBrain, error) {
	rs, err := newRegistries()
	if err != nil {
		return nil, err
	}
	return &PolicyBrain{Policy: policy, Encoder: enc, regs: rs}, nil
}

// Decide implements Decider.
func (b *PolicyBrain) Decide(c *agents.Critter, v *behavior.View) (agents.Goal, agents.Action, error) {
	r, err := b.regs.forCritter(c)
	if err != nil {
		return 0, agents.Action{}, err
	}
	goal := b.Policy.SelectGoal(b.Encoder.Encode(c, v))
	if _, ok := goalCapability[goal]; !ok {
		return 0, agents.Action{}, fmt.Errorf("policy chose unknown goal %s", goal)
	}
	a, err := dispatch(r, goal, c, v)
	if err != nil {
		return 0, agents.Action{}, err
	}
	return goal, a, nil
}

// ThresholdPolicy is a rule table over the vital slots of the state vector.
// It mirrors RuleBrain without hysteresis and is the baseline any learned
// provider has to beat.
type ThresholdPolicy struct {
	Needs agents.Params
}

// NewThresholdPolicy creates a rule-table provider.
func NewThresholdPolicy(needs agents.Params) *ThresholdPolicy {
	return &ThresholdPolicy{Needs: needs}
}

// SelectGoal implements PolicyProvider.
func (p *ThresholdPolicy) SelectGoal(s []float64) agents.Goal {
	n := p.Needs
	diet := agents.DietHerbivore
	if s[SlotCarnivore] == 1 {
		diet = agents.DietCarnivore
	}
	energy := s[SlotEnergy] * n.MaxEnergy
	hunger := s[SlotHunger] * n.MaxHunger
	thirst := s[SlotThirst] * n.MaxThirst

	if threatHealth(s) > 0 {
		return agents.GoalSurviveDanger
	}
	switch {
	case energy <= n.CriticalEnergy:
		return agents.GoalRecoverEnergy
	case thirst > n.CriticalThirst:
		return agents.GoalQuenchThirst
	case hunger > n.CriticalHunger:
		return agents.GoalSateHunger
	case energy < n.EnergyToStartResting:
		return agents.GoalRecoverEnergy
	case thirst >= n.ThirstToStartDrinking:
		return agents.GoalQuenchThirst
	case hunger >= n.HungerToStart(diet):
		return agents.GoalSateHunger
	case s[SlotHealth] >= n.BreedHealthFraction &&
		hunger < n.MaxHungerToBreed &&
		thirst < n.MaxThirstToBreed &&
		s[SlotCooldown] == 0 &&
		energy >= n.MinEnergyToBreed(diet):
		return agents.GoalSeekMate
	}
	return agents.GoalIdle
}

// Observe implements PolicyProvider. The rule table does not learn.
func (p *ThresholdPolicy) Observe([]float64, agents.Goal, float64, []float64, bool) {}

// threatHealth reads the health slot of the threat block. The block sits a
// fixed distance from the end of the vector, so the perception radius is
// not needed to find it.
func threatHealth(s []float64) float64 {
	i := len(s) - MateSlots - PreySlots - ThreatSlots + 3
	if i < VitalSlots {
		return 0
	}
	return s[i]
}
