package behavior

import "github.com/talgya/critter-world/internal/agents"

// RestingStrategy always rests.
type RestingStrategy struct{}

func (RestingStrategy) Propose(*agents.Critter, *View) (agents.Action, bool, error) {
	return agents.Rest(), true, nil
}
