package agents

import (
	"errors"
	"fmt"

	"github.com/talgya/critter-world/internal/world"
)

// Sentinel errors. All of them abort the current tick.
var (
	ErrAlreadyDead    = errors.New("critter already dead")
	ErrGhostReference = errors.New("action references a dead critter")
	ErrUnknownAction  = errors.New("unknown action kind")
	ErrUnknownDiet    = errors.New("unknown diet")
	ErrNoLand         = errors.New("no walkable tile in spawn box")
)

// ActionKind discriminates Action variants.
type ActionKind uint8

const (
	ActionNone ActionKind = iota // Zero value; never executed
	ActionRest
	ActionDrink
	ActionEat
	ActionAttack
	ActionBreed
	ActionAmbush
	ActionMove
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionRest:
		return "rest"
	case ActionDrink:
		return "drink"
	case ActionEat:
		return "eat"
	case ActionAttack:
		return "attack"
	case ActionBreed:
		return "breed"
	case ActionAmbush:
		return "ambush"
	case ActionMove:
		return "move"
	default:
		return fmt.Sprintf("action(%d)", uint8(k))
	}
}

// Action is what a critter does this tick. Only the fields belonging to
// Kind are meaningful.
type Action struct {
	Kind ActionKind

	// ActionAttack
	Target CritterID
	// ActionBreed
	Partner CritterID

	// ActionMove: desired direction, and optionally the tile being headed for.
	DX, DY float64
	Dest   *world.Point
}

// Rest recovers energy.
func Rest() Action { return Action{Kind: ActionRest} }

// Drink from an adjacent water tile.
func Drink() Action { return Action{Kind: ActionDrink} }

// Eat from the current tile.
func Eat() Action { return Action{Kind: ActionEat} }

// Ambush waits in place for prey.
func Ambush() Action { return Action{Kind: ActionAmbush} }

// Attack an adjacent critter.
func Attack(target CritterID) Action {
	return Action{Kind: ActionAttack, Target: target}
}

// Breed with an adjacent partner.
func Breed(partner CritterID) Action {
	return Action{Kind: ActionBreed, Partner: partner}
}

// Move in direction (dx, dy).
func Move(dx, dy float64) Action {
	return Action{Kind: ActionMove, DX: dx, DY: dy}
}

// MoveTo moves toward next, the following waypoint of a path ending at dest.
func MoveTo(from, next, dest world.Point) Action {
	d := dest
	return Action{
		Kind: ActionMove,
		DX:   float64(next.X - from.X),
		DY:   float64(next.Y - from.Y),
		Dest: &d,
	}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionAttack:
		return fmt.Sprintf("attack(%d)", a.Target)
	case ActionBreed:
		return fmt.Sprintf("breed(%d)", a.Partner)
	case ActionMove:
		if a.Dest != nil {
			return fmt.Sprintf("move(%.2f,%.2f -> %s)", a.DX, a.DY, a.Dest)
		}
		return fmt.Sprintf("move(%.2f,%.2f)", a.DX, a.DY)
	default:
		return a.Kind.String()
	}
}
