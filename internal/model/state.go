package model

// BehaviorState represents the active FSM state of an NPC agent
type BehaviorState int32

const (
	// StateIdle - agent is standing still, waiting for something to happen
	StateIdle BehaviorState = iota
	// StatePatrol - agent is walking its patrol route
	StatePatrol
	// StateChase - agent is pursuing the player
	StateChase
	// StateAttack - agent is in attack range, facing the player
	StateAttack
)

// String returns human-readable state name
func (s BehaviorState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePatrol:
		return "PATROL"
	case StateChase:
		return "CHASE"
	case StateAttack:
		return "ATTACK"
	default:
		return "UNKNOWN"
	}
}
