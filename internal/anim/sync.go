package anim

import (
	"github.com/avolkhov/npcbrain/internal/model"
	"github.com/avolkhov/npcbrain/internal/nav"
)

// stateFlags is the fixed state → (IsMoving, IsAttacking) mapping.
var stateFlags = map[model.BehaviorState]struct {
	moving    bool
	attacking bool
}{
	model.StateIdle:   {moving: false, attacking: false},
	model.StatePatrol: {moving: true, attacking: false},
	model.StateChase:  {moving: true, attacking: false},
	model.StateAttack: {moving: false, attacking: true},
}

// Sync pushes the agent's behavior state and navigation velocity into a
// ParameterSink once per tick. It holds no state of its own: the output
// is a pure function of (state, velocity magnitude), so re-applying with
// the same inputs is harmless.
//
// Sync only reads from the state machine side; it never mutates it.
type Sync struct {
	agent    *model.Agent
	navAgent nav.Agent
	sink     ParameterSink
}

// NewSync creates a Sync projecting agent and navAgent onto sink.
func NewSync(agent *model.Agent, navAgent nav.Agent, sink ParameterSink) *Sync {
	return &Sync{agent: agent, navAgent: navAgent, sink: sink}
}

// Apply writes the three animation parameters for the current tick.
func (s *Sync) Apply() {
	s.sink.SetFloat(ParamSpeed, s.navAgent.Velocity().Len())

	flags := stateFlags[s.agent.State()]
	s.sink.SetBool(ParamIsMoving, flags.moving)
	s.sink.SetBool(ParamIsAttacking, flags.attacking)
}
