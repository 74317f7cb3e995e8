package model

import (
	"math"
	"sync/atomic"
)

// Agent is the identity and observable state of one NPC.
// Position and velocity live on the navigation agent; the Agent only
// carries what the state machine itself owns: behavior state and heading.
//
// State and heading are read concurrently by the inspector, so both use
// atomics. All writes come from the single simulation goroutine.
type Agent struct {
	id      uint32
	name    string
	state   atomic.Int32
	heading atomic.Uint64 // math.Float64bits of yaw in radians
	config  AgentConfig
}

// NewAgent creates an agent with the given identity and tuning.
func NewAgent(id uint32, name string, config AgentConfig) *Agent {
	return &Agent{id: id, name: name, config: config}
}

// ID returns the agent's object ID.
func (a *Agent) ID() uint32 {
	return a.id
}

// Name returns the agent's display name.
func (a *Agent) Name() string {
	return a.name
}

// Config returns the agent's behavior tuning.
func (a *Agent) Config() AgentConfig {
	return a.config
}

// State returns the current behavior state.
func (a *Agent) State() BehaviorState {
	return BehaviorState(a.state.Load())
}

// SetState sets the current behavior state.
func (a *Agent) SetState(s BehaviorState) {
	a.state.Store(int32(s))
}

// Heading returns the current yaw in radians.
func (a *Agent) Heading() float64 {
	return math.Float64frombits(a.heading.Load())
}

// SetHeading sets the current yaw in radians.
func (a *Agent) SetHeading(yaw float64) {
	a.heading.Store(math.Float64bits(yaw))
}
