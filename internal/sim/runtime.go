package sim

import (
	"sync"
	"time"

	"github.com/avolkhov/npcbrain/internal/ai"
	"github.com/avolkhov/npcbrain/internal/anim"
	"github.com/avolkhov/npcbrain/internal/model"
	"github.com/avolkhov/npcbrain/internal/nav"
)

// AgentSnapshot is the inspector-facing view of one agent after a tick.
type AgentSnapshot struct {
	ID          uint32     `json:"id"`
	Name        string     `json:"name"`
	State       string     `json:"state"`
	Position    [3]float64 `json:"position"`
	Heading     float64    `json:"heading"`
	Speed       float64    `json:"speed"`
	IsMoving    bool       `json:"isMoving"`
	IsAttacking bool       `json:"isAttacking"`
}

// Runtime wires one agent's navigation, state machine, and animation
// sync into a single ai.Controller. Tick order is fixed: the navigation
// agent integrates first, then the state machine decides, then the
// animation parameters are projected from the settled state.
type Runtime struct {
	agent    *model.Agent
	navAgent *nav.LinearAgent
	machine  *ai.StateMachine
	animSync *anim.Sync
	sink     *anim.MemorySink

	mu   sync.RWMutex
	snap AgentSnapshot
}

// Agent returns the underlying agent.
func (r *Runtime) Agent() *model.Agent {
	return r.agent
}

// NavAgent returns the built-in navigation agent.
func (r *Runtime) NavAgent() *nav.LinearAgent {
	return r.navAgent
}

// Machine returns the state machine.
func (r *Runtime) Machine() *ai.StateMachine {
	return r.machine
}

// Sink returns the animation parameter sink.
func (r *Runtime) Sink() *anim.MemorySink {
	return r.sink
}

// Start starts the state machine and records the initial snapshot.
func (r *Runtime) Start() {
	r.machine.Start()
	r.animSync.Apply()
	r.updateSnapshot()
}

// Stop stops the state machine.
func (r *Runtime) Stop() {
	r.machine.Stop()
}

// CurrentState returns the agent's behavior state.
func (r *Runtime) CurrentState() model.BehaviorState {
	return r.agent.State()
}

// Tick advances navigation, behavior, and animation by dt.
func (r *Runtime) Tick(dt time.Duration) {
	r.navAgent.Advance(dt.Seconds())
	r.machine.Tick(dt)
	r.animSync.Apply()
	r.updateSnapshot()
}

// updateSnapshot caches the post-tick view for concurrent readers.
// The nav agent itself is single-writer, so the inspector reads this
// copy instead of touching live simulation state.
func (r *Runtime) updateSnapshot() {
	pos := r.navAgent.Position()

	r.mu.Lock()
	r.snap = AgentSnapshot{
		ID:          r.agent.ID(),
		Name:        r.agent.Name(),
		State:       r.agent.State().String(),
		Position:    [3]float64{pos.X(), pos.Y(), pos.Z()},
		Heading:     r.agent.Heading(),
		Speed:       r.navAgent.Velocity().Len(),
		IsMoving:    r.sink.Bool(anim.ParamIsMoving),
		IsAttacking: r.sink.Bool(anim.ParamIsAttacking),
	}
	r.mu.Unlock()
}

// Snapshot returns the view recorded after the most recent tick.
func (r *Runtime) Snapshot() AgentSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}
