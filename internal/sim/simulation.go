// Package sim composes agents, navigation, AI, and animation into a
// tick-driven world with one movable player.
package sim

import (
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/avolkhov/npcbrain/internal/ai"
	"github.com/avolkhov/npcbrain/internal/anim"
	"github.com/avolkhov/npcbrain/internal/model"
	"github.com/avolkhov/npcbrain/internal/nav"
)

// Simulation owns the agent runtimes and the player reference.
// The player position may be absent; state machines tolerate that.
type Simulation struct {
	mu        sync.RWMutex
	playerPos mgl64.Vec3
	playerSet bool
	runtimes  []*Runtime
	nextID    uint32
}

// New creates an empty simulation with no player reference.
func New() *Simulation {
	return &Simulation{}
}

// SetPlayerPosition places (or moves) the player.
func (s *Simulation) SetPlayerPosition(pos mgl64.Vec3) {
	s.mu.Lock()
	s.playerPos = pos
	s.playerSet = true
	s.mu.Unlock()
}

// ClearPlayer removes the player reference; agents degrade to no-op ticks.
func (s *Simulation) ClearPlayer() {
	s.mu.Lock()
	s.playerSet = false
	s.mu.Unlock()
}

// PlayerPosition returns the player position and whether one is set.
// Passed to every state machine as its player provider.
func (s *Simulation) PlayerPosition() (mgl64.Vec3, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerPos, s.playerSet
}

// AddAgent creates an agent with its runtime and returns it.
// A nil route means the agent has nowhere to patrol; attackFunc may be
// nil for the default no-op hook.
func (s *Simulation) AddAgent(name string, position mgl64.Vec3, cfg model.AgentConfig, route *model.PatrolRoute, attackFunc ai.AttackFunc) *Runtime {
	if route == nil {
		route = model.NewPatrolRoute("", nil)
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	agent := model.NewAgent(id, name, cfg)
	navAgent := nav.NewLinearAgent(position)
	machine := ai.NewStateMachine(agent, navAgent, route, s.PlayerPosition)
	if attackFunc != nil {
		machine.SetAttackFunc(attackFunc)
	}
	sink := anim.NewMemorySink()

	rt := &Runtime{
		agent:    agent,
		navAgent: navAgent,
		machine:  machine,
		animSync: anim.NewSync(agent, navAgent, sink),
		sink:     sink,
	}

	s.mu.Lock()
	s.runtimes = append(s.runtimes, rt)
	s.mu.Unlock()

	slog.Info("agent added",
		"agent", name,
		"id", id,
		"route", route.Name(),
		"waypoints", route.Len())

	return rt
}

// Runtimes returns all agent runtimes.
func (s *Simulation) Runtimes() []*Runtime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Runtime, len(s.runtimes))
	copy(out, s.runtimes)
	return out
}

// RegisterAll registers every runtime with the tick manager.
func (s *Simulation) RegisterAll(mgr *ai.TickManager) {
	for _, rt := range s.Runtimes() {
		mgr.Register(rt.Agent().ID(), rt)
	}
}

// Snapshot collects the post-tick view of every agent.
func (s *Simulation) Snapshot() []AgentSnapshot {
	runtimes := s.Runtimes()
	snaps := make([]AgentSnapshot, 0, len(runtimes))
	for _, rt := range runtimes {
		snaps = append(snaps, rt.Snapshot())
	}
	return snaps
}
