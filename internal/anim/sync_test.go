package anim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/avolkhov/npcbrain/internal/model"
	"github.com/avolkhov/npcbrain/internal/nav"
)

func TestSyncMappingTable(t *testing.T) {
	cases := []struct {
		state     model.BehaviorState
		moving    bool
		attacking bool
	}{
		{model.StateIdle, false, false},
		{model.StatePatrol, true, false},
		{model.StateChase, true, false},
		{model.StateAttack, false, true},
	}

	for _, tc := range cases {
		agent := model.NewAgent(1, "a", model.DefaultAgentConfig())
		agent.SetState(tc.state)
		sink := NewMemorySink()
		s := NewSync(agent, nav.NewLinearAgent(mgl64.Vec3{}), sink)

		s.Apply()

		if got := sink.Bool(ParamIsMoving); got != tc.moving {
			t.Errorf("%v: IsMoving = %v, want %v", tc.state, got, tc.moving)
		}
		if got := sink.Bool(ParamIsAttacking); got != tc.attacking {
			t.Errorf("%v: IsAttacking = %v, want %v", tc.state, got, tc.attacking)
		}
	}
}

func TestSyncSpeedIsVelocityMagnitude(t *testing.T) {
	agent := model.NewAgent(1, "a", model.DefaultAgentConfig())
	navAgent := nav.NewLinearAgent(mgl64.Vec3{})
	navAgent.SetSpeed(5)
	navAgent.SetStopped(false)
	navAgent.SetDestination(mgl64.Vec3{0, 0, 100})
	navAgent.Advance(0.1)

	sink := NewMemorySink()
	NewSync(agent, navAgent, sink).Apply()

	if got := sink.Float(ParamSpeed); got != 5 {
		t.Errorf("Speed = %v, want 5", got)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	agent := model.NewAgent(1, "a", model.DefaultAgentConfig())
	agent.SetState(model.StateChase)
	sink := NewMemorySink()
	s := NewSync(agent, nav.NewLinearAgent(mgl64.Vec3{}), sink)

	s.Apply()
	first := [3]any{sink.Float(ParamSpeed), sink.Bool(ParamIsMoving), sink.Bool(ParamIsAttacking)}

	for range 5 {
		s.Apply()
	}
	second := [3]any{sink.Float(ParamSpeed), sink.Bool(ParamIsMoving), sink.Bool(ParamIsAttacking)}

	if first != second {
		t.Errorf("repeated Apply changed outputs: %v then %v", first, second)
	}
}
