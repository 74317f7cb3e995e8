package model

import "testing"

func TestBehaviorStateString(t *testing.T) {
	cases := map[BehaviorState]string{
		StateIdle:         "IDLE",
		StatePatrol:       "PATROL",
		StateChase:        "CHASE",
		StateAttack:       "ATTACK",
		BehaviorState(42): "UNKNOWN",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
