package ai

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/avolkhov/npcbrain/internal/model"
	"github.com/avolkhov/npcbrain/internal/nav"
)

const tick = 100 * time.Millisecond

func testConfig() model.AgentConfig {
	return model.AgentConfig{
		DetectionRange:   10,
		AttackRange:      2,
		PatrolSpeed:      2,
		ChaseSpeed:       4,
		RotationSpeed:    5,
		WaitTimeAtPoint:  1,
		StoppingDistance: 0.5,
	}
}

// testWorld bundles a machine with a movable player for one test.
type testWorld struct {
	machine  *StateMachine
	agent    *model.Agent
	navAgent *nav.LinearAgent
	player   mgl64.Vec3
	noPlayer bool
}

func newTestWorld(t *testing.T, cfg model.AgentConfig, waypoints []mgl64.Vec3) *testWorld {
	t.Helper()

	w := &testWorld{
		agent:    model.NewAgent(1, "TestAgent", cfg),
		navAgent: nav.NewLinearAgent(mgl64.Vec3{}),
	}
	route := model.NewPatrolRoute("test", waypoints)
	w.machine = NewStateMachine(w.agent, w.navAgent, route, func() (mgl64.Vec3, bool) {
		return w.player, !w.noPlayer
	})
	w.machine.Start()
	return w
}

// setPlayerDistance places the player on the X axis at the given distance
// from the agent's current position.
func (w *testWorld) setPlayerDistance(dist float64) {
	w.player = w.navAgent.Position().Add(mgl64.Vec3{dist, 0, 0})
}

// run ticks the world n times, advancing navigation first like the
// simulation runtime does.
func (w *testWorld) run(n int) {
	for range n {
		w.navAgent.Advance(tick.Seconds())
		w.machine.Tick(tick)
	}
}

// idleDwellTicks is enough ticks for stateTime to exceed the 3s idle
// dwell and fire the Idle → Patrol transition on the last tick.
const idleDwellTicks = 32

func TestIdleStaysPutOutsideDetectionRange(t *testing.T) {
	// Distance 15 > detection 10: no transition fires.
	w := newTestWorld(t, testConfig(), []mgl64.Vec3{{5, 0, 0}})
	w.setPlayerDistance(15)

	w.run(1)

	if got := w.machine.CurrentState(); got != model.StateIdle {
		t.Errorf("state = %v, want IDLE", got)
	}
}

func TestIdleStartsPatrolAfterDwell(t *testing.T) {
	// After >3s idle with a non-empty route the agent starts patrolling.
	w := newTestWorld(t, testConfig(), []mgl64.Vec3{{5, 0, 0}, {10, 0, 0}})
	w.setPlayerDistance(15)

	w.run(idleDwellTicks)

	if got := w.machine.CurrentState(); got != model.StatePatrol {
		t.Errorf("state = %v, want PATROL", got)
	}
}

func TestIdleDetectsPlayer(t *testing.T) {
	w := newTestWorld(t, testConfig(), []mgl64.Vec3{{5, 0, 0}})
	w.setPlayerDistance(8)

	w.run(1)

	if got := w.machine.CurrentState(); got != model.StateChase {
		t.Errorf("state = %v, want CHASE", got)
	}
}

func TestPatrolDetectsPlayer(t *testing.T) {
	// Patrolling with distance 8 ≤ detection 10: Chase this tick.
	w := newTestWorld(t, testConfig(), []mgl64.Vec3{{100, 0, 0}})
	w.setPlayerDistance(50)
	w.run(idleDwellTicks)
	if w.machine.CurrentState() != model.StatePatrol {
		t.Fatalf("setup: state = %v, want PATROL", w.machine.CurrentState())
	}

	w.setPlayerDistance(8)
	w.run(1)

	if got := w.machine.CurrentState(); got != model.StateChase {
		t.Errorf("state = %v, want CHASE", got)
	}
}

func TestChaseClosesToAttack(t *testing.T) {
	// Chasing with distance 1.5 ≤ attack 2: Attack.
	w := newTestWorld(t, testConfig(), nil)
	w.setPlayerDistance(8)
	w.run(1)
	if w.machine.CurrentState() != model.StateChase {
		t.Fatalf("setup: state = %v, want CHASE", w.machine.CurrentState())
	}

	w.setPlayerDistance(1.5)
	w.run(1)

	if got := w.machine.CurrentState(); got != model.StateAttack {
		t.Errorf("state = %v, want ATTACK", got)
	}
}

func TestChaseGivesUpBeyondHysteresisBand(t *testing.T) {
	// Chasing with distance 16 > 15 = 1.5×detection: back to Patrol.
	w := newTestWorld(t, testConfig(), []mgl64.Vec3{{5, 0, 0}})
	w.setPlayerDistance(8)
	w.run(1)
	if w.machine.CurrentState() != model.StateChase {
		t.Fatalf("setup: state = %v, want CHASE", w.machine.CurrentState())
	}

	w.setPlayerDistance(16)
	w.run(1)

	if got := w.machine.CurrentState(); got != model.StatePatrol {
		t.Errorf("state = %v, want PATROL", got)
	}
}

func TestChaseHysteresisHoldsInsideBand(t *testing.T) {
	// Distances above detection but inside 1.5× keep the chase alive —
	// no flicker at the detection boundary.
	w := newTestWorld(t, testConfig(), []mgl64.Vec3{{5, 0, 0}})
	w.setPlayerDistance(8)
	w.run(1)

	for _, dist := range []float64{10.5, 12, 14.9} {
		w.setPlayerDistance(dist)
		w.run(1)
		if got := w.machine.CurrentState(); got != model.StateChase {
			t.Errorf("dist %v: state = %v, want CHASE", dist, got)
		}
	}
}

func TestAttackBreaksOffWhenPlayerRetreats(t *testing.T) {
	// Attacking with distance 3 > attack 2: back to Chase.
	w := newTestWorld(t, testConfig(), nil)
	w.setPlayerDistance(1)
	w.run(2) // Idle → Chase, then Chase → Attack
	if w.machine.CurrentState() != model.StateAttack {
		t.Fatalf("setup: state = %v, want ATTACK", w.machine.CurrentState())
	}

	w.setPlayerDistance(3)
	w.run(1)

	if got := w.machine.CurrentState(); got != model.StateChase {
		t.Errorf("state = %v, want CHASE", got)
	}
}

func TestEmptyRouteStaysIdleForever(t *testing.T) {
	// Empty route and the player far away: Idle indefinitely.
	w := newTestWorld(t, testConfig(), nil)
	w.setPlayerDistance(100)

	w.run(200) // 20 simulated seconds

	if got := w.machine.CurrentState(); got != model.StateIdle {
		t.Errorf("state = %v, want IDLE", got)
	}
}

func TestStateTimeResetsOnTransition(t *testing.T) {
	w := newTestWorld(t, testConfig(), []mgl64.Vec3{{100, 0, 0}})
	w.setPlayerDistance(50)

	w.run(10)
	if w.machine.StateTime() <= 0 {
		t.Fatal("stateTime should accumulate while idle")
	}

	w.setPlayerDistance(5)
	w.run(1) // Idle → Chase

	// The behavior phase of the transition tick accumulates one dt.
	if got := w.machine.StateTime(); math.Abs(got-tick.Seconds()) > 1e-9 {
		t.Errorf("stateTime after transition = %v, want %v", got, tick.Seconds())
	}

	before := w.machine.StateTime()
	w.run(5)
	if w.machine.StateTime() <= before {
		t.Error("stateTime should strictly increase within a state")
	}
}

func TestAtMostOneTransitionPerTick(t *testing.T) {
	// Player inside attack range while Idle: Idle→Chase this tick,
	// Chase→Attack only on the next one.
	w := newTestWorld(t, testConfig(), nil)
	w.setPlayerDistance(1)

	w.run(1)
	if got := w.machine.CurrentState(); got != model.StateChase {
		t.Errorf("after tick 1: state = %v, want CHASE", got)
	}

	w.run(1)
	if got := w.machine.CurrentState(); got != model.StateAttack {
		t.Errorf("after tick 2: state = %v, want ATTACK", got)
	}
}

func TestChaseReissuesDestinationEveryTick(t *testing.T) {
	w := newTestWorld(t, testConfig(), nil)
	w.setPlayerDistance(9)
	w.run(1)

	// Move the player sideways; the agent's destination must follow.
	w.player = w.player.Add(mgl64.Vec3{0, 0, 3})
	w.run(1)

	remaining := w.navAgent.RemainingDistance()
	want := w.player.Sub(w.navAgent.Position()).Len()
	if math.Abs(remaining-want) > 1e-9 {
		t.Errorf("remaining = %v, want %v (destination should track the player)", remaining, want)
	}
}

func TestPatrolDwellsThenAdvances(t *testing.T) {
	w := newTestWorld(t, testConfig(), []mgl64.Vec3{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}})
	w.setPlayerDistance(50)

	w.run(idleDwellTicks) // Patrol entry advanced the route to index 1
	if w.machine.Route().Index() != 1 {
		t.Fatalf("route index = %d, want 1 after patrol entry", w.machine.Route().Index())
	}

	// Waypoint 1 is 2 units out at patrol speed 2: arrival within a
	// second, then the dwell starts.
	w.run(10)
	if !w.machine.IsWaiting() {
		t.Fatal("agent should be dwelling at the waypoint")
	}

	// WaitTimeAtPoint is 1s; once it elapses the index advances.
	w.run(8)
	if w.machine.IsWaiting() {
		t.Error("dwell should have ended")
	}
	if got := w.machine.Route().Index(); got != 2 {
		t.Errorf("route index = %d, want 2 after dwell", got)
	}
}

func TestPatrolIndexStaysInBounds(t *testing.T) {
	cfg := testConfig()
	cfg.WaitTimeAtPoint = 0.1
	w := newTestWorld(t, cfg, []mgl64.Vec3{{0.2, 0, 0}, {0.4, 0, 0}})
	w.setPlayerDistance(50)

	w.run(idleDwellTicks)

	// Waypoints sit within stopping distance of each other, so the agent
	// arrives immediately and cycles 1 → 0 → 1 → ... indefinitely.
	for i := 0; i < 100; i++ {
		w.run(1)
		if idx := w.machine.Route().Index(); idx < 0 || idx >= w.machine.Route().Len() {
			t.Fatalf("route index %d out of bounds after tick %d", idx, i)
		}
	}
}

func TestMissingPlayerIsToleratedAndRecovers(t *testing.T) {
	w := newTestWorld(t, testConfig(), []mgl64.Vec3{{5, 0, 0}})
	w.noPlayer = true

	w.run(100)
	if got := w.machine.CurrentState(); got != model.StateIdle {
		t.Errorf("without player: state = %v, want IDLE (no-op ticks)", got)
	}
	if w.machine.StateTime() != 0 {
		t.Error("no-op ticks should not accumulate state time")
	}

	// Player appears in detection range: next tick chases.
	w.noPlayer = false
	w.setPlayerDistance(5)
	w.run(1)
	if got := w.machine.CurrentState(); got != model.StateChase {
		t.Errorf("after player appears: state = %v, want CHASE", got)
	}
}

func TestAttackRotatesTowardPlayer(t *testing.T) {
	cfg := testConfig()
	cfg.RotationSpeed = 100 // snaps to the target heading within one tick
	w := newTestWorld(t, cfg, nil)

	// Player due +Z of the agent: target yaw 0.
	w.player = mgl64.Vec3{0, 0, 5}
	w.agent.SetHeading(math.Pi / 2)

	w.run(12) // chase closes the distance, then Attack rotates

	if w.machine.CurrentState() != model.StateAttack {
		t.Fatalf("state = %v, want ATTACK", w.machine.CurrentState())
	}
	if got := w.agent.Heading(); math.Abs(got) > 1e-6 {
		t.Errorf("heading = %v, want 0 (facing +Z)", got)
	}
}

func TestAttackIgnoresVerticalOffset(t *testing.T) {
	cfg := testConfig()
	cfg.RotationSpeed = 100
	w := newTestWorld(t, cfg, nil)

	// Player above and due +X: yaw should point +X (π/2), Y ignored.
	w.player = mgl64.Vec3{1.5, 5, 0}

	w.run(12)

	if w.machine.CurrentState() != model.StateAttack {
		t.Fatalf("state = %v, want ATTACK", w.machine.CurrentState())
	}
	if got := w.agent.Heading(); math.Abs(got-math.Pi/2) > 1e-6 {
		t.Errorf("heading = %v, want π/2", got)
	}
}

func TestAttackInvokesHookEveryTick(t *testing.T) {
	w := newTestWorld(t, testConfig(), nil)

	var calls int
	w.machine.SetAttackFunc(func(agent *model.Agent, target mgl64.Vec3) {
		calls++
	})

	w.setPlayerDistance(1)
	w.run(2) // reach Attack; hook fires on the Attack behavior tick
	if calls != 1 {
		t.Fatalf("hook calls = %d, want 1", calls)
	}

	w.run(3)
	if calls != 4 {
		t.Errorf("hook calls = %d, want 4 (one per Attack tick)", calls)
	}
}

func TestAttackStopsMovement(t *testing.T) {
	w := newTestWorld(t, testConfig(), nil)
	w.setPlayerDistance(1)
	w.run(2)
	if w.machine.CurrentState() != model.StateAttack {
		t.Fatalf("setup: state = %v, want ATTACK", w.machine.CurrentState())
	}

	pos := w.navAgent.Position()
	w.run(10)

	if moved := w.navAgent.Position().Sub(pos).Len(); moved > 1e-9 {
		t.Errorf("agent moved %v units while attacking, want 0", moved)
	}
}

func TestStoppedMachineIgnoresTicks(t *testing.T) {
	w := newTestWorld(t, testConfig(), nil)
	w.machine.Stop()

	w.setPlayerDistance(1)
	w.run(10)

	if got := w.machine.CurrentState(); got != model.StateIdle {
		t.Errorf("stopped machine changed state to %v", got)
	}
}
