package ai

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/avolkhov/npcbrain/internal/model"
	"github.com/avolkhov/npcbrain/internal/nav"
)

// PlayerPosFunc resolves the player's current world position.
// The second return is false when no player reference is available;
// the state machine tolerates that as a logged no-op tick.
// Injected by the simulation to avoid a global player singleton.
type PlayerPosFunc func() (mgl64.Vec3, bool)

// AttackFunc is a callback invoked every Attack-state tick.
// Injected by the simulation; damage/animation-event logic lives with the host.
type AttackFunc func(agent *model.Agent, target mgl64.Vec3)

// Behavior tuning shared by all state machines.
const (
	// idleDwell is how long (seconds) an agent stands Idle before it
	// starts walking its patrol route.
	idleDwell = 3.0

	// chaseGiveUpFactor widens the exit threshold of Chase relative to
	// DetectionRange. The asymmetric band keeps the agent from
	// flickering between Chase and Patrol at the detection boundary.
	chaseGiveUpFactor = 1.5
)

// transition is one row of the transition table: first matching row wins.
type transition struct {
	to   model.BehaviorState
	when func(m *StateMachine, dist float64) bool
}

// transitions maps each state to its ordered transition rules.
// At most one rule fires per tick; precedence is slice order.
var transitions = map[model.BehaviorState][]transition{
	model.StateIdle: {
		{to: model.StateChase, when: func(m *StateMachine, dist float64) bool {
			return dist <= m.cfg.DetectionRange
		}},
		{to: model.StatePatrol, when: func(m *StateMachine, dist float64) bool {
			return !m.route.IsEmpty() && m.stateTime > idleDwell
		}},
	},
	model.StatePatrol: {
		{to: model.StateChase, when: func(m *StateMachine, dist float64) bool {
			return dist <= m.cfg.DetectionRange
		}},
	},
	model.StateChase: {
		{to: model.StateAttack, when: func(m *StateMachine, dist float64) bool {
			return dist <= m.cfg.AttackRange
		}},
		{to: model.StatePatrol, when: func(m *StateMachine, dist float64) bool {
			return dist > m.cfg.DetectionRange*chaseGiveUpFactor
		}},
	},
	model.StateAttack: {
		{to: model.StateChase, when: func(m *StateMachine, dist float64) bool {
			return dist > m.cfg.AttackRange
		}},
	},
}

// StateMachine owns the behavior state of one agent: it evaluates
// transitions once per tick and executes the per-state behavior against
// the injected navigation agent.
//
// Tick is single-goroutine; a transition is atomic within a tick.
type StateMachine struct {
	agent     *model.Agent
	navAgent  nav.Agent
	route     *model.PatrolRoute
	cfg       model.AgentConfig
	playerPos PlayerPosFunc
	isRunning atomic.Bool

	// stateTime accumulates seconds since the last state entry, or since
	// the current patrol dwell started. Reset exactly once per transition.
	stateTime float64
	waiting   bool

	// playerWarned suppresses repeat warnings for one missing-player streak.
	playerWarned bool

	// attackFunc is invoked on every Attack-state tick. Nil means no-op.
	attackFunc AttackFunc
}

// NewStateMachine creates a state machine for agent driving navAgent.
// route may be empty; playerPos must be non-nil.
func NewStateMachine(agent *model.Agent, navAgent nav.Agent, route *model.PatrolRoute, playerPos PlayerPosFunc) *StateMachine {
	return &StateMachine{
		agent:     agent,
		navAgent:  navAgent,
		route:     route,
		cfg:       agent.Config(),
		playerPos: playerPos,
	}
}

// SetAttackFunc sets the attack callback.
func (m *StateMachine) SetAttackFunc(fn AttackFunc) {
	m.attackFunc = fn
}

// Start starts the state machine in Idle with the navigation agent halted.
func (m *StateMachine) Start() {
	m.isRunning.Store(true)
	m.agent.SetState(model.StateIdle)
	m.stateTime = 0
	m.waiting = false
	m.navAgent.SetStopped(true)

	slog.Debug("state machine started",
		"agent", m.agent.Name(),
		"id", m.agent.ID(),
		"state", m.agent.State())
}

// Stop stops the state machine and halts the navigation agent.
func (m *StateMachine) Stop() {
	m.isRunning.Store(false)
	m.navAgent.SetStopped(true)

	slog.Debug("state machine stopped",
		"agent", m.agent.Name(),
		"id", m.agent.ID())
}

// CurrentState returns the current behavior state.
func (m *StateMachine) CurrentState() model.BehaviorState {
	return m.agent.State()
}

// StateTime returns seconds since state entry or dwell start.
func (m *StateMachine) StateTime() float64 {
	return m.stateTime
}

// IsWaiting reports whether the agent is dwelling at a patrol point.
func (m *StateMachine) IsWaiting() bool {
	return m.waiting
}

// Route returns the patrol route.
func (m *StateMachine) Route() *model.PatrolRoute {
	return m.route
}

// Tick evaluates transitions and executes the behavior of the
// (possibly just-changed) state. Both phases run every tick.
func (m *StateMachine) Tick(dt time.Duration) {
	if !m.isRunning.Load() {
		return
	}

	target, ok := m.playerPos()
	if !ok {
		// Tolerated: no player configured yet. Warn once per streak.
		if !m.playerWarned {
			slog.Warn("no player reference, AI tick skipped",
				"agent", m.agent.Name(),
				"id", m.agent.ID())
			m.playerWarned = true
		} else if IsDebugEnabled() {
			slog.Debug("player reference still missing", "agent", m.agent.Name())
		}
		return
	}
	m.playerWarned = false

	dist := target.Sub(m.navAgent.Position()).Len()
	seconds := dt.Seconds()

	// Transition phase: first matching rule wins, at most one per tick.
	for _, tr := range transitions[m.agent.State()] {
		if tr.when(m, dist) {
			m.transitionTo(tr.to, dist)
			break
		}
	}

	// Behavior phase runs on the post-transition state.
	m.stateTime += seconds

	switch m.agent.State() {
	case model.StateIdle:
		// Nothing to do: stateTime keeps accumulating toward idleDwell.
	case model.StatePatrol:
		m.thinkPatrol()
	case model.StateChase:
		// Reissue the destination every tick — the player moves.
		m.navAgent.SetDestination(target)
	case model.StateAttack:
		m.thinkAttack(target, seconds)
	}
}

// transitionTo switches state, resets timers, and applies entry side effects.
func (m *StateMachine) transitionTo(next model.BehaviorState, dist float64) {
	prev := m.agent.State()
	m.agent.SetState(next)
	m.stateTime = 0
	m.waiting = false

	switch next {
	case model.StateIdle:
		m.navAgent.SetStopped(true)
	case model.StatePatrol:
		m.navAgent.SetSpeed(m.cfg.PatrolSpeed)
		m.navAgent.SetStopped(false)
		if wp, ok := m.route.Advance(); ok {
			m.navAgent.SetDestination(wp)
		}
	case model.StateChase:
		m.navAgent.SetSpeed(m.cfg.ChaseSpeed)
		m.navAgent.SetStopped(false)
	case model.StateAttack:
		m.navAgent.SetStopped(true)
	}

	if IsDebugEnabled() {
		slog.Debug("behavior state changed",
			"agent", m.agent.Name(),
			"id", m.agent.ID(),
			"from", prev,
			"to", next,
			"distToPlayer", dist)
	}
}

// thinkPatrol handles waypoint arrival and dwell time.
func (m *StateMachine) thinkPatrol() {
	arrived := m.navAgent.RemainingDistance() <= m.cfg.StoppingDistance &&
		!m.navAgent.IsPathPending()

	if arrived && !m.waiting {
		m.waiting = true
		m.stateTime = 0

		if IsDebugEnabled() {
			slog.Debug("patrol point reached, dwelling",
				"agent", m.agent.Name(),
				"index", m.route.Index(),
				"dwell", m.cfg.WaitTimeAtPoint)
		}
		return
	}

	if m.waiting && m.stateTime >= m.cfg.WaitTimeAtPoint {
		m.waiting = false
		if wp, ok := m.route.Advance(); ok {
			m.navAgent.SetDestination(wp)
		}
	}
}

// thinkAttack rotates toward the target on the horizontal plane and
// fires the attack callback. Movement stays halted.
func (m *StateMachine) thinkAttack(target mgl64.Vec3, seconds float64) {
	dir := target.Sub(m.navAgent.Position())
	dir[1] = 0 // rotate around the vertical axis only

	if dir.Len() > 0 {
		targetYaw := math.Atan2(dir.X(), dir.Z())
		m.agent.SetHeading(smoothHeading(m.agent.Heading(), targetYaw, m.cfg.RotationSpeed*seconds))
	}

	if m.attackFunc != nil {
		m.attackFunc(m.agent, target)
	}
}

// smoothHeading interpolates current toward target along the shorter arc,
// closing a t fraction of the remaining angle (t clamped to [0, 1]).
func smoothHeading(current, target, t float64) float64 {
	if t >= 1 {
		return normalizeAngle(target)
	}
	if t <= 0 {
		return normalizeAngle(current)
	}
	diff := normalizeAngle(target - current)
	return normalizeAngle(current + diff*t)
}

// normalizeAngle wraps an angle into (-π, π].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
