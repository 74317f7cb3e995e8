package nav

import "github.com/go-gl/mathgl/mgl64"

// LinearAgent is a straight-line reference implementation of Agent for
// headless simulation and tests. It ignores obstacles: each Advance it
// moves directly toward the destination at the configured speed.
//
// IsPathPending is true from SetDestination until the next Advance,
// mirroring the one-frame path computation delay of a real navigator.
type LinearAgent struct {
	position    mgl64.Vec3
	destination mgl64.Vec3
	velocity    mgl64.Vec3
	speed       float64
	stopped     bool
	hasDest     bool
	pathPending bool
}

// NewLinearAgent creates a stopped agent at the given position.
func NewLinearAgent(position mgl64.Vec3) *LinearAgent {
	return &LinearAgent{position: position, stopped: true}
}

// SetDestination commands the agent to move toward position.
func (a *LinearAgent) SetDestination(position mgl64.Vec3) {
	a.destination = position
	a.hasDest = true
	a.pathPending = true
}

// SetSpeed sets the movement speed in units/sec.
func (a *LinearAgent) SetSpeed(speed float64) {
	a.speed = speed
}

// SetStopped halts or resumes movement. A stopped agent keeps its
// destination but reports zero velocity.
func (a *LinearAgent) SetStopped(stopped bool) {
	a.stopped = stopped
	if stopped {
		a.velocity = mgl64.Vec3{}
	}
}

// RemainingDistance returns the straight-line distance to the destination.
// Agents without a destination report zero.
func (a *LinearAgent) RemainingDistance() float64 {
	if !a.hasDest {
		return 0
	}
	return a.destination.Sub(a.position).Len()
}

// IsPathPending reports whether the last SetDestination has not been
// consumed by Advance yet.
func (a *LinearAgent) IsPathPending() bool {
	return a.pathPending
}

// Velocity returns the velocity applied on the last Advance.
func (a *LinearAgent) Velocity() mgl64.Vec3 {
	return a.velocity
}

// Position returns the current world position.
func (a *LinearAgent) Position() mgl64.Vec3 {
	return a.position
}

// Advance integrates the agent forward by dt seconds.
// Called once per simulation tick by the owner.
func (a *LinearAgent) Advance(dt float64) {
	a.pathPending = false

	if a.stopped || !a.hasDest || a.speed <= 0 || dt <= 0 {
		a.velocity = mgl64.Vec3{}
		return
	}

	offset := a.destination.Sub(a.position)
	dist := offset.Len()
	if dist == 0 {
		a.velocity = mgl64.Vec3{}
		return
	}

	step := a.speed * dt
	if step >= dist {
		// Arrived this tick.
		a.position = a.destination
		a.velocity = offset.Mul(1 / dt)
		return
	}

	dir := offset.Mul(1 / dist)
	a.position = a.position.Add(dir.Mul(step))
	a.velocity = dir.Mul(a.speed)
}

// Warp teleports the agent, clearing any velocity.
func (a *LinearAgent) Warp(position mgl64.Vec3) {
	a.position = position
	a.velocity = mgl64.Vec3{}
}
