// Package nav defines the navigation boundary the AI drives.
// Pathfinding itself is owned by whatever implements Agent; the state
// machine only issues commands and reads back synchronous queries.
package nav

import "github.com/go-gl/mathgl/mgl64"

// Agent is the host-provided path-following service for one NPC.
// Commands (SetDestination, SetSpeed, SetStopped) take effect on the
// implementation's next step; queries are synchronous reads.
//
// Implementations are driven by a single simulation goroutine —
// concurrent multi-writer access is unsupported.
type Agent interface {
	// SetDestination commands the agent to path toward position.
	SetDestination(position mgl64.Vec3)

	// SetSpeed sets the movement speed in units/sec.
	SetSpeed(speed float64)

	// SetStopped halts or resumes movement without clearing the path.
	SetStopped(stopped bool)

	// RemainingDistance returns the distance left to the destination.
	RemainingDistance() float64

	// IsPathPending reports whether a newly set destination has not
	// been picked up by the agent yet.
	IsPathPending() bool

	// Velocity returns the agent's current velocity vector.
	Velocity() mgl64.Vec3

	// Position returns the agent's current world position.
	Position() mgl64.Vec3
}
