package model

import "github.com/go-gl/mathgl/mgl64"

// PatrolRoute is an ordered loop of waypoints plus the current index.
// Waypoints are read-only after construction; only the index advances.
// Not safe for concurrent use — owned by a single state machine.
type PatrolRoute struct {
	name      string
	waypoints []mgl64.Vec3
	current   int
}

// NewPatrolRoute creates a route over the given waypoints.
// The waypoint slice is copied so callers cannot mutate it afterwards.
func NewPatrolRoute(name string, waypoints []mgl64.Vec3) *PatrolRoute {
	wps := make([]mgl64.Vec3, len(waypoints))
	copy(wps, waypoints)
	return &PatrolRoute{name: name, waypoints: wps}
}

// Name returns the route name (empty for inline routes).
func (r *PatrolRoute) Name() string {
	return r.name
}

// Len returns the number of waypoints.
func (r *PatrolRoute) Len() int {
	return len(r.waypoints)
}

// IsEmpty reports whether the route has no waypoints.
func (r *PatrolRoute) IsEmpty() bool {
	return len(r.waypoints) == 0
}

// Current returns the waypoint at the current index.
// Returns the zero vector and false for an empty route.
func (r *PatrolRoute) Current() (mgl64.Vec3, bool) {
	if len(r.waypoints) == 0 {
		return mgl64.Vec3{}, false
	}
	return r.waypoints[r.current], true
}

// Index returns the current waypoint index.
func (r *PatrolRoute) Index() int {
	return r.current
}

// Waypoints returns a copy of the waypoint list.
func (r *PatrolRoute) Waypoints() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(r.waypoints))
	copy(out, r.waypoints)
	return out
}

// Advance moves the index to the next waypoint, wrapping at the end,
// and returns it. Advancing an empty route is a no-op.
func (r *PatrolRoute) Advance() (mgl64.Vec3, bool) {
	if len(r.waypoints) == 0 {
		return mgl64.Vec3{}, false
	}
	r.current = (r.current + 1) % len(r.waypoints)
	return r.waypoints[r.current], true
}
