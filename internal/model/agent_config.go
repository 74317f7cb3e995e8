package model

import "fmt"

// AgentConfig holds per-agent behavior tuning.
// Immutable after construction — the state machine only reads it.
type AgentConfig struct {
	// DetectionRange is the distance at which the agent notices the player.
	DetectionRange float64 `yaml:"detection_range"`
	// AttackRange is the distance at which Chase becomes Attack.
	AttackRange float64 `yaml:"attack_range"`
	// PatrolSpeed is movement speed while walking the patrol route.
	PatrolSpeed float64 `yaml:"patrol_speed"`
	// ChaseSpeed is movement speed while pursuing the player.
	ChaseSpeed float64 `yaml:"chase_speed"`
	// RotationSpeed is the turn rate (radians/sec) used while attacking.
	RotationSpeed float64 `yaml:"rotation_speed"`
	// WaitTimeAtPoint is dwell time (seconds) at each patrol waypoint.
	WaitTimeAtPoint float64 `yaml:"wait_time_at_point"`
	// StoppingDistance is how close to a destination counts as arrived.
	StoppingDistance float64 `yaml:"stopping_distance"`
}

// DefaultAgentConfig returns the tuning used when the config file
// does not override a field.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		DetectionRange:   10,
		AttackRange:      2,
		PatrolSpeed:      2,
		ChaseSpeed:       4.5,
		RotationSpeed:    5,
		WaitTimeAtPoint:  2,
		StoppingDistance: 0.5,
	}
}

// Validate checks that all scalars are non-negative and ranges are ordered.
func (c AgentConfig) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"detection_range", c.DetectionRange},
		{"attack_range", c.AttackRange},
		{"patrol_speed", c.PatrolSpeed},
		{"chase_speed", c.ChaseSpeed},
		{"rotation_speed", c.RotationSpeed},
		{"wait_time_at_point", c.WaitTimeAtPoint},
		{"stopping_distance", c.StoppingDistance},
	} {
		if f.value < 0 {
			return fmt.Errorf("agent config: %s must be non-negative, got %v", f.name, f.value)
		}
	}
	if c.AttackRange > c.DetectionRange {
		return fmt.Errorf("agent config: attack_range %v exceeds detection_range %v", c.AttackRange, c.DetectionRange)
	}
	return nil
}
