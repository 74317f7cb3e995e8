package model

import "testing"

func TestDefaultAgentConfigIsValid(t *testing.T) {
	if err := DefaultAgentConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestAgentConfigRejectsNegativeScalars(t *testing.T) {
	cfg := DefaultAgentConfig()
	cfg.PatrolSpeed = -1

	if err := cfg.Validate(); err == nil {
		t.Error("negative patrol_speed should fail validation")
	}
}

func TestAgentConfigRejectsAttackBeyondDetection(t *testing.T) {
	cfg := DefaultAgentConfig()
	cfg.AttackRange = cfg.DetectionRange + 1

	if err := cfg.Validate(); err == nil {
		t.Error("attack_range > detection_range should fail validation")
	}
}
