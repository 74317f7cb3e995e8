package ai

import (
	"time"

	"github.com/avolkhov/npcbrain/internal/model"
)

// Controller represents the behavior driver for one NPC agent
type Controller interface {
	// Start starts the controller
	Start()

	// Stop stops the controller
	Stop()

	// CurrentState returns the current behavior state
	CurrentState() model.BehaviorState

	// Tick performs one simulation tick; dt is the time elapsed since
	// the previous tick
	Tick(dt time.Duration)
}
