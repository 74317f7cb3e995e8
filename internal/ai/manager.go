package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// TickManager drives all registered controllers from one loop.
// Controllers are ticked sequentially, so per-agent state needs no locking.
type TickManager struct {
	controllers     sync.Map // map[uint32]Controller — agent ID → controller
	interval        time.Duration
	stopCh          chan struct{}
	controllerCount atomic.Int32 // cached count of controllers (O(1) access)
}

// NewTickManager creates a tick manager that ticks at the given interval.
func NewTickManager(interval time.Duration) *TickManager {
	return &TickManager{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Register registers a controller for the given agent and starts it.
func (m *TickManager) Register(agentID uint32, controller Controller) {
	m.controllers.Store(agentID, controller)
	m.controllerCount.Add(1)
	controller.Start()

	slog.Debug("controller registered",
		"agentID", agentID,
		"state", controller.CurrentState())
}

// Unregister stops and removes the controller for the given agent.
func (m *TickManager) Unregister(agentID uint32) {
	value, ok := m.controllers.LoadAndDelete(agentID)
	if !ok {
		return
	}

	m.controllerCount.Add(-1)

	controller := value.(Controller)
	controller.Stop()

	slog.Debug("controller unregistered", "agentID", agentID)
}

// Start runs the tick loop (blocks until the context is canceled or
// Stop is called). Each tick passes the measured elapsed time, so a
// delayed tick does not lose simulation time.
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("tick manager started", "interval", m.interval)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("tick manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("tick manager stopped")
			return nil

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			m.tickAll(dt)
		}
	}
}

// Stop stops the tick loop.
func (m *TickManager) Stop() {
	close(m.stopCh)
}

// tickAll ticks all registered controllers with the same dt.
func (m *TickManager) tickAll(dt time.Duration) {
	count := 0

	m.controllers.Range(func(key, value any) bool {
		controller := value.(Controller)
		controller.Tick(dt)
		count++
		return true
	})

	if count > 0 && IsDebugEnabled() {
		slog.Debug("tick completed", "controllers", count, "dt", dt)
	}
}

// Count returns the number of registered controllers (O(1) cached count).
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// GetController returns the controller for the given agent.
func (m *TickManager) GetController(agentID uint32) (Controller, error) {
	value, ok := m.controllers.Load(agentID)
	if !ok {
		return nil, fmt.Errorf("controller not found for agent %d", agentID)
	}
	return value.(Controller), nil
}
