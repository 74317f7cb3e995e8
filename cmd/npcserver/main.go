package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"github.com/avolkhov/npcbrain/internal/ai"
	"github.com/avolkhov/npcbrain/internal/config"
	"github.com/avolkhov/npcbrain/internal/db"
	"github.com/avolkhov/npcbrain/internal/inspector"
	"github.com/avolkhov/npcbrain/internal/model"
	"github.com/avolkhov/npcbrain/internal/script"
	"github.com/avolkhov/npcbrain/internal/sim"
)

const ConfigPath = "config/npcserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("NPCBRAIN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("npcbrain server starting",
		"log_level", cfg.LogLevel,
		"tick_interval", cfg.TickInterval(),
		"agents", len(cfg.Agents))

	// Named routes come from the config file, overlaid by Postgres when enabled.
	routes := make(map[string][]mgl64.Vec3)
	for _, entry := range cfg.Routes {
		routes[entry.Name] = positionsToVecs(entry.Waypoints)
	}

	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		routeRepo := db.NewRouteRepository(database.Pool())
		stored, err := routeRepo.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("loading routes: %w", err)
		}
		for _, r := range stored {
			routes[r.Name()] = r.Waypoints()
		}
		slog.Info("patrol routes loaded from database", "count", len(stored))
	}

	// Optional scripted attack hook
	var hook *script.AttackHook
	if cfg.Script.AttackHook != "" {
		hook, err = script.NewAttackHook(cfg.Script.AttackHook)
		if err != nil {
			return fmt.Errorf("loading attack hook: %w", err)
		}
	}

	// Build the simulation
	simWorld := sim.New()
	simWorld.SetPlayerPosition(cfg.Player.Vec())

	for _, entry := range cfg.Agents {
		waypoints := positionsToVecs(entry.Waypoints)
		if entry.Route != "" {
			named, ok := routes[entry.Route]
			if !ok {
				return fmt.Errorf("agent %q: unknown route %q", entry.Name, entry.Route)
			}
			waypoints = named
		}

		// Each agent owns its route copy: the waypoint index is per-agent.
		route := model.NewPatrolRoute(entry.Route, waypoints)
		rt := simWorld.AddAgent(entry.Name, entry.Position.Vec(), entry.Config, route, nil)

		if hook != nil {
			navAgent := rt.NavAgent()
			rt.Machine().SetAttackFunc(func(agent *model.Agent, target mgl64.Vec3) {
				hook.Invoke(script.AttackContext{
					AgentName: agent.Name(),
					State:     agent.State().String(),
					Position:  navAgent.Position(),
					Player:    target,
				})
			})
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	// Tick manager drives every agent runtime
	tickMgr := ai.NewTickManager(cfg.TickInterval())
	simWorld.RegisterAll(tickMgr)
	g.Go(func() error {
		if err := tickMgr.Start(gctx); err != nil {
			return fmt.Errorf("tick manager: %w", err)
		}
		return nil
	})

	// Inspector websocket endpoint
	if cfg.Inspector.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.Inspector.BindAddress, cfg.Inspector.Port)
		snapshotInterval := time.Duration(max(1, cfg.Inspector.SnapshotEvery)) * cfg.TickInterval()
		insp := inspector.NewServer(addr, simWorld, snapshotInterval)
		g.Go(func() error {
			if err := insp.Run(gctx); err != nil {
				return fmt.Errorf("inspector: %w", err)
			}
			return nil
		})
	}

	// Attack hook hot reload
	if hook != nil && cfg.Script.Watch {
		watcher, err := script.NewWatcher(filepath.Dir(hook.Path()))
		if err != nil {
			return fmt.Errorf("watching attack hook: %w", err)
		}
		g.Go(func() error {
			defer watcher.Close()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case path, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if path != hook.Path() {
						continue
					}
					if err := hook.Reload(); err != nil {
						slog.Error("reloading attack hook", "error", err)
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					slog.Warn("script watcher", "error", err)
				}
			}
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// positionsToVecs converts config positions to world vectors.
func positionsToVecs(positions []config.Position) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, len(positions))
	for _, p := range positions {
		out = append(out, p.Vec())
	}
	return out
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
