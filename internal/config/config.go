package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/avolkhov/npcbrain/internal/model"
)

// Server holds all configuration for the simulation server.
type Server struct {
	// Logging
	LogLevel string `yaml:"log_level"`

	// Simulation
	TickIntervalMS int          `yaml:"tick_interval_ms"`
	Player         Position     `yaml:"player"`
	Agents         []AgentEntry `yaml:"agents"`
	Routes         []RouteEntry `yaml:"routes"`

	// Inspector websocket endpoint
	Inspector InspectorConfig `yaml:"inspector"`

	// Optional Postgres route storage
	Database DatabaseConfig `yaml:"database"`

	// Optional scripted attack hook
	Script ScriptConfig `yaml:"script"`
}

// Position is a world coordinate in YAML.
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec returns the position as an mgl64 vector.
func (p Position) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// AgentEntry declares one NPC agent.
type AgentEntry struct {
	Name      string            `yaml:"name"`
	Position  Position          `yaml:"position"`
	Route     string            `yaml:"route"`     // named route (DB or routes section)
	Waypoints []Position        `yaml:"waypoints"` // inline route, used when Route is empty
	Config    model.AgentConfig `yaml:"config"`
}

// RouteEntry declares a named patrol route inline in the config file.
type RouteEntry struct {
	Name      string     `yaml:"name"`
	Waypoints []Position `yaml:"waypoints"`
}

// InspectorConfig configures the websocket inspector endpoint.
type InspectorConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	// SnapshotEvery broadcasts a snapshot every N ticks.
	SnapshotEvery int `yaml:"snapshot_every"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// ScriptConfig configures the tengo attack hook.
type ScriptConfig struct {
	// AttackHook is the path to a .tengo script defining on_attack.
	// Empty disables scripting.
	AttackHook string `yaml:"attack_hook"`
	// Watch reloads the script when the file changes.
	Watch bool `yaml:"watch"`
}

// TickInterval returns the tick interval as a Duration.
func (s Server) TickInterval() time.Duration {
	return time.Duration(s.TickIntervalMS) * time.Millisecond
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel:       "info",
		TickIntervalMS: 100,
		Inspector: InspectorConfig{
			Enabled:       false,
			BindAddress:   "127.0.0.1",
			Port:          8089,
			SnapshotEvery: 5,
		},
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "npcbrain",
			Password: "npcbrain",
			DBName:   "npcbrain",
			SSLMode:  "disable",
		},
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	for i := range cfg.Agents {
		if cfg.Agents[i].Config == (model.AgentConfig{}) {
			cfg.Agents[i].Config = model.DefaultAgentConfig()
		}
		if err := cfg.Agents[i].Config.Validate(); err != nil {
			return cfg, fmt.Errorf("agent %q: %w", cfg.Agents[i].Name, err)
		}
	}

	return cfg, nil
}
