// Package script runs the optional tengo attack hook.
package script

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
)

// attackDispatchScript is appended to the user script so the compiled
// program calls the expected entry point on every run.
const attackDispatchScript = `
on_attack(__engine)
`

// AttackContext is the data exposed to the script for one invocation.
type AttackContext struct {
	AgentName string
	State     string
	Position  mgl64.Vec3
	Player    mgl64.Vec3
}

// AttackHook compiles a tengo script exposing on_attack(engine) and
// invokes it on every Attack-state tick. Script failures are logged and
// degrade to a no-op; they never reach the state machine.
type AttackHook struct {
	mu       sync.Mutex
	path     string
	compiled *tengo.Compiled
}

// NewAttackHook loads and compiles the script at path.
func NewAttackHook(path string) (*AttackHook, error) {
	h := &AttackHook{path: path}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Path returns the script path.
func (h *AttackHook) Path() string {
	return h.path
}

// Reload recompiles the script from disk. On error the previous
// compiled program stays active.
func (h *AttackHook) Reload() error {
	src, err := os.ReadFile(h.path)
	if err != nil {
		return fmt.Errorf("reading attack hook %s: %w", h.path, err)
	}

	script := tengo.NewScript(append(src, []byte(attackDispatchScript)...))
	_ = script.Add("__engine", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("compiling attack hook %s: %w", h.path, err)
	}

	h.mu.Lock()
	h.compiled = compiled
	h.mu.Unlock()

	slog.Info("attack hook loaded", "path", h.path)
	return nil
}

// Invoke runs on_attack with an engine built from ctx.
func (h *AttackHook) Invoke(ctx AttackContext) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.compiled == nil {
		return
	}

	// The tengo VM panics on some runtime faults (integer division by
	// zero, for one) instead of returning an error. Contain them here so
	// a buggy script never takes down the tick loop.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("attack hook panic", "agent", ctx.AgentName, "error", r)
		}
	}()

	if err := h.compiled.Set("__engine", buildEngine(ctx)); err != nil {
		slog.Error("attack hook engine binding", "agent", ctx.AgentName, "error", err)
		return
	}
	if err := h.compiled.Run(); err != nil {
		slog.Error("attack hook run", "agent", ctx.AgentName, "error", err)
	}
}

// buildEngine exposes the invocation context as script functions.
func buildEngine(ctx AttackContext) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["agent_name"] = &tengo.UserFunction{Name: "agent_name", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: ctx.AgentName}, nil
	}}

	values["state"] = &tengo.UserFunction{Name: "state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: ctx.State}, nil
	}}

	values["get_position"] = &tengo.UserFunction{Name: "get_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vecToArray(ctx.Position), nil
	}}

	values["get_player_position"] = &tengo.UserFunction{Name: "get_player_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vecToArray(ctx.Player), nil
	}}

	values["distance"] = &tengo.UserFunction{Name: "distance", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: ctx.Player.Sub(ctx.Position).Len()}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		msg, _ := tengo.ToString(args[0])
		slog.Info("attack hook", "agent", ctx.AgentName, "msg", msg)
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vecToArray(v mgl64.Vec3) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: v.X()},
		&tengo.Float{Value: v.Y()},
		&tengo.Float{Value: v.Z()},
	}}
}
