package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkhov/npcbrain/internal/model"
)

// ErrRouteNotFound is returned when a named route does not exist.
var ErrRouteNotFound = errors.New("patrol route not found")

// RouteRepository handles patrol route CRUD operations.
type RouteRepository struct {
	pool *pgxpool.Pool
}

// NewRouteRepository creates a new route repository.
func NewRouteRepository(pool *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{pool: pool}
}

// LoadAll loads every stored route with its waypoints in order.
func (r *RouteRepository) LoadAll(ctx context.Context) ([]*model.PatrolRoute, error) {
	query := `
		SELECT pr.name, w.x, w.y, w.z
		FROM patrol_routes pr
		JOIN waypoints w ON w.route_id = pr.route_id
		ORDER BY pr.route_id, w.seq
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading routes: %w", err)
	}
	defer rows.Close()

	var (
		routes    []*model.PatrolRoute
		name      string
		lastName  string
		waypoints []mgl64.Vec3
	)

	flush := func() {
		if lastName != "" {
			routes = append(routes, model.NewPatrolRoute(lastName, waypoints))
			waypoints = nil
		}
	}

	for rows.Next() {
		var x, y, z float64
		if err := rows.Scan(&name, &x, &y, &z); err != nil {
			return nil, fmt.Errorf("scanning waypoint row: %w", err)
		}
		if name != lastName {
			flush()
			lastName = name
		}
		waypoints = append(waypoints, mgl64.Vec3{x, y, z})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating waypoint rows: %w", err)
	}
	flush()

	return routes, nil
}

// LoadByName loads one route by name.
func (r *RouteRepository) LoadByName(ctx context.Context, name string) (*model.PatrolRoute, error) {
	var routeID int64
	err := r.pool.QueryRow(ctx,
		`SELECT route_id FROM patrol_routes WHERE name = $1`, name,
	).Scan(&routeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("route %q: %w", name, ErrRouteNotFound)
		}
		return nil, fmt.Errorf("querying route %q: %w", name, err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT x, y, z FROM waypoints WHERE route_id = $1 ORDER BY seq`, routeID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading waypoints for %q: %w", name, err)
	}
	defer rows.Close()

	var waypoints []mgl64.Vec3
	for rows.Next() {
		var x, y, z float64
		if err := rows.Scan(&x, &y, &z); err != nil {
			return nil, fmt.Errorf("scanning waypoint row: %w", err)
		}
		waypoints = append(waypoints, mgl64.Vec3{x, y, z})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating waypoint rows: %w", err)
	}

	return model.NewPatrolRoute(name, waypoints), nil
}

// Create stores a new named route and returns its ID.
func (r *RouteRepository) Create(ctx context.Context, name string, waypoints []mgl64.Vec3) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var routeID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO patrol_routes (name) VALUES ($1) RETURNING route_id`, name,
	).Scan(&routeID)
	if err != nil {
		return 0, fmt.Errorf("creating route %q: %w", name, err)
	}

	for i, wp := range waypoints {
		_, err = tx.Exec(ctx,
			`INSERT INTO waypoints (route_id, seq, x, y, z) VALUES ($1, $2, $3, $4, $5)`,
			routeID, i, wp.X(), wp.Y(), wp.Z(),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting waypoint %d of %q: %w", i, name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing route %q: %w", name, err)
	}

	return routeID, nil
}
