package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "umrahtransfer/internal/config"
	intdb "umrahtransfer/internal/db"
	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
)

type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const routeColumns = `id, slug, origin, destination, distance_km, duration_min, base_price, active`

func scanRoute(row interface{ Scan(...any) error }) (models.Route, error) {
	var rt models.Route
	err := row.Scan(&rt.ID, &rt.Slug, &rt.Origin, &rt.Destination, &rt.DistanceKm, &rt.DurationMin, &rt.BasePrice, &rt.Active)
	return rt, err
}

// List returns routes with their fare overrides attached.
func (r RouteRepository) List(ctx context.Context, activeOnly bool) ([]models.Route, error) {
	q := `SELECT ` + routeColumns + ` FROM routes`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY origin ASC, destination ASC`

	rows, err := r.db().QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	out := []models.Route{}
	index := map[int64]int{}
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		index[rt.ID] = len(out)
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	fares, err := r.fares(ctx, `SELECT route_id, vehicle_id, price FROM route_fares ORDER BY route_id, vehicle_id`)
	if err != nil {
		return nil, err
	}
	for _, f := range fares {
		if i, ok := index[f.RouteID]; ok {
			out[i].Fares = append(out[i].Fares, f)
		}
	}
	return out, nil
}

func (r RouteRepository) Get(ctx context.Context, id int64) (models.Route, error) {
	rt, err := scanRoute(r.db().QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return rt, domain.NotFoundError{Resource: "route", Err: err}
	}
	if err != nil {
		return rt, fmt.Errorf("get route: %w", err)
	}
	rt.Fares, err = r.fares(ctx, `SELECT route_id, vehicle_id, price FROM route_fares WHERE route_id = ? ORDER BY vehicle_id`, id)
	return rt, err
}

func (r RouteRepository) fares(ctx context.Context, q string, args ...any) ([]models.RouteFare, error) {
	rows, err := r.db().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list route fares: %w", err)
	}
	defer rows.Close()

	var out []models.RouteFare
	for rows.Next() {
		var f models.RouteFare
		if err := rows.Scan(&f.RouteID, &f.VehicleID, &f.Price); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r RouteRepository) Create(ctx context.Context, rt models.Route) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO routes (slug, origin, destination, distance_km, duration_min, base_price, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rt.Slug, rt.Origin, rt.Destination, rt.DistanceKm, rt.DurationMin, rt.BasePrice, rt.Active)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return 0, domain.ConflictError{Resource: "route", Msg: fmt.Sprintf("slug %q already exists", rt.Slug), Err: err}
		}
		return 0, fmt.Errorf("insert route: %w", err)
	}
	return res.LastInsertId()
}

func (r RouteRepository) Update(ctx context.Context, rt models.Route) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE routes SET slug = ?, origin = ?, destination = ?, distance_km = ?, duration_min = ?, base_price = ?, active = ?
		WHERE id = ?`,
		rt.Slug, rt.Origin, rt.Destination, rt.DistanceKm, rt.DurationMin, rt.BasePrice, rt.Active, rt.ID)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return domain.ConflictError{Resource: "route", Msg: fmt.Sprintf("slug %q already exists", rt.Slug), Err: err}
		}
		return fmt.Errorf("update route: %w", err)
	}
	return requireAffected(res, "route")
}

// Delete behaves like VehicleRepository.Delete: referenced routes are retired.
func (r RouteRepository) Delete(ctx context.Context, id int64) (retired bool, err error) {
	var refs int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE route_id = ?`, id).Scan(&refs); err != nil {
		return false, fmt.Errorf("count route bookings: %w", err)
	}
	if refs > 0 {
		res, err := r.db().ExecContext(ctx, `UPDATE routes SET active = 0 WHERE id = ?`, id)
		if err != nil {
			return false, fmt.Errorf("retire route: %w", err)
		}
		return true, requireAffected(res, "route")
	}
	res, err := r.db().ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete route: %w", err)
	}
	return false, requireAffected(res, "route")
}

// ReplaceFares swaps the full fare table of one route atomically.
func (r RouteRepository) ReplaceFares(ctx context.Context, routeID int64, fares []models.RouteFare) error {
	return intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM route_fares WHERE route_id = ?`, routeID); err != nil {
			return fmt.Errorf("clear fares: %w", err)
		}
		for _, f := range fares {
			if _, err := tx.ExecContext(ctx, `INSERT INTO route_fares (route_id, vehicle_id, price) VALUES (?, ?, ?)`,
				routeID, f.VehicleID, f.Price); err != nil {
				return fmt.Errorf("insert fare vehicle %d: %w", f.VehicleID, err)
			}
		}
		return nil
	})
}

// UpsertBySlug is used by the catalog seeder.
func (r RouteRepository) UpsertBySlug(ctx context.Context, rt models.Route) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO routes (slug, origin, destination, distance_km, duration_min, base_price, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), origin = VALUES(origin), destination = VALUES(destination),
			distance_km = VALUES(distance_km), duration_min = VALUES(duration_min), base_price = VALUES(base_price)`,
		rt.Slug, rt.Origin, rt.Destination, rt.DistanceKm, rt.DurationMin, rt.BasePrice, rt.Active)
	if err != nil {
		return 0, fmt.Errorf("upsert route %s: %w", rt.Slug, err)
	}
	return res.LastInsertId()
}
