package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	intconfig "umrahtransfer/internal/config"
	intdb "umrahtransfer/internal/db"
	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
)

// VehicleRepository wraps DB access for the fleet.
type VehicleRepository struct {
	DB *sql.DB
}

func (r VehicleRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const vehicleColumns = `id, name, category, capacity, luggage, COALESCE(features,''), COALESCE(image_url,''),
	base_price, price_multiplier, active, sort_order, created_at, updated_at`

func scanVehicle(row interface{ Scan(...any) error }) (models.Vehicle, error) {
	var (
		v        models.Vehicle
		features string
	)
	if err := row.Scan(&v.ID, &v.Name, &v.Category, &v.Capacity, &v.Luggage, &features, &v.ImageURL,
		&v.BasePrice, &v.PriceMultiplier, &v.Active, &v.SortOrder, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return v, err
	}
	v.Features = []string{}
	if features != "" {
		if err := json.Unmarshal([]byte(features), &v.Features); err != nil {
			return v, fmt.Errorf("vehicle %d features: %w", v.ID, err)
		}
	}
	return v, nil
}

func encodeFeatures(f []string) (string, error) {
	if f == nil {
		f = []string{}
	}
	b, err := json.Marshal(f)
	return string(b), err
}

// List returns the fleet in display order; activeOnly hides retired vehicles.
func (r VehicleRepository) List(ctx context.Context, activeOnly bool) ([]models.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY sort_order ASC, id ASC`

	rows, err := r.db().QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	out := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r VehicleRepository) Get(ctx context.Context, id int64) (models.Vehicle, error) {
	v, err := scanVehicle(r.db().QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return v, domain.NotFoundError{Resource: "vehicle", Err: err}
	}
	return v, err
}

func (r VehicleRepository) Create(ctx context.Context, v models.Vehicle) (int64, error) {
	features, err := encodeFeatures(v.Features)
	if err != nil {
		return 0, err
	}
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO vehicles (name, category, capacity, luggage, features, image_url, base_price, price_multiplier, active, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Name, v.Category, v.Capacity, v.Luggage, features, intdb.NullIfEmpty(v.ImageURL),
		v.BasePrice, v.PriceMultiplier, v.Active, v.SortOrder)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return 0, domain.ConflictError{Resource: "vehicle", Msg: fmt.Sprintf("%q already exists", v.Name), Err: err}
		}
		return 0, fmt.Errorf("insert vehicle: %w", err)
	}
	return res.LastInsertId()
}

func (r VehicleRepository) Update(ctx context.Context, v models.Vehicle) error {
	features, err := encodeFeatures(v.Features)
	if err != nil {
		return err
	}
	res, err := r.db().ExecContext(ctx, `
		UPDATE vehicles SET name = ?, category = ?, capacity = ?, luggage = ?, features = ?, image_url = ?,
			base_price = ?, price_multiplier = ?, active = ?, sort_order = ?
		WHERE id = ?`,
		v.Name, v.Category, v.Capacity, v.Luggage, features, intdb.NullIfEmpty(v.ImageURL),
		v.BasePrice, v.PriceMultiplier, v.Active, v.SortOrder, v.ID)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return domain.ConflictError{Resource: "vehicle", Msg: fmt.Sprintf("%q already exists", v.Name), Err: err}
		}
		return fmt.Errorf("update vehicle: %w", err)
	}
	return requireAffected(res, "vehicle")
}

// Delete removes a vehicle. Vehicles referenced by bookings are retired
// (active = 0) instead so booking history keeps its vehicle.
func (r VehicleRepository) Delete(ctx context.Context, id int64) (retired bool, err error) {
	var refs int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE vehicle_id = ?`, id).Scan(&refs); err != nil {
		return false, fmt.Errorf("count vehicle bookings: %w", err)
	}
	if refs > 0 {
		res, err := r.db().ExecContext(ctx, `UPDATE vehicles SET active = 0 WHERE id = ?`, id)
		if err != nil {
			return false, fmt.Errorf("retire vehicle: %w", err)
		}
		return true, requireAffected(res, "vehicle")
	}
	res, err := r.db().ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete vehicle: %w", err)
	}
	return false, requireAffected(res, "vehicle")
}

// UpsertByName is used by the catalog seeder.
func (r VehicleRepository) UpsertByName(ctx context.Context, v models.Vehicle) (int64, error) {
	features, err := encodeFeatures(v.Features)
	if err != nil {
		return 0, err
	}
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO vehicles (name, category, capacity, luggage, features, image_url, base_price, price_multiplier, active, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), category = VALUES(category), capacity = VALUES(capacity),
			luggage = VALUES(luggage), features = VALUES(features), image_url = VALUES(image_url),
			base_price = VALUES(base_price), price_multiplier = VALUES(price_multiplier), sort_order = VALUES(sort_order)`,
		v.Name, v.Category, v.Capacity, v.Luggage, features, intdb.NullIfEmpty(v.ImageURL),
		v.BasePrice, v.PriceMultiplier, v.Active, v.SortOrder)
	if err != nil {
		return 0, fmt.Errorf("upsert vehicle %s: %w", v.Name, err)
	}
	return res.LastInsertId()
}

func requireAffected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
