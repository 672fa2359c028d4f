package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intconfig "umrahtransfer/internal/config"
	intdb "umrahtransfer/internal/db"
	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
)

type PromotionRepository struct {
	DB *sql.DB
}

func (r PromotionRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const promotionColumns = `id, COALESCE(code,''), name, kind, value, valid_from, valid_to, route_id, vehicle_id,
	min_subtotal, automatic, active`

func scanPromotion(row interface{ Scan(...any) error }) (models.Promotion, error) {
	var (
		p                  models.Promotion
		routeID, vehicleID sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Kind, &p.Value, &p.ValidFrom, &p.ValidTo, &routeID, &vehicleID,
		&p.MinSubtotal, &p.Automatic, &p.Active)
	p.RouteID = intdb.Int64Ptr(routeID)
	p.VehicleID = intdb.Int64Ptr(vehicleID)
	return p, err
}

func (r PromotionRepository) query(ctx context.Context, q string, args ...any) ([]models.Promotion, error) {
	rows, err := r.db().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	out := []models.Promotion{}
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r PromotionRepository) List(ctx context.Context) ([]models.Promotion, error) {
	return r.query(ctx, `SELECT `+promotionColumns+` FROM promotions ORDER BY valid_from DESC, id DESC`)
}

// ListValidOn returns active promotions whose window covers day.
func (r PromotionRepository) ListValidOn(ctx context.Context, day time.Time) ([]models.Promotion, error) {
	d := day.Format("2006-01-02")
	return r.query(ctx, `SELECT `+promotionColumns+` FROM promotions
		WHERE active = 1 AND valid_from <= ? AND valid_to >= ?
		ORDER BY id ASC`, d, d)
}

// FindByCode ignores activity and dates so the pricing rules can explain
// why a known code does not apply.
func (r PromotionRepository) FindByCode(ctx context.Context, code string) (models.Promotion, error) {
	p, err := scanPromotion(r.db().QueryRowContext(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return p, domain.NotFoundError{Resource: "promotion", Err: err}
	}
	return p, err
}

func (r PromotionRepository) Get(ctx context.Context, id int64) (models.Promotion, error) {
	p, err := scanPromotion(r.db().QueryRowContext(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, domain.NotFoundError{Resource: "promotion", Err: err}
	}
	return p, err
}

func (r PromotionRepository) Create(ctx context.Context, p models.Promotion) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO promotions (code, name, kind, value, valid_from, valid_to, route_id, vehicle_id, min_subtotal, automatic, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		intdb.NullIfEmpty(p.Code), p.Name, p.Kind, p.Value, p.ValidFrom.Format("2006-01-02"), p.ValidTo.Format("2006-01-02"),
		intdb.NullInt64(p.RouteID), intdb.NullInt64(p.VehicleID), p.MinSubtotal, p.Automatic, p.Active)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return 0, domain.ConflictError{Resource: "promotion", Msg: fmt.Sprintf("code %q already exists", p.Code), Err: err}
		}
		return 0, fmt.Errorf("insert promotion: %w", err)
	}
	return res.LastInsertId()
}

func (r PromotionRepository) Update(ctx context.Context, p models.Promotion) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE promotions SET code = ?, name = ?, kind = ?, value = ?, valid_from = ?, valid_to = ?,
			route_id = ?, vehicle_id = ?, min_subtotal = ?, automatic = ?, active = ?
		WHERE id = ?`,
		intdb.NullIfEmpty(p.Code), p.Name, p.Kind, p.Value, p.ValidFrom.Format("2006-01-02"), p.ValidTo.Format("2006-01-02"),
		intdb.NullInt64(p.RouteID), intdb.NullInt64(p.VehicleID), p.MinSubtotal, p.Automatic, p.Active, p.ID)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return domain.ConflictError{Resource: "promotion", Msg: fmt.Sprintf("code %q already exists", p.Code), Err: err}
		}
		return fmt.Errorf("update promotion: %w", err)
	}
	return requireAffected(res, "promotion")
}

func (r PromotionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM promotions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	return requireAffected(res, "promotion")
}
