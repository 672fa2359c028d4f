package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "umrahtransfer/internal/config"
	intdb "umrahtransfer/internal/db"
	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
)

// BookingRepository wraps DB access for bookings.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingSelect = `SELECT b.id, b.reference, b.status, b.trip_type, b.route_id, b.vehicle_id, COALESCE(v.name,''),
	b.pickup, b.dropoff, b.pickup_at, b.return_at, b.passengers, b.luggage, COALESCE(b.flight_number,''),
	b.customer_name, b.customer_phone, b.customer_email, COALESCE(b.notes,''), b.language, COALESCE(b.promo_code,''),
	b.subtotal, b.discount, b.total, b.currency, b.payment_status, COALESCE(b.payment_session_id,''),
	COALESCE(b.draft_id,''), b.created_at, b.updated_at
	FROM bookings b LEFT JOIN vehicles v ON v.id = b.vehicle_id`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var (
		b        models.Booking
		routeID  sql.NullInt64
		returnAt sql.NullTime
	)
	err := row.Scan(&b.ID, &b.Reference, &b.Status, &b.TripType, &routeID, &b.VehicleID, &b.VehicleName,
		&b.Pickup, &b.Dropoff, &b.PickupAt, &returnAt, &b.Passengers, &b.Luggage, &b.FlightNumber,
		&b.CustomerName, &b.CustomerPhone, &b.CustomerEmail, &b.Notes, &b.Language, &b.PromoCode,
		&b.Subtotal, &b.Discount, &b.Total, &b.Currency, &b.PaymentStatus, &b.PaymentSessionID,
		&b.DraftID, &b.CreatedAt, &b.UpdatedAt)
	b.RouteID = intdb.Int64Ptr(routeID)
	b.ReturnAt = intdb.TimePtr(returnAt)
	return b, err
}

func (r BookingRepository) Create(ctx context.Context, b models.Booking) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO bookings (reference, status, trip_type, route_id, vehicle_id, pickup, dropoff, pickup_at, return_at,
			passengers, luggage, flight_number, customer_name, customer_phone, customer_email, notes, language,
			promo_code, subtotal, discount, total, currency, payment_status, draft_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Reference, b.Status, b.TripType, intdb.NullInt64(b.RouteID), b.VehicleID, b.Pickup, b.Dropoff,
		b.PickupAt.UTC(), intdb.NullTime(b.ReturnAt), b.Passengers, b.Luggage, intdb.NullIfEmpty(b.FlightNumber),
		b.CustomerName, b.CustomerPhone, b.CustomerEmail, intdb.NullIfEmpty(b.Notes), b.Language,
		intdb.NullIfEmpty(b.PromoCode), b.Subtotal, b.Discount, b.Total, b.Currency, b.PaymentStatus,
		intdb.NullIfEmpty(b.DraftID))
	if err != nil {
		if intdb.IsDuplicate(err) {
			return 0, domain.ConflictError{Resource: "booking", Msg: "reference already used", Err: err}
		}
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	return res.LastInsertId()
}

func (r BookingRepository) getOne(ctx context.Context, where string, arg any) (models.Booking, error) {
	b, err := scanBooking(r.db().QueryRowContext(ctx, bookingSelect+` WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return b, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return b, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	return r.getOne(ctx, `b.id = ?`, id)
}

func (r BookingRepository) GetByReference(ctx context.Context, ref string) (models.Booking, error) {
	return r.getOne(ctx, `b.reference = ?`, ref)
}

func (r BookingRepository) GetByPaymentSession(ctx context.Context, sessionID string) (models.Booking, error) {
	return r.getOne(ctx, `b.payment_session_id = ?`, sessionID)
}

func bookingWhere(f models.BookingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, `b.status = ?`)
		args = append(args, f.Status)
	}
	if f.From != nil {
		conds = append(conds, `b.pickup_at >= ?`)
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		conds = append(conds, `b.pickup_at < ?`)
		args = append(args, f.To.UTC())
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + q + "%"
		conds = append(conds, `(b.reference LIKE ? OR b.customer_name LIKE ? OR b.customer_phone LIKE ? OR b.customer_email LIKE ?)`)
		args = append(args, like, like, like, like)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

// List pages through bookings matching f, newest pickup first.
func (r BookingRepository) List(ctx context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, int, error) {
	where, args := bookingWhere(f)

	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings b`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	p = p.Normalize()
	rows, err := r.db().QueryContext(ctx, bookingSelect+where+` ORDER BY b.pickup_at DESC, b.id DESC LIMIT ? OFFSET ?`,
		append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	out, err := collectBookings(rows)
	return out, total, err
}

// Each streams every booking matching f to fn, oldest pickup first.
func (r BookingRepository) Each(ctx context.Context, f models.BookingFilter, fn func(models.Booking) error) error {
	where, args := bookingWhere(f)
	rows, err := r.db().QueryContext(ctx, bookingSelect+where+` ORDER BY b.pickup_at ASC, b.id ASC`, args...)
	if err != nil {
		return fmt.Errorf("export bookings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
	}
	return rows.Err()
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	defer rows.Close()
	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus moves a booking only if it is still in status from, so two
// concurrent admins cannot both apply a transition.
func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to models.BookingStatus) error {
	res, err := r.db().ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("status is no longer %s", from)}
	}
	return nil
}

func (r BookingRepository) UpdatePrice(ctx context.Context, id int64, subtotal, discount, total int64) error {
	res, err := r.db().ExecContext(ctx, `UPDATE bookings SET subtotal = ?, discount = ?, total = ? WHERE id = ?`,
		subtotal, discount, total, id)
	if err != nil {
		return fmt.Errorf("update booking price: %w", err)
	}
	return requireAffected(res, "booking")
}

func (r BookingRepository) SetPaymentSession(ctx context.Context, id int64, sessionID string) error {
	res, err := r.db().ExecContext(ctx, `UPDATE bookings SET payment_session_id = ? WHERE id = ?`, sessionID, id)
	if err != nil {
		return fmt.Errorf("set payment session: %w", err)
	}
	return requireAffected(res, "booking")
}

func (r BookingRepository) SetPaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) error {
	res, err := r.db().ExecContext(ctx, `UPDATE bookings SET payment_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	return requireAffected(res, "booking")
}

// ListFinishedBefore returns confirmed bookings whose last leg started
// before cutoff.
func (r BookingRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	rows, err := r.db().QueryContext(ctx, bookingSelect+`
		WHERE b.status = ? AND COALESCE(b.return_at, b.pickup_at) < ?
		ORDER BY b.pickup_at ASC LIMIT 500`, models.StatusConfirmed, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("list finished bookings: %w", err)
	}
	return collectBookings(rows)
}

// Stats aggregates the dashboard header; dayStart/dayEnd bound "today".
func (r BookingRepository) Stats(ctx context.Context, dayStart, dayEnd time.Time) (models.BookingStats, error) {
	st := models.BookingStats{ByStatus: map[models.BookingStatus]int{}}

	rows, err := r.db().QueryContext(ctx, `SELECT status, COUNT(*),
		COALESCE(SUM(CASE WHEN status IN ('confirmed','completed') THEN total ELSE 0 END), 0)
		FROM bookings GROUP BY status`)
	if err != nil {
		return st, fmt.Errorf("booking stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status  models.BookingStatus
			n       int
			revenue int64
		)
		if err := rows.Scan(&status, &n, &revenue); err != nil {
			return st, err
		}
		st.ByStatus[status] = n
		st.Revenue += revenue
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	err = r.db().QueryRowContext(ctx, `SELECT
		COALESCE(SUM(CASE WHEN pickup_at >= ? AND pickup_at < ? AND status IN ('pending','confirmed') THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN created_at >= ? AND created_at < ? THEN 1 ELSE 0 END), 0)
		FROM bookings`, dayStart.UTC(), dayEnd.UTC(), dayStart.UTC(), dayEnd.UTC()).Scan(&st.PickupsToday, &st.CreatedToday)
	if err != nil {
		return st, fmt.Errorf("booking stats today: %w", err)
	}
	return st, nil
}
