package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var bookingCols = []string{"id", "reference", "status", "trip_type", "route_id", "vehicle_id", "vehicle_name",
	"pickup", "dropoff", "pickup_at", "return_at", "passengers", "luggage", "flight_number",
	"customer_name", "customer_phone", "customer_email", "notes", "language", "promo_code",
	"subtotal", "discount", "total", "currency", "payment_status", "payment_session_id",
	"draft_id", "created_at", "updated_at"}

func bookingRow(rows *sqlmock.Rows, id int64, ref string, status models.BookingStatus) *sqlmock.Rows {
	pickup := time.Date(2025, 3, 2, 7, 0, 0, 0, time.UTC)
	return rows.AddRow(id, ref, status, "one_way", int64(1), int64(7), "GMC Yukon",
		"Jeddah Airport", "Makkah", pickup, nil, 3, 2, "SV 1234",
		"Aisha", "+966501234567", "aisha@example.com", "", "en", "",
		int64(450), int64(0), int64(450), "SAR", "unpaid", "",
		"", pickup, pickup)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestBookingCreateAndDuplicateReference(t *testing.T) {
	db, mock := newMock(t)
	repo := BookingRepository{DB: db}
	b := models.Booking{
		Reference: "UMR-250302-ABC123", Status: models.StatusPending, TripType: models.OneWay,
		VehicleID: 7, Pickup: "A", Dropoff: "B", PickupAt: time.Now(), Passengers: 1,
		CustomerName: "Aisha", CustomerPhone: "+966501234567", CustomerEmail: "a@example.com",
		Language: "en", Currency: "SAR", PaymentStatus: models.PaymentUnpaid,
	}

	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(42, 1))
	id, err := repo.Create(context.Background(), b)
	if err != nil || id != 42 {
		t.Fatalf("create: id=%d err=%v", id, err)
	}

	mock.ExpectExec("INSERT INTO bookings").WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	if _, err := repo.Create(context.Background(), b); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingGetByReference(t *testing.T) {
	db, mock := newMock(t)
	repo := BookingRepository{DB: db}

	mock.ExpectQuery("FROM bookings b LEFT JOIN vehicles v .* WHERE b.reference = \\?").
		WithArgs("UMR-250302-ABC123").
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingCols), 5, "UMR-250302-ABC123", models.StatusPending))
	b, err := repo.GetByReference(context.Background(), "UMR-250302-ABC123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.ID != 5 || b.VehicleName != "GMC Yukon" || b.RouteID == nil || *b.RouteID != 1 || b.ReturnAt != nil {
		t.Fatalf("unexpected booking: %+v", b)
	}

	mock.ExpectQuery("WHERE b.reference = \\?").WithArgs("missing").WillReturnRows(sqlmock.NewRows(bookingCols))
	if _, err := repo.GetByReference(context.Background(), "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBookingListAppliesFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := BookingRepository{DB: db}
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM bookings b WHERE b.status = \\? AND b.pickup_at >= \\? AND \\(b.reference LIKE").
		WithArgs(models.StatusConfirmed, from, "%aisha%", "%aisha%", "%aisha%", "%aisha%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("ORDER BY b.pickup_at DESC, b.id DESC LIMIT \\? OFFSET \\?").
		WithArgs(models.StatusConfirmed, from, "%aisha%", "%aisha%", "%aisha%", "%aisha%", 20, 20).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingCols), 9, "UMR-250302-XYZ999", models.StatusConfirmed))

	list, total, err := repo.List(context.Background(),
		models.BookingFilter{Status: models.StatusConfirmed, From: &from, Query: " aisha "},
		domain.Pagination{Page: 2, PageSize: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].Reference != "UMR-250302-XYZ999" {
		t.Fatalf("unexpected list result total=%d list=%+v", total, list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingUpdateStatusIsConditional(t *testing.T) {
	db, mock := newMock(t)
	repo := BookingRepository{DB: db}

	mock.ExpectExec("UPDATE bookings SET status = \\? WHERE id = \\? AND status = \\?").
		WithArgs(models.StatusConfirmed, int64(3), models.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.UpdateStatus(context.Background(), 3, models.StatusPending, models.StatusConfirmed); err != nil {
		t.Fatalf("update status: %v", err)
	}

	mock.ExpectExec("UPDATE bookings SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.UpdateStatus(context.Background(), 3, models.StatusPending, models.StatusConfirmed); !domain.IsConflict(err) {
		t.Fatalf("expected conflict on lost race, got %v", err)
	}
}

func TestBookingStats(t *testing.T) {
	db, mock := newMock(t)
	repo := BookingRepository{DB: db}
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM bookings GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "revenue"}).
			AddRow("pending", 4, 0).
			AddRow("confirmed", 2, 900).
			AddRow("completed", 1, 300))
	mock.ExpectQuery("SELECT\\s+COALESCE").
		WithArgs(start, start.Add(24*time.Hour), start, start.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"pickups", "created"}).AddRow(3, 5))

	st, err := repo.Stats(context.Background(), start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.ByStatus[models.StatusPending] != 4 || st.Revenue != 1200 || st.PickupsToday != 3 || st.CreatedToday != 5 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}
