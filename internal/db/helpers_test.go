package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestIsDuplicate(t *testing.T) {
	dup := fmt.Errorf("insert vehicle: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	if !IsDuplicate(dup) {
		t.Fatalf("expected wrapped 1062 to be duplicate")
	}
	if IsDuplicate(&mysql.MySQLError{Number: 1452}) {
		t.Fatalf("foreign key error is not a duplicate")
	}
	if IsDuplicate(errors.New("boom")) {
		t.Fatalf("plain error is not a duplicate")
	}
}

func TestNullHelpers(t *testing.T) {
	if NullIfEmpty("") != nil || NullIfEmpty("x") != "x" {
		t.Fatalf("NullIfEmpty mismatch")
	}
	if NullInt64(nil) != nil {
		t.Fatalf("NullInt64(nil) should be nil")
	}
	if p := Int64Ptr(sql.NullInt64{Int64: 4, Valid: true}); p == nil || *p != 4 {
		t.Fatalf("Int64Ptr mismatch")
	}
	if TimePtr(sql.NullTime{}) != nil {
		t.Fatalf("TimePtr of invalid should be nil")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM route_fares").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()

	wantErr := errors.New("insert failed")
	err = WithTx(context.Background(), conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM route_fares WHERE route_id = ?", 1); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithTxCommits(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()
	if err := WithTx(context.Background(), conn, func(*sql.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	if len(ups) == 0 {
		t.Fatalf("no migrations embedded")
	}
	for k := range ups {
		if !downs[k] {
			t.Fatalf("migration %s has no down file", k)
		}
	}
}
