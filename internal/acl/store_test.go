// internal/acl/store_test.go
//
// Unit-tests for acl store helpers using sqlmock.
//
// Run: go test ./internal/acl -v

package acl

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUserRoles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT r.name FROM user_role ur JOIN role r ON r.id = ur.role_id WHERE ur.user_id = ? AND r.enabled = TRUE`,
	)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("staff").AddRow("mentor"))

	got, err := UserRoles(context.Background(), db, 42)
	if err != nil {
		t.Fatalf("UserRoles error: %v", err)
	}
	if len(got) != 2 || got[0] != "staff" || got[1] != "mentor" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestIsStaff(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	q := regexp.QuoteMeta(
		`SELECT 1 FROM user_role ur JOIN role r ON r.id = ur.role_id WHERE ur.user_id = ? AND r.name = ? AND r.enabled = TRUE LIMIT 1`,
	)

	mock.ExpectQuery(q).
		WithArgs(int64(42), StaffRole).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ok, err := IsStaff(context.Background(), db, 42)
	if err != nil {
		t.Fatalf("IsStaff error: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok = true, got false")
	}

	// Second lookup finds no row: plain learner.
	mock.ExpectQuery(q).
		WithArgs(int64(7), StaffRole).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err = IsStaff(context.Background(), db, 7)
	if err != nil {
		t.Fatalf("IsStaff error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok = false for learner")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
