// internal/account/store_test.go
//
// Unit-tests for the account store using sqlmock.
//
// Run: go test ./internal/account -v

package account

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreateAccount(t *testing.T) {
	store, mock := newMockStore(t)

	year := 2015
	acct := &Account{
		Username: "test_user",
		Email:    "test@example.org",
		Password: "testpass",
		Profile: Profile{
			Name:        "Test User",
			City:        "Exampleton",
			Country:     "US",
			YearOfBirth: &year,
			Meta:        map[string]string{"extra1": "extra_value1"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO user (username, email, password_hash, is_active, created_at) VALUES (?, ?, ?, FALSE, NOW())`,
	)).
		WithArgs("test_user", "test@example.org", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO user_profile (user_id, name, level_of_education, gender, year_of_birth, mailing_address, city, country, goals, meta) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)).
		WithArgs(int64(42), "Test User", "", "", &year, "", "Exampleton", "US", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO registration (user_id, activation_key) VALUES (?, ?)`,
	)).
		WithArgs(int64(42), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	userID, key, err := store.CreateAccount(context.Background(), acct)
	if err != nil {
		t.Fatalf("CreateAccount error: %v", err)
	}
	if userID != 42 {
		t.Fatalf("userID = %d, want 42", userID)
	}
	if len(key) != 32 {
		t.Fatalf("activation key length = %d, want 32 hex chars", len(key))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateAccountRollsBackOnProfileError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO user (username, email, password_hash, is_active, created_at) VALUES (?, ?, ?, FALSE, NOW())`,
	)).
		WithArgs("test_user", "test@example.org", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO user_profile`,
	)).
		WillReturnError(errors.New("profile insert failed"))
	mock.ExpectRollback()

	_, _, err := store.CreateAccount(context.Background(), &Account{
		Username: "test_user",
		Email:    "test@example.org",
		Password: "testpass",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	for _, q := range []string{
		`DELETE FROM user_preference WHERE user_id = ?`,
		`DELETE FROM registration WHERE user_id = ?`,
		`DELETE FROM user_profile WHERE user_id = ?`,
		`DELETE FROM user WHERE id = ?`,
	} {
		mock.ExpectExec(regexp.QuoteMeta(q)).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	if err := store.DeleteAccount(context.Background(), 42); err != nil {
		t.Fatalf("DeleteAccount error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByUsernameNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, username, email, password_hash, is_active, created_at FROM user WHERE username = ? LIMIT 1`,
	)).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := store.ByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPreferenceSetAndAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	prefs := NewPreferenceStore(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO user_preference (user_id, `key`, value) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)",
	)).
		WithArgs(int64(7), "pref-lang", "eo").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := prefs.Set(context.Background(), 7, "pref-lang", "eo"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `key`, value FROM user_preference WHERE user_id = ?",
	)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("pref-lang", "eo").
			AddRow("notification_pref", "daily"))

	got, err := prefs.All(context.Background(), 7)
	if err != nil {
		t.Fatalf("All error: %v", err)
	}
	if got["pref-lang"] != "eo" || got["notification_pref"] != "daily" {
		t.Fatalf("unexpected preferences: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestDecodeMeta(t *testing.T) {
	rec := &ProfileRecord{Meta: []byte(`{"extra1":"extra_value1","extra2":""}`)}
	meta, err := rec.DecodeMeta()
	if err != nil {
		t.Fatalf("DecodeMeta error: %v", err)
	}
	if meta["extra1"] != "extra_value1" || meta["extra2"] != "" {
		t.Fatalf("unexpected meta: %#v", meta)
	}

	empty := &ProfileRecord{}
	meta, err = empty.DecodeMeta()
	if err != nil || meta == nil {
		t.Fatalf("empty column should decode to empty map, got %#v, %v", meta, err)
	}
}
