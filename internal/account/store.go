// internal/account/store.go
//
// Account persistence helpers.
//
// Context
// -------
// CreateAccount is the transactional heart of registration: user, profile,
// and activation rows are written inside one transaction, so a failure at
// any step leaves no trace of the attempted account.  DeleteAccount is the
// compensating path the pipeline uses when a post-commit step fails and the
// half-registered user must disappear again.
//
// Queries use `?` placeholders for the MySQL wire protocol, matching the
// rest of the Campus data layer.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package account

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound is returned when a username has no matching user row.
var ErrNotFound = errors.New("account not found")

// Store wraps the shared *sqlx.DB.  Zero value is unusable; construct with
// NewStore.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// CreateAccount inserts the user, profile, and registration rows in one
// transaction and returns the new user ID plus the activation key.  The
// password is bcrypt-hashed before it touches the database.
func (s *Store) CreateAccount(ctx context.Context, acct *Account) (int64, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", fmt.Errorf("hash password: %w", err)
	}

	key, err := newActivationKey()
	if err != nil {
		return 0, "", err
	}

	meta, err := json.Marshal(metaOrEmpty(acct.Profile.Meta))
	if err != nil {
		return 0, "", fmt.Errorf("encode profile meta: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, "", err
	}
	defer tx.Rollback() // no-op after Commit

	res, err := tx.ExecContext(ctx, `
	    INSERT INTO user (username, email, password_hash, is_active, created_at)
	    VALUES (?, ?, ?, FALSE, NOW())`,
		acct.Username, acct.Email, string(hash))
	if err != nil {
		return 0, "", err
	}
	userID, err := res.LastInsertId()
	if err != nil {
		return 0, "", err
	}

	p := acct.Profile
	if _, err := tx.ExecContext(ctx, `
	    INSERT INTO user_profile
	           (user_id, name, level_of_education, gender, year_of_birth,
	            mailing_address, city, country, goals, meta)
	    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, p.Name, p.LevelOfEducation, p.Gender, p.YearOfBirth,
		p.MailingAddress, p.City, p.Country, p.Goals, meta); err != nil {
		return 0, "", err
	}

	if _, err := tx.ExecContext(ctx, `
	    INSERT INTO registration (user_id, activation_key)
	    VALUES (?, ?)`,
		userID, key); err != nil {
		return 0, "", err
	}

	if err := tx.Commit(); err != nil {
		return 0, "", err
	}
	return userID, key, nil
}

// DeleteAccount removes every row belonging to userID.  Used only as the
// compensating step after a post-commit registration failure.
func (s *Store) DeleteAccount(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM user_preference WHERE user_id = ?`,
		`DELETE FROM registration WHERE user_id = ?`,
		`DELETE FROM user_profile WHERE user_id = ?`,
		`DELETE FROM user WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ByUsername fetches one user row.  Callers distinguish a missing user via
// ErrNotFound.
func (s *Store) ByUsername(ctx context.Context, username string) (*Record, error) {
	const q = `
	    SELECT id, username, email, password_hash, is_active, created_at
	    FROM   user
	    WHERE  username = ?
	    LIMIT  1`
	var rec Record
	if err := s.db.GetContext(ctx, &rec, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ProfileByUserID fetches the profile row for one user.
func (s *Store) ProfileByUserID(ctx context.Context, userID int64) (*ProfileRecord, error) {
	const q = `
	    SELECT user_id, name, level_of_education, gender, year_of_birth,
	           mailing_address, city, country, goals, meta
	    FROM   user_profile
	    WHERE  user_id = ?
	    LIMIT  1`
	var rec ProfileRecord
	if err := s.db.GetContext(ctx, &rec, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// DecodeMeta unpacks the JSON meta column into a map.  An empty column
// yields an empty map, never nil.
func (r *ProfileRecord) DecodeMeta() (map[string]string, error) {
	if len(r.Meta) == 0 {
		return map[string]string{}, nil
	}
	out := map[string]string{}
	if err := json.Unmarshal(r.Meta, &out); err != nil {
		return nil, fmt.Errorf("decode profile meta: %w", err)
	}
	return out, nil
}

// newActivationKey returns 32 hex characters of CSPRNG output.
func newActivationKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("activation key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func metaOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
