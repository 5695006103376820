// internal/account/preference.go
//
// Per-user key/value preference store.
//
// The `user_preference` table holds one row per (user_id, key); Set is an
// upsert so repeated writes of the same key replace the value.  Registration
// uses this for the language preference and the notification-digest
// preference; the profile page reads the whole map back.
package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// PreferenceStore wraps the shared *sqlx.DB.
type PreferenceStore struct {
	db *sqlx.DB
}

// NewPreferenceStore returns a PreferenceStore bound to db.
func NewPreferenceStore(db *sqlx.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Set inserts or replaces one preference.
func (p *PreferenceStore) Set(ctx context.Context, userID int64, key, value string) error {
	const q = `
	    INSERT INTO user_preference (user_id, ` + "`key`" + `, value)
	    VALUES (?, ?, ?)
	    ON DUPLICATE KEY UPDATE value = VALUES(value)`
	_, err := p.db.ExecContext(ctx, q, userID, key, value)
	return err
}

// Get returns the value for one key, or ("", nil) when absent.
func (p *PreferenceStore) Get(ctx context.Context, userID int64, key string) (string, error) {
	const q = `
	    SELECT value
	    FROM   user_preference
	    WHERE  user_id = ? AND ` + "`key`" + ` = ?
	    LIMIT  1`
	var value string
	err := p.db.GetContext(ctx, &value, q, userID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// All returns every preference for one user as a map.
func (p *PreferenceStore) All(ctx context.Context, userID int64) (map[string]string, error) {
	const q = `
	    SELECT ` + "`key`" + `, value
	    FROM   user_preference
	    WHERE  user_id = ?`
	rows := make([]struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}, 0, 8)

	if err := p.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, err
	}

	prefs := make(map[string]string, len(rows))
	for _, r := range rows {
		prefs[r.Key] = r.Value
	}
	return prefs, nil
}
