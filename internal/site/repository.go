// internal/site/repository.go
//
// Query helpers for the `site`, `site_config`, and `site_profile_field`
// tables.  The cache (cache.go) calls these once per cold load; handlers
// never touch them directly.
package site

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// ByHost fetches a single site row that is not suspended or deleted.  The
// caller supplies a context so the lookup respects request deadlines.
func ByHost(ctx context.Context, db *sqlx.DB, host string) (*Record, error) {
	const q = `
        SELECT id, host, name, platform_name,
               suspended_at, deleted_at, created_at, updated_at
        FROM   site
        WHERE  host = ?
          AND  suspended_at IS NULL
          AND  deleted_at   IS NULL
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, host); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ConfigBySite returns a map[key]value for one site_id.
func ConfigBySite(ctx context.Context, db *sqlx.DB, siteID uint64) (map[string]string, error) {
	const q = `
	    SELECT  ` + "`key`, value" + `
	    FROM    site_config
	    WHERE   site_id = ?`
	rows := make([]struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}, 0, 8) // small default cap

	if err := db.SelectContext(ctx, &rows, q, siteID); err != nil {
		return nil, err
	}

	cfg := make(map[string]string, len(rows))
	for _, r := range rows {
		cfg[r.Key] = r.Value
	}
	return cfg, nil
}

// ProfileFieldsBySite returns the site-declared custom profile fields in
// declared order.  These become required/optional via the deployment's
// extra-field map and are stored in the profile meta column.
func ProfileFieldsBySite(ctx context.Context, db *sqlx.DB, siteID uint64) ([]string, error) {
	const q = `
	    SELECT name
	    FROM   site_profile_field
	    WHERE  site_id = ?
	    ORDER  BY position`
	var names []string
	if err := db.SelectContext(ctx, &names, q, siteID); err != nil {
		return nil, err
	}
	return names, nil
}
