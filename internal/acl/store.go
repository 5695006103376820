// internal/acl/store.go
//
// Small query helpers for role-based access control.
//
// Context
// -------
// Campus keeps its role model next to the account tables:
//
//	role        (id PK, name, enabled)
//	user_role   (user_id, role_id)
//
// The profile component needs fast answers to two questions:
//  1. Which *role names* does user X have?    → `UserRoles()`
//  2. Is user X staff?                        → `IsStaff()`
//
// Staff may view any learner profile regardless of its visibility setting,
// so IsStaff sits on the hot path of every profile request.  The helpers
// accept a plain *sql.DB and perform simple parameterised queries; callers
// may wrap the results in their own per-request cache.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package acl

import (
	"context"
	"database/sql"
)

// StaffRole is the role name that unlocks cross-user profile access.
const StaffRole = "staff"

// UserRoles returns the role *names* bound to userID.  Disabled roles are
// filtered out.
func UserRoles(ctx context.Context, db *sql.DB, userID int64) ([]string, error) {
	const q = `SELECT r.name
                 FROM user_role ur
                 JOIN role r ON r.id = ur.role_id
                WHERE ur.user_id = ? AND r.enabled = TRUE`

	rows, err := db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]string, 0, 4)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

// IsStaff reports whether userID carries the staff role.  One indexed
// lookup with an early exit.
func IsStaff(ctx context.Context, db *sql.DB, userID int64) (bool, error) {
	const q = `SELECT 1
                 FROM user_role ur
                 JOIN role r ON r.id = ur.role_id
                WHERE ur.user_id = ?
                  AND r.name     = ?
                  AND r.enabled  = TRUE
                LIMIT 1`

	var dummy int
	err := db.QueryRowContext(ctx, q, userID, StaffRole).Scan(&dummy)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
