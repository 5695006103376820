// internal/acl/middleware.go
//
// Chi middleware helpers that enforce role checks.

package acl

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/campushq/campus/internal/auth"
)

// RequireRole ensures the current user possesses ANY of the supplied roles.
// The database handle is bound at construction since Campus serves every
// site from one schema.
func RequireRole(db *sql.DB, names ...string) func(http.Handler) http.Handler {
	if len(names) == 0 {
		panic("acl.RequireRole: at least one role name must be supplied")
	}
	allowSet := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowSet[n] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserID(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			roles, err := UserRoles(r.Context(), db, uid)
			if err != nil {
				zap.L().Error("acl user roles", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			for _, rname := range roles {
				if _, ok := allowSet[rname]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
