// components/branding/branding.go
//
// Campus branding component – footer API and footer static assets.
//
// Routes
//   GET  /api/branding/footer             – assembled footer JSON:
//                                           {"footer": {...}}.
//   GET  /api/branding/asset/*            – raw js/css contents from the
//                                           branding static dir.
//   POST /api/branding/footer/invalidate  – staff-only cache invalidation
//                                           for the current host.
//
//------------------------------------------------------------------------------

package branding

import (
	"encoding/json"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campushq/campus/internal/account"
	"github.com/campushq/campus/internal/acl"
	"github.com/campushq/campus/internal/auth"
	"github.com/campushq/campus/internal/branding"
	"github.com/campushq/campus/internal/component"
	"github.com/campushq/campus/internal/config"
	"github.com/campushq/campus/internal/session"
	"github.com/campushq/campus/internal/site"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// footerCacheCap bounds the per-host footer cache.
const footerCacheCap = 128

// Component serves footer data.
type Component struct {
	db       *sqlx.DB
	accounts *account.Store
	footer   *branding.Builder
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "branding" }

// Migrations returns nil – branding reads config and site tables only.
func (c *Component) Migrations() []string { return nil }

// Init builds the footer cache.
func (c *Component) Init(info component.AppInfo) error {
	c.db = info.GetDB()
	c.accounts = account.NewStore(c.db)
	c.footer = branding.NewBuilder(config.Get, footerCacheCap)
	return nil
}

// Routes builds and returns the router mounted at "/".
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/api/branding/footer", c.handleFooter)
	r.Get("/api/branding/asset/*", c.handleAsset)
	r.Post("/api/branding/footer/invalidate", c.staffOnly(c.handleInvalidate))
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleFooter(w http.ResponseWriter, r *http.Request) {
	f := c.footer.Footer(site.FromContext(r.Context()))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(map[string]any{"footer": f}); err != nil {
		zap.S().Errorw("write footer response", "err", err)
	}
}

func (c *Component) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")

	contents, err := branding.Static(config.Get().Branding.StaticDir, name)
	switch {
	case errors.Is(err, branding.ErrBadAssetPath), errors.Is(err, fs.ErrNotExist):
		http.NotFound(w, r)
		return
	case err != nil:
		zap.S().Errorw("read branding asset", "name", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if ctype := mime.TypeByExtension(filepath.Ext(name)); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	w.Write(contents)
}

// handleInvalidate drops the cached footer for the request's host so the
// next hit rebuilds against fresh config.
func (c *Component) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	host := ""
	if s := site.FromContext(r.Context()); s != nil {
		host = s.Meta.Host
	}
	c.footer.Invalidate(host)
	w.WriteHeader(http.StatusNoContent)
}

// staffOnly resolves the session user onto the context, then enforces the
// staff role via the ACL middleware.
func (c *Component) staffOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := session.CurrentUsername(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		rec, err := c.accounts.ByUsername(r.Context(), username)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		r = r.WithContext(auth.WithUser(r.Context(), rec.ID))
		acl.RequireRole(c.db.DB, acl.StaffRole)(next).ServeHTTP(w, r)
	}
}
