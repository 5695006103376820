// cmd/web/main.go
//
// Campus – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (host-wide file → .env fallback).
//
//  2. Load and validate the typed config tree (YAML + env overlays).
//
//  3. Start daily rotating logger (tees to console when running in a TTY).
//
//  4. Resolve `vault:` secret references when a Vault address is present.
//
//  5. Open the MySQL pool and log the active-site count.
//
//  6. Build the site cache (lazy-loads each host on first hit), optional
//     GeoLite2 reader, and the request-enrichment middleware.
//
//  7. Initialize and mount every registered component, expose the
//     Prometheus /metrics endpoint, and wrap the router with the security
//     and HTTPS-enforcement middleware.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campushq/campus/internal/component"
	"github.com/campushq/campus/internal/config"
	"github.com/campushq/campus/internal/database"
	"github.com/campushq/campus/internal/logger"
	"github.com/campushq/campus/internal/middleware"
	"github.com/campushq/campus/internal/requestinfo"
	"github.com/campushq/campus/internal/server"
	"github.com/campushq/campus/internal/site"
	"github.com/campushq/campus/internal/vault"

	_ "github.com/campushq/campus/components/branding"
	_ "github.com/campushq/campus/components/student"
)

const serverEnvPath = "/usr/local/etc/campus/global.env"

// loadEnv prefers the host-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

// app satisfies component.AppInfo for component Init calls.
type app struct {
	db    *sqlx.DB
	cfg   *config.Config
	sites site.Resolver
	vault *vault.Client
}

func (a *app) GetDB() *sqlx.DB           { return a.db }
func (a *app) GetConfig() *config.Config { return a.cfg }
func (a *app) GetSites() site.Resolver   { return a.sites }
func (a *app) GetVault() *vault.Client   { return a.vault }

func main() {
	ctx := context.Background()

	//
	// ── 1.  Config ──────────────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	z, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer z.Sync()

	//
	// ── 2.  Vault secret resolution (optional) ──────────────────────────
	//
	var vaultCli *vault.Client
	if os.Getenv("VAULT_ADDR") != "" {
		vaultCli, err = vault.New(ctx, z.Warnf)
		if err != nil {
			z.Fatalw("vault client", "err", err)
		}
		if err := config.ResolveSecrets(ctx, cfg, vaultCli); err != nil {
			z.Fatalw("resolve secrets", "err", err)
		}
	}

	//
	// ── 3.  Database ────────────────────────────────────────────────────
	//
	dsn, err := database.BuildDSN(cfg.Database.DSN, cfg.Database.Password)
	if err != nil {
		z.Fatalw("build dsn", "err", err)
	}
	z.Infow("connecting to DB")
	db, err := database.Open(dsn)
	if err != nil {
		z.Fatalw("connect DB", "err", err)
	}
	defer db.Close()
	z.Infow("DB online")

	// Log active-site count as an early sanity check.
	var active int
	_ = db.Get(&active, `
	    SELECT COUNT(*) FROM site
	    WHERE suspended_at IS NULL AND deleted_at IS NULL`)
	z.Infow("sites found", "active", active)

	//
	// ── 4.  Site cache and request enrichment ───────────────────────────
	//
	sites := site.NewCache(db, site.IdleTTL, site.MaxEntries)

	if cfg.Geo.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
			z.Warnw("geo DB unavailable, lookups disabled",
				"path", cfg.Geo.DBPath, "err", err)
		}
	}

	//
	// ── 5.  Components ──────────────────────────────────────────────────
	//
	info := &app{db: db, cfg: cfg, sites: sites, vault: vaultCli}

	r := chi.NewRouter()
	r.Use(requestinfo.Enrich)
	r.Use(site.Middleware(sites, cfg.Branding.SiteName))
	r.Use(middleware.Security)
	r.Handle("/metrics", promhttp.Handler())

	for _, c := range component.All() {
		if err := c.Init(info); err != nil {
			z.Fatalw("component init", "component", c.Name(), "err", err)
		}
		// Re-register each component route on the root router; mounting
		// several components at "/" directly would collide.
		err := chi.Walk(c.Routes(),
			func(method, route string, h http.Handler, _ ...func(http.Handler) http.Handler) error {
				r.Method(method, route, h)
				return nil
			})
		if err != nil {
			z.Fatalw("component routes", "component", c.Name(), "err", err)
		}
		z.Infow("component mounted", "component", c.Name())
	}

	var handler http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(sites, handler)
	}

	//
	// ── 6.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, handler)
	z.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		z.Fatalw("http server", "err", err)
	}
}
