// internal/site/cache_test.go
//
// Unit-tests for the lazy site cache and the resolving middleware using
// sqlmock.
//
// Run: go test ./internal/site -v

package site

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockCache(t *testing.T) (*Cache, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCache(sqlx.NewDb(db, "sqlmock"), IdleTTL, MaxEntries), mock
}

func expectSiteLoad(mock sqlmock.Sqlmock, host string, id uint64) {
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, host, name, platform_name, suspended_at, deleted_at, created_at, updated_at FROM site WHERE host = ? AND suspended_at IS NULL AND deleted_at IS NULL LIMIT 1`,
	)).
		WithArgs(host).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "host", "name", "platform_name",
			"suspended_at", "deleted_at", "created_at", "updated_at",
		}).AddRow(id, host, "Campus", "CampusHQ", nil, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `key`, value FROM site_config WHERE site_id = ?",
	)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("SITE_NAME", host).
			AddRow("platform_name", "Branded Campus"))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT name FROM site_profile_field WHERE site_id = ? ORDER BY position`,
	)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("employee_id").
			AddRow("department"))
}

func TestCacheLoadsOnce(t *testing.T) {
	cache, mock := newMockCache(t)
	expectSiteLoad(mock, "alpha.example.org", 7)

	s, err := cache.Get("alpha.example.org")
	if err != nil {
		t.Fatalf("cold load: %v", err)
	}
	if s.Meta.ID != 7 {
		t.Fatalf("site id = %d, want 7", s.Meta.ID)
	}
	if got := s.Value("platform_name", "CampusHQ"); got != "Branded Campus" {
		t.Fatalf("platform_name override = %q", got)
	}
	if len(s.ExtendedProfileFields) != 2 || s.ExtendedProfileFields[0] != "employee_id" {
		t.Fatalf("profile fields = %v", s.ExtendedProfileFields)
	}

	// Warm hit must not touch the database.
	again, err := cache.Get("alpha.example.org")
	if err != nil {
		t.Fatalf("warm hit: %v", err)
	}
	if again != s {
		t.Fatal("warm hit returned a different aggregate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCacheUnknownHost(t *testing.T) {
	cache, mock := newMockCache(t)
	mock.ExpectQuery("SELECT id, host").
		WithArgs("nobody.example.org").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := cache.Get("nobody.example.org"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// stubResolver lets middleware tests run without a database.
type stubResolver struct {
	sites map[string]*Site
}

func (s *stubResolver) Get(host string) (*Site, error) {
	if site, ok := s.sites[host]; ok {
		return site, nil
	}
	return nil, ErrNotFound
}

func TestMiddlewareResolves(t *testing.T) {
	branded := &Site{Meta: Record{ID: 2, Host: "branded.example.org"}}
	def := &Site{Meta: Record{ID: 1, Host: "campus.example.org"}}
	res := &stubResolver{sites: map[string]*Site{
		"branded.example.org": branded,
		"campus.example.org":  def,
	}}

	var seen *Site
	h := Middleware(res, "campus.example.org")(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			seen = FromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "Branded.Example.Org:8443"
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != branded {
		t.Fatal("host with site row should resolve to that site")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "unknown.example.org"
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != def {
		t.Fatal("unknown host should fall back to the default site")
	}
}

func TestMiddlewareNoFallback(t *testing.T) {
	res := &stubResolver{sites: map[string]*Site{}}
	h := Middleware(res, "")(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run for an unresolvable host")
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "unknown.example.org"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
