// internal/site/middleware.go
//
// Request middleware that resolves the Host header to a Site and stores it
// on the request context.  Unknown hosts fall back to the default site when
// one is configured; with no fallback, the request is rejected.
package site

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type ctxKey struct{}

// FromContext returns the Site resolved for this request, or nil.
func FromContext(ctx context.Context) *Site {
	s, _ := ctx.Value(ctxKey{}).(*Site)
	return s
}

// WithSite returns a child context carrying s.  Exposed for tests and for
// callers that resolve a site outside the middleware.
func WithSite(ctx context.Context, s *Site) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// Resolver is the lookup surface Middleware consumes.  *Cache satisfies it.
type Resolver interface {
	Get(host string) (*Site, error)
}

// Middleware resolves the request host against r.  defaultHost, when
// non-empty, is used for hosts that have no site row.
func Middleware(r Resolver, defaultHost string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			host := normalizeHost(req.Host)

			s, err := r.Get(host)
			if errors.Is(err, ErrNotFound) && defaultHost != "" && host != defaultHost {
				s, err = r.Get(defaultHost)
			}
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					http.Error(w, "unknown site", http.StatusNotFound)
					return
				}
				zap.S().Errorw("site resolve failed", "host", host, "error", err)
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, req.WithContext(WithSite(req.Context(), s)))
		})
	}
}

// normalizeHost strips any port and lowercases the name.
func normalizeHost(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		hostport = h
	}
	return strings.ToLower(hostport)
}
