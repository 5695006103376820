// internal/session/session.go
//
// Campus – Session helpers.
//
// Context
//   Request handlers need a persisted "logged-in" identity between requests,
//   and the registration flow needs to know whether the visitor arrived
//   through an external authentication provider (the activation-email bypass
//   keys off that fact).  This scaffold keeps both in plain cookies:
//   "campus_session" carries the username, and "campus_extauth" carries the
//   provider name set by the external-auth callback.
//
//   Replace these helpers with a full session store backed by Redis, JWT, or
//   your preferred strategy.  Callers rely only on this tiny API, so swapping
//   the implementation is painless.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"
	"time"
)

const (
	cookieName  = "campus_session"
	extAuthName = "campus_extauth"
	// A robust implementation would AES-GCM-encrypt + HMAC-sign the payload.
)

// LoginUser sets a session cookie containing the username.
//
// Callers typically invoke this after credential verification succeeds, or
// right after account creation so the new user lands signed in.
func LoginUser(w http.ResponseWriter, r *http.Request, username string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    username, // TODO: encrypt + sign
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil, // only send over HTTPS
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// LogoutUser clears the session cookie.
func LogoutUser(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// CurrentUsername returns the username stored in the session, if any.
//
// ok == false when the cookie is missing or empty.
func CurrentUsername(r *http.Request) (username string, ok bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// MarkExternalAuth records that the visitor authenticated through the named
// external provider.  The registration handler reads this to decide whether
// the activation e-mail may be skipped.
func MarkExternalAuth(w http.ResponseWriter, r *http.Request, provider string) {
	http.SetCookie(w, &http.Cookie{
		Name:     extAuthName,
		Value:    provider,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(time.Hour),
	})
}

// ExternalAuthProvider returns the provider recorded by MarkExternalAuth.
func ExternalAuthProvider(r *http.Request) (provider string, ok bool) {
	c, err := r.Cookie(extAuthName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// ClearExternalAuth drops the external-auth marker, typically once the
// registration it gated has completed.
func ClearExternalAuth(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     extAuthName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
