// internal/config/secrets.go
//
// Post-load resolution of `vault:` URIs.
//
// Context
// -------
// Operators keep secret material (database password, comments-service key)
// out of flat files by writing values like
//
//	vault:secret/campus#db_password
//
// After Load succeeds, main calls ResolveSecrets with a resolver (the
// internal/vault client in production, a stub in tests).  Each `vault:`
// value is replaced in place with the fetched secret; plain values pass
// through untouched.  Resolution failures abort startup.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const vaultPrefix = "vault:"

// secretTTL caches fetched secrets in the resolver so a Reload does not
// hammer Vault.
const secretTTL = 5 * time.Minute

// SecretResolver is satisfied by *vault.Client.
type SecretResolver interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// ResolveSecrets rewrites every `vault:` value in c.  It mutates c, which
// must not yet be shared with other goroutines.
func ResolveSecrets(ctx context.Context, c *Config, r SecretResolver) error {
	for _, field := range []*string{
		&c.Database.Password,
		&c.Comments.APIKey,
	} {
		resolved, err := resolveOne(ctx, *field, r)
		if err != nil {
			return err
		}
		*field = resolved
	}
	return nil
}

// resolveOne fetches one secret when val carries the vault prefix.
func resolveOne(ctx context.Context, val string, r SecretResolver) (string, error) {
	if !strings.HasPrefix(val, vaultPrefix) {
		return val, nil
	}

	ref := strings.TrimPrefix(val, vaultPrefix)
	path, key, ok := strings.Cut(ref, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("malformed vault reference %q (want vault:path#key)", val)
	}
	return r.GetKV(ctx, path, key, secretTTL)
}
