// internal/config/secrets_test.go
//
// Unit-tests for vault-reference resolution and the extra-field
// requirement validation rule.

package config

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeResolver struct {
	secrets map[string]string
}

func (f *fakeResolver) GetKV(_ context.Context, path, key string, _ time.Duration) (string, error) {
	v, ok := f.secrets[path+"#"+key]
	if !ok {
		return "", fmt.Errorf("secret %s#%s not found", path, key)
	}
	return v, nil
}

func TestResolveSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Password = "vault:secret/campus#db_password"
	cfg.Comments.APIKey = "plain-key"

	r := &fakeResolver{secrets: map[string]string{
		"secret/campus#db_password": "s3cret",
	}}

	if err := ResolveSecrets(context.Background(), cfg, r); err != nil {
		t.Fatalf("ResolveSecrets error: %v", err)
	}
	if cfg.Database.Password != "s3cret" {
		t.Fatalf("password = %q, want resolved secret", cfg.Database.Password)
	}
	if cfg.Comments.APIKey != "plain-key" {
		t.Fatalf("plain value mutated: %q", cfg.Comments.APIKey)
	}
}

func TestResolveSecretsMalformedReference(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Password = "vault:no-key-part"

	err := ResolveSecrets(context.Background(), cfg, &fakeResolver{})
	if err == nil {
		t.Fatal("expected error for malformed reference, got nil")
	}
}

func TestExtraFieldStateValidation(t *testing.T) {
	cfg := validConfig()
	cfg.Registration.ExtraFields = map[string]string{"city": "required"}
	if err := validateStruct(cfg); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.Registration.ExtraFields = map[string]string{"city": "mandatory"}
	if err := validateStruct(cfg); err == nil {
		t.Fatal("unknown requirement state accepted")
	}
}

// validConfig returns the minimum passing aggregate.
func validConfig() *Config {
	return &Config{
		HTTP:     HTTP{ListenAddr: "localhost:8080"},
		Database: Database{DSN: "campus:%s@tcp(localhost:3306)/campus"},
		Branding: Branding{PlatformName: "Campus", SiteName: "campus.example.com"},
	}
}
