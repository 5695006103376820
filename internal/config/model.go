// internal/config/model.go
//
// Typed configuration model for Campus.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/campus.yaml`                       – primary static file,
//   • `CAMPUS_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client after unmarshalling (see secrets.go), so the
// rest of the app never sees Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing or an extra-field requirement uses an
// unknown state.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the DSN template and its secret.  The template stays in
// YAML so operators can tweak host, port, or flags without touching Vault;
// the password may be a `vault:` URI resolved at boot.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
}

//
// Features section
//

// Features are the deployment flags that change registration and branding
// behavior.  All default to off.
type Features struct {
	BrandedDomain                   bool `koanf:"branded_domain"`
	BypassActivationEmailForExtauth bool `koanf:"bypass_activation_email_for_extauth"`
	EnableDiscussionService         bool `koanf:"enable_discussion_service"`
	EnableDiscussionEmailDigest     bool `koanf:"enable_discussion_email_digest"`
}

//
// Registration section
//

// Registration configures the extra-field requirement map consumed by the
// validator.  Keys are extra-field names; values are one of hidden,
// optional, or required.  honor_code may appear here to relax its
// required-by-default status.
type Registration struct {
	ExtraFields     map[string]string `koanf:"extra_fields" validate:"dive,oneof=hidden optional required"`
	DefaultLanguage string            `koanf:"default_language"`
}

//
// Branding section
//

// Branding drives the footer endpoint: platform identity, the ordered
// social-provider list with its display and URL maps, and the marketing
// link map for the about block.
type Branding struct {
	PlatformName   string            `koanf:"platform_name" validate:"required"`
	SiteName       string            `koanf:"site_name"     validate:"required"`
	SocialNames    []string          `koanf:"social_names"`
	SocialTitles   map[string]string `koanf:"social_titles"`
	SocialURLs     map[string]string `koanf:"social_urls"`
	MarketingLinks map[string]string `koanf:"marketing_links"`
	MarketingURLs  map[string]string `koanf:"marketing_urls"`
	StaticDir      string            `koanf:"static_dir"`
}

//
// Profile section
//

// Profile configures the learner-profile page context.
type Profile struct {
	PublicFields      []string `koanf:"public_fields"`
	DefaultVisibility string   `koanf:"default_visibility" validate:"omitempty,oneof=all_users private"`
	ImageMaxBytes     int64    `koanf:"image_max_bytes"`
	ImageMinBytes     int64    `koanf:"image_min_bytes"`
	Languages         []string `koanf:"languages"`
}

//
// Comments section
//

// Comments points at the external discussion service.  The key may be a
// `vault:` URI.
type Comments struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

//
// Geo section
//

// Geo locates the optional GeoLite2 database used by request enrichment.
// An empty path disables geo lookups.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or CAMPUS_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // CAMPUS_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP         HTTP         `koanf:"http"`
	Database     Database     `koanf:"database"`
	Features     Features     `koanf:"features"`
	Registration Registration `koanf:"registration"`
	Branding     Branding     `koanf:"branding"`
	Profile      Profile      `koanf:"profile"`
	Comments     Comments     `koanf:"comments"`
	Geo          Geo          `koanf:"geo"`
	Paths        Paths        `koanf:"-"` // not loaded from config files
}
