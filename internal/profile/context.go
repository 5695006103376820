// internal/profile/context.go
//
// Learner-profile page context.
//
// Context
// -------
// The profile page is a single-page view driven by one JSON document.  The
// builder loads the target account, applies the visibility rules, and
// assembles everything the page needs: filtered account settings,
// preference data, API URLs, image limits, and the country and language
// option lists.
//
// Visibility rules
// ----------------
//   - The owner and staff always see the full document.
//   - Anybody else sees it only when the target's `account_privacy`
//     preference (or the deployment default) is `all_users`, and then only
//     the configured public fields.
//   - A private target viewed by a non-owner, non-staff user yields
//     ErrNotAuthorized; a missing username yields account.ErrNotFound.
//     The HTTP layer maps those to 403 and 404.
//
// Notes
// -----
// • Image URLs may be stored relative; the caller passes an absolutizer so
//   the document always carries absolute URLs.
// • Oxford commas, two spaces after periods.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campushq/campus/internal/account"
	"github.com/campushq/campus/internal/config"
	"github.com/campushq/campus/internal/site"
)

// AccountPrivacyKey is the preference key holding the profile visibility.
const AccountPrivacyKey = "account_privacy"

// VisibilityAll and VisibilityPrivate are the two legal privacy states.
const (
	VisibilityAll     = "all_users"
	VisibilityPrivate = "private"
)

// imageKeyPrefix marks the account-settings keys that hold image URLs and
// therefore need absolutizing.
const imageKeyPrefix = "image_url"

// ErrNotAuthorized is returned when the viewer may not see the target
// profile.
var ErrNotAuthorized = errors.New("profile: not authorized")

// Viewer describes the logged-in user requesting the page.
type Viewer struct {
	UserID   int64
	Username string
	IsStaff  bool
}

// AccountReader is the slice of the account store the builder consumes.
type AccountReader interface {
	ByUsername(ctx context.Context, username string) (*account.Record, error)
	ProfileByUserID(ctx context.Context, userID int64) (*account.ProfileRecord, error)
}

// PreferenceReader reads the target user's preferences.
type PreferenceReader interface {
	All(ctx context.Context, userID int64) (map[string]string, error)
}

// Data is the page context document.  Wire names match what the page
// scripts expect.
type Data struct {
	ProfileUserID              int64             `json:"profile_user_id"`
	DefaultPublicAccountFields []string          `json:"default_public_account_fields"`
	DefaultVisibility          string            `json:"default_visibility"`
	AccountsAPIURL             string            `json:"accounts_api_url"`
	PreferencesAPIURL          string            `json:"preferences_api_url"`
	PreferencesData            map[string]string `json:"preferences_data,omitempty"`
	AccountSettings            map[string]any    `json:"account_settings"`
	ProfileImageUploadURL      string            `json:"profile_image_upload_url"`
	ProfileImageRemoveURL      string            `json:"profile_image_remove_url"`
	ProfileImageMaxBytes       int64             `json:"profile_image_max_bytes"`
	ProfileImageMinBytes       int64             `json:"profile_image_min_bytes"`
	AccountSettingsPageURL     string            `json:"account_settings_page_url"`
	HasPreferencesAccess       bool              `json:"has_preferences_access"`
	OwnProfile                 bool              `json:"own_profile"`
	CountryOptions             []CountryOption   `json:"country_options"`
	LanguageOptions            []string          `json:"language_options"`
	PlatformName               string            `json:"platform_name"`
}

// Builder assembles profile-page contexts.
type Builder struct {
	accounts AccountReader
	prefs    PreferenceReader
	cfg      func() *config.Config
}

// NewBuilder wires the builder to its stores and live config.
func NewBuilder(accounts AccountReader, prefs PreferenceReader, cfg func() *config.Config) *Builder {
	return &Builder{accounts: accounts, prefs: prefs, cfg: cfg}
}

// Build returns the page context for viewer looking at username.  absURL
// turns a relative URL into an absolute one for the current request; s may
// be nil when no site middleware ran.
func (b *Builder) Build(
	ctx context.Context,
	viewer Viewer,
	username string,
	absURL func(string) string,
	s *site.Site,
) (*Data, error) {
	cfg := b.cfg()

	rec, err := b.accounts.ByUsername(ctx, username)
	if err != nil {
		return nil, err // account.ErrNotFound passes through
	}
	prof, err := b.accounts.ProfileByUserID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	prefsData, err := b.prefs.All(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	own := viewer.Username == username
	privileged := own || viewer.IsStaff

	visibility := prefsData[AccountPrivacyKey]
	if visibility == "" {
		visibility = cfg.Profile.DefaultVisibility
	}
	if visibility == "" {
		visibility = VisibilityPrivate
	}
	if !privileged && visibility != VisibilityAll {
		return nil, ErrNotAuthorized
	}

	settings := accountSettings(rec, prof, privileged, cfg.Profile.PublicFields)
	absolutizeImages(settings, absURL)

	platform := cfg.Branding.PlatformName
	if s != nil {
		platform = s.Value("platform_name", platform)
	}

	data := &Data{
		ProfileUserID:              rec.ID,
		DefaultPublicAccountFields: cfg.Profile.PublicFields,
		DefaultVisibility:          cfg.Profile.DefaultVisibility,
		AccountsAPIURL:             fmt.Sprintf("/api/user/v1/accounts/%s", username),
		PreferencesAPIURL:          fmt.Sprintf("/api/user/v1/preferences/%s", username),
		AccountSettings:            settings,
		ProfileImageUploadURL:      fmt.Sprintf("/api/profile_images/%s/upload", username),
		ProfileImageRemoveURL:      fmt.Sprintf("/api/profile_images/%s/remove", username),
		ProfileImageMaxBytes:       cfg.Profile.ImageMaxBytes,
		ProfileImageMinBytes:       cfg.Profile.ImageMinBytes,
		AccountSettingsPageURL:     "/account/settings",
		HasPreferencesAccess:       privileged,
		OwnProfile:                 own,
		CountryOptions:             CountryOptions(),
		LanguageOptions:            cfg.Profile.Languages,
		PlatformName:               platform,
	}
	if privileged {
		data.PreferencesData = prefsData
	}
	return data, nil
}

// accountSettings flattens the user and profile rows into the settings map,
// filtered to public fields for unprivileged viewers.
func accountSettings(
	rec *account.Record,
	prof *account.ProfileRecord,
	privileged bool,
	publicFields []string,
) map[string]any {
	full := map[string]any{
		"username":           rec.Username,
		"name":               prof.Name,
		"email":              rec.Email,
		"level_of_education": prof.LevelOfEducation,
		"gender":             prof.Gender,
		"year_of_birth":      prof.YearOfBirth,
		"mailing_address":    prof.MailingAddress,
		"city":               prof.City,
		"country":            prof.Country,
		"goals":              prof.Goals,
		"profile_image": map[string]any{
			imageKeyPrefix + "_full":  defaultImage(rec.Username, "full"),
			imageKeyPrefix + "_small": defaultImage(rec.Username, "small"),
		},
	}
	if privileged {
		return full
	}

	shared := make(map[string]any, len(publicFields)+1)
	for _, f := range publicFields {
		if v, ok := full[f]; ok {
			shared[f] = v
		}
	}
	// The image block is always public; the page needs something to render.
	shared["profile_image"] = full["profile_image"]
	return shared
}

// defaultImage builds the placeholder image path until uploads land.
func defaultImage(username, size string) string {
	return fmt.Sprintf("/static/images/profiles/%s_%s.png", username, size)
}

// absolutizeImages rewrites relative image URLs in place.
func absolutizeImages(settings map[string]any, absURL func(string) string) {
	if absURL == nil {
		return
	}
	img, ok := settings["profile_image"].(map[string]any)
	if !ok {
		return
	}
	for k, v := range img {
		if !strings.HasPrefix(k, imageKeyPrefix) {
			continue
		}
		if s, ok := v.(string); ok {
			img[k] = absURL(s)
		}
	}
}
