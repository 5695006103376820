// internal/registration/creator.go
//
// Campus – Registration subsystem: post-validation creation pipeline.
//
// Context
//   Once a submission passes Validate, the Creator turns it into a durable
//   account plus its side effects: preference writes, the activation e-mail,
//   and the discussion-service companion account.  The store persists the
//   user, profile, and activation rows in one transaction, so a failure in
//   that step leaves no record behind.  Preference writes happen after the
//   commit; when one fails we delete the account again rather than leave a
//   half-registered user visible.  Discussion-service provisioning runs
//   last: its failure never rolls back, but the Outcome records that the
//   call was attempted.
//
// Workflow
//   •  Create builds the Account from the submission (silent year-of-birth
//      coercion, raw extra-field values, custom-field meta), persists it,
//      writes preferences, dispatches the activation e-mail unless the
//      external-auth bypass applies, then provisions the discussion user.
//   •  Collaborators are narrow interfaces so handlers and tests can inject
//      fakes; the package owns no connections of its own.
//
//------------------------------------------------------------------------------

package registration

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/campushq/campus/internal/account"
)

// Preference keys written during registration.
const (
	LanguageKey           = "pref-lang"
	NotificationDigestKey = "notification_pref"
)

// -----------------------------------------------------------------------------
// Collaborator contracts
// -----------------------------------------------------------------------------

// Store persists the account aggregate.  CreateAccount must be atomic: on
// error no user, profile, or activation row may remain.
type Store interface {
	CreateAccount(ctx context.Context, acct *account.Account) (userID int64, activationKey string, err error)
	DeleteAccount(ctx context.Context, userID int64) error
}

// PreferenceStore writes per-user key/value preferences.
type PreferenceStore interface {
	Set(ctx context.Context, userID int64, key, value string) error
}

// Mailer dispatches the activation e-mail.  Implementations enqueue rather
// than deliver, so Send returning nil means accepted, not delivered.
type Mailer interface {
	SendActivation(ctx context.Context, email, username, activationKey string) error
}

// Provisioner creates the companion user in the external discussion service.
type Provisioner interface {
	CreateUser(ctx context.Context, userID int64, username, email string) error
}

// Features holds the deployment flags the pipeline consults.
type Features struct {
	BypassActivationEmailForExtAuth bool
	EnableDiscussionService         bool
	EnableDiscussionEmailDigest     bool
}

// Options carries per-request inputs that are not part of the submission.
type Options struct {
	Language     string // resolved Accept-Language tag or deployment default
	ExternalAuth bool   // session carries a pre-verified external identity
}

// Outcome reports what the pipeline actually did.
type Outcome struct {
	UserID             int64
	ActivationSent     bool
	ProvisionAttempted bool
	ProvisionErr       error // non-nil when the attempt failed; never fatal
}

// -----------------------------------------------------------------------------
// Creator
// -----------------------------------------------------------------------------

// Creator wires the collaborators together.  It holds no per-request state
// and is safe for concurrent use.
type Creator struct {
	store    Store
	prefs    PreferenceStore
	mailer   Mailer
	comments Provisioner
	features Features
	log      *zap.SugaredLogger
}

// NewCreator returns a ready pipeline.  comments may be nil when the
// discussion service is disabled.
func NewCreator(store Store, prefs PreferenceStore, mailer Mailer, comments Provisioner, features Features, log *zap.SugaredLogger) *Creator {
	if log == nil {
		log = zap.S()
	}
	return &Creator{
		store:    store,
		prefs:    prefs,
		mailer:   mailer,
		comments: comments,
		features: features,
		log:      log,
	}
}

// Create runs the full pipeline for an already-validated submission.  The
// returned error is a system error, never a field-scoped validation problem.
func (c *Creator) Create(ctx context.Context, sub Submission, req Requirements, opts Options) (Outcome, error) {
	acct := buildAccount(sub, req)

	userID, activationKey, err := c.store.CreateAccount(ctx, acct)
	if err != nil {
		return Outcome{}, fmt.Errorf("create account %q: %w", acct.Username, err)
	}
	out := Outcome{UserID: userID}

	if err := c.writePreferences(ctx, userID, opts.Language); err != nil {
		// Compensating delete keeps the "no partial record" contract.
		if delErr := c.store.DeleteAccount(ctx, userID); delErr != nil {
			c.log.Errorw("compensating delete failed",
				"user_id", userID, "err", delErr)
		}
		return Outcome{}, fmt.Errorf("write preferences for %q: %w", acct.Username, err)
	}

	if c.features.BypassActivationEmailForExtAuth && opts.ExternalAuth {
		c.log.Infow("activation e-mail bypassed",
			"username", acct.Username, "reason", "external auth")
	} else {
		if err := c.mailer.SendActivation(ctx, acct.Email, acct.Username, activationKey); err != nil {
			// The account exists and can be re-activated later; log only.
			c.log.Errorw("activation e-mail dispatch failed",
				"username", acct.Username, "err", err)
		} else {
			out.ActivationSent = true
		}
	}

	if c.features.EnableDiscussionService && c.comments != nil {
		out.ProvisionAttempted = true
		if err := c.comments.CreateUser(ctx, userID, acct.Username, acct.Email); err != nil {
			out.ProvisionErr = err
			c.log.Errorw("discussion-service provisioning failed",
				"username", acct.Username, "err", err)
		}
	}

	return out, nil
}

// writePreferences stores the language preference and, when the digest
// feature is on, the notification-digest preference.
func (c *Creator) writePreferences(ctx context.Context, userID int64, language string) error {
	if language != "" {
		if err := c.prefs.Set(ctx, userID, LanguageKey, language); err != nil {
			return err
		}
	}
	if c.features.EnableDiscussionEmailDigest {
		if err := c.prefs.Set(ctx, userID, NotificationDigestKey, "daily"); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Submission → Account
// -----------------------------------------------------------------------------

// buildAccount copies the validated fields into the store aggregate.  Extra
// profile columns always receive the raw submitted value, empty when absent;
// custom site fields land in the profile meta map the same way.
func buildAccount(sub Submission, req Requirements) *account.Account {
	meta := make(map[string]string, len(req.Custom))
	for _, name := range req.Custom {
		meta[name] = sub[name]
	}

	return &account.Account{
		Username: sub["username"],
		Email:    sub["email"],
		Password: sub["password"],
		Profile: account.Profile{
			Name:             sub["name"],
			LevelOfEducation: sub["level_of_education"],
			Gender:           sub["gender"],
			MailingAddress:   sub["mailing_address"],
			City:             sub["city"],
			Country:          sub["country"],
			Goals:            sub["goals"],
			YearOfBirth:      ParseYearOfBirth(sub["year_of_birth"]),
			Meta:             meta,
		},
	}
}

// ParseYearOfBirth applies the silent-coercion policy: a value that does not
// parse as an integer is stored as absent, never rejected.
func ParseYearOfBirth(raw string) *int {
	year, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &year
}
