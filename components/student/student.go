// components/student/student.go
//
// Campus student component – account registration and learner profiles.
//
// Routes
//   POST /create_account   – validate a submission, then run the creation
//                            pipeline.  200 {"success":true} on success, or
//                            400 {"success":false,field,value,message} with
//                            exactly the first violated field.
//   GET  /u/{username}     – learner-profile context document.  302 to the
//                            login page for anonymous visitors, 403/404 per
//                            the visibility rules, 200 otherwise.
//   GET  /login/external/{provider}/complete
//                          – external-auth callback landing; marks the
//                            session for the activation-email bypass.
//
//------------------------------------------------------------------------------

package student

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campushq/campus/internal/account"
	"github.com/campushq/campus/internal/acl"
	"github.com/campushq/campus/internal/comments"
	"github.com/campushq/campus/internal/component"
	"github.com/campushq/campus/internal/config"
	"github.com/campushq/campus/internal/message"
	"github.com/campushq/campus/internal/metrics"
	"github.com/campushq/campus/internal/profile"
	"github.com/campushq/campus/internal/registration"
	"github.com/campushq/campus/internal/requestinfo"
	"github.com/campushq/campus/internal/session"
	"github.com/campushq/campus/internal/site"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// marketingCookie is set once on successful registration so the marketing
// site can distinguish registered visitors.
const marketingCookie = "campus_mktg"

const msgAccountExists = "An account with that username or e-mail already exists."

// Component encapsulates registration and profile functionality.
type Component struct {
	db       *sqlx.DB
	cfg      func() *config.Config
	accounts *account.Store
	creator  *registration.Creator
	profiles *profile.Builder
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "student" }

// Migrations returns the schema this component owns.
func (c *Component) Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS user (
             id            BIGINT AUTO_INCREMENT PRIMARY KEY,
             username      VARCHAR(30)  NOT NULL UNIQUE,
             email         VARCHAR(75)  NOT NULL UNIQUE,
             password_hash VARCHAR(100) NOT NULL,
             is_active     BOOLEAN      NOT NULL DEFAULT FALSE,
             created_at    DATETIME     NOT NULL
         )`,
		`CREATE TABLE IF NOT EXISTS user_profile (
             user_id            BIGINT PRIMARY KEY,
             name               VARCHAR(255) NOT NULL,
             level_of_education VARCHAR(6)   NOT NULL DEFAULT '',
             gender             VARCHAR(6)   NOT NULL DEFAULT '',
             year_of_birth      INT          NULL,
             mailing_address    TEXT,
             city               TEXT,
             country            VARCHAR(2)   NOT NULL DEFAULT '',
             goals              TEXT,
             meta               JSON         NOT NULL,
             FOREIGN KEY (user_id) REFERENCES user (id)
         )`,
		`CREATE TABLE IF NOT EXISTS registration (
             user_id        BIGINT PRIMARY KEY,
             activation_key CHAR(32) NOT NULL UNIQUE,
             FOREIGN KEY (user_id) REFERENCES user (id)
         )`,
		`CREATE TABLE IF NOT EXISTS user_preference (
             user_id BIGINT       NOT NULL,
             ` + "`key`" + `   VARCHAR(255) NOT NULL,
             value   TEXT         NOT NULL,
             PRIMARY KEY (user_id, ` + "`key`" + `),
             FOREIGN KEY (user_id) REFERENCES user (id)
         )`,
		`CREATE TABLE IF NOT EXISTS role (
             id      BIGINT AUTO_INCREMENT PRIMARY KEY,
             name    VARCHAR(64) NOT NULL UNIQUE,
             enabled BOOLEAN     NOT NULL DEFAULT TRUE
         )`,
		`CREATE TABLE IF NOT EXISTS user_role (
             user_id BIGINT NOT NULL,
             role_id BIGINT NOT NULL,
             PRIMARY KEY (user_id, role_id),
             FOREIGN KEY (user_id) REFERENCES user (id),
             FOREIGN KEY (role_id) REFERENCES role (id)
         )`,
	}
}

// Init wires the component to the shared application resources.
func (c *Component) Init(info component.AppInfo) error {
	c.db = info.GetDB()
	c.cfg = config.Get

	c.accounts = account.NewStore(c.db)
	prefs := account.NewPreferenceStore(c.db)

	cfg := info.GetConfig()
	provisioner := comments.New(cfg.Comments.BaseURL, cfg.Comments.APIKey)

	c.creator = registration.NewCreator(
		c.accounts,
		prefs,
		message.NewQueue(zap.S()),
		provisioner,
		registration.Features{
			BypassActivationEmailForExtAuth: cfg.Features.BypassActivationEmailForExtauth,
			EnableDiscussionService:         cfg.Features.EnableDiscussionService,
			EnableDiscussionEmailDigest:     cfg.Features.EnableDiscussionEmailDigest,
		},
		zap.S(),
	)
	c.profiles = profile.NewBuilder(c.accounts, prefs, config.Get)
	return nil
}

// Routes builds and returns the router mounted at "/".
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/create_account", c.handleCreateAccount)
	r.Get("/u/{username}", c.handleLearnerProfile)
	r.Get("/login/external/{provider}/complete", c.handleExternalAuthComplete)
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Registration ─────────────────────────────────*/

type createAccountResponse struct {
	Success bool   `json:"success"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

func (c *Component) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	metrics.RegistrationAttemptsTotal.Inc()

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, createAccountResponse{Success: false})
		return
	}

	sub := make(registration.Submission, len(r.PostForm))
	for name, vals := range r.PostForm {
		if len(vals) > 0 {
			sub[name] = vals[0]
		}
	}

	s := site.FromContext(r.Context())
	req := c.buildRequirements(s)

	res := registration.Validate(sub, req)
	if !res.OK {
		metrics.RegistrationFailuresTotal.WithLabelValues(res.Field).Inc()
		writeJSON(w, http.StatusBadRequest, createAccountResponse{
			Success: false,
			Field:   res.Field,
			Value:   res.Value,
			Message: res.Message,
		})
		return
	}

	_, extAuth := session.ExternalAuthProvider(r)
	opts := registration.Options{
		Language:     c.preferredLanguage(r),
		ExternalAuth: extAuth,
	}

	outcome, err := c.creator.Create(r.Context(), sub, req, opts)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == 1062 { // duplicate key
			writeJSON(w, http.StatusBadRequest, createAccountResponse{
				Success: false,
				Value:   msgAccountExists,
			})
			return
		}
		zap.S().Errorw("account creation failed",
			"username", sub["username"], "err", err)
		writeJSON(w, http.StatusInternalServerError, createAccountResponse{Success: false})
		return
	}

	metrics.RegistrationCreatedTotal.Inc()
	if outcome.ProvisionErr != nil {
		metrics.ProvisionErrorsTotal.Inc()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     marketingCookie,
		Value:    "true",
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	session.LoginUser(w, r, sub["username"])
	if extAuth {
		session.ClearExternalAuth(w)
	}

	writeJSON(w, http.StatusOK, createAccountResponse{Success: true})
}

// buildRequirements joins the deployment extra-field map with the site's
// custom fields.  Custom fields default to required unless the deployment
// map relaxes them.
func (c *Component) buildRequirements(s *site.Site) registration.Requirements {
	cfg := c.cfg()

	fields := make(map[string]registration.Requirement, len(cfg.Registration.ExtraFields)+4)
	for name, state := range cfg.Registration.ExtraFields {
		fields[name] = registration.Requirement(state)
	}

	var custom []string
	if s != nil {
		custom = s.ExtendedProfileFields
		for _, name := range custom {
			if _, ok := fields[name]; !ok {
				fields[name] = registration.Required
			}
		}
	}
	return registration.Requirements{Fields: fields, Custom: custom}
}

// preferredLanguage picks the Accept-Language primary tag over the
// deployment default.
func (c *Component) preferredLanguage(r *http.Request) string {
	if info := requestinfo.FromContext(r.Context()); info != nil && info.UA.PrimaryLang != "" {
		return info.UA.PrimaryLang
	}
	return c.cfg().Registration.DefaultLanguage
}

// handleExternalAuthComplete is where the external-provider callback lands
// once the identity is verified upstream.  It marks the session so a
// following /create_account may skip the activation e-mail, then sends the
// visitor to the registration form.
func (c *Component) handleExternalAuthComplete(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	session.MarkExternalAuth(w, r, provider)
	http.Redirect(w, r, "/register", http.StatusFound)
}

/*──────────────────────────── Learner profile ──────────────────────────────*/

func (c *Component) handleLearnerProfile(w http.ResponseWriter, r *http.Request) {
	viewerName, ok := session.CurrentUsername(r)
	if !ok {
		http.Redirect(w, r, "/login?next="+r.URL.Path, http.StatusFound)
		return
	}

	viewerRec, err := c.accounts.ByUsername(r.Context(), viewerName)
	if err != nil {
		// Session references a user that no longer exists.
		session.LogoutUser(w, r)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	isStaff, err := acl.IsStaff(r.Context(), c.db.DB, viewerRec.ID)
	if err != nil {
		zap.S().Errorw("staff lookup failed", "user_id", viewerRec.ID, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	viewer := profile.Viewer{
		UserID:   viewerRec.ID,
		Username: viewerRec.Username,
		IsStaff:  isStaff,
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	absURL := func(u string) string { return scheme + "://" + r.Host + u }

	username := chi.URLParam(r, "username")
	data, err := c.profiles.Build(r.Context(), viewer, username, absURL, site.FromContext(r.Context()))
	switch {
	case errors.Is(err, profile.ErrNotAuthorized):
		w.WriteHeader(http.StatusForbidden)
		return
	case errors.Is(err, account.ErrNotFound):
		// Staff get a 403 rather than confirming nonexistence.
		if isStaff {
			w.WriteHeader(http.StatusForbidden)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
		return
	case err != nil:
		zap.S().Errorw("profile context failed", "username", username, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("write json response", "err", err)
	}
}
