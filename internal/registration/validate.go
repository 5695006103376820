// internal/registration/validate.go
//
// Campus – Registration subsystem: submission validation.
//
// Context
//   Account creation accepts a flat map of posted field values.  Which of
//   the optional demographic fields are required is deployment configuration
//   (plus per-site custom fields), so the requirement set is passed in per
//   call and never read from ambient state.  Validation runs a fixed
//   sequence of per-field checks and stops at the first violation, returning
//   exactly one (field, message, rejected value) triple.  The surrounding
//   handler turns that triple into a 400 response; Success proceeds to the
//   creation pipeline in creator.go.
//
// Workflow
//   •  Validate walks username → email → password → name → honor_code →
//      terms_of_service → extra fields, returning on the first failure.
//   •  Extra fields are evaluated in extraFieldOrder, then the site's custom
//      fields, then any remaining required names in sorted order so a given
//      requirement set always reports the same field first.
//   •  The validator is pure: no I/O, no clock, no logging, safe to call
//      from any number of goroutines.
//
// Style
//   Comments follow the Campus guide: full sentences, two space spacing, and
//   Oxford commas.
//
//------------------------------------------------------------------------------

package registration

import (
	"net/mail"
	"sort"
	"strings"
)

// -----------------------------------------------------------------------------
// Input types
// -----------------------------------------------------------------------------

// Submission is a posted field set.  A key that is absent is distinct from a
// key present with an empty value; both are handled explicitly below.
type Submission map[string]string

// Get returns the raw value and whether the key was submitted at all.
func (s Submission) Get(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Requirement states how a deployment treats one extra field.
type Requirement string

const (
	Hidden   Requirement = "hidden"
	Optional Requirement = "optional"
	Required Requirement = "required"
)

// Requirements enumerates the extra-field policy for one request.  Fields
// maps extra-field name → requirement; Custom lists site-declared custom
// fields in their declared order.  The validator never mutates either.
type Requirements struct {
	Fields map[string]Requirement
	Custom []string
}

// HonorCode reports whether the honor-code checkbox must be accepted.  The
// deployment default is required; an explicit "optional" or "hidden" entry
// relaxes it.
func (r Requirements) HonorCode() bool {
	req, ok := r.Fields[fieldHonorCode]
	if !ok {
		return true
	}
	return req == Required
}

// -----------------------------------------------------------------------------
// Result
// -----------------------------------------------------------------------------

// Result is the outcome of one validation pass: either success, or a single
// field-scoped failure.  No partial lists are ever produced.
type Result struct {
	OK      bool
	Field   string // first violated field
	Message string // user-facing message
	Value   string // raw submitted value, empty when the key was absent
}

func success() Result { return Result{OK: true} }

func fail(field, message, value string) Result {
	return Result{Field: field, Message: message, Value: value}
}

// -----------------------------------------------------------------------------
// Field names and messages
// -----------------------------------------------------------------------------

const (
	fieldUsername  = "username"
	fieldEmail     = "email"
	fieldPassword  = "password"
	fieldName      = "name"
	fieldHonorCode = "honor_code"
	fieldTOS       = "terms_of_service"
)

const (
	usernameMinLen = 2
	usernameMaxLen = 30
	emailMaxLen    = 75
	passwordMinLen = 2
	nameMinLen     = 2
)

const (
	msgUsernameTooShort = "Username must be minimum of two characters long"
	msgUsernameTooLong  = "Username cannot be more than 30 characters long"
	msgUsernameCharset  = "Username should only consist of A-Z and 0-9, with no spaces."
	msgEmailInvalid     = "A properly formatted e-mail is required"
	msgEmailTooLong     = "Email cannot be more than 75 characters long"
	msgPasswordInvalid  = "A valid password is required"
	msgPasswordUsername = "Username and password fields cannot match"
	msgNameTooShort     = "Your legal name must be a minimum of two characters long"
	msgHonorCode        = "To enroll, you must follow the honor code."
	msgTOS              = "You must accept the terms of service."
	msgExtraGeneric     = "You are missing one or more required fields"
)

// extraField carries the per-field message and minimum trimmed length for
// the known demographic fields.
type extraField struct {
	minLen  int
	message string
}

// extraFieldOrder fixes the evaluation order of the known extra fields.
var extraFieldOrder = []string{
	"level_of_education",
	"gender",
	"year_of_birth",
	"mailing_address",
	"goals",
	"city",
	"country",
}

var extraFields = map[string]extraField{
	"level_of_education": {1, "A level of education is required"},
	"gender":             {1, "Your gender is required"},
	"year_of_birth":      {2, "Your year of birth is required"},
	"mailing_address":    {2, "Your mailing address is required"},
	"goals":              {2, "A description of your goals is required"},
	"city":               {2, "A city is required"},
	"country":            {2, "A country is required"},
}

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// Validate checks one submission against the requirement set.  It is
// deterministic and side-effect free; callers construct both arguments fresh
// per request and discard them afterwards.
func Validate(sub Submission, req Requirements) Result {
	if res := checkUsername(sub); !res.OK {
		return res
	}
	if res := checkEmail(sub); !res.OK {
		return res
	}
	if res := checkPassword(sub); !res.OK {
		return res
	}
	if res := checkName(sub); !res.OK {
		return res
	}
	if req.HonorCode() {
		if res := checkAccepted(sub, fieldHonorCode, msgHonorCode); !res.OK {
			return res
		}
	}
	// Terms of service are required regardless of configuration.
	if res := checkAccepted(sub, fieldTOS, msgTOS); !res.OK {
		return res
	}
	return checkExtraFields(sub, req)
}

// -----------------------------------------------------------------------------
// Per-field checks
// -----------------------------------------------------------------------------

func checkUsername(sub Submission) Result {
	v, _ := sub.Get(fieldUsername)
	if len(v) < usernameMinLen {
		return fail(fieldUsername, msgUsernameTooShort, v)
	}
	if len(v) > usernameMaxLen {
		return fail(fieldUsername, msgUsernameTooLong, v)
	}
	if !usernameCharsetOK(v) {
		return fail(fieldUsername, msgUsernameCharset, v)
	}
	return success()
}

func checkEmail(sub Submission) Result {
	v, _ := sub.Get(fieldEmail)
	if v == "" {
		return fail(fieldEmail, msgEmailInvalid, v)
	}
	// ParseAddress tolerates RFC 5322 display-name forms ("Foo <a@b.com>");
	// only a bare address that round-trips unchanged is accepted.
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return fail(fieldEmail, msgEmailInvalid, v)
	}
	// Length is checked after basic format, against the raw string.
	if len(v) > emailMaxLen {
		return fail(fieldEmail, msgEmailTooLong, v)
	}
	return success()
}

func checkPassword(sub Submission) Result {
	v, _ := sub.Get(fieldPassword)
	if len(v) < passwordMinLen {
		return fail(fieldPassword, msgPasswordInvalid, v)
	}
	// Strength policy is a separate collaborator; only the username match is
	// enforced here.
	if u, _ := sub.Get(fieldUsername); v == u {
		return fail(fieldPassword, msgPasswordUsername, v)
	}
	return success()
}

func checkName(sub Submission) Result {
	v, _ := sub.Get(fieldName)
	if len(v) < nameMinLen {
		return fail(fieldName, msgNameTooShort, v)
	}
	return success()
}

// checkAccepted enforces the true-string semantics shared by the honor code
// and the terms of service: only a case-insensitive "true" passes.
func checkAccepted(sub Submission, field, message string) Result {
	v, ok := sub.Get(field)
	if !ok || !strings.EqualFold(v, "true") {
		return fail(field, message, v)
	}
	return success()
}

func checkExtraFields(sub Submission, req Requirements) Result {
	seen := make(map[string]struct{}, len(extraFieldOrder)+len(req.Custom))

	for _, name := range extraFieldOrder {
		seen[name] = struct{}{}
		if req.Fields[name] != Required {
			continue
		}
		def := extraFields[name]
		if res := checkRequiredExtra(sub, name, def.minLen, def.message); !res.OK {
			return res
		}
	}

	for _, name := range req.Custom {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if req.Fields[name] != Required {
			continue
		}
		if res := checkRequiredExtra(sub, name, 2, msgExtraGeneric); !res.OK {
			return res
		}
	}

	// Required names configured outside both lists still fail, in sorted
	// order so the reported field is stable.
	var rest []string
	for name, r := range req.Fields {
		if r != Required {
			continue
		}
		if name == fieldHonorCode || name == fieldTOS {
			continue
		}
		if _, done := seen[name]; done {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		if res := checkRequiredExtra(sub, name, 2, msgExtraGeneric); !res.OK {
			return res
		}
	}

	return success()
}

// checkRequiredExtra fails when the field is missing, empty, or shorter than
// minLen after trimming.  The reported value is the raw submission.
func checkRequiredExtra(sub Submission, name string, minLen int, message string) Result {
	v, _ := sub.Get(name)
	if len(strings.TrimSpace(v)) < minLen {
		return fail(name, message, v)
	}
	return success()
}

// usernameCharsetOK permits ASCII letters, digits, and underscores; spaces
// and other punctuation are rejected.
func usernameCharsetOK(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
