// internal/registration/validate_test.go
//
// Unit-tests for the submission validator.
//
// Context
// -------
// Each test starts from a minimal valid submission and perturbs one field,
// asserting the exact (field, message) pair of the first failure.  The
// validator reports at most one failure per pass, so ordering assertions
// matter as much as the individual rules.
//
// Run: go test ./internal/registration -v

package registration

import "testing"

// minimalParams returns a fresh submission that passes every check when the
// default requirement set is in effect.
func minimalParams() Submission {
	return Submission{
		"username":         "test_username",
		"email":            "test_email@example.com",
		"password":         "test_password",
		"name":             "Test Name",
		"honor_code":       "true",
		"terms_of_service": "true",
	}
}

// optionalAll marks every known extra field optional, mirroring the common
// deployment default.
func optionalAll() Requirements {
	fields := make(map[string]Requirement, len(extraFieldOrder))
	for _, name := range extraFieldOrder {
		fields[name] = Optional
	}
	return Requirements{Fields: fields}
}

func assertSuccess(t *testing.T, sub Submission, req Requirements) {
	t.Helper()
	res := Validate(sub, req)
	if !res.OK {
		t.Fatalf("expected success, got failure on %q: %q", res.Field, res.Message)
	}
}

func assertFailure(t *testing.T, sub Submission, req Requirements, field, message string) {
	t.Helper()
	res := Validate(sub, req)
	if res.OK {
		t.Fatalf("expected failure on %q, got success", field)
	}
	if res.Field != field {
		t.Fatalf("field = %q, want %q (message %q)", res.Field, field, res.Message)
	}
	if res.Message != message {
		t.Fatalf("message = %q, want %q", res.Message, message)
	}
	if want, _ := sub.Get(field); res.Value != want {
		t.Fatalf("value = %q, want raw submission %q", res.Value, want)
	}
}

func TestMinimalSuccess(t *testing.T) {
	assertSuccess(t, minimalParams(), optionalAll())
}

func TestUsername(t *testing.T) {
	req := optionalAll()

	// Missing.
	sub := minimalParams()
	delete(sub, "username")
	assertFailure(t, sub, req, "username", msgUsernameTooShort)

	// Empty, too short.
	for _, username := range []string{"", "a"} {
		sub["username"] = username
		assertFailure(t, sub, req, "username", msgUsernameTooShort)
	}

	// Too long.
	sub["username"] = "this_username_has_31_characters"
	assertFailure(t, sub, req, "username", msgUsernameTooLong)

	// Invalid characters.
	for _, username := range []string{"invalid username", "user-name", "üser", "a.b"} {
		sub["username"] = username
		assertFailure(t, sub, req, "username", msgUsernameCharset)
	}

	// Underscores are part of the accepted set.
	for _, username := range []string{"a_b", "_leading", "trailing_", "test_username"} {
		sub["username"] = username
		assertSuccess(t, sub, req)
	}
}

func TestEmail(t *testing.T) {
	req := optionalAll()

	// Missing.
	sub := minimalParams()
	delete(sub, "email")
	assertFailure(t, sub, req, "email", msgEmailInvalid)

	// Empty, too short, malformed.  Display-name forms parse under RFC 5322
	// but are not bare addresses, so they fail too.
	for _, email := range []string{"", "a", "not_an_email_address", "Test Name <test_email@example.com>"} {
		sub["email"] = email
		assertFailure(t, sub, req, "email", msgEmailInvalid)
	}

	// Too long: 76 raw characters, format itself is fine.
	long := "this_email_address_has_76_characters_in_it_so_it_is_unacceptable@example.com"
	if len(long) != 76 {
		t.Fatalf("fixture length = %d, want 76", len(long))
	}
	sub["email"] = long
	assertFailure(t, sub, req, "email", msgEmailTooLong)
}

func TestPassword(t *testing.T) {
	req := optionalAll()

	// Missing.
	sub := minimalParams()
	delete(sub, "password")
	assertFailure(t, sub, req, "password", msgPasswordInvalid)

	// Empty, too short.
	for _, password := range []string{"", "a"} {
		sub["password"] = password
		assertFailure(t, sub, req, "password", msgPasswordInvalid)
	}

	// Strength policy is a separate collaborator; only the username match is
	// checked here.
	sub = minimalParams()
	sub["username"] = "test_username_and_password"
	sub["password"] = "test_username_and_password"
	assertFailure(t, sub, req, "password", msgPasswordUsername)
}

func TestName(t *testing.T) {
	req := optionalAll()

	sub := minimalParams()
	delete(sub, "name")
	assertFailure(t, sub, req, "name", msgNameTooShort)

	for _, name := range []string{"", "a"} {
		sub["name"] = name
		assertFailure(t, sub, req, "name", msgNameTooShort)
	}
}

func TestHonorCode(t *testing.T) {
	required := Requirements{Fields: map[string]Requirement{"honor_code": Required}}

	// Missing.
	sub := minimalParams()
	delete(sub, "honor_code")
	assertFailure(t, sub, required, "honor_code", msgHonorCode)

	// Empty, false, junk.
	for _, honorCode := range []string{"", "false", "not_boolean"} {
		sub["honor_code"] = honorCode
		assertFailure(t, sub, required, "honor_code", msgHonorCode)
	}

	// Acceptance is case-insensitive.
	sub["honor_code"] = "tRUe"
	assertSuccess(t, sub, required)

	// Optional configuration skips the check entirely.
	optional := Requirements{Fields: map[string]Requirement{"honor_code": Optional}}
	delete(sub, "honor_code")
	assertSuccess(t, sub, optional)
}

func TestHonorCodeDefaultRequired(t *testing.T) {
	// With no honor_code entry at all, the deployment default applies.
	sub := minimalParams()
	delete(sub, "honor_code")
	assertFailure(t, sub, Requirements{}, "honor_code", msgHonorCode)
}

func TestTermsOfService(t *testing.T) {
	req := optionalAll()

	// Always required, no configuration can relax it.
	sub := minimalParams()
	delete(sub, "terms_of_service")
	assertFailure(t, sub, req, "terms_of_service", msgTOS)

	for _, tos := range []string{"", "false", "not_boolean"} {
		sub["terms_of_service"] = tos
		assertFailure(t, sub, req, "terms_of_service", msgTOS)
	}

	sub["terms_of_service"] = "tRUe"
	assertSuccess(t, sub, req)
}

func TestExtraFields(t *testing.T) {
	cases := []struct {
		field   string
		minLen  int
		message string
	}{
		{"level_of_education", 1, "A level of education is required"},
		{"gender", 1, "Your gender is required"},
		{"year_of_birth", 2, "Your year of birth is required"},
		{"mailing_address", 2, "Your mailing address is required"},
		{"goals", 2, "A description of your goals is required"},
		{"city", 2, "A city is required"},
		{"country", 2, "A country is required"},
		{"custom_field", 2, msgExtraGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			req := Requirements{Fields: map[string]Requirement{tc.field: Required}}

			// Missing.
			sub := minimalParams()
			assertFailure(t, sub, req, tc.field, tc.message)

			// Empty.
			sub[tc.field] = ""
			assertFailure(t, sub, req, tc.field, tc.message)

			// Too short, trimmed.
			if tc.minLen > 1 {
				sub[tc.field] = "a"
				assertFailure(t, sub, req, tc.field, tc.message)
				sub[tc.field] = " ab "
				assertSuccess(t, sub, req)
			} else {
				sub[tc.field] = "a"
				assertSuccess(t, sub, req)
			}
		})
	}
}

func TestExtraFieldsOptionalOrHiddenSkipped(t *testing.T) {
	req := Requirements{Fields: map[string]Requirement{
		"goals": Optional,
		"city":  Hidden,
	}}
	assertSuccess(t, minimalParams(), req)
}

func TestCustomSiteFieldOrder(t *testing.T) {
	// Custom fields are evaluated after the known set, in declared order.
	req := Requirements{
		Fields: map[string]Requirement{
			"second": Required,
			"first":  Required,
		},
		Custom: []string{"first", "second"},
	}
	sub := minimalParams()
	assertFailure(t, sub, req, "first", msgExtraGeneric)

	sub["first"] = "value"
	assertFailure(t, sub, req, "second", msgExtraGeneric)

	sub["second"] = "value"
	assertSuccess(t, sub, req)
}

func TestEvaluationOrderShortCircuits(t *testing.T) {
	// Everything is wrong, but username is reported because it comes first.
	sub := Submission{}
	res := Validate(sub, Requirements{Fields: map[string]Requirement{"country": Required}})
	if res.OK || res.Field != "username" {
		t.Fatalf("first failure = %q, want username", res.Field)
	}
}

func TestMinimumLengthBoundary(t *testing.T) {
	// Every core field at its minimum valid length.
	sub := Submission{
		"username":         "ab",
		"email":            "a@b.com",
		"password":         "abc",
		"name":             "ab",
		"honor_code":       "true",
		"terms_of_service": "true",
	}
	assertSuccess(t, sub, optionalAll())
}

func TestValidateIsIdempotent(t *testing.T) {
	sub := minimalParams()
	req := optionalAll()
	first := Validate(sub, req)
	second := Validate(sub, req)
	if first != second {
		t.Fatalf("repeated validation diverged: %+v vs %+v", first, second)
	}
}
