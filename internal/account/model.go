// internal/account/model.go
//
// Account aggregate and row types.
//
// Context
// -------
// The account schema spans three tables:
//
//	user          (id PK, username UNIQUE, email UNIQUE, password_hash,
//	               is_active, created_at)
//	user_profile  (user_id PK/FK, name, level_of_education, gender,
//	               year_of_birth NULL, mailing_address, city, country,
//	               goals, meta JSON)
//	registration  (user_id PK/FK, activation_key)
//
// A new account starts inactive; the activation key in `registration` is
// what the activation e-mail carries.  Profile string columns always exist,
// so unset demographic fields are stored as empty strings, and the
// year-of-birth column alone is nullable.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package account

import "time"

// Account is the validated aggregate handed to the store by the
// registration pipeline.
type Account struct {
	Username string
	Email    string
	Password string // raw submission; hashed on the way into the store
	Profile  Profile
}

// Profile carries the demographic fields plus the per-site custom-field
// meta map.  YearOfBirth is nil when the submission was absent or did not
// parse as an integer.
type Profile struct {
	Name             string
	LevelOfEducation string
	Gender           string
	YearOfBirth      *int
	MailingAddress   string
	City             string
	Country          string
	Goals            string
	Meta             map[string]string
}

// Record mirrors one row in the `user` table.
type Record struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

// ProfileRecord mirrors one row in `user_profile`.  Meta is the raw JSON
// column; use DecodeMeta for the map form.
type ProfileRecord struct {
	UserID           int64  `db:"user_id"`
	Name             string `db:"name"`
	LevelOfEducation string `db:"level_of_education"`
	Gender           string `db:"gender"`
	YearOfBirth      *int   `db:"year_of_birth"`
	MailingAddress   string `db:"mailing_address"`
	City             string `db:"city"`
	Country          string `db:"country"`
	Goals            string `db:"goals"`
	Meta             []byte `db:"meta"`
}
