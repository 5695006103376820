package site

import "time"

// Record mirrors one row in the persistent `site` table.  The operational
// state is captured by two nullable timestamps:
//
//   - SuspendedAt – site is temporarily disabled (e.g., billing).
//   - DeletedAt   – site is permanently removed.
//
// Either timestamp being non-NULL prevents the lazy-loader from serving the
// site.
type Record struct {
	ID           uint64     `db:"id"`
	Host         string     `db:"host"`
	Name         string     `db:"name"`
	PlatformName string     `db:"platform_name"`
	SuspendedAt  *time.Time `db:"suspended_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// Site aggregates everything request handlers need for one host: its `site`
// row, the key-value overrides, and the site-declared custom profile fields
// in declared order.  Handlers must treat the aggregate as immutable after
// load.
type Site struct {
	Meta                  Record
	Config                map[string]string
	ExtendedProfileFields []string
}

// Value returns the site override for key, or fallback when the site does
// not define one.  This is how per-site settings shadow deployment config.
func (s *Site) Value(key, fallback string) string {
	if v, ok := s.Config[key]; ok && v != "" {
		return v
	}
	return fallback
}
