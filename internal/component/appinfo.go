// internal/component/appinfo.go
package component

import (
	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus/internal/config"
	"github.com/campushq/campus/internal/site"
	"github.com/campushq/campus/internal/vault"
)

// AppInfo exposes shared application resources to Components during Init.
// GetVault may return nil when the deployment resolves no secrets.
type AppInfo interface {
	GetDB() *sqlx.DB
	GetConfig() *config.Config
	GetSites() site.Resolver
	GetVault() *vault.Client
}
