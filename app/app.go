package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/mbolis/recruit/config"
)

// App is the shared state every handler factory receives.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
}
