// Package daemon wires the database, session store and web service together.
package daemon

import (
	"fmt"

	sessionmysql "github.com/gofiber/storage/mysql"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/config"
	"github.com/bandesk/bandesk/internal/db/dsn"
	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/web"
	"github.com/bandesk/bandesk/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the web service has shut down gracefully.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dbDriver := gormmysql.Open(dsn.Create(cfg)) // open db with gorm mysql driver

	db, err := gorm.Open(dbDriver, &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Person{},
		&models.Place{},
		&models.Ban{},
		&models.PlaceApproval{},
		&models.Violation{},
		&models.AuditEntry{},
	); err != nil {
		panic("failed to migrate database")
	}

	seed(cfg, db)

	// Initialize fiber session store
	sessionStorage := sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})

	session.Init(sessionStorage)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}
