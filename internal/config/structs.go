package config

import (
	"time"

	"github.com/bandesk/bandesk/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string  // domain name for the webserver
	Port         int     // listening port for the webserver
	ShutDownTime int     // wait time for shutdown
	URL          string  // base url for the webserver
	Session      Session // session settings
}
