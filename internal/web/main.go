// Package web assembles the fiber application serving the dashboard JSON API.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/config"
	loggeradapter "github.com/bandesk/bandesk/internal/logger/adapter/fiber"
	"github.com/bandesk/bandesk/internal/web/handler/bans"
	"github.com/bandesk/bandesk/internal/web/handler/dashboard"
	"github.com/bandesk/bandesk/internal/web/handler/login"
	"github.com/bandesk/bandesk/internal/web/handler/logout"
	"github.com/bandesk/bandesk/internal/web/handler/persons"
	"github.com/bandesk/bandesk/internal/web/handler/places"
	"github.com/bandesk/bandesk/internal/web/handler/users"
)

const checkAlivePath = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "BanDesk",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	// access log middleware
	app.Use(loggeradapter.New(loggeradapter.Config{
		Config:        cfg.Log,
		CheckAliveURI: checkAlivePath,
	}))

	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}

	service.alive.Store(true)

	app.Get(checkAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// init handlers (they register their own routes with role checks)
	if err := login.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	logout.Handler.Init(app, cfg)

	dashboard.Handler.Init(app, cfg, db)
	bans.Handler.Init(app, cfg, db)
	persons.Handler.Init(app, cfg, db)
	places.Handler.Init(app, cfg, db)
	users.Handler.Init(app, cfg, db)

	return service
}
