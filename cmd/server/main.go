package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/care-assistant-api/internal/config"
	"github.com/iliyamo/care-assistant-api/internal/database"
	"github.com/iliyamo/care-assistant-api/internal/diagnostics"
	"github.com/iliyamo/care-assistant-api/internal/handler"
	"github.com/iliyamo/care-assistant-api/internal/logging"
	"github.com/iliyamo/care-assistant-api/internal/middleware"
	"github.com/iliyamo/care-assistant-api/internal/queue"
	"github.com/iliyamo/care-assistant-api/internal/router"
	"github.com/iliyamo/care-assistant-api/internal/service"
)

func main() {
	// A missing .env is fine; the process environment is used as is.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("could not read .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		log.WithError(err).Fatal("logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database collaborator: absent, uninitialized or connected.
	dbHandle, err := database.Resolve(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		log.Info("DATABASE_URL not set; /test will report the database as not installed")
	case err != nil:
		log.WithError(err).Warn("database unavailable; /test will report it as not initialized")
	}
	if c, ok := dbHandle.Catalog.(*database.MySQLCatalog); ok {
		defer c.Close()
	}

	// Response cache for the liveness routes.
	cacheCfg := config.LoadCacheConfig()
	cache := middleware.ResponseCache(cacheCfg, nil)
	if cacheCfg.Enabled {
		if rdb := config.NewRedisClient(ctx); rdb != nil {
			defer rdb.Close()
			cache = middleware.ResponseCache(cacheCfg, rdb)
		} else {
			log.Warn("redis unreachable; response cache disabled")
		}
	}

	// Assist audit events.
	eventsCfg := config.LoadEventsConfig()
	var events handler.EventPublisher
	if eventsCfg.Enabled {
		events = service.NewEventPublisher(eventsCfg)
	}
	if eventsCfg.ConsumerEnabled {
		go func() {
			if err := queue.StartAssistConsumer(ctx, eventsCfg); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("assist consumer stopped")
			}
		}()
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HidePort = true
	router.RegisterRoutes(e, router.Deps{
		Diagnostic: handler.NewDiagnosticHandler(diagnostics.NewProber(dbHandle, cfg.ProbeTimeout)),
		Assist:     handler.NewAssistHandler(events, eventsCfg.PublishTimeout),
		Cache:      cache,
	})

	addr := cfg.Addr()
	log.WithFields(log.Fields{
		"addr":   addr,
		"env":    cfg.Env,
		"cache":  cacheCfg.Enabled,
		"events": eventsCfg.Enabled,
	}).Info("listening")

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	log.Info("stopped")
}
