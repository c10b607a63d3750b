// Command portal-api serves the cleaning portal HTTP API.
//
// @title                       Cleaning Portal API
// @version                     1.0
// @description                 Bookings, payments and staff management for the cleaning services portal.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/brightnest/cleaning-portal/internal/api"
	"github.com/brightnest/cleaning-portal/internal/api/handler"
	"github.com/brightnest/cleaning-portal/internal/core/service"
	"github.com/brightnest/cleaning-portal/internal/infrastructure/config"
	mongodb "github.com/brightnest/cleaning-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/brightnest/cleaning-portal/internal/infrastructure/db/redis"
	"github.com/brightnest/cleaning-portal/internal/infrastructure/payment"
	"github.com/brightnest/cleaning-portal/internal/infrastructure/queue"
	"github.com/brightnest/cleaning-portal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "portal-api"}).Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "portal-api",
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("portal-api stopped with error")
	}
	log.Info().Msg("portal-api stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// --- Repositories ---
	identities := mongodb.NewIdentityRepository(db)
	profiles := mongodb.NewProfileRepository(db)
	bookings := mongodb.NewBookingRepository(db)
	events := mongodb.NewEventRepository(db)
	sessions := redisdb.NewSessionRepository(rdb)
	drafts := redisdb.NewDraftStore(rdb, cfg.Wizard.DraftTTL)

	// --- Services ---
	eventSvc := service.NewEventService(events, logger.For("audit"))
	dispatcher := queue.NewDispatcher(cfg.Dispatcher.Workers, eventSvc, logger.For("dispatcher"))

	gateway := payment.NewWaafiClient(payment.Config{
		BaseURL:     cfg.Payment.BaseURL,
		MerchantUID: cfg.Payment.MerchantUID,
		APIUserID:   cfg.Payment.APIUserID,
		APIKey:      cfg.Payment.APIKey,
		Currency:    cfg.Payment.Currency,
		Timeout:     cfg.Payment.Timeout,
	}, logger.For("payment"))

	authSvc := service.NewAuthService(identities, profiles, sessions, cfg.JWTSecret, cfg.TokenTTL, logger.For("auth"))
	profileSvc := service.NewProfileService(profiles, authSvc, logger.For("profiles"))
	bookingSvc := service.NewBookingService(bookings, profiles, events, dispatcher, logger.For("bookings"))
	wizardSvc := service.NewWizardService(drafts, bookings, gateway, dispatcher, loc, logger.For("wizard"))

	e := api.NewRouter(api.Deps{
		Auth:     authSvc,
		Profiles: profileSvc,
		Bookings: bookingSvc,
		Wizards:  wizardSvc,
		Health: map[string]handler.PingFunc{
			"mongodb": handler.MongoPing(db),
			"redis":   handler.RedisPing(rdb),
		},
		Log: logger.For("http"),
	})

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal-api listening")
	return serve(ctx, e, ":"+cfg.Port, dispatcher.Run, log)
}

type httpServer interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// serve runs the HTTP server and the audit dispatcher until ctx is done.
// The server is shut down first; the dispatcher stops only after in-flight
// requests have finished publishing.
func serve(ctx context.Context, srv httpServer, addr string, dispatch func(context.Context) error, log zerolog.Logger) error {
	dispatchCtx, stopDispatch := context.WithCancel(context.WithoutCancel(ctx))
	defer stopDispatch()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatch(dispatchCtx)
	})

	g.Go(func() error {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		stopDispatch()
		return err
	})

	return g.Wait()
}
