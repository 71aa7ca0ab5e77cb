package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/ukydev/fleet-dispatch/internal/auth"
	"github.com/ukydev/fleet-dispatch/internal/config"
	"github.com/ukydev/fleet-dispatch/internal/db"
	"github.com/ukydev/fleet-dispatch/internal/driverlink"
	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/handlers"
	"github.com/ukydev/fleet-dispatch/internal/insights"
	"github.com/ukydev/fleet-dispatch/internal/models"
	"github.com/ukydev/fleet-dispatch/internal/simulator"
	"github.com/ukydev/fleet-dispatch/internal/store"
	"github.com/ukydev/fleet-dispatch/internal/stream"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = time.Second
)

// app is one wired dashboard process.
type app struct {
	cfg      config.Config
	store    *store.Store
	session  *simulator.Session
	api      *handlers.API
	hub      *stream.Hub
	link     *driverlink.Link
	archiver *db.Archiver
	mongo    *mongo.Client
	server   *http.Server
}

// newApp builds every component from cfg. Optional integrations are only
// created when configured.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	settings, err := cfg.InitialSettings()
	if err != nil {
		return nil, err
	}
	initial := fleet.Seed()
	initial.Settings = settings
	st := store.New(initial, store.WithSeedFeed(fleet.SeedNotifications()))

	authService, err := auth.NewService(auth.Config{
		Secret:        cfg.JWTSecret,
		Expiry:        cfg.JWTExpiry,
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, using the built-in development secret")
	}

	assistant := insights.NewService(insights.GenAIFactory(cfg.GeminiModel))
	if err := assistant.SetAPIKey(ctx, settings.Costs.APIKey); err != nil {
		log.WithError(err).Warn("Collaborator key rejected, running offline")
	}

	a := &app{
		cfg:     cfg,
		store:   st,
		session: simulator.NewSession(st, simulator.Config{Interval: cfg.TickInterval, Seed: cfg.Seed}),
		hub:     stream.NewHub(),
	}
	env := fleet.NewEnv(fleet.NewRandom(cfg.Seed))

	if cfg.MongoURI != "" {
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.mongo = client
		a.archiver = db.NewArchiver(db.NewSnapshotCollection(client, cfg.MongoDB), st)
		log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB, snapshots enabled")
	}
	if cfg.MQTTBroker != "" {
		a.link = driverlink.New(driverlink.Config{
			Broker:      cfg.MQTTBroker,
			ClientID:    cfg.MQTTClientID,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, st, env)
	}

	deps := handlers.Deps{
		Store:          st,
		Session:        a.session,
		Auth:           authService,
		Assistant:      assistant,
		Keys:           assistant,
		Stream:         a.hub,
		Env:            env,
		DemoControls:   cfg.DemoControls,
		SessionContext: ctx,
	}
	if a.archiver != nil {
		deps.Archiver = a.archiver
	}
	a.api = handlers.New(deps)

	a.server = &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           a.api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// run serves until ctx is done, then shuts everything down and archives
// the fleet.
func (a *app) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(ctx, a.store)
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				a.store.PruneToasts()
			}
		}
	})
	if a.link != nil {
		g.Go(func() error { return a.link.Run(ctx) })
	}
	if a.cfg.SettingsFile != "" {
		g.Go(func() error {
			return config.Watch(ctx, a.cfg.SettingsFile, func(s models.Settings) {
				if err := a.api.ApplySettings(ctx, s); err != nil {
					log.WithError(err).Warn("Reloaded settings rejected")
				}
			})
		})
	}
	g.Go(func() error {
		log.WithField("addr", a.server.Addr).Info("HTTP server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

func (a *app) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(ctx)
	wasActive := a.session.Active()
	a.session.Stop()
	if wasActive && a.archiver != nil {
		_ = a.archiver.Archive(ctx, db.ReasonShutdown)
	}
	if a.mongo != nil {
		if derr := a.mongo.Disconnect(ctx); derr != nil {
			log.WithError(derr).Warn("Failed to disconnect from MongoDB")
		}
	}
	log.Info("Server stopped")
	return err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.WithError(err).Fatal("Invalid logging configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to start")
	}
	if err := a.run(ctx); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}
