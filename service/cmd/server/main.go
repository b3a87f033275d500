// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	engine "github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/engine"
	"github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/service/internal/auth"
	"github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/service/internal/cache"
	"github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/service/internal/config"
	"github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/service/internal/game"
	"github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/service/internal/handlers"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	log := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	var publisher *cache.Publisher
	if cfg.RedisAddr != "" {
		publisher = cache.NewPublisher(cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
		defer publisher.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := publisher.Ping(pingCtx)
		cancel()
		if err != nil {
			log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("Redis unreachable, action stream will retry per publish")
		} else {
			log.WithField("addr", cfg.RedisAddr).Info("Publishing game actions to Redis")
		}
	}

	hub := handlers.NewHub(log)
	rules := engine.DefaultHouseRules()
	store := game.NewStore(func(id string) *game.Session {
		s := game.NewSession(id, rules, log)
		hub.Attach(s)
		if publisher != nil {
			s.Publisher = publisher
		}
		return s
	}, log)
	svc := game.NewService(store, log)

	verifier := auth.NewVerifier(cfg.JWTSecret)
	if !verifier.Enabled() {
		log.Warn("WIZARD_JWT_SECRET is empty, websocket connections are not authenticated")
	}

	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.NewHandler(svc, hub, verifier, log).Routes(),
		ReadHeaderTimeout: 10 * time.Second,

		// Websocket handlers read from the request context; cancel it on shutdown.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		log.WithField("addr", cfg.Addr).Info("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return store.RunJanitor(gctx, cfg.SweepInterval, cfg.SessionTTL, cfg.EndedTTL)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
