// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/tectoast/wizard/internal/auth"
	"github.com/tectoast/wizard/internal/cache"
	"github.com/tectoast/wizard/internal/config"
	"github.com/tectoast/wizard/internal/database"
	"github.com/tectoast/wizard/internal/game"
	"github.com/tectoast/wizard/internal/handlers"
	"github.com/tectoast/wizard/internal/metrics"
	"github.com/tectoast/wizard/internal/socket"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	logger.SetLevel(cfg.LogLevel)
	if cfg.Production() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, err := auth.NewSessions(cfg.TokenTTL)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialise sessions")
	}

	var accounts *handlers.Accounts
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to database")
		}
		defer pool.Close()
		users := database.NewUserStore(pool)
		if err := users.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Fatal("failed to prepare schema")
		}
		accounts = &handlers.Accounts{
			Users:       users,
			Sessions:    sessions,
			RegisterKey: cfg.RegisterKey,
			Logger:      logger,
		}
	} else {
		logger.Warn("no database configured, accounts are disabled")
	}

	var games *game.Manager
	m := metrics.New(func() int { return games.Count() })
	sockets := socket.NewManager(logger, m)

	gameCfg := game.Config{
		Sender:   sockets,
		Observer: m,
		Logger:   logger,
		Delays: game.Delays{
			TrickClear: cfg.TrickClearDelay,
			NextRound:  cfg.NextRoundDelay,
		},
	}
	if cfg.RedisAddr != "" {
		publisher, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.EventQueue)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to redis")
		}
		defer publisher.Close()
		gameCfg.Recorder = publisher
		logger.WithField("queue", publisher.Queue()).Info("publishing game events")
	}
	games = game.NewManager(gameCfg)

	var resolver handlers.UsernameResolver = handlers.SessionResolver{Sessions: sessions}
	if cfg.UsernameProvider == config.ProviderDev {
		logger.Warn("dev username provider enabled, clients name themselves")
		resolver = handlers.DevResolver{Timeout: 10 * time.Second}
	}

	router := handlers.NewRouter(handlers.RouterOptions{
		Logger:         logger,
		Production:     cfg.Production(),
		AllowedOrigins: cfg.AllowedOrigins,
		Game: &handlers.GameServer{
			Games:          games,
			Sockets:        sockets,
			Resolver:       resolver,
			OriginPatterns: cfg.AllowedOrigins,
			Counter:        m,
			Logger:         logger,
		},
		Accounts: accounts,
		Metrics:  m.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server exited")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	games.CloseAll()
	sockets.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}
}
