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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imposterparty/imposter-backend/internal/account"
	"github.com/imposterparty/imposter-backend/internal/config"
	"github.com/imposterparty/imposter-backend/internal/httpapi"
	"github.com/imposterparty/imposter-backend/internal/registry"
	"github.com/imposterparty/imposter-backend/internal/wordbank"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var log *zap.Logger
	if cfg.DevLog {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var store account.Store
	if cfg.DatabaseURL != "" {
		pg, err := account.OpenPostgres(cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal("failed to open account store", zap.Error(err))
		}
		store = pg
	} else {
		log.Warn("no DATABASE_URL set, accounts live in memory only")
		store = account.NewMemoryStore()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := registry.New(ctx, registry.Config{
		Bank:  wordbank.New(),
		Store: store,
		Log:   log,
		Grace: cfg.LobbyGrace,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(reg, store, log),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}
