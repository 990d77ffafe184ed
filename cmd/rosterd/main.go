// Command rosterd serves the nurse roster generation HTTP endpoint.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nurseward/rosterd/internal/config"
	"github.com/nurseward/rosterd/internal/store"
	"github.com/nurseward/rosterd/internal/store/postgres"
	"github.com/nurseward/rosterd/internal/transport"
)

func main() {
	log, err := transport.InitLogger("rosterd")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.LoadWithEnv()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	hardRequestStore, closeStore := buildStore(cfg, log)
	defer closeStore()

	handler := transport.NewHandler(hardRequestStore, log, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler.Routes(),
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, log)
}

// buildStore returns a Postgres-backed store when cfg.PostgresDSN is set,
// running its migrations first, and falls back to store.NullStore()
// otherwise — mirroring the original's "Firestore Admin not initialized,
// skipping Hard Request check" behavior.
func buildStore(cfg *config.Config, log *zap.Logger) (store.HardRequestStore, func()) {
	if cfg.PostgresDSN == "" {
		log.Warn("no postgres DSN configured; approved hard requests will never be applied")
		return store.NullStore(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pgStore, err := postgres.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	if err := pgStore.RunMigrations(ctx); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	return pgStore, pgStore.Close
}

func waitForShutdown(srv *http.Server, log *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
