package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casaloop/casaloop-backend/config"
	"github.com/casaloop/casaloop-backend/internal/analytics"
	"github.com/casaloop/casaloop-backend/internal/bootstrap"
	"github.com/casaloop/casaloop-backend/internal/pi"
)

const (
	serviceName = "casaloop-api"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[api] config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	fs, err := bootstrap.OpenFirestore(ctx, &cfg.Firebase)
	if err != nil {
		log.Fatalf("[api] firestore: %v", err)
	}
	defer fs.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("[api] redis: %v", err)
	}
	defer rdb.Close()

	// The Postgres mirror is optional; Firestore stays authoritative.
	db, err := bootstrap.OpenAnalyticsDB(ctx, cfg.Analytics.DSN)
	if err != nil {
		log.Printf("[api] analytics db unavailable, continuing without it: %v", err)
	}
	if db != nil {
		defer db.Close()
		if err := analytics.NewStore(db).EnsureSchema(ctx); err != nil {
			log.Printf("[api] analytics schema: %v", err)
		}
	}

	piClient := pi.NewClient(cfg.Pi.APIBaseURL, cfg.Pi.APIKey)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     version,
		Cfg:         cfg,
		Firestore:   fs,
		Redis:       rdb,
		DB:          db,
		Pi:          piClient,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[api] listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[api] server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[api] shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[api] shutdown: %v", err)
	}
}
