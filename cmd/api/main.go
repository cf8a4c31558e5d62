package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mira-tracker/mira-backend/config"
	"github.com/mira-tracker/mira-backend/internal/bootstrap"
	"github.com/mira-tracker/mira-backend/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.SetLevel(cfg.App.LogLevel)
	bootstrap.SetGinMode(cfg.Environment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer app.Close()

	// The in-memory store starts empty; give it the demo data set.
	if cfg.Database.Driver == "memory" {
		n := seedCount()
		if _, err := app.Seed(ctx, n); err != nil {
			log.Fatalf("seed memory store: %v", err)
		}
	}

	if cfg.Digest.Enabled {
		if err := app.Digest.Start(); err != nil {
			log.Fatalf("digest: %v", err)
		}
	}

	dbPing, sessionsPing := app.Pings()
	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		CORSOrigins:    cfg.Server.CORSOrigins,
		DBPing:         dbPing,
		SessionsPing:   sessionsPing,
		Tracker:        app.Services,
		Auth:           app.Auth,
		AuthRequired:   cfg.Auth.Required,
		LoginPerMinute: cfg.Auth.LoginPerMinute,
		LoginBurst:     cfg.Auth.LoginBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("listening on :%s (driver=%s env=%s)", cfg.Server.Port, cfg.Database.Driver, cfg.Environment())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	app.Digest.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func seedCount() int {
	if v, err := strconv.Atoi(os.Getenv("SEED_ISSUES")); err == nil && v >= 0 {
		return v
	}
	return 200
}
