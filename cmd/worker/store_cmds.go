package main

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/mira-tracker/mira-backend/config"
	"github.com/mira-tracker/mira-backend/internal/bootstrap"
	"github.com/mira-tracker/mira-backend/internal/seed"
	"github.com/mira-tracker/mira-backend/internal/storage/postgres"
)

func runMigrate(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.Driver == "memory" {
		log.Println("memory driver has no schema to migrate")
		return nil
	}
	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: postgres.DSN(&cfg.Database), MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()
	return postgres.Migrate(ctx, pool)
}

func runSeed(ctx context.Context, cfg *config.Config, args []string) error {
	n := seed.DefaultIssues
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("issue count must be a non-negative integer, got %q", args[0])
		}
		n = v
	}
	if cfg.Database.Driver == "memory" {
		log.Println("memory driver: data only lives inside this process; the api seeds itself on start")
	}

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Seed(ctx, n)
	if err != nil {
		return err
	}
	log.Printf("seeded users=%d project=%s issues=%d", len(res.Users), res.Project.Key, res.Issues)
	return nil
}

func runDigest(ctx context.Context, cfg *config.Config) error {
	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	sum, err := app.Digest.RunOnce(ctx)
	if err != nil {
		return err
	}
	log.Printf("digest total=%d critical=%d stale=%v escalations=%v unhealthy=%v",
		sum.TotalIssues, sum.CriticalIssues, sum.StaleIssues, sum.CriticalEscalations, sum.UnhealthyChipsets)
	return nil
}
