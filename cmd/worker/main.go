package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mira-tracker/mira-backend/config"
	"github.com/mira-tracker/mira-backend/internal/logging"
)

const usage = `usage: worker <command> [args]

commands:
  migrate                     apply the database schema
  seed [n]                    create demo users, the MIRA project and n issues (default 1000)
  digest                      compute and store the stale/critical digest once
  board <projectId>           print the kanban board of a project
  move <issueId> <STATUS>     drag an issue to another column`

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.SetLevel(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[2:]
	switch os.Args[1] {
	case "migrate":
		err = runMigrate(ctx, cfg)
	case "seed":
		err = runSeed(ctx, cfg, args)
	case "digest":
		err = runDigest(ctx, cfg)
	case "board":
		err = runBoard(ctx, cfg, args, os.Stdout)
	case "move":
		err = runMove(ctx, cfg, args, os.Stdout)
	default:
		log.Fatalf("unknown command: %s\n\n%s", os.Args[1], usage)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}
