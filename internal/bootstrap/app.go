package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mira-tracker/mira-backend/config"
	httpapi "github.com/mira-tracker/mira-backend/internal/api/http"
	"github.com/mira-tracker/mira-backend/internal/analytics"
	"github.com/mira-tracker/mira-backend/internal/auth"
	"github.com/mira-tracker/mira-backend/internal/auth/repository"
	authservice "github.com/mira-tracker/mira-backend/internal/auth/service"
	"github.com/mira-tracker/mira-backend/internal/digest"
	"github.com/mira-tracker/mira-backend/internal/seed"
	"github.com/mira-tracker/mira-backend/internal/storage/postgres"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
	trackerhttp "github.com/mira-tracker/mira-backend/internal/tracker/http"
	"github.com/mira-tracker/mira-backend/internal/tracker/memstore"
	trackerrepo "github.com/mira-tracker/mira-backend/internal/tracker/repository"
	"github.com/mira-tracker/mira-backend/internal/tracker/service"
)

// UserStore is everything the services and the seeder need from users.
type UserStore interface {
	service.UserStore
	authservice.Accounts
}

type ProjectStore interface {
	service.ProjectStore
	GetByKey(ctx context.Context, key string) (*domain.Project, error)
}

// Stores is one backend's set of entity stores.
type Stores struct {
	Users    UserStore
	Projects ProjectStore
	Issues   service.IssueStore
	Comments service.CommentStore
	Importer seed.Importer
}

// App owns every long lived dependency of a process.
type App struct {
	Config *config.Config

	Pool  *pgxpool.Pool
	SQL   *sql.DB
	Redis *redis.Client

	Stores    Stores
	Services  trackerhttp.Services
	Auth      *authservice.AuthService
	Sessions  *repository.SessionRepository
	Digest    *digest.Scheduler
	DigestLog *digest.RedisSink

	closers []func()
}

// NewApp opens the configured backends and wires the services on top.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	if err := a.openStores(ctx); err != nil {
		a.Close()
		return nil, err
	}

	rdb, closeRedis, err := OpenRedis(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Redis = rdb
	a.closers = append(a.closers, closeRedis)

	policy, err := service.ParseTransitions(cfg.Tracker.Transitions)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("ISSUE_TRANSITIONS: %w", err)
	}
	loc, err := cfg.Dashboard.Location()
	if err != nil {
		a.Close()
		return nil, err
	}
	dashboard := service.NewDashboardService(a.Stores.Issues, analytics.Options{
		Location:       loc,
		VelocityWindow: cfg.Dashboard.VelocityWindow,
		StaleAfter:     cfg.Dashboard.StaleAfter,
		TrendBuckets:   cfg.Dashboard.TrendBuckets,
	})
	a.Services = trackerhttp.Services{
		Issues:    service.NewIssueService(a.Stores.Issues, policy),
		Projects:  service.NewProjectService(a.Stores.Projects, a.Stores.Issues),
		Comments:  service.NewCommentService(a.Stores.Comments),
		Users:     service.NewUserService(a.Stores.Users),
		Dashboard: dashboard,
	}

	a.Sessions = repository.NewSessionRepository(rdb)
	a.Auth, err = authservice.NewAuthService(a.Stores.Users, a.Sessions, auth.NewTokenIssuer(cfg.Auth.JWTSecret),
		authservice.Options{SessionTTL: cfg.Auth.SessionTTL})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.DigestLog = digest.NewRedisSink(rdb, 0)
	a.Digest = digest.NewScheduler(dashboard, a.DigestLog, cfg.Digest.Schedule)
	return a, nil
}

func (a *App) openStores(ctx context.Context) error {
	cfg := a.Config
	if cfg.Database.Driver == "memory" {
		mem := memstore.New()
		a.Stores = Stores{
			Users:    mem.Users(),
			Projects: mem.Projects(),
			Issues:   mem.Issues(),
			Comments: mem.Comments(),
			Importer: mem.Issues(),
		}
		return nil
	}

	pool, err := OpenDB(ctx, DBOptions{DSN: postgres.DSN(&cfg.Database), MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return err
	}
	a.Pool = pool
	a.closers = append(a.closers, pool.Close)

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	a.SQL = db
	a.closers = append(a.closers, func() { db.Close() })

	a.Stores = Stores{
		Users:    trackerrepo.NewUserRepository(db),
		Projects: trackerrepo.NewProjectRepository(db),
		Issues:   trackerrepo.NewIssueRepository(db),
		Comments: trackerrepo.NewCommentRepository(db),
		Importer: seed.NewCopyImporter(pool),
	}
	return nil
}

// Seed loads the demo data set into the configured stores.
func (a *App) Seed(ctx context.Context, issues int) (*seed.Result, error) {
	return seed.Run(ctx, a.Stores.Users, a.Stores.Projects, a.Stores.Importer, seed.Options{
		Issues: issues,
		Hash:   a.Auth.HashPassword,
	})
}

// Pings returns the health probes for the database and the session store.
func (a *App) Pings() (db, sessions httpapi.PingFunc) {
	if a.Pool != nil {
		db = a.Pool.Ping
	}
	if a.Redis != nil {
		rdb := a.Redis
		sessions = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return db, sessions
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
