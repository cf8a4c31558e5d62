// Package digest produces the nightly summary of stale and critical work
// and runs it on a cron schedule.
package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/mira-tracker/mira-backend/internal/analytics"
	"github.com/mira-tracker/mira-backend/internal/logging"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// Dashboard computes the view the digest is built from.
type Dashboard interface {
	Compute(ctx context.Context, f domain.IssueFilter) (analytics.DashboardView, error)
}

// Sink stores a finished summary.
type Sink interface {
	Save(ctx context.Context, s Summary) error
}

type Summary struct {
	GeneratedAt         time.Time `json:"generatedAt"`
	TotalIssues         int       `json:"totalIssues"`
	CriticalIssues      int       `json:"criticalIssues"`
	ResolvedIssues      int       `json:"resolvedIssues"`
	Velocity            int       `json:"velocity"`
	StaleIssues         []int64   `json:"staleIssues"`
	CriticalEscalations []int64   `json:"criticalEscalations"`
	UnhealthyChipsets   []string  `json:"unhealthyChipsets"`
}

// Summarize reduces a dashboard view to the digest fields.
func Summarize(v analytics.DashboardView) Summary {
	s := Summary{
		GeneratedAt:         v.GeneratedAt,
		TotalIssues:         v.KPIs.TotalIssues,
		CriticalIssues:      v.KPIs.CriticalIssues,
		ResolvedIssues:      v.KPIs.ResolvedIssues,
		Velocity:            v.KPIs.Velocity,
		StaleIssues:         ids(v.StaleIssues),
		CriticalEscalations: ids(v.CriticalEscalations),
		UnhealthyChipsets:   make([]string, 0),
	}
	for _, c := range v.ChipsetReliability {
		if c.Health == analytics.HealthCritical {
			s.UnhealthyChipsets = append(s.UnhealthyChipsets, c.Name)
		}
	}
	return s
}

func ids(issues []domain.Issue) []int64 {
	out := make([]int64, len(issues))
	for i, is := range issues {
		out[i] = is.ID
	}
	return out
}

type Scheduler struct {
	dashboard Dashboard
	sink      Sink
	schedule  string

	mu   sync.Mutex
	cron *cron.Cron
}

// NewScheduler builds a digest job. sink may be nil.
func NewScheduler(dashboard Dashboard, sink Sink, schedule string) *Scheduler {
	if schedule == "" {
		schedule = "0 0 0 * * *"
	}
	return &Scheduler{dashboard: dashboard, sink: sink, schedule: schedule}
}

// Start registers the job and starts the cron runner.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			logging.New(context.Background()).Error("digest", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule digest %q: %w", s.schedule, err)
	}

	c.Start()
	s.cron = c
	logging.New(context.Background()).Infof("digest", "scheduler started schedule=%q", s.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce computes, logs and stores one digest.
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	view, err := s.dashboard.Compute(ctx, domain.IssueFilter{})
	if err != nil {
		return Summary{}, fmt.Errorf("compute dashboard: %w", err)
	}
	sum := Summarize(view)

	logging.New(ctx).Infof("digest", "total=%d critical=%d resolved=%d velocity=%d stale=%d escalations=%d unhealthy_chipsets=%d",
		sum.TotalIssues, sum.CriticalIssues, sum.ResolvedIssues, sum.Velocity,
		len(sum.StaleIssues), len(sum.CriticalEscalations), len(sum.UnhealthyChipsets))

	if s.sink != nil {
		if err := s.sink.Save(ctx, sum); err != nil {
			return sum, fmt.Errorf("store digest: %w", err)
		}
	}
	return sum, nil
}

const latestKey = "mira:digest:latest"

// RedisSink keeps the most recent digest under a single key.
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSink(client *redis.Client, ttl time.Duration) *RedisSink {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &RedisSink{client: client, ttl: ttl}
}

func (r *RedisSink) Save(ctx context.Context, s Summary) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, latestKey, b, r.ttl).Err()
}

// Latest returns the last stored digest, or false when none is kept.
func (r *RedisSink) Latest(ctx context.Context) (*Summary, bool, error) {
	b, err := r.client.Get(ctx, latestKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var s Summary
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, false, err
	}
	return &s, true, nil
}
