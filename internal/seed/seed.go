// Package seed fills a fresh store with demo users, the MIRA project and a
// batch of randomised issues spread over the last 60 days.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mira-tracker/mira-backend/internal/logging"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

const (
	DefaultIssues   = 1000
	DefaultPassword = "admin123"
	ProjectKey      = "MIRA"
	window          = 60 * 24 * time.Hour
)

var chipsets = []string{
	"Snapdragon 8 Gen 3", "Snapdragon 8 Gen 2", "Dimensity 9300", "Dimensity 8300",
	"Exynos 2400", "Bionic A17 Pro", "Kirin 9000S", "Tensor G3",
}

var titles = []string{
	"Overheating during 5G benchmark",
	"Camera app crashes on video switch",
	"WiFi 6E throughput unstable",
	"Bluetooth latency > 200ms",
	"GPU artifacting in Genshin Impact",
	"Battery drain excessive in standby",
	"NPU inference failure",
	"Display flickering at 120Hz",
	"Kernel panic on boot",
	"Touch sampling rate drop",
	"Audio distortion at max volume",
	"Fingerprint sensor timeout",
	"USB-C charging slow",
	"VoLTE call drop",
	"GPS accuracy drift",
	"Memory leak in launcher",
	"App crash on split screen",
	"Notification delay > 5s",
	"Biometric unlock failure",
	"Screen rotation lag",
}

type account struct {
	email string
	name  string
	role  domain.Role
}

var accounts = []account{
	{"admin@mira.com", "Admin User", domain.RoleAdmin},
	{"jane@mira.com", "Jane Doe", domain.RoleDeveloper},
	{"bob@mira.com", "Bob Smith", domain.RoleDeveloper},
}

type Accounts interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, in domain.CreateUserInput) (*domain.User, error)
}

type Projects interface {
	GetByKey(ctx context.Context, key string) (*domain.Project, error)
	Create(ctx context.Context, in domain.CreateProjectInput) (*domain.Project, error)
}

// Importer bulk-writes issues that already carry their timestamps.
type Importer interface {
	Import(ctx context.Context, rows []domain.Issue) (int64, error)
}

type Options struct {
	Issues   int
	Password string
	Now      time.Time
	Rand     *rand.Rand
	Hash     func(password string) (string, error)
}

type Result struct {
	Users   []domain.User
	Project *domain.Project
	Issues  int64
}

// Run creates the demo accounts and project when missing, then imports
// opt.Issues new issues. Re-running adds another batch of issues.
func Run(ctx context.Context, users Accounts, projects Projects, issues Importer, opt Options) (*Result, error) {
	if opt.Issues < 0 {
		return nil, fmt.Errorf("issue count must not be negative")
	}
	if opt.Password == "" {
		opt.Password = DefaultPassword
	}
	if opt.Now.IsZero() {
		opt.Now = time.Now()
	}
	if opt.Rand == nil {
		opt.Rand = rand.New(rand.NewSource(opt.Now.UnixNano()))
	}
	if opt.Hash == nil {
		return nil, fmt.Errorf("password hasher is required")
	}

	res := &Result{}
	for _, a := range accounts {
		u, err := ensureUser(ctx, users, a, opt)
		if err != nil {
			return nil, err
		}
		res.Users = append(res.Users, *u)
	}

	project, err := projects.GetByKey(ctx, ProjectKey)
	if errors.Is(err, domain.ErrNotFound) {
		project, err = projects.Create(ctx, domain.CreateProjectInput{
			Name:        "MIRA Core",
			Key:         ProjectKey,
			Description: "Main validated chipset project",
		})
	}
	if err != nil {
		return nil, fmt.Errorf("seed project: %w", err)
	}
	res.Project = project

	rows := Issues(res.Users, project.ID, opt.Issues, opt.Now, opt.Rand)
	n, err := issues.Import(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("seed issues: %w", err)
	}
	res.Issues = n

	logging.New(ctx).Infof("seed", "users=%d project=%s issues=%d", len(res.Users), project.Key, n)
	return res, nil
}

func ensureUser(ctx context.Context, users Accounts, a account, opt Options) (*domain.User, error) {
	u, err := users.GetByEmail(ctx, a.email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("seed user %s: %w", a.email, err)
	}
	hash, err := opt.Hash(opt.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err = users.Create(ctx, domain.CreateUserInput{Email: a.email, Name: a.name, Role: a.role, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("seed user %s: %w", a.email, err)
	}
	return u, nil
}

// Issues generates n issues reported by the first user. Resolved and closed
// issues get an updatedAt between createdAt and now; the rest keep
// updatedAt equal to createdAt.
func Issues(users []domain.User, projectID int64, n int, now time.Time, rng *rand.Rand) []domain.Issue {
	if len(users) == 0 || n <= 0 {
		return nil
	}
	assignees := make([]*int64, 0, len(users)+2)
	for i := range users {
		id := users[i].ID
		assignees = append(assignees, &id)
	}
	assignees = append(assignees, nil, nil)

	start := now.Add(-window)
	out := make([]domain.Issue, 0, n)
	for i := 0; i < n; i++ {
		createdAt := between(rng, start, now)
		status := domain.Statuses[rng.Intn(len(domain.Statuses))]
		updatedAt := createdAt
		if status.IsResolved() {
			updatedAt = between(rng, createdAt, now)
		}
		chipset := chipsets[rng.Intn(len(chipsets))]

		out = append(out, domain.Issue{
			Title:         fmt.Sprintf("%s [Case %d]", titles[rng.Intn(len(titles))], 10000+i),
			Description:   "Auto-generated load test issue.",
			Status:        status,
			Priority:      domain.Priorities[rng.Intn(len(domain.Priorities))],
			ChipsetVendor: VendorOf(chipset),
			Chipset:       chipset,
			ProjectID:     projectID,
			ReporterID:    users[0].ID,
			AssigneeID:    assignees[rng.Intn(len(assignees))],
			CreatedAt:     createdAt,
			UpdatedAt:     updatedAt,
		})
	}
	return out
}

// VendorOf infers the vendor from a marketing chipset name, or nil.
func VendorOf(chipset string) *domain.ChipsetVendor {
	var v domain.ChipsetVendor
	switch c := strings.ToLower(chipset); {
	case strings.HasPrefix(c, "snapdragon"):
		v = domain.VendorQualcomm
	case strings.HasPrefix(c, "dimensity"):
		v = domain.VendorMediatek
	case strings.HasPrefix(c, "exynos"):
		v = domain.VendorExynos
	default:
		return nil
	}
	return &v
}

func between(rng *rand.Rand, start, end time.Time) time.Time {
	span := end.Sub(start)
	if span <= 0 {
		return start
	}
	return start.Add(time.Duration(rng.Int63n(int64(span)))).Truncate(time.Millisecond)
}
