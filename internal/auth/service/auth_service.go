package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mira-tracker/mira-backend/internal/auth"
	authdomain "github.com/mira-tracker/mira-backend/internal/auth/domain"
	"github.com/mira-tracker/mira-backend/internal/logging"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// Accounts is the slice of the user store the auth flow needs.
type Accounts interface {
	Create(ctx context.Context, in domain.CreateUserInput) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Sessions interface {
	Create(ctx context.Context, s *authdomain.Session) error
	Get(ctx context.Context, id string) (*authdomain.Session, error)
	Update(ctx context.Context, s *authdomain.Session) error
	Delete(ctx context.Context, s *authdomain.Session) error
}

type Options struct {
	SessionTTL time.Duration
	HashCost   int
}

// Result is what login and register hand back to the caller.
type Result struct {
	Token   string
	User    *domain.User
	Session *authdomain.Session
}

type AuthService struct {
	accounts  Accounts
	sessions  Sessions
	tokens    *auth.TokenIssuer
	ttl       time.Duration
	cost      int
	dummyHash []byte
	now       func() time.Time
}

func NewAuthService(accounts Accounts, sessions Sessions, tokens *auth.TokenIssuer, opt Options) (*AuthService, error) {
	if opt.SessionTTL <= 0 {
		opt.SessionTTL = 7 * 24 * time.Hour
	}
	if opt.HashCost == 0 {
		opt.HashCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("mira-dummy-password"), opt.HashCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		accounts:  accounts,
		sessions:  sessions,
		tokens:    tokens,
		ttl:       opt.SessionTTL,
		cost:      opt.HashCost,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

// HashPassword hashes with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Register creates a USER account and opens a session for it. An existing
// email yields domain.ErrUserExists.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*Result, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return nil, domain.Validation("email, password and name are required")
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, domain.Store(err)
	}
	user, err := s.accounts.Create(ctx, domain.CreateUserInput{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	logging.New(ctx).Infof("auth.register", "user_id=%d", user.ID)
	return s.open(ctx, user)
}

// Login checks credentials. Unknown email and wrong password return the
// same error after doing the same bcrypt work.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.accounts.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash := s.dummyHash
	if user != nil && user.PasswordHash != "" {
		hash = []byte(user.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || user == nil || user.PasswordHash == "" {
		logging.New(ctx).Warn("auth.login", "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	logging.New(ctx).Infof("auth.login", "user_id=%d", user.ID)
	return s.open(ctx, user)
}

func (s *AuthService) open(ctx context.Context, user *domain.User) (*Result, error) {
	now := s.now()
	session := &authdomain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, domain.Store(err)
	}
	token, err := s.tokens.Issue(session)
	if err != nil {
		return nil, domain.Store(err)
	}
	return &Result{Token: token, User: user, Session: session}, nil
}

// Authenticate resolves a bearer token to its live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*authdomain.Session, error) {
	claims, err := s.tokens.Parse(token, s.now())
	if err != nil {
		return nil, domain.Unauthorized("invalid token")
	}
	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, authdomain.ErrSessionNotFound) {
			return nil, domain.Unauthorized("session expired")
		}
		return nil, domain.Store(err)
	}
	if session.Expired(s.now()) || session.UserID != claims.UserID {
		return nil, domain.Unauthorized("session expired")
	}
	return session, nil
}

// Me returns the account behind a session.
func (s *AuthService) Me(ctx context.Context, session *authdomain.Session) (*domain.User, error) {
	return s.accounts.GetByID(ctx, session.UserID)
}

func (s *AuthService) Logout(ctx context.Context, session *authdomain.Session) error {
	if err := s.sessions.Delete(ctx, session); err != nil {
		return domain.Store(err)
	}
	logging.New(ctx).Infof("auth.logout", "user_id=%d", session.UserID)
	return nil
}

// UpdateSession stores UI state such as the active tab and selected project.
func (s *AuthService) UpdateSession(ctx context.Context, session *authdomain.Session, p authdomain.SessionPatch) (*authdomain.Session, error) {
	next := *session
	if p.ActiveTab != nil {
		next.ActiveTab = strings.TrimSpace(*p.ActiveTab)
	}
	if p.ClearProject {
		next.SelectedProjectID = nil
	} else if p.SelectedProjectID != nil {
		id := *p.SelectedProjectID
		next.SelectedProjectID = &id
	}
	if err := s.sessions.Update(ctx, &next); err != nil {
		if errors.Is(err, authdomain.ErrSessionNotFound) {
			return nil, domain.Unauthorized("session expired")
		}
		return nil, domain.Store(err)
	}
	return &next, nil
}
