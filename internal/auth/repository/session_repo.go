package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mira-tracker/mira-backend/internal/auth/domain"
)

const (
	sessionKeyPrefix     = "mira:session:" // mira:session:{session_id} -> JSON
	userSessionSetPrefix = "mira:user:"    // mira:user:{user_id}:sessions -> set of session ids
)

// SessionRepository stores sessions as JSON documents that expire with the session.
type SessionRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client, now: time.Now}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	ttl := r.ttl(s)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", s.ID)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	userKey := r.userSessionsKey(s.UserID)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(s.ID), data, ttl)
	pipe.SAdd(ctx, userKey, s.ID)
	pipe.Expire(ctx, userKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Update rewrites an existing session keeping its remaining lifetime.
func (r *SessionRepository) Update(ctx context.Context, s *domain.Session) error {
	ttl := r.ttl(s)
	if ttl <= 0 {
		return domain.ErrSessionNotFound
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	ok, err := r.client.SetXX(ctx, r.sessionKey(s.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, s *domain.Session) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.sessionKey(s.ID))
	pipe.SRem(ctx, r.userSessionsKey(s.UserID), s.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListByUser returns the ids of live sessions for a user, pruning expired ones.
func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]string, error) {
	userKey := r.userSessionsKey(userID)
	ids, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := r.client.Exists(ctx, r.sessionKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check session: %w", err)
		}
		if n == 0 {
			r.client.SRem(ctx, userKey, id)
			continue
		}
		live = append(live, id)
	}
	return live, nil
}

func (r *SessionRepository) ttl(s *domain.Session) time.Duration {
	return s.ExpiresAt.Sub(r.now())
}

func (r *SessionRepository) sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *SessionRepository) userSessionsKey(userID int64) string {
	return userSessionSetPrefix + strconv.FormatInt(userID, 10) + ":sessions"
}
