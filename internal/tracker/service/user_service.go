package service

import (
	"context"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// List returns every user, for assignee pickers.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}
