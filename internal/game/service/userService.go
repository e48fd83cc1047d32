package service

import (
	"context"

	"github.com/lexiduel/vocab-services/internal/game/models"
	"github.com/lexiduel/vocab-services/internal/game/store"
)

type UserService struct {
	userStore *store.UserStore
}

func NewUserService(userStore *store.UserStore) *UserService {
	return &UserService{userStore: userStore}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userStore.GetByID(ctx, id)
}

// FindByToken resolves an opaque bearer token, nil when it does not match.
func (s *UserService) FindByToken(ctx context.Context, token string) (*models.User, error) {
	return s.userStore.FindByToken(ctx, token)
}

func (s *UserService) SetOnline(ctx context.Context, id int64, online bool) error {
	return s.userStore.SetOnline(ctx, id, online)
}
