package identity

import (
	"context"
	"fmt"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
	"github.com/Majedzeyad/cancare-api/pkg/auth"
	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
	"github.com/Majedzeyad/cancare-api/pkg/security"
)

type Service interface {
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
}

type service struct {
	users  repository.UserRepository
	tokens auth.TokenService
	hasher security.PasswordHasher
}

func NewService(users repository.UserRepository, tokens auth.TokenService, hasher security.PasswordHasher) Service {
	return &service{
		users:  users,
		tokens: tokens,
		hasher: hasher,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized(err)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized(err)
	}

	token, err := s.tokens.Generate(user.ID, user.Name, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &model.LoginResponse{Token: token, User: user}, nil
}
