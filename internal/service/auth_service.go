package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/domain"
	"taskmanager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthService struct {
	users  repository.UserStore
	hasher *PasswordHasher
	tokens *TokenService
	log    *zap.Logger
}

func NewAuthService(users repository.UserStore, hasher *PasswordHasher, tokens *TokenService, log *zap.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log}
}

// Register creates a user. The username pre-check is not atomic with the insert;
// a concurrent duplicate is caught by the store's unique constraint.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Password == "" || in.Role == "" {
		return nil, domain.InvalidInput(domain.MsgInvalidInput)
	}
	role := domain.Role(in.Role)
	if !role.Valid() {
		return nil, domain.InvalidInput(domain.MsgInvalidRole)
	}

	_, err := s.users.GetByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, domain.InvalidInput(domain.MsgUserExists)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.InvalidInput(domain.MsgUserExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Login verifies credentials, signs a session token and stores it on the user record.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.User, string, error) {
	if in.Username == "" || in.Password == "" {
		return nil, "", domain.InvalidInput(domain.MsgInvalidInput)
	}

	u, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", domain.NotFound(domain.MsgNoUser)
		}
		return nil, "", fmt.Errorf("lookup username: %w", err)
	}

	ok, err := s.hasher.Verify(in.Password, u.PasswordHash)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", domain.Unauthorized(domain.MsgWrongPassword)
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	if err := s.users.SetSessionToken(ctx, u.ID, token); err != nil {
		return nil, "", fmt.Errorf("store session token: %w", err)
	}
	u.SessionToken = token

	s.log.Debug("user logged in", zap.String("user_id", u.ID))
	return u, token, nil
}

// Authenticate checks the token signature and that it is still the token stored
// for some user. Logout does not clear the stored copy.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.Forbidden(domain.MsgNoCredential)
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return domain.Identity{}, ErrTokenExpired
		}
		return domain.Identity{}, domain.InvalidInput(domain.MsgInvalidToken)
	}

	if _, err := s.users.GetBySessionToken(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Identity{}, domain.InvalidInput(domain.MsgUserNoLongerValid)
		}
		return domain.Identity{}, fmt.Errorf("lookup session: %w", err)
	}

	return claims.Identity(), nil
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}
