package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nimasrn/debt-ledger/internal/auth"
	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/repository"
	"github.com/nimasrn/debt-ledger/pkg/logger"
)

type TokenIssuer interface {
	GenerateToken(user *model.User) (string, time.Time, error)
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type AuthService struct {
	users      UserRepository
	tokens     TokenIssuer
	bcryptCost int
}

func NewAuthService(users UserRepository, tokens TokenIssuer, bcryptCost int) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

func (s *AuthService) Register(ctx context.Context, in model.RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)
	if err := model.Validate(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		Address:      in.Address,
		Role:         model.RoleUser,
		PasswordHash: hash,
	}
	if in.Mobile != "" {
		user.Mobile = &in.Mobile
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, mapUserError(err)
	}
	logger.Info("user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, in model.LoginInput) (*Session, error) {
	if err := model.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, in.Password) {
		logger.Warn("login rejected", "username", in.Username)
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, actor model.Identity, in model.ChangePasswordInput) error {
	if err := model.Validate(in); err != nil {
		return err
	}

	user, err := s.Me(ctx, actor)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(user.PasswordHash, in.OldPassword) {
		return model.NewValidationError("old_password", "current password is incorrect")
	}

	hash, err := auth.HashPassword(in.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return mapUserError(err)
	}
	logger.Info("password changed", "user_id", user.ID)
	return nil
}

func (s *AuthService) Me(ctx context.Context, actor model.Identity) (*model.User, error) {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, mapUserError(err)
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless the username
// already exists. An existing account is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password, email string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin, err := s.users.Create(ctx, &model.User{
		Username:     username,
		Email:        email,
		Role:         model.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		return mapUserError(err)
	}
	logger.Info("admin account created", "user_id", admin.ID, "username", admin.Username)
	return nil
}

func mapUserError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrUsernameTaken):
		return model.NewValidationError("username", err.Error())
	case errors.Is(err, repository.ErrUserMobileTaken):
		return model.NewValidationError("mobile", err.Error())
	}
	return err
}
