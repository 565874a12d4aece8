package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmehra2102/order-fulfillment-console/internal/admin/domain"
)

// MaxLoginAttempts is how many failed logins the console tolerates before exiting.
const MaxLoginAttempts = 3

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyUsername      = errors.New("username cannot be empty")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type Service struct {
	log  *slog.Logger
	repo AdminRepository
}

func NewService(log *slog.Logger, repo AdminRepository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) Authenticate(username, password string) (*domain.Admin, error) {
	a, ok := s.repo.Admin(strings.TrimSpace(username))
	if !ok || !a.CheckPassword(password) {
		s.log.Warn("login failed", "username", username)
		return nil, ErrInvalidCredentials
	}
	s.log.Info("login succeeded", "username", a.Username, "role", a.Role)
	return a, nil
}

// AddAdmin registers a new account. The acting admin must hold the add_admin capability.
func (s *Service) AddAdmin(ctx context.Context, actor *domain.Admin, username, password, role string) (domain.Admin, error) {
	if actor == nil || !domain.Allows(actor.Role, domain.ActionAddAdmin) {
		return domain.Admin{}, fmt.Errorf("add admin: %w", domain.ErrPermissionDenied)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Admin{}, ErrEmptyUsername
	}
	if strings.TrimSpace(password) == "" {
		return domain.Admin{}, ErrEmptyPassword
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.Admin{}, err
	}
	a := domain.Admin{Username: username, PasswordHash: domain.HashPassword(strings.TrimSpace(password)), Role: r}
	if err := s.repo.AddAdmin(a); err != nil {
		return domain.Admin{}, err
	}
	if err := s.repo.Save(ctx); err != nil {
		s.log.Error("save after add admin failed", "err", err)
	}
	s.log.Info("admin added", "username", username, "role", r, "by", actor.Username)
	return a, nil
}

// ChangePassword replaces the password of admin after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, admin *domain.Admin, current, next, confirm string) error {
	if !admin.CheckPassword(current) {
		return ErrWrongPassword
	}
	if strings.TrimSpace(next) == "" {
		return ErrEmptyPassword
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	admin.PasswordHash = domain.HashPassword(next)
	if err := s.repo.Save(ctx); err != nil {
		s.log.Error("save after password change failed", "err", err)
	}
	s.log.Info("password changed", "username", admin.Username)
	return nil
}
