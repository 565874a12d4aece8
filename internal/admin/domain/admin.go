package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleSupport Role = "SUPPORT"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(v string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(v))); r {
	case RoleAdmin, RoleManager, RoleSupport:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, v)
}

type Admin struct {
	Username     string
	PasswordHash string
	Role         Role
}

const (
	DefaultUsername = "admin"
	DefaultPassword = "admin123"
)

// DefaultAdmin is synthesized when no administrator could be loaded.
func DefaultAdmin() Admin {
	return Admin{Username: DefaultUsername, PasswordHash: HashPassword(DefaultPassword), Role: RoleAdmin}
}

// HashPassword returns the lowercase hex SHA-256 digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (a Admin) CheckPassword(password string) bool {
	return a.PasswordHash == HashPassword(password)
}
