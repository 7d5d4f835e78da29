package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
)

// Principal is the authenticated caller. Operations that need the current
// user receive it explicitly; nothing reads it from ambient state.
type Principal struct {
	UserID snowflake.ID
	Role   userdomain.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == userdomain.RoleAdmin
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResponse struct {
	Token string          `json:"token"`
	User  userdomain.User `json:"user"`
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (userdomain.User, error)
	VerifyToken(token string) (Principal, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidRole        = errors.New("invalid_role")
)
