package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id snowflake.ID) (User, error)
}

var (
	ErrNotFound  = errors.New("user_not_found")
	ErrInvalidID = errors.New("invalid_user_id")
)
