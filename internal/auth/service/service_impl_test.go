package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vivendahq/vivenda/internal/auth/domain"
	"github.com/vivendahq/vivenda/internal/config"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
	userrepo "github.com/vivendahq/vivenda/internal/user/repository"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&userdomain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Cfg:   config.Config{AuthJWTSecret: "test-secret", AuthTokenTTLMin: 60},
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Users: userrepo.Provide(),
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, domain.RegisterRequest{
		Name:     "Marta Ruiz",
		Email:    "  Marta@Example.com ",
		Password: "secret1",
		Role:     "owner",
	})
	require.NoError(t, err)
	require.Equal(t, "marta@example.com", user.Email)
	require.Equal(t, userdomain.RoleOwner, user.Role)
	require.NotEqual(t, "secret1", user.PasswordHash)

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "marta@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, user.ID, resp.User.ID)

	principal, err := svc.VerifyToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, principal.UserID)
	require.Equal(t, userdomain.RoleOwner, principal.Role)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Name: " ", Email: "a@b.co", Password: "secret1", Role: "tenant"})
	require.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Register(ctx, domain.RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret1", Role: "tenant"})
	require.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(ctx, domain.RegisterRequest{Name: "A", Email: "a@b.co", Password: "short", Role: "tenant"})
	require.ErrorIs(t, err, domain.ErrInvalidPassword)

	// Admin accounts are never self-registered.
	_, err = svc.Register(ctx, domain.RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret1", Role: "admin"})
	require.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = svc.Register(ctx, domain.RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret1", Role: "buyer"})
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret1", Role: "tenant"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.RegisterRequest{Name: "B", Email: "A@b.co", Password: "secret1", Role: "owner"})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret1", Role: "tenant"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "a@b.co", Password: "wrong"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@b.co", Password: "secret1"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "", Password: ""})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret1", Role: "tenant"})
	require.NoError(t, err)
	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(resp.Token + "x")
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = svc.VerifyToken("not-a-jwt")
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}
