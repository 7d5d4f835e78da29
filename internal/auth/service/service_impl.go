package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/vivendahq/vivenda/internal/auth/domain"
	"github.com/vivendahq/vivenda/internal/auth/password"
	"github.com/vivendahq/vivenda/internal/config"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
	"github.com/vivendahq/vivenda/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Users userdomain.Repository
}

type Service struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	users userdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:   p.Cfg,
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		users: p.Users,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(*user)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{Token: token, User: *user}, nil
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (userdomain.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return userdomain.User{}, domain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return userdomain.User{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < 6 {
		return userdomain.User{}, domain.ErrInvalidPassword
	}
	role, ok := userdomain.ParseRole(strings.TrimSpace(req.Role))
	if !ok || role == userdomain.RoleAdmin {
		return userdomain.User{}, domain.ErrInvalidRole
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return userdomain.User{}, err
	}

	now := time.Now().UTC()
	user := userdomain.User{
		ID:           s.genID.Generate(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return userdomain.User{}, domain.ErrEmailTaken
		}
		return userdomain.User{}, err
	}

	return user, nil
}

func (s *Service) VerifyToken(raw string) (domain.Principal, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(s.cfg.AuthJWTSecret), nil
	})
	if err != nil || !token.Valid {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	userID, err := snowflake.ParseString(sub)
	if err != nil || userID == 0 {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	roleClaim, _ := claims["role"].(string)
	role, ok := userdomain.ParseRole(roleClaim)
	if !ok {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	return domain.Principal{UserID: userID, Role: role}, nil
}

func (s *Service) issueToken(user userdomain.User) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(time.Duration(s.cfg.AuthTokenTTLMin) * time.Minute).Unix(),
	})
	return token.SignedString([]byte(s.cfg.AuthJWTSecret))
}
