package authservice

import (
	"context"
	"errors"
	"time"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/pkg/auth"
	"go.uber.org/zap"
)

//go:generate mockgen -source=authservice.go -destination=mock_authservice.go -package=authservice

var ErrInvalidCredentials = errors.New("invalid credentials")

type Repo interface {
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

type Service struct {
	userRepo    Repo
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
	tokenTTL    time.Duration
}

func New(repo Repo, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface, tokenTTL time.Duration) *Service {
	return &Service{
		userRepo:    repo,
		hashService: hashService,
		jwtService:  jwtService,
		tokenTTL:    tokenTTL,
	}
}

func (s *Service) Register(ctx context.Context, login, password string) (*domain.User, error) {
	return s.create(ctx, login, password, domain.RoleUser)
}

func (s *Service) create(ctx context.Context, login, password string, role domain.Role) (*domain.User, error) {
	existingUser, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	if existingUser != nil {
		zap.L().Info("user already exists", zap.String("login", login))
		return nil, domain.ErrUserExists
	}
	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password", zap.Error(err))
		return nil, err
	}
	user, err := s.userRepo.Create(ctx, &domain.User{
		Login:        login,
		PasswordHash: hashedPassword,
		Role:         role,
	})
	if err != nil {
		zap.L().Error("can't create user", zap.Error(err))
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("login", login), zap.String("role", string(role)))
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	if user == nil || !s.hashService.ComparePassword(user.PasswordHash, password) {
		zap.L().Info("invalid credentials", zap.String("login", login))
		return nil, ErrInvalidCredentials
	}
	zap.L().Info("user successfully authenticated", zap.String("login", login))
	return user, nil
}

func (s *Service) GenerateToken(user *domain.User) (string, error) {
	token, err := s.jwtService.GenerateJWT(user.ID, string(user.Role), time.Now().Add(s.tokenTTL))
	if err != nil {
		zap.L().Error("can't generate token", zap.Error(err))
		return "", err
	}
	return token, nil
}

// EnsureAdmin creates the bootstrap administrator unless a user with login already exists.
func (s *Service) EnsureAdmin(ctx context.Context, login, password string) error {
	if login == "" || password == "" {
		return nil
	}
	_, err := s.create(ctx, login, password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	return err
}
