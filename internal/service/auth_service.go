package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrUserExists         = errors.New("user already exists")
)

const MinPasswordLength = 8

// AuthConfig configures sessions and per-user rate limiting.
type AuthConfig struct {
	SessionTimeout   time.Duration
	RateLimitPerHour int
}

// Session is a logged in user.
type Session struct {
	ID       string
	UserID   uint
	Username string
}

// AuthService manages API users, sessions and per-user request limits.
type AuthService interface {
	EnsureAdmin(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, password string) (*entity.User, error)
	Login(ctx context.Context, username, password string) (*entity.User, *Session, error)
	Logout(sessionID string)
	// Authenticate resolves a user from an API key or a session ID, in that order.
	Authenticate(ctx context.Context, apiKey, sessionID string) (*entity.User, error)
	// Allow reports whether the user is within the hourly request budget.
	Allow(username string) bool
}

type authService struct {
	cfg      AuthConfig
	users    repository.UserRepository
	sessions *cache.Cache
	limiters *cache.Cache
	activity ActivityLogger
	log      *logger.Logger
}

func NewAuthService(cfg AuthConfig, users repository.UserRepository, activity ActivityLogger, log *logger.Logger) AuthService {
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = time.Hour
	}
	if cfg.RateLimitPerHour <= 0 {
		cfg.RateLimitPerHour = 100
	}
	return &authService{
		cfg:      cfg,
		users:    users,
		sessions: cache.New(cfg.SessionTimeout, 10*time.Minute),
		limiters: cache.New(2*time.Hour, 10*time.Minute),
		activity: activity,
		log:      log,
	}
}

// EnsureAdmin creates the admin user on first start.
func (s *authService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	user, err := s.createUser(ctx, username, password)
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	s.activity.Info(ctx, "Created default admin user "+user.Username)
	return nil
}

func (s *authService) Register(ctx context.Context, username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidCredentials
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	user, err := s.createUser(ctx, username, password)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, err
	}
	s.activity.Info(ctx, "Registered user "+user.Username)
	return user, nil
}

func (s *authService) createUser(ctx context.Context, username, password string) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Username:     username,
		PasswordHash: string(hash),
		APIKey:       uuid.NewString(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*entity.User, *Session, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.activity.Warn(ctx, "Failed login for "+username)
		return nil, nil, ErrInvalidCredentials
	}

	session := &Session{ID: uuid.NewString(), UserID: user.ID, Username: user.Username}
	s.sessions.SetDefault(session.ID, session)
	s.activity.Info(ctx, "User logged in: "+user.Username)
	return user, session, nil
}

func (s *authService) Logout(sessionID string) {
	s.sessions.Delete(sessionID)
}

func (s *authService) Authenticate(ctx context.Context, apiKey, sessionID string) (*entity.User, error) {
	if apiKey != "" {
		user, err := s.users.FindByAPIKey(ctx, apiKey)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return user, err
	}
	if sessionID != "" {
		if v, ok := s.sessions.Get(sessionID); ok {
			session := v.(*Session)
			user, err := s.users.FindByUsername(ctx, session.Username)
			if errors.Is(err, repository.ErrNotFound) {
				// The user was removed after logging in.
				s.sessions.Delete(sessionID)
				return nil, ErrUnauthenticated
			}
			if err != nil {
				return nil, err
			}
			// Sliding expiration: each authenticated request renews the session.
			s.sessions.SetDefault(sessionID, session)
			return user, nil
		}
	}
	return nil, ErrUnauthenticated
}

func (s *authService) Allow(username string) bool {
	var limiter *rate.Limiter
	if v, ok := s.limiters.Get(username); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(s.cfg.RateLimitPerHour)), s.cfg.RateLimitPerHour)
		if err := s.limiters.Add(username, limiter, cache.DefaultExpiration); err != nil {
			// Lost a race with a concurrent request of the same user.
			if v, ok := s.limiters.Get(username); ok {
				limiter = v.(*rate.Limiter)
			}
		}
	}
	// Limiters expire after two idle hours, never while the user is active.
	s.limiters.SetDefault(username, limiter)
	return limiter.Allow()
}
