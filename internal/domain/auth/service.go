package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ferreteria/internal/core/apperror"
	"ferreteria/pkg/logger"
)

// Credentials is a login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is a successful login result.
type Session struct {
	Token        string        `json:"token"`
	ExpiresAt    time.Time     `json:"expiresAt"`
	Collaborator *Collaborator `json:"collaborator"`
}

// Service authenticates collaborators.
type Service struct {
	repo Repository
	jwt  *JWTService

	now func() time.Time
}

// NewService creates a new auth service.
func NewService(repo Repository, jwtService *JWTService) *Service {
	return &Service{
		repo: repo,
		jwt:  jwtService,
		now:  time.Now,
	}
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login verifies credentials and issues a token. Unknown usernames and bad
// passwords report the same error so the endpoint leaks nothing.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, apperror.NewValidation("username and password are required")
	}

	collab, err := s.repo.GetByUsername(ctx, creds.Username)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := collab.CanLogin(); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(collab.PasswordHash), []byte(creds.Password)); err != nil {
		logger.Warn(ctx, "failed login attempt", "username", creds.Username)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateToken(collab)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	loginAt := s.now()
	if err := s.repo.RecordLogin(ctx, collab.ID, loginAt); err != nil {
		// Bookkeeping only, the login itself succeeded.
		logger.Warn(ctx, "record login failed", "error", err)
	}
	collab.LastLoginAt = &loginAt

	logger.Info(ctx, "collaborator logged in",
		"id", collab.ID,
		"username", collab.Username,
	)

	return &Session{
		Token:        token,
		ExpiresAt:    expiresAt,
		Collaborator: collab,
	}, nil
}
