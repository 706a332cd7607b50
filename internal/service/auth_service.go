package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Srinivas-559/chat-app/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is what the auth service needs from the user repository.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListExcept(ctx context.Context, username string) ([]domain.User, error)
}

type AuthService struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewAuthService(users UserStore, secret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, secret: []byte(secret), tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrEmptyIdentity
	}
	if password == "" {
		return nil, domain.ErrBadCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(ctx, username, string(hash))
}

// Login verifies credentials and issues a signed token whose subject is the
// username, the identity used everywhere else in the system.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrBadCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrBadCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			Issuer:    "chat-app",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, u, nil
}

// ValidateToken returns the username the token was issued for.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrBadCredentials
	}
	return c.Username, nil
}

// Directory lists every user except the requester, with presence columns.
func (s *AuthService) Directory(ctx context.Context, username string) ([]domain.User, error) {
	return s.users.ListExcept(ctx, username)
}
