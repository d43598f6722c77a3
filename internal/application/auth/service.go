package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront-go/storefront/internal/domain/user"
	"github.com/storefront-go/storefront/internal/pkg/logging"
)

var (
	ErrInvalidToken  = errors.New("auth: invalid token")
	ErrWeakPassword  = errors.New("auth: password must be at least 8 characters")
	ErrTokenLifetime = errors.New("auth: token ttl must be positive")
)

// Claims is the access-token payload: the user id, an admin flag and the
// registered expiry fields.
type Claims struct {
	UserID int64 `json:"uid"`
	Admin  bool  `json:"adm"`
	jwt.RegisteredClaims
}

type Service struct {
	users  user.Repository
	secret []byte
	ttl    time.Duration
}

func NewService(users user.Repository, secret string, ttl time.Duration) *Service {
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *Service) Register(ctx context.Context, email, password, fullName string) (*user.User, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "auth_service"))

	if email == "" {
		return nil, user.ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, user.ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("auth: lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	u, err := user.New(email, string(hash), fullName)
	if err != nil {
		return nil, err
	}

	id, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("auth: create user: %w", err)
	}
	u.ID = id

	logger.Info("user_registered", zap.Int64("user_id", id))
	return u, nil
}

// Login verifies the credentials and issues a signed access token.
// Credential failures are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "auth_service"))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", user.ErrBadCredentials
		}
		return "", fmt.Errorf("auth: lookup email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		logger.Info("login_rejected", zap.Int64("user_id", u.ID))
		return "", user.ErrBadCredentials
	}
	if !u.Active {
		return "", user.ErrInactive
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", err
	}

	logger.Info("login_success", zap.Int64("user_id", u.ID))
	return token, nil
}

func (s *Service) issueToken(u *user.User) (string, error) {
	if s.ttl <= 0 {
		return "", ErrTokenLifetime
	}
	now := time.Now().UTC()
	claims := Claims{
		UserID: u.ID,
		Admin:  u.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and loads the user it belongs to. Expired or
// tampered tokens, and tokens for deactivated users, fail uniformly.
func (s *Service) Verify(ctx context.Context, tokenString string) (*user.User, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("auth: load user: %w", err)
	}
	if !u.Active {
		return nil, user.ErrInactive
	}
	return u, nil
}
