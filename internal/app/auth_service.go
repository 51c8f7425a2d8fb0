package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fittrack/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates that an account already exists for the email.
	ErrEmailTaken = errors.New("user already exists with this email")
	// ErrInvalidToken indicates that the bearer token failed verification.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// AuthService handles registration, login, and bearer-token verification.
type AuthService struct {
	users    domain.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService creates a new authentication service signing tokens with
// the given secret.
func NewAuthService(users domain.UserRepository, secret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL}
}

type tokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Register creates an account and returns it with a signed token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return nil, "", errors.New("please provide name, email and password")
	}
	if !strings.Contains(email, "@") {
		return nil, "", errors.New("please provide a valid email")
	}
	if len(password) < 6 {
		return nil, "", errors.New("password must be at least 6 characters")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(ctx, name, email, string(hash))
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	return user, token, err
}

// Login authenticates a user and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	return user, token, err
}

// GetUser returns the account for the given id.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UserFromToken verifies a bearer token and resolves its subject.
func (s *AuthService) UserFromToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return s.GetUser(ctx, claims.UserID)
}

// LoginWithProvisionedUser issues a token for an externally authenticated
// identity (e.g. OIDC SSO), creating the account on first login. SSO
// accounts carry an empty password hash and cannot log in with a password.
func (s *AuthService) LoginWithProvisionedUser(ctx context.Context, name, email string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", errors.New("no email claim")
	}
	if name == "" {
		name = email
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		user, err = s.users.Create(ctx, name, email, "")
		if err != nil {
			// Retry the lookup in case a concurrent first login won the
			// unique-constraint race.
			user, err = s.users.GetByEmail(ctx, email)
			if err != nil || user == nil {
				return nil, "", fmt.Errorf("provision user: %w", err)
			}
		}
	}

	token, err := s.issueToken(user)
	return user, token, err
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
