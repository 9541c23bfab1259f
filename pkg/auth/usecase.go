package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stuimpact/stuimpactweb2/pkg/events"
	"github.com/stuimpact/stuimpactweb2/pkg/logger"
)

const minPasswordLen = 8

// AuthUseCase describes registration, login and email verification.
type AuthUseCase interface {
	Register(ctx context.Context, email, password string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Verify(ctx context.Context, email, code string) error
}

type AuthResult struct {
	User  User
	Token string
}

// RegisteredEvent is published on user.registered so the mailer can send
// the verification code.
type RegisteredEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Code   string `json:"code"`
}

type authService struct {
	repo      UserRepository
	tokens    TokenGenerator
	publisher events.Publisher
	newCode   func() (string, error)
	log       zerolog.Logger
}

// NewAuthService returns the default AuthUseCase. publisher may be nil.
func NewAuthService(repo UserRepository, tokens TokenGenerator, publisher events.Publisher) AuthUseCase {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &authService{
		repo:      repo,
		tokens:    tokens,
		publisher: publisher,
		newCode:   verificationCode,
		log:       logger.Component("auth"),
	}
}

func (s *authService) Register(ctx context.Context, email, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < minPasswordLen {
		return AuthResult{}, ErrInvalidCredentials
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, err
	}
	code, err := s.newCode()
	if err != nil {
		return AuthResult{}, fmt.Errorf("verification code: %w", err)
	}

	user := User{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     string(passwordHash),
		VerificationCode: code,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	ev := RegisteredEvent{UserID: user.ID.String(), Email: user.Email, Code: code}
	if err := s.publisher.Publish(ctx, events.UserRegistered, ev); err != nil {
		s.log.Warn().Err(err).Str("user_id", ev.UserID).Msg("registration event not published")
	}

	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

// Verify marks the account verified when code matches the one issued at
// registration. Verifying twice is not an error.
func (s *authService) Verify(ctx context.Context, email, code string) error {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if user.Verified {
		return nil
	}
	code = strings.TrimSpace(code)
	if user.VerificationCode == "" || subtle.ConstantTimeCompare([]byte(code), []byte(user.VerificationCode)) != 1 {
		return ErrInvalidCode
	}
	return s.repo.MarkVerified(ctx, user.ID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// verificationCode returns a random six digit code.
func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
