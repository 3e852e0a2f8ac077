package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/config"
)

const sessionSubject = "admin"

var errAuthNotConfigured = errors.New("auth pin or session secret is not configured")

// SessionStore keeps track of live sessions by id.
type SessionStore interface {
	Save(ctx context.Context, id string, ttl time.Duration) error
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type Session struct {
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	// Login exchanges the admin PIN for a session token.
	Login(ctx context.Context, pin string) (Session, error)
	// Verify reports whether token belongs to a live session.
	Verify(ctx context.Context, token string) (bool, error)
	// Logout ends the session of token. Unknown or invalid tokens are ignored.
	Logout(ctx context.Context, token string) error
}

type authService struct {
	cfg    config.Auth
	logger *slog.Logger
	store  SessionStore
	now    func() time.Time
}

func NewAuthService(cfg config.Auth, logger *slog.Logger, store SessionStore) AuthService {
	return &authService{
		cfg:    cfg,
		logger: logger,
		store:  store,
		now:    time.Now,
	}
}

func (s *authService) Login(ctx context.Context, pin string) (Session, error) {
	if s.cfg.Pin == "" || s.cfg.SessionSecret == "" {
		return Session{}, errAuthNotConfigured
	}

	pin = strings.TrimSpace(pin)
	if subtle.ConstantTimeCompare([]byte(pin), []byte(s.cfg.Pin)) != 1 {
		s.logger.WarnContext(ctx, "login rejected")
		return Session{}, apperr.UnauthorizedErr.WithMsg("incorrect pin")
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.SessionTTL)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   sessionSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SessionSecret))
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}

	if err := s.store.Save(ctx, claims.ID, s.cfg.SessionTTL); err != nil {
		return Session{}, apperr.StoreUnavailableErr.WrapParent(fmt.Errorf("session store save: %w", err))
	}

	return Session{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) Verify(ctx context.Context, token string) (bool, error) {
	claims, err := s.parse(token)
	if err != nil {
		return false, nil
	}

	ok, err := s.store.Exists(ctx, claims.ID)
	if err != nil {
		return false, apperr.StoreUnavailableErr.WrapParent(fmt.Errorf("session store exists: %w", err))
	}

	return ok, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}

	if err := s.store.Delete(ctx, claims.ID); err != nil {
		return apperr.StoreUnavailableErr.WrapParent(fmt.Errorf("session store delete: %w", err))
	}

	return nil
}

func (s *authService) parse(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	if s.cfg.SessionSecret == "" {
		return nil, errAuthNotConfigured
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.SessionSecret), nil
	}); err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	if claims.Subject != sessionSubject || claims.ID == "" {
		return nil, errors.New("not a session token")
	}

	return claims, nil
}
