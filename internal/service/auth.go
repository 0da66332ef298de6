package service

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/alihassan193/snooker-console/internal/config"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/gateway"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(
		&c,
		validation.Field(&c.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.Password, validation.Required),
	)
}

type AuthService struct {
	gw          Gateway
	loginPath   string
	refreshPath string
}

func NewAuthService(gw Gateway, conf *config.BackendConfig) *AuthService {
	return &AuthService{
		gw:          gw,
		loginPath:   conf.LoginPath,
		refreshPath: conf.RefreshPath,
	}
}

// Login exchanges credentials for tokens and the operator profile. It never sends a stored token.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (domain.LoginResult, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := validate(creds); err != nil {
		return domain.LoginResult{}, err
	}

	var result domain.LoginResult
	if err := s.gw.Post(gateway.Anonymous(ctx), s.loginPath, creds, &result); err != nil {
		return domain.LoginResult{}, fmt.Errorf("s.gw.Post login -> %w", err)
	}
	if result.AccessToken == "" {
		return domain.LoginResult{}, fmt.Errorf("login response has no access token: %w", ErrSessionExpired)
	}

	return result, nil
}

// Refresh trades a refresh token for new tokens outside of the gateway's 401 handling.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.Tokens, error) {
	if refreshToken == "" {
		return domain.Tokens{}, fmt.Errorf("%w: refresh token is empty", ErrValidation)
	}

	var tokens domain.Tokens
	body := map[string]string{"refresh_token": refreshToken}
	if err := s.gw.Post(gateway.Anonymous(ctx), s.refreshPath, body, &tokens); err != nil {
		return domain.Tokens{}, fmt.Errorf("s.gw.Post refresh -> %w", err)
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}

	return tokens, nil
}

func (s *AuthService) Me(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := s.gw.Get(ctx, "/auth/me", &user); err != nil {
		return domain.User{}, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return user, nil
}
