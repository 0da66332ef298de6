// Package state holds the console's long-lived application state: who is signed in, and the
// latest data fetched from the club backend.
package state

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/gateway"
	"github.com/alihassan193/snooker-console/internal/repository"
	"github.com/alihassan193/snooker-console/internal/service"
)

var ErrNoAuthenticator = errors.New("no authenticator configured")

type CredentialStore interface {
	Load(ctx context.Context) (domain.Credential, error)
	Save(ctx context.Context, credential domain.Credential) error
	Clear(ctx context.Context) error
}

type Authenticator interface {
	Login(ctx context.Context, creds service.Credentials) (domain.LoginResult, error)
}

// Auth is the signed-in operator and their tokens. It is the gateway's token store, so a
// refresh or an expiry seen by any backend call is reflected here and persisted.
type Auth struct {
	store CredentialStore

	mu     sync.RWMutex
	authn  Authenticator
	tokens domain.Tokens
	user   *domain.User
	// console is the token the UI must present; it is issued at login and dies with logout.
	console string
}

func NewAuth(store CredentialStore) *Auth {
	return &Auth{
		store: store,
	}
}

// SetAuthenticator connects the login call. The authenticator talks through the gateway,
// which in turn needs this Auth, so it is attached after construction.
func (a *Auth) SetAuthenticator(authn Authenticator) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.authn = authn
}

// Restore loads the credential persisted by a previous run. A missing or unreadable record
// leaves the console signed out.
func (a *Auth) Restore(ctx context.Context) {
	credential, err := a.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrCredentialNotFound) {
			zap.L().Warn("discarding unreadable stored credential", zap.Error(err))
		}
		return
	}

	a.mu.Lock()
	a.tokens = credential.Tokens
	a.user = credential.User
	a.console = credential.ConsoleToken
	a.mu.Unlock()

	if credential.User != nil {
		zap.L().Info("restored operator session", zap.String("username", credential.User.Username))
	}
}

func (a *Auth) Login(ctx context.Context, creds service.Credentials) (domain.User, error) {
	a.mu.RLock()
	authn := a.authn
	a.mu.RUnlock()

	if authn == nil {
		return domain.User{}, ErrNoAuthenticator
	}

	result, err := authn.Login(ctx, creds)
	if err != nil {
		return domain.User{}, fmt.Errorf("authn.Login -> %w", err)
	}

	if err = a.Establish(ctx, result); err != nil {
		return domain.User{}, err
	}

	return result.User, nil
}

// Establish installs a fresh login result, issues a new console token and persists both.
func (a *Auth) Establish(ctx context.Context, result domain.LoginResult) error {
	user := result.User
	console := uuid.NewString()

	a.mu.Lock()
	a.tokens = result.Tokens
	a.user = &user
	a.console = console
	a.mu.Unlock()

	if err := a.store.Save(ctx, domain.Credential{Tokens: result.Tokens, User: &user, ConsoleToken: console}); err != nil {
		return fmt.Errorf("a.store.Save -> %w", err)
	}
	zap.L().Info("operator signed in", zap.String("username", user.Username), zap.String("role", string(user.Role)))

	return nil
}

func (a *Auth) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.tokens = domain.Tokens{}
	a.user = nil
	a.console = ""
	a.mu.Unlock()

	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("a.store.Clear -> %w", err)
	}

	return nil
}

// SetUser replaces the cached profile, e.g. after reloading it from the backend.
func (a *Auth) SetUser(ctx context.Context, user domain.User) error {
	a.mu.Lock()
	a.user = &user
	tokens := a.tokens
	console := a.console
	a.mu.Unlock()

	if err := a.store.Save(ctx, domain.Credential{Tokens: tokens, User: &user, ConsoleToken: console}); err != nil {
		return fmt.Errorf("a.store.Save -> %w", err)
	}

	return nil
}

func (a *Auth) User() (domain.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.user == nil {
		return domain.User{}, false
	}

	return *a.user, true
}

func (a *Auth) ConsoleToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.console
}

// VerifyConsoleToken reports whether token is the one issued at the current login.
func (a *Auth) VerifyConsoleToken(token string) bool {
	a.mu.RLock()
	console := a.console
	a.mu.RUnlock()

	if console == "" || token == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(console), []byte(token)) == 1
}

func (a *Auth) Authenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.tokens.AccessToken != ""
}

// TokenExpiry reads the access token's exp claim; false when there is none to read.
func (a *Auth) TokenExpiry() (time.Time, bool) {
	claims, ok := gateway.InspectToken(a.Tokens().AccessToken)
	if !ok || claims.ExpiresAt.IsZero() {
		return time.Time{}, false
	}

	return claims.ExpiresAt, true
}

func (a *Auth) HasRole(roles ...domain.Role) bool {
	user, ok := a.User()
	return ok && user.HasRole(roles...)
}

func (a *Auth) Can(p domain.Permission) bool {
	user, ok := a.User()
	return ok && user.Can(p)
}

func (a *Auth) Tokens() domain.Tokens {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.tokens
}

func (a *Auth) SaveTokens(ctx context.Context, tokens domain.Tokens) error {
	a.mu.Lock()
	a.tokens = tokens
	user := a.user
	console := a.console
	a.mu.Unlock()

	if err := a.store.Save(ctx, domain.Credential{Tokens: tokens, User: user, ConsoleToken: console}); err != nil {
		return fmt.Errorf("a.store.Save -> %w", err)
	}

	return nil
}

// ClearTokens signs the operator out after an unrecoverable auth failure.
func (a *Auth) ClearTokens(ctx context.Context) error {
	zap.L().Info("backend session expired, signing out")

	return a.Logout(ctx)
}
