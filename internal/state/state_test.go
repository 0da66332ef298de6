package state

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alihassan193/snooker-console/internal/config"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/gateway"
	"github.com/alihassan193/snooker-console/internal/repository"
	"github.com/alihassan193/snooker-console/internal/service"
)

type memCredentials struct {
	mu      sync.Mutex
	stored  *domain.Credential
	loadErr error
}

func (m *memCredentials) Load(context.Context) (domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.Credential{}, m.loadErr
	}
	if m.stored == nil {
		return domain.Credential{}, repository.ErrCredentialNotFound
	}
	return *m.stored, nil
}

func (m *memCredentials) Save(_ context.Context, c domain.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = &c
	return nil
}

func (m *memCredentials) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	return nil
}

func (m *memCredentials) get() *domain.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored
}

type authnFunc func(ctx context.Context, creds service.Credentials) (domain.LoginResult, error)

func (f authnFunc) Login(ctx context.Context, creds service.Credentials) (domain.LoginResult, error) {
	return f(ctx, creds)
}

func uintPtr(v uint) *uint { return &v }

func manager() domain.User {
	return domain.User{ID: 3, Username: "frontdesk", Role: domain.RoleManager, ClubID: uintPtr(1),
		Permissions: domain.Permissions{ManageCanteen: true}}
}

func TestAuth_LoginLogoutRestore(t *testing.T) {
	store := &memCredentials{}
	auth := NewAuth(store)
	ctx := context.Background()

	_, err := auth.Login(ctx, service.Credentials{Username: "frontdesk", Password: "pw"})
	assert.ErrorIs(t, err, ErrNoAuthenticator)

	auth.SetAuthenticator(authnFunc(func(_ context.Context, creds service.Credentials) (domain.LoginResult, error) {
		if creds.Password != "pw" {
			return domain.LoginResult{}, &gateway.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
		}
		return domain.LoginResult{User: manager(), Tokens: domain.Tokens{AccessToken: "a", RefreshToken: "r"}}, nil
	}))

	_, err = auth.Login(ctx, service.Credentials{Username: "frontdesk", Password: "nope"})
	assert.True(t, gateway.IsStatus(err, http.StatusUnauthorized))
	assert.False(t, auth.Authenticated())

	user, err := auth.Login(ctx, service.Credentials{Username: "frontdesk", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "frontdesk", user.Username)
	assert.True(t, auth.Authenticated())
	assert.True(t, auth.HasRole(domain.RoleManager))
	assert.False(t, auth.HasRole(domain.RoleSuperAdmin))
	assert.True(t, auth.Can(domain.PermManageCanteen))
	assert.False(t, auth.Can(domain.PermViewReports))

	restored := NewAuth(store)
	restored.Restore(ctx)
	assert.Equal(t, domain.Tokens{AccessToken: "a", RefreshToken: "r"}, restored.Tokens())
	got, ok := restored.User()
	require.True(t, ok)
	assert.Equal(t, manager(), got)

	require.NoError(t, auth.Logout(ctx))
	assert.False(t, auth.Authenticated())
	_, ok = auth.User()
	assert.False(t, ok)
	assert.Nil(t, store.get())
}

func TestAuth_ConsoleToken(t *testing.T) {
	store := &memCredentials{}
	auth := NewAuth(store)
	ctx := context.Background()
	assert.False(t, auth.VerifyConsoleToken(""))

	result := domain.LoginResult{User: manager(), Tokens: domain.Tokens{AccessToken: "a", RefreshToken: "r"}}
	require.NoError(t, auth.Establish(ctx, result))
	first := auth.ConsoleToken()
	require.NotEmpty(t, first)
	assert.True(t, auth.VerifyConsoleToken(first))
	assert.False(t, auth.VerifyConsoleToken(""))
	assert.False(t, auth.VerifyConsoleToken(first+"x"))
	assert.Equal(t, first, store.get().ConsoleToken)

	restored := NewAuth(store)
	restored.Restore(ctx)
	assert.True(t, restored.VerifyConsoleToken(first))

	require.NoError(t, auth.Establish(ctx, result))
	assert.NotEqual(t, first, auth.ConsoleToken())
	assert.False(t, auth.VerifyConsoleToken(first))

	second := auth.ConsoleToken()
	require.NoError(t, auth.Logout(ctx))
	assert.False(t, auth.VerifyConsoleToken(second))
	assert.Empty(t, auth.ConsoleToken())
}

func TestAuth_RestoreUnreadable(t *testing.T) {
	auth := NewAuth(&memCredentials{loadErr: errors.New("profile: invalid character")})

	require.NotPanics(t, func() { auth.Restore(context.Background()) })
	assert.False(t, auth.Authenticated())
}

func TestAuth_TokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix(), "role": "manager"}).
		SignedString([]byte("not-our-secret"))
	require.NoError(t, err)

	auth := NewAuth(&memCredentials{})
	_, ok := auth.TokenExpiry()
	assert.False(t, ok)

	require.NoError(t, auth.SaveTokens(context.Background(), domain.Tokens{AccessToken: signed}))
	got, ok := auth.TokenExpiry()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
}

// The gateway refreshes through Auth, so refreshed tokens are persisted and an expiry signs out.
func TestAuth_AsGatewayTokenStore(t *testing.T) {
	var refreshOK atomic.Bool
	refreshOK.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if !refreshOK.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]string{"access_token": "a2"}})
	})
	mux.HandleFunc("/tables", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := &memCredentials{}
	auth := NewAuth(store)
	require.NoError(t, auth.Establish(context.Background(), domain.LoginResult{
		User: manager(), Tokens: domain.Tokens{AccessToken: "a1", RefreshToken: "r1"},
	}))
	client := gateway.NewClient(&config.BackendConfig{BaseURL: srv.URL, RefreshPath: "/auth/refresh", Timeout: time.Second}, auth)

	require.NoError(t, client.Get(context.Background(), "/tables", nil))
	assert.Equal(t, domain.Tokens{AccessToken: "a2", RefreshToken: "r1"}, store.get().Tokens)
	assert.NotNil(t, store.get().User)
	assert.Equal(t, auth.ConsoleToken(), store.get().ConsoleToken)

	refreshOK.Store(false)
	require.NoError(t, auth.SaveTokens(context.Background(), domain.Tokens{AccessToken: "stale", RefreshToken: "r1"}))

	err := client.Get(context.Background(), "/tables", nil)
	assert.ErrorIs(t, err, gateway.ErrSessionExpired)
	assert.False(t, auth.Authenticated())
	assert.Nil(t, store.get())
}

type fakeBackend struct {
	tables      []domain.Table
	sessions    []domain.Session
	items       []domain.CanteenItem
	clubSession *domain.ClubSession
	failItems   error
	clubCalls   atomic.Int32
	block       chan struct{}
	entered     chan struct{}
}

func (f *fakeBackend) List(ctx context.Context) ([]domain.Table, error) {
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.tables, nil
}

func (f *fakeBackend) GameTypes(context.Context) ([]domain.GameType, error) {
	return []domain.GameType{{ID: 2, Name: "Frames"}}, nil
}

func (f *fakeBackend) Active(context.Context) ([]domain.Session, error) { return f.sessions, nil }

func (f *fakeBackend) Categories(context.Context) ([]domain.CanteenCategory, error) {
	return []domain.CanteenCategory{{ID: 1, Name: "Drinks"}}, nil
}

func (f *fakeBackend) Items(context.Context) ([]domain.CanteenItem, error) {
	return f.items, f.failItems
}

func (f *fakeBackend) ActiveSession(_ context.Context, clubID uint) (*domain.ClubSession, error) {
	f.clubCalls.Add(1)
	return f.clubSession, nil
}

type fakeIdentity struct {
	user *domain.User
}

func (f fakeIdentity) Authenticated() bool { return f.user != nil }

func (f fakeIdentity) User() (domain.User, bool) {
	if f.user == nil {
		return domain.User{}, false
	}
	return *f.user, true
}

func TestData_Refresh(t *testing.T) {
	user := manager()
	backend := &fakeBackend{
		tables:      []domain.Table{{ID: 1, Number: 1, Status: domain.TableAvailable}},
		sessions:    []domain.Session{{ID: 9, TableID: 1, Status: domain.SessionActive}},
		items:       []domain.CanteenItem{{ID: 1, Name: "Tea", StockQuantity: 4}},
		clubSession: &domain.ClubSession{ID: 5, ClubID: 1},
	}
	data := NewData(backend, backend, backend, backend, fakeIdentity{user: &user})

	require.NoError(t, data.Refresh(context.Background()))

	snap := data.Snapshot()
	assert.EqualValues(t, 1, snap.Version)
	assert.Len(t, snap.Tables, 1)
	assert.Len(t, snap.GameTypes, 1)
	assert.Len(t, snap.Categories, 1)
	assert.Equal(t, backend.items, data.CanteenItems())
	assert.EqualValues(t, 5, data.ClubSession().ID)
	assert.Equal(t, backend.sessions, data.BoardSnapshot().Sessions)

	backend.failItems = gateway.ErrTransport
	err := data.Refresh(context.Background())
	assert.ErrorIs(t, err, gateway.ErrTransport)
	assert.EqualValues(t, 1, data.Snapshot().Version)

	closed := time.Now()
	data.SetClubSession(&domain.ClubSession{ID: 5, ClosedAt: &closed})
	assert.Nil(t, data.ClubSession())

	data.Clear()
	assert.Empty(t, data.Snapshot().Tables)
}

func TestData_RefreshSkipsClubWithoutClub(t *testing.T) {
	admin := domain.User{ID: 1, Username: "owner", Role: domain.RoleSuperAdmin}
	backend := &fakeBackend{}
	data := NewData(backend, backend, backend, backend, fakeIdentity{user: &admin})

	require.NoError(t, data.Refresh(context.Background()))
	assert.Zero(t, backend.clubCalls.Load())
}

func TestData_RefreshSignedOutIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	data := NewData(backend, backend, backend, backend, fakeIdentity{})

	require.NoError(t, data.Refresh(context.Background()))
	assert.Zero(t, data.Snapshot().Version)
}

func TestData_CancelledRefreshIsDropped(t *testing.T) {
	user := manager()
	backend := &fakeBackend{block: make(chan struct{})}
	data := NewData(backend, backend, backend, backend, fakeIdentity{user: &user})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- data.Refresh(ctx) }()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Zero(t, data.Snapshot().Version)
}

func TestData_RefreshOutlivingClearIsDropped(t *testing.T) {
	user := manager()
	backend := &fakeBackend{
		tables:   []domain.Table{{ID: 1, Number: 1, Status: domain.TableAvailable}},
		sessions: []domain.Session{{ID: 9, TableID: 1, Status: domain.SessionActive}},
		block:    make(chan struct{}),
		entered:  make(chan struct{}),
	}
	data := NewData(backend, backend, backend, backend, fakeIdentity{user: &user})

	done := make(chan error, 1)
	go func() { done <- data.Refresh(context.Background()) }()
	<-backend.entered

	data.Clear()
	close(backend.block)
	require.NoError(t, <-done)

	snap := data.Snapshot()
	assert.Empty(t, snap.Tables)
	assert.Empty(t, snap.ActiveSessions)
	assert.EqualValues(t, 1, snap.Version)

	backend.entered = nil
	require.NoError(t, data.Refresh(context.Background()))
	assert.Len(t, data.Snapshot().Tables, 1)
	assert.EqualValues(t, 2, data.Snapshot().Version)
}
