package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alihassan193/snooker-console/internal/api"
	"github.com/alihassan193/snooker-console/internal/board"
	"github.com/alihassan193/snooker-console/internal/config"
	"github.com/alihassan193/snooker-console/internal/db"
	"github.com/alihassan193/snooker-console/internal/gateway"
	"github.com/alihassan193/snooker-console/internal/logger"
	"github.com/alihassan193/snooker-console/internal/override"
	"github.com/alihassan193/snooker-console/internal/poller"
	"github.com/alihassan193/snooker-console/internal/repository"
	"github.com/alihassan193/snooker-console/internal/repository/dao"
	"github.com/alihassan193/snooker-console/internal/service"
	"github.com/alihassan193/snooker-console/internal/state"
)

const (
	configPath      = "./cmd/app/config.yml"
	shutdownTimeout = 10 * time.Second
)

// App owns the console's long-lived parts and tears them down in reverse order.
type App struct {
	path   string
	conf   *config.AppConfig
	db     *gorm.DB
	auth   *state.Auth
	board  *board.Board
	poller *poller.Controller
	server *api.Server
}

func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func New(ctx context.Context, path string) (*App, error) {
	conf, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return nil, fmt.Errorf("failed to initialize logger -> %w", err)
	}

	decimal.MarshalJSONWithoutQuotes = true

	storage, err := db.Open(conf.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database -> %w", err)
	}

	overrides := override.NewStore(ctx, repository.NewOverrideRepository(dao.NewOverrideDAO(storage)))
	if legacy := conf.Storage.LegacyOverridesFile; legacy != "" {
		n, importErr := override.Import(ctx, override.NewFileStorage(legacy), overrides)
		if importErr != nil {
			zap.L().Warn("legacy overrides not imported", zap.String("file", legacy), zap.Error(importErr))
		} else if n > 0 {
			zap.L().Info("imported legacy overrides", zap.String("file", legacy), zap.Int("count", n))
		}
	}

	auth := state.NewAuth(repository.NewCredentialRepository(dao.NewCredentialDAO(storage)))
	auth.Restore(ctx)

	gw := gateway.NewClient(conf.Backend, auth)
	services := api.Services{
		Auth:     service.NewAuthService(gw, conf.Backend),
		Tables:   service.NewTableService(gw),
		Sessions: service.NewSessionService(gw),
		Canteen:  service.NewCanteenService(gw),
		Invoices: service.NewInvoiceService(gw),
		Clubs:    service.NewClubService(gw),
		Users:    service.NewUserService(gw),
		Players:  service.NewPlayerService(gw),
		Reports:  service.NewReportService(gw),
	}
	auth.SetAuthenticator(services.Auth)
	refreshExpiredSession(ctx, auth, services.Auth)

	data := state.NewData(services.Tables, services.Sessions, services.Canteen, services.Clubs, auth)
	b := board.New(data, overrides, conf.Board.Tick)
	p := poller.New(data.Refresh, poller.NewInteractionLock(conf.Polling.InteractionTTL), poller.Options{
		Interval:    conf.Polling.Interval,
		MinCooldown: cooldown(conf.Polling.MinCooldown),
	})
	actions := board.NewActions(b, services.Sessions, services.Canteen, data, p)

	server := api.NewServer(conf, api.Deps{
		Services:  services,
		Auth:      auth,
		Data:      data,
		Board:     b,
		Actions:   actions,
		Overrides: overrides,
		Poller:    p,
	})

	return &App{
		path:   path,
		conf:   conf,
		db:     storage,
		auth:   auth,
		board:  b,
		poller: p,
		server: server,
	}, nil
}

// Run serves the API until ctx is done. The first refresh happens before the board starts
// ticking so the operator never sees an empty board after a restart.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.poller.ForceRefresh(ctx); err != nil {
		zap.L().Warn("initial refresh failed", zap.Error(err))
	}
	a.board.Recompute()
	a.board.Start(ctx)
	a.poller.Start(ctx)

	if err := config.Watch(a.path, a.applyConfig); err != nil {
		zap.L().Warn("config hot reload disabled", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(a.conf.API.Host, a.conf.API.Port),
		Handler:           a.server.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown -> %w", err)
	}

	return nil
}

func (a *App) applyConfig(conf *config.AppConfig) {
	a.poller.Reset(conf.Polling.Interval)
	a.poller.SetCooldown(conf.Polling.MinCooldown)
}

// Close stops the tickers before the storage they write through goes away.
func (a *App) Close() {
	a.poller.Stop()
	a.board.Stop()

	if err := db.Close(a.db); err != nil {
		zap.L().Warn("closing database", zap.Error(err))
	}
	_ = zap.L().Sync()
}

// refreshExpiredSession renews a restored session whose access token has already expired,
// so the first poll does not spend its request on a 401.
func refreshExpiredSession(ctx context.Context, auth *state.Auth, authSvc *service.AuthService) {
	expiry, ok := auth.TokenExpiry()
	if !ok || time.Now().Before(expiry) {
		return
	}

	refreshToken := auth.Tokens().RefreshToken
	if refreshToken == "" {
		return
	}

	tokens, err := authSvc.Refresh(ctx, refreshToken)
	if errors.Is(err, service.ErrTransport) {
		zap.L().Warn("backend unreachable, keeping stored session", zap.Error(err))
		return
	}
	if err != nil {
		zap.L().Info("stored session expired, sign in again", zap.Error(err))
		_ = auth.Logout(ctx)
		return
	}

	if err = auth.SaveTokens(ctx, tokens); err != nil {
		zap.L().Warn("saving refreshed tokens", zap.Error(err))
	}
}

// cooldown maps the configured value onto poller.Options, where zero means default.
func cooldown(configured time.Duration) time.Duration {
	if configured == 0 {
		return -1
	}

	return configured
}
