package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/alihassan193/snooker-console/docs"
	v1 "github.com/alihassan193/snooker-console/internal/api/handler/v1"
	"github.com/alihassan193/snooker-console/internal/api/middleware"
	"github.com/alihassan193/snooker-console/internal/board"
	"github.com/alihassan193/snooker-console/internal/config"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/override"
	"github.com/alihassan193/snooker-console/internal/poller"
	"github.com/alihassan193/snooker-console/internal/service"
	"github.com/alihassan193/snooker-console/internal/state"
)

// Services are the backend-facing use cases the handlers call.
type Services struct {
	Auth     *service.AuthService
	Tables   *service.TableService
	Sessions *service.SessionService
	Canteen  *service.CanteenService
	Invoices *service.InvoiceService
	Clubs    *service.ClubService
	Users    *service.UserService
	Players  *service.PlayerService
	Reports  *service.ReportService
}

// Deps is everything the server reads from or acts on. App owns their lifecycle.
type Deps struct {
	Services  Services
	Auth      *state.Auth
	Data      *state.Data
	Board     *board.Board
	Actions   *board.Actions
	Overrides *override.Store
	Poller    *poller.Controller
}

type handlers struct {
	auth    *v1.AuthHandler
	board   *v1.BoardHandler
	session *v1.SessionHandler
	canteen *v1.CanteenHandler
	invoice *v1.InvoiceHandler
	club    *v1.ClubHandler
	refresh *v1.RefreshHandler
	report  *v1.ReportHandler
	admin   *v1.AdminHandler
	player  *v1.PlayerHandler
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	deps Deps
}

func NewServer(conf *config.AppConfig, deps Deps) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		deps:   deps,
	}

	s.MountMiddlewares()
	s.MountHandlers(s.initHandlers())

	return s
}

func (s *Server) initHandlers() handlers {
	svc := s.deps.Services

	return handlers{
		auth:    v1.NewAuthHandler(s.deps.Auth, svc.Auth, s.deps.Data, s.deps.Poller),
		board:   v1.NewBoardHandler(s.deps.Board, s.deps.Actions, s.deps.Overrides, s.deps.Data),
		session: v1.NewSessionHandler(svc.Sessions),
		canteen: v1.NewCanteenHandler(svc.Canteen, s.deps.Poller),
		invoice: v1.NewInvoiceHandler(svc.Invoices),
		club:    v1.NewClubHandler(svc.Clubs, s.deps.Data),
		refresh: v1.NewRefreshHandler(s.deps.Poller, s.deps.Board),
		report:  v1.NewReportHandler(svc.Reports),
		admin:   v1.NewAdminHandler(svc.Users, svc.Tables, s.deps.Poller),
		player:  v1.NewPlayerHandler(svc.Players),
	}
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ZapLogger())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	limiter := middleware.NewLoginLimiter(s.Config.API.LoginRatePerMinute)
	public := s.Router.Group(basePath)
	{
		public.POST("/auth/login", limiter.Limit(), h.auth.HandleLogin)
	}

	requireClubSession := middleware.RequireClubSession(s.deps.Data)
	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.deps.Auth).RequireSession())
	{
		authed.POST("/auth/logout", h.auth.HandleLogout)
		authed.GET("/auth/me", h.auth.HandleMe)

		authed.GET("/board", h.board.HandleGetBoard)
		authed.GET("/board/:tableID", h.board.HandleGetCard)
		authed.PUT("/tables/:tableID/override", h.board.HandleSetOverride)
		authed.DELETE("/tables/:tableID/override", h.board.HandleClearOverride)
		authed.POST("/tables/:tableID/sessions", requireClubSession, h.board.HandleStartSession)

		authed.GET("/sessions", h.session.HandleListSessions)
		authed.GET("/sessions/:sessionID", h.session.HandleGetSession)
		authed.POST("/sessions/:sessionID/end", h.board.HandleEndSession)
	authed.POST("/sessions/:sessionID/cancel", h.board.HandleCancelSession)
		authed.POST("/sessions/:sessionID/orders", h.board.HandleAddOrder)

		authed.GET("/canteen/items", h.canteen.HandleGetItems)
		authed.GET("/canteen/categories", h.canteen.HandleGetCategories)
		authed.POST("/canteen/sales", requireClubSession, h.board.HandleSellCanteen)

		authed.GET("/invoices", h.invoice.HandleListInvoices)
		authed.GET("/invoices/:invoiceID", h.invoice.HandleGetInvoice)
		authed.PATCH("/invoices/:invoiceID/status", h.invoice.HandleUpdateInvoiceStatus)

		authed.GET("/clubs/session", h.club.HandleGetClubSession)
		authed.POST("/clubs/session/open", h.club.HandleOpenClubSession)
		authed.POST("/clubs/session/close", h.club.HandleCloseClubSession)

		authed.GET("/game-types", h.admin.HandleListGameTypes)

		authed.GET("/players", h.player.HandleSearchPlayers)
		authed.POST("/players", h.player.HandleCreatePlayer)

		authed.POST("/refresh", h.refresh.HandleForceRefresh)
		authed.GET("/refresh/status", h.refresh.HandleRefreshStatus)
		authed.GET("/interactions", h.refresh.HandleListInteractions)
		authed.POST("/interactions", h.refresh.HandleAcquireInteraction)
		authed.DELETE("/interactions/:leaseID", h.refresh.HandleReleaseInteraction)
	}

	reports := authed.Group("/reports", middleware.RequirePermission(domain.PermViewReports))
	{
		reports.GET("/daily", h.report.HandleDailyReport)
		reports.GET("/revenue", h.report.HandleRevenueReport)
		reports.GET("/expenses", h.report.HandleListExpenses)
		reports.POST("/expenses", h.report.HandleCreateExpense)
	}

	users := authed.Group("/admin/users", middleware.RequireRole(domain.RoleSuperAdmin, domain.RoleSubAdmin))
	{
		users.GET("", h.admin.HandleListUsers)
		users.POST("", h.admin.HandleCreateUser)
		users.PUT("/:userID", h.admin.HandleUpdateUser)
		users.DELETE("/:userID", h.admin.HandleDeleteUser)
	}

	tables := authed.Group("/admin/tables", middleware.RequirePermission(domain.PermManageTables))
	{
		tables.GET("", h.admin.HandleListTables)
		tables.POST("", h.admin.HandleCreateTable)
		tables.PUT("/:tableID", h.admin.HandleUpdateTable)
		tables.DELETE("/:tableID", h.admin.HandleDeleteTable)
		tables.GET("/:tableID/pricing", h.admin.HandleListPricing)
		tables.PUT("/:tableID/pricing", h.admin.HandleUpsertPricing)
	}

	canteen := authed.Group("/admin/canteen", middleware.RequirePermission(domain.PermManageCanteen))
	{
		canteen.POST("/items", h.canteen.HandleCreateItem)
		canteen.PUT("/items/:itemID", h.canteen.HandleUpdateItem)
		canteen.PATCH("/items/:itemID/stock", h.canteen.HandleUpdateStock)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Snooker club console API"
	docs.SwaggerInfo.Description = "Operator console in front of the club backend."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
