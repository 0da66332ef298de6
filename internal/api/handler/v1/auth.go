package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alihassan193/snooker-console/internal/api/handler/v1/request"
	"github.com/alihassan193/snooker-console/internal/api/handler/v1/response"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/service"
)

type AuthState interface {
	Login(ctx context.Context, creds service.Credentials) (domain.User, error)
	Logout(ctx context.Context) error
	User() (domain.User, bool)
	Authenticated() bool
	TokenExpiry() (time.Time, bool)
	ConsoleToken() string
	SetUser(ctx context.Context, user domain.User) error
}

type ProfileService interface {
	Me(ctx context.Context) (domain.User, error)
}

type SessionData interface {
	ClubSession() *domain.ClubSession
	Clear()
}

type Refresher interface {
	ForceRefresh(ctx context.Context) (bool, error)
}

type AuthHandler struct {
	auth      AuthState
	profile   ProfileService
	data      SessionData
	refresher Refresher
}

func NewAuthHandler(auth AuthState, profile ProfileService, data SessionData, refresher Refresher) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		profile:   profile,
		data:      data,
		refresher: refresher,
	}
}

// HandleLogin godoc
// @Summary      Sign the operator in against the club backend
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.LoginRequest  true  "request body"
// @Success      200      {object}  response.LoginResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      429      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	var req request.LoginRequest
	if errResp := bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	user, err := h.auth.Login(ctx.Request.Context(), service.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleLogin -> h.auth.Login -> %w", err)))
		return
	}

	// Load the board right away rather than waiting for the next poll.
	if _, err = h.refresher.ForceRefresh(ctx.Request.Context()); err != nil {
		zap.L().Warn("initial data refresh after login failed", zap.Error(err))
	}

	resp := response.LoginResponse{User: user, SessionToken: h.auth.ConsoleToken()}
	if exp, ok := h.auth.TokenExpiry(); ok {
		resp.TokenExpiry = &exp
	}

	ctx.JSON(http.StatusOK, resp)
}

// HandleLogout godoc
// @Summary      Sign the operator out and forget stored tokens
// @Tags         auth
// @Success      204
// @Failure      500  {object}  response.Err
// @Router       /auth/logout [post]
func (h *AuthHandler) HandleLogout(ctx *gin.Context) {
	if err := h.auth.Logout(ctx.Request.Context()); err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("v1.HandleLogout -> h.auth.Logout -> %w", err)))
		return
	}
	h.data.Clear()

	ctx.Status(http.StatusNoContent)
}

// HandleMe godoc
// @Summary      Reload the signed-in operator's profile
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.MeResponse
// @Failure      401  {object}  response.Err
// @Router       /auth/me [get]
// @Security BearerAuth
func (h *AuthHandler) HandleMe(ctx *gin.Context) {
	user, err := h.profile.Me(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleMe -> h.profile.Me -> %w", err)))
		return
	}

	if err = h.auth.SetUser(ctx.Request.Context(), user); err != nil {
		zap.L().Warn("failed to persist refreshed profile", zap.Error(err))
	}

	ctx.JSON(http.StatusOK, response.MeResponse{
		User:          user,
		ClubSession:   h.data.ClubSession(),
		Authenticated: h.auth.Authenticated(),
	})
}
