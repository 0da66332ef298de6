package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alihassan193/snooker-console/internal/api/handler/v1/request"
	"github.com/alihassan193/snooker-console/internal/api/handler/v1/response"
	"github.com/alihassan193/snooker-console/internal/api/middleware"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/service"
)

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, in service.UserInput) (domain.User, error)
	Update(ctx context.Context, id uint, in service.UserInput) (domain.User, error)
	Delete(ctx context.Context, id uint) error
}

type TableService interface {
	List(ctx context.Context) ([]domain.Table, error)
	Create(ctx context.Context, in service.TableInput) (domain.Table, error)
	Update(ctx context.Context, id uint, in service.TableInput) (domain.Table, error)
	Delete(ctx context.Context, id uint) error
	Pricing(ctx context.Context, tableID uint) ([]domain.Pricing, error)
	UpsertPricing(ctx context.Context, tableID uint, in service.PricingInput) (domain.Pricing, error)
	GameTypes(ctx context.Context) ([]domain.GameType, error)
}

type AdminHandler struct {
	users     UserService
	tables    TableService
	refresher Refresher
}

func NewAdminHandler(users UserService, tables TableService, refresher Refresher) *AdminHandler {
	return &AdminHandler{
		users:     users,
		tables:    tables,
		refresher: refresher,
	}
}

// HandleListUsers godoc
// @Summary      List console operators
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      403  {object}  response.Err
// @Router       /admin/users [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListUsers(ctx *gin.Context) {
	users, err := h.users.List(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleListUsers -> h.users.List -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleCreateUser godoc
// @Summary      Create a sub admin or a manager
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateUserRequest  true  "request body"
// @Success      201      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Router       /admin/users [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateUser(ctx *gin.Context) {
	var req request.CreateUserRequest
	if errResp := bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	user, err := h.users.Create(ctx.Request.Context(), service.UserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Role:        domain.Role(req.Role),
		ClubID:      req.ClubID,
		Permissions: req.Permissions.Domain(),
	})
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleCreateUser -> h.users.Create -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// HandleUpdateUser godoc
// @Summary      Edit an operator's role, club or permissions
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        userID   path      int                        true  "user ID"
// @Param        request  body      request.UpdateUserRequest  true  "request body"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Router       /admin/users/{userID} [put]
// @Security BearerAuth
func (h *AdminHandler) HandleUpdateUser(ctx *gin.Context) {
	userID, errResp := uintParam(ctx, "userID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	var req request.UpdateUserRequest
	if errResp = bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	user, err := h.users.Update(ctx.Request.Context(), userID, service.UserInput{
		Username:    req.Username,
		Email:       req.Email,
		FullName:    req.FullName,
		Role:        domain.Role(req.Role),
		ClubID:      req.ClubID,
		Permissions: req.Permissions.Domain(),
	})
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleUpdateUser -> h.users.Update -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (h *AdminHandler) HandleDeleteUser(ctx *gin.Context) {
	userID, errResp := uintParam(ctx, "userID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	if current, ok := currentUserID(ctx); ok && current == userID {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("an operator cannot delete their own account")))
		return
	}

	if err := h.users.Delete(ctx.Request.Context(), userID); err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleDeleteUser -> h.users.Delete -> %w", err)))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListTables godoc
// @Summary      Tables as the backend stores them
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.Table
// @Router       /admin/tables [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListTables(ctx *gin.Context) {
	tables, err := h.tables.List(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleListTables -> h.tables.List -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, tables)
}

// HandleCreateTable godoc
// @Summary      Add a table
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.TableRequest  true  "request body"
// @Success      201      {object}  domain.Table
// @Failure      400      {object}  response.Err
// @Router       /admin/tables [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateTable(ctx *gin.Context) {
	var req request.TableRequest
	if errResp := bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	table, err := h.tables.Create(ctx.Request.Context(), tableInput(req))
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleCreateTable -> h.tables.Create -> %w", err)))
		return
	}
	h.refresh(ctx)

	ctx.JSON(http.StatusCreated, table)
}

// HandleUpdateTable godoc
// @Summary      Edit a table
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        tableID  path      int                   true  "table ID"
// @Param        request  body      request.TableRequest  true  "request body"
// @Success      200      {object}  domain.Table
// @Router       /admin/tables/{tableID} [put]
// @Security BearerAuth
func (h *AdminHandler) HandleUpdateTable(ctx *gin.Context) {
	tableID, errResp := uintParam(ctx, "tableID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	var req request.TableRequest
	if errResp = bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	table, err := h.tables.Update(ctx.Request.Context(), tableID, tableInput(req))
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleUpdateTable -> h.tables.Update -> %w", err)))
		return
	}
	h.refresh(ctx)

	ctx.JSON(http.StatusOK, table)
}

func (h *AdminHandler) HandleDeleteTable(ctx *gin.Context) {
	tableID, errResp := uintParam(ctx, "tableID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	if err := h.tables.Delete(ctx.Request.Context(), tableID); err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleDeleteTable -> h.tables.Delete -> %w", err)))
		return
	}
	h.refresh(ctx)

	ctx.Status(http.StatusNoContent)
}

// HandleListPricing godoc
// @Summary      Pricing rules of a table
// @Tags         admin
// @Produce      json
// @Param        tableID  path      int  true  "table ID"
// @Success      200      {array}   domain.Pricing
// @Router       /admin/tables/{tableID}/pricing [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListPricing(ctx *gin.Context) {
	tableID, errResp := uintParam(ctx, "tableID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	pricing, err := h.tables.Pricing(ctx.Request.Context(), tableID)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleListPricing -> h.tables.Pricing -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, pricing)
}

// HandleUpsertPricing godoc
// @Summary      Create or replace the pricing of a game type on a table
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        tableID  path      int                     true  "table ID"
// @Param        request  body      request.PricingRequest  true  "request body"
// @Success      200      {object}  domain.Pricing
// @Failure      400      {object}  response.Err
// @Router       /admin/tables/{tableID}/pricing [put]
// @Security BearerAuth
func (h *AdminHandler) HandleUpsertPricing(ctx *gin.Context) {
	tableID, errResp := uintParam(ctx, "tableID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	var req request.PricingRequest
	if errResp = bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	in := service.PricingInput{
		GameTypeID:       req.GameTypeID,
		Price:            req.Price,
		PricePerMinute:   req.PricePerMinute,
		TimeLimitMinutes: req.TimeLimitMinutes,
		IsUnlimitedTime:  req.IsUnlimitedTime,
		IsActive:         true,
	}
	if req.IsActive != nil {
		in.IsActive = *req.IsActive
	}

	pricing, err := h.tables.UpsertPricing(ctx.Request.Context(), tableID, in)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleUpsertPricing -> h.tables.UpsertPricing -> %w", err)))
		return
	}
	h.refresh(ctx)

	ctx.JSON(http.StatusOK, pricing)
}

func (h *AdminHandler) HandleListGameTypes(ctx *gin.Context) {
	gameTypes, err := h.tables.GameTypes(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleListGameTypes -> h.tables.GameTypes -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, gameTypes)
}

func (h *AdminHandler) refresh(ctx *gin.Context) {
	_, _ = h.refresher.ForceRefresh(ctx.Request.Context())
}

func tableInput(req request.TableRequest) service.TableInput {
	return service.TableInput{
		Number:    req.Number,
		TableType: req.TableType,
		Status:    domain.TableStatus(req.Status),
		ClubID:    req.ClubID,
	}
}

func currentUserID(ctx *gin.Context) (uint, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return 0, false
	}

	return user.ID, true
}
