package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alihassan193/snooker-console/internal/api/handler/v1/request"
	"github.com/alihassan193/snooker-console/internal/api/handler/v1/response"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/service"
)

type CanteenService interface {
	Categories(ctx context.Context) ([]domain.CanteenCategory, error)
	Items(ctx context.Context) ([]domain.CanteenItem, error)
	CreateItem(ctx context.Context, in service.CanteenItemInput) (domain.CanteenItem, error)
	UpdateItem(ctx context.Context, id uint, in service.CanteenItemInput) (domain.CanteenItem, error)
	UpdateStock(ctx context.Context, id uint, quantity int) (domain.CanteenItem, error)
}

type CanteenHandler struct {
	svc       CanteenService
	refresher Refresher
}

func NewCanteenHandler(svc CanteenService, refresher Refresher) *CanteenHandler {
	return &CanteenHandler{
		svc:       svc,
		refresher: refresher,
	}
}

// HandleGetItems godoc
// @Summary      Canteen catalog with current stock
// @Tags         canteen
// @Produce      json
// @Success      200  {array}   domain.CanteenItem
// @Router       /canteen/items [get]
// @Security BearerAuth
func (h *CanteenHandler) HandleGetItems(ctx *gin.Context) {
	items, err := h.svc.Items(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleGetItems -> h.svc.Items -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// HandleGetCategories godoc
// @Summary      Canteen categories
// @Tags         canteen
// @Produce      json
// @Success      200  {array}   domain.CanteenCategory
// @Router       /canteen/categories [get]
// @Security BearerAuth
func (h *CanteenHandler) HandleGetCategories(ctx *gin.Context) {
	categories, err := h.svc.Categories(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleGetCategories -> h.svc.Categories -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, categories)
}

// HandleCreateItem godoc
// @Summary      Add a canteen item
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CanteenItemRequest  true  "request body"
// @Success      201      {object}  domain.CanteenItem
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Router       /admin/canteen/items [post]
// @Security BearerAuth
func (h *CanteenHandler) HandleCreateItem(ctx *gin.Context) {
	var req request.CanteenItemRequest
	if errResp := bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	item, err := h.svc.CreateItem(ctx.Request.Context(), itemInput(req))
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleCreateItem -> h.svc.CreateItem -> %w", err)))
		return
	}
	h.refresh(ctx)

	ctx.JSON(http.StatusCreated, item)
}

// HandleUpdateItem godoc
// @Summary      Edit a canteen item
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        itemID   path      int                         true  "item ID"
// @Param        request  body      request.CanteenItemRequest  true  "request body"
// @Success      200      {object}  domain.CanteenItem
// @Failure      400      {object}  response.Err
// @Router       /admin/canteen/items/{itemID} [put]
// @Security BearerAuth
func (h *CanteenHandler) HandleUpdateItem(ctx *gin.Context) {
	itemID, errResp := uintParam(ctx, "itemID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	var req request.CanteenItemRequest
	if errResp = bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	item, err := h.svc.UpdateItem(ctx.Request.Context(), itemID, itemInput(req))
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleUpdateItem -> h.svc.UpdateItem -> %w", err)))
		return
	}
	h.refresh(ctx)

	ctx.JSON(http.StatusOK, item)
}

// HandleUpdateStock godoc
// @Summary      Set the stock of a canteen item
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        itemID   path      int                   true  "item ID"
// @Param        request  body      request.StockRequest  true  "request body"
// @Success      200      {object}  domain.CanteenItem
// @Router       /admin/canteen/items/{itemID}/stock [patch]
// @Security BearerAuth
func (h *CanteenHandler) HandleUpdateStock(ctx *gin.Context) {
	itemID, errResp := uintParam(ctx, "itemID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	var req request.StockRequest
	if errResp = bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	item, err := h.svc.UpdateStock(ctx.Request.Context(), itemID, req.StockQuantity)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleUpdateStock -> h.svc.UpdateStock -> %w", err)))
		return
	}
	h.refresh(ctx)

	ctx.JSON(http.StatusOK, item)
}

func (h *CanteenHandler) refresh(ctx *gin.Context) {
	_, _ = h.refresher.ForceRefresh(ctx.Request.Context())
}

func itemInput(req request.CanteenItemRequest) service.CanteenItemInput {
	in := service.CanteenItemInput{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		IsAvailable:   true,
	}
	if req.IsAvailable != nil {
		in.IsAvailable = *req.IsAvailable
	}

	return in
}
