package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alihassan193/snooker-console/internal/api/handler/v1/request"
	"github.com/alihassan193/snooker-console/internal/api/handler/v1/response"
	"github.com/alihassan193/snooker-console/internal/board"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/service"
	"github.com/alihassan193/snooker-console/internal/state"
)

type BoardView interface {
	Cards() []board.Card
	Card(tableID uint) (board.Card, bool)
	Recompute() []board.Card
	ComputedAt() time.Time
}

type OperatorActions interface {
	StartSession(ctx context.Context, req board.StartRequest) (domain.Session, error)
	EndSession(ctx context.Context, sessionID uint) (domain.Session, error)
	CancelSession(ctx context.Context, sessionID uint) error
	AddOrder(ctx context.Context, sessionID uint, lines []domain.OrderLine) (domain.CanteenOrder, error)
	SellCanteen(ctx context.Context, sale service.CanteenSale) (domain.CanteenOrder, error)
}

type OverrideStore interface {
	Set(ctx context.Context, tableID uint, status domain.TableStatus) error
	Clear(ctx context.Context, tableID uint)
}

type SnapshotReader interface {
	Snapshot() state.Snapshot
}

type BoardHandler struct {
	board     BoardView
	actions   OperatorActions
	overrides OverrideStore
	data      SnapshotReader
}

func NewBoardHandler(board BoardView, actions OperatorActions, overrides OverrideStore, data SnapshotReader) *BoardHandler {
	return &BoardHandler{
		board:     board,
		actions:   actions,
		overrides: overrides,
		data:      data,
	}
}

// HandleGetBoard godoc
// @Summary      All table cards with live elapsed time and cost estimate
// @Tags         board
// @Produce      json
// @Success      200  {object}  response.BoardResponse
// @Failure      401  {object}  response.Err
// @Router       /board [get]
// @Security BearerAuth
func (h *BoardHandler) HandleGetBoard(ctx *gin.Context) {
	snap := h.data.Snapshot()

	ctx.JSON(http.StatusOK, response.BoardResponse{
		Cards:      h.board.Cards(),
		GameTypes:  snap.GameTypes,
		ComputedAt: h.board.ComputedAt(),
		FetchedAt:  snap.FetchedAt,
		Version:    snap.Version,
	})
}

// HandleGetCard godoc
// @Summary      One table card
// @Tags         board
// @Produce      json
// @Param        tableID  path      int  true  "table ID"
// @Success      200      {object}  board.Card
// @Failure      404      {object}  response.Err
// @Router       /board/{tableID} [get]
// @Security BearerAuth
func (h *BoardHandler) HandleGetCard(ctx *gin.Context) {
	tableID, errResp := uintParam(ctx, "tableID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	card, ok := h.board.Card(tableID)
	if !ok {
		response.RenderErr(ctx, response.ErrNotFound("table", "id", tableID))
		return
	}

	ctx.JSON(http.StatusOK, card)
}

// HandleSetOverride godoc
// @Summary      Shadow a table's server status on this console
// @Description  The override is local and advisory: it is never sent to the backend and never expires.
// @Tags         board
// @Accept       json
// @Produce      json
// @Param        tableID  path      int                      true  "table ID"
// @Param        request  body      request.OverrideRequest  true  "request body"
// @Success      200      {object}  response.OverrideResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /tables/{tableID}/override [put]
// @Security BearerAuth
func (h *BoardHandler) HandleSetOverride(ctx *gin.Context) {
	tableID, errResp := uintParam(ctx, "tableID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	var req request.OverrideRequest
	if errResp = bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	if _, ok := h.board.Card(tableID); !ok {
		response.RenderErr(ctx, response.ErrNotFound("table", "id", tableID))
		return
	}

	status := domain.TableStatus(req.Status)
	if err := h.overrides.Set(ctx.Request.Context(), tableID, status); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	h.board.Recompute()

	resp := response.OverrideResponse{TableID: tableID, Status: status}
	if card, ok := h.board.Card(tableID); ok {
		resp.Card = &card
	}

	ctx.JSON(http.StatusOK, resp)
}

// HandleClearOverride godoc
// @Summary      Drop the local status override of a table
// @Tags         board
// @Produce      json
// @Param        tableID  path      int  true  "table ID"
// @Success      200      {object}  response.OverrideResponse
// @Router       /tables/{tableID}/override [delete]
// @Security BearerAuth
func (h *BoardHandler) HandleClearOverride(ctx *gin.Context) {
	tableID, errResp := uintParam(ctx, "tableID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	h.overrides.Clear(ctx.Request.Context(), tableID)
	h.board.Recompute()

	resp := response.OverrideResponse{TableID: tableID}
	if card, ok := h.board.Card(tableID); ok {
		resp.Card = &card
	}

	ctx.JSON(http.StatusOK, resp)
}

// HandleStartSession godoc
// @Summary      Start a game on a table
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        tableID  path      int                          true  "table ID"
// @Param        request  body      request.StartSessionRequest  true  "request body"
// @Success      201      {object}  domain.Session
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Router       /tables/{tableID}/sessions [post]
// @Security BearerAuth
func (h *BoardHandler) HandleStartSession(ctx *gin.Context) {
	tableID, errResp := uintParam(ctx, "tableID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	var req request.StartSessionRequest
	if errResp = bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	session, err := h.actions.StartSession(ctx.Request.Context(), board.StartRequest{
		TableID:    tableID,
		GameTypeID: req.GameTypeID,
		PlayerID:   req.PlayerID,
		GuestName:  req.GuestPlayerName,
	})
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleStartSession -> h.actions.StartSession -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, session)
}

// HandleEndSession godoc
// @Summary      End a running game
// @Description  Irreversible. The backend computes the final amount and invoice.
// @Tags         sessions
// @Produce      json
// @Param        sessionID  path      int  true  "session ID"
// @Success      200        {object}  domain.Session
// @Failure      400        {object}  response.Err
// @Failure      502        {object}  response.Err
// @Router       /sessions/{sessionID}/end [post]
// @Security BearerAuth
func (h *BoardHandler) HandleEndSession(ctx *gin.Context) {
	sessionID, errResp := uintParam(ctx, "sessionID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	session, err := h.actions.EndSession(ctx.Request.Context(), sessionID)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleEndSession -> h.actions.EndSession -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// HandleCancelSession godoc
// @Summary      Cancel a running game
// @Description  Voids the session without billing it.
// @Tags         sessions
// @Param        sessionID  path  int  true  "session ID"
// @Success      204
// @Failure      400        {object}  response.Err
// @Failure      502        {object}  response.Err
// @Router       /sessions/{sessionID}/cancel [post]
// @Security BearerAuth
func (h *BoardHandler) HandleCancelSession(ctx *gin.Context) {
	sessionID, errResp := uintParam(ctx, "sessionID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	if err := h.actions.CancelSession(ctx.Request.Context(), sessionID); err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleCancelSession -> h.actions.CancelSession -> %w", err)))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleAddOrder godoc
// @Summary      Add canteen items to a running game
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      int                   true  "session ID"
// @Param        request    body      request.OrderRequest  true  "request body"
// @Success      201        {object}  domain.CanteenOrder
// @Failure      400        {object}  response.Err
// @Router       /sessions/{sessionID}/orders [post]
// @Security BearerAuth
func (h *BoardHandler) HandleAddOrder(ctx *gin.Context) {
	sessionID, errResp := uintParam(ctx, "sessionID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	var req request.OrderRequest
	if errResp = bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	order, err := h.actions.AddOrder(ctx.Request.Context(), sessionID, req.Lines())
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleAddOrder -> h.actions.AddOrder -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, order)
}

// HandleSellCanteen godoc
// @Summary      Walk-in canteen sale
// @Tags         canteen
// @Accept       json
// @Produce      json
// @Param        request  body      request.OrderRequest  true  "request body"
// @Success      201      {object}  domain.CanteenOrder
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /canteen/sales [post]
// @Security BearerAuth
func (h *BoardHandler) HandleSellCanteen(ctx *gin.Context) {
	var req request.OrderRequest
	if errResp := bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	order, err := h.actions.SellCanteen(ctx.Request.Context(), service.CanteenSale{
		Items:         req.Lines(),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleSellCanteen -> h.actions.SellCanteen -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, order)
}
