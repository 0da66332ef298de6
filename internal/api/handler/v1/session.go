package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alihassan193/snooker-console/internal/api/handler/v1/response"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/service"
)

type SessionReader interface {
	List(ctx context.Context, filter service.SessionFilter) ([]domain.Session, error)
	Get(ctx context.Context, id uint) (domain.Session, error)
}

type SessionHandler struct {
	svc SessionReader
}

func NewSessionHandler(svc SessionReader) *SessionHandler {
	return &SessionHandler{
		svc: svc,
	}
}

// HandleListSessions godoc
// @Summary      Session history
// @Tags         sessions
// @Produce      json
// @Param        status    query     string  false  "active, completed or cancelled"
// @Param        table_id  query     int     false  "table ID"
// @Param        from      query     string  false  "YYYY-MM-DD"
// @Param        to        query     string  false  "YYYY-MM-DD"
// @Param        page      query     int     false  "page"
// @Param        limit     query     int     false  "page size"
// @Success      200       {array}   domain.Session
// @Failure      400       {object}  response.Err
// @Router       /sessions [get]
// @Security BearerAuth
func (h *SessionHandler) HandleListSessions(ctx *gin.Context) {
	tableID, errResp := uintQuery(ctx, "table_id")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}
	page, errResp := intQuery(ctx, "page")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}
	limit, errResp := intQuery(ctx, "limit")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	filter := service.SessionFilter{
		Status:  domain.SessionStatus(ctx.Query("status")),
		TableID: tableID,
		From:    ctx.Query("from"),
		To:      ctx.Query("to"),
		Page:    page,
		Limit:   limit,
	}

	sessions, err := h.svc.List(ctx.Request.Context(), filter)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleListSessions -> h.svc.List -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, sessions)
}

// HandleGetSession godoc
// @Summary      One session
// @Tags         sessions
// @Produce      json
// @Param        sessionID  path      int  true  "session ID"
// @Success      200        {object}  domain.Session
// @Failure      404        {object}  response.Err
// @Router       /sessions/{sessionID} [get]
// @Security BearerAuth
func (h *SessionHandler) HandleGetSession(ctx *gin.Context) {
	sessionID, errResp := uintParam(ctx, "sessionID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	session, err := h.svc.Get(ctx.Request.Context(), sessionID)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleGetSession -> h.svc.Get -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, session)
}
