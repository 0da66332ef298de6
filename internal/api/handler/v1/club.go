package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alihassan193/snooker-console/internal/api/handler/v1/request"
	"github.com/alihassan193/snooker-console/internal/api/handler/v1/response"
	"github.com/alihassan193/snooker-console/internal/api/middleware"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/service"
)

type ClubSessionService interface {
	OpenSession(ctx context.Context, clubID uint, in service.OpenClubSessionInput) (domain.ClubSession, error)
	CloseSession(ctx context.Context, sessionID uint, in service.CloseClubSessionInput) (domain.ClubSession, error)
}

type ClubState interface {
	ClubSession() *domain.ClubSession
	SetClubSession(session *domain.ClubSession)
}

type ClubHandler struct {
	svc  ClubSessionService
	data ClubState
}

func NewClubHandler(svc ClubSessionService, data ClubState) *ClubHandler {
	return &ClubHandler{
		svc:  svc,
		data: data,
	}
}

// HandleGetClubSession godoc
// @Summary      The club's open cash-register session, if any
// @Tags         clubs
// @Produce      json
// @Success      200  {object}  response.ClubSessionResponse
// @Router       /clubs/session [get]
// @Security BearerAuth
func (h *ClubHandler) HandleGetClubSession(ctx *gin.Context) {
	session := h.data.ClubSession()

	ctx.JSON(http.StatusOK, response.ClubSessionResponse{
		Active:  session != nil,
		Session: session,
	})
}

// HandleOpenClubSession godoc
// @Summary      Open the cash register for the day
// @Tags         clubs
// @Accept       json
// @Produce      json
// @Param        request  body      request.ClubSessionRequest  true  "opening cash"
// @Success      201      {object}  domain.ClubSession
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /clubs/session/open [post]
// @Security BearerAuth
func (h *ClubHandler) HandleOpenClubSession(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrLoginRequired(errNoOperator))
		return
	}
	if user.ClubID == nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("operator is not assigned to a club")))
		return
	}

	var req request.ClubSessionRequest
	if errResp := bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	session, err := h.svc.OpenSession(ctx.Request.Context(), *user.ClubID, service.OpenClubSessionInput{
		OpeningCash: req.Cash,
		Notes:       req.Notes,
	})
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleOpenClubSession -> h.svc.OpenSession -> %w", err)))
		return
	}
	h.data.SetClubSession(&session)

	ctx.JSON(http.StatusCreated, session)
}

// HandleCloseClubSession godoc
// @Summary      Close the cash register
// @Tags         clubs
// @Accept       json
// @Produce      json
// @Param        request  body      request.ClubSessionRequest  true  "closing cash"
// @Success      200      {object}  domain.ClubSession
// @Failure      409      {object}  response.Err
// @Router       /clubs/session/close [post]
// @Security BearerAuth
func (h *ClubHandler) HandleCloseClubSession(ctx *gin.Context) {
	current := h.data.ClubSession()
	if current == nil {
		response.RenderErr(ctx, response.ErrClubSessionRequired())
		return
	}

	var req request.ClubSessionRequest
	if errResp := bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	session, err := h.svc.CloseSession(ctx.Request.Context(), current.ID, service.CloseClubSessionInput{
		ClosingCash: req.Cash,
		Notes:       req.Notes,
	})
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleCloseClubSession -> h.svc.CloseSession -> %w", err)))
		return
	}
	h.data.SetClubSession(nil)

	ctx.JSON(http.StatusOK, session)
}
