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

type PlayerService interface {
	Search(ctx context.Context, term string) ([]domain.Player, error)
	Create(ctx context.Context, in service.PlayerInput) (domain.Player, error)
}

type PlayerHandler struct {
	svc PlayerService
}

func NewPlayerHandler(svc PlayerService) *PlayerHandler {
	return &PlayerHandler{
		svc: svc,
	}
}

// HandleSearchPlayers godoc
// @Summary      Find registered players for the start-session dialog
// @Tags         players
// @Produce      json
// @Param        search  query     string  false  "name or phone"
// @Success      200     {array}   domain.Player
// @Router       /players [get]
// @Security BearerAuth
func (h *PlayerHandler) HandleSearchPlayers(ctx *gin.Context) {
	players, err := h.svc.Search(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleSearchPlayers -> h.svc.Search -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, players)
}

// HandleCreatePlayer godoc
// @Summary      Register a player
// @Tags         players
// @Accept       json
// @Produce      json
// @Param        request  body      request.PlayerRequest  true  "request body"
// @Success      201      {object}  domain.Player
// @Failure      400      {object}  response.Err
// @Router       /players [post]
// @Security BearerAuth
func (h *PlayerHandler) HandleCreatePlayer(ctx *gin.Context) {
	var req request.PlayerRequest
	if errResp := bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	player, err := h.svc.Create(ctx.Request.Context(), service.PlayerInput{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleCreatePlayer -> h.svc.Create -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, player)
}
