package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alihassan193/snooker-console/internal/api/handler/v1/request"
	"github.com/alihassan193/snooker-console/internal/api/handler/v1/response"
	"github.com/alihassan193/snooker-console/internal/poller"
)

type RefreshController interface {
	ForceRefresh(ctx context.Context) (bool, error)
	Status() poller.Status
	Lock() *poller.InteractionLock
}

type RefreshHandler struct {
	poller RefreshController
	board  BoardView
}

func NewRefreshHandler(poller RefreshController, board BoardView) *RefreshHandler {
	return &RefreshHandler{
		poller: poller,
		board:  board,
	}
}

// HandleForceRefresh godoc
// @Summary      Refresh now
// @Description  Runs even while a dialog holds an interaction lease. If a refresh is already running, ran is false and it runs once more when done.
// @Tags         refresh
// @Produce      json
// @Success      200  {object}  response.RefreshResponse
// @Router       /refresh [post]
// @Security BearerAuth
func (h *RefreshHandler) HandleForceRefresh(ctx *gin.Context) {
	ran, err := h.poller.ForceRefresh(ctx.Request.Context())
	if ran {
		h.board.Recompute()
	}

	resp := response.RefreshResponse{Ran: ran, Status: h.poller.Status()}
	if err != nil {
		resp.Error = response.FromError(err).ErrorText
	}

	ctx.JSON(http.StatusOK, resp)
}

// HandleRefreshStatus godoc
// @Summary      Poller state
// @Tags         refresh
// @Produce      json
// @Success      200  {object}  poller.Status
// @Router       /refresh/status [get]
// @Security BearerAuth
func (h *RefreshHandler) HandleRefreshStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.poller.Status())
}

// HandleAcquireInteraction godoc
// @Summary      Pause background refresh while a dialog or form is open
// @Tags         refresh
// @Accept       json
// @Produce      json
// @Param        request  body      request.InteractionRequest  true  "screen name"
// @Success      201      {object}  poller.Lease
// @Failure      400      {object}  response.Err
// @Router       /interactions [post]
// @Security BearerAuth
func (h *RefreshHandler) HandleAcquireInteraction(ctx *gin.Context) {
	var req request.InteractionRequest
	if errResp := bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	ctx.JSON(http.StatusCreated, h.poller.Lock().Acquire(req.Screen))
}

func (h *RefreshHandler) HandleListInteractions(ctx *gin.Context) {
	lock := h.poller.Lock()

	ctx.JSON(http.StatusOK, response.InteractionsResponse{
		Held:   lock.Held(),
		Leases: lock.Leases(),
	})
}

// HandleReleaseInteraction godoc
// @Summary      Release an interaction lease
// @Tags         refresh
// @Param        leaseID  path  string  true  "lease ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /interactions/{leaseID} [delete]
// @Security BearerAuth
func (h *RefreshHandler) HandleReleaseInteraction(ctx *gin.Context) {
	leaseID := ctx.Param("leaseID")
	if !h.poller.Lock().Release(leaseID) {
		response.RenderErr(ctx, response.ErrNotFound("interaction lease", "id", leaseID))
		return
	}

	ctx.Status(http.StatusNoContent)
}
