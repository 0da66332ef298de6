package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alihassan193/snooker-console/internal/api/handler/v1/response"
)

type validatable interface {
	Validate() error
}

// HandleHealthcheck godoc
// @Summary      Healthcheck
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bindJSON(ctx *gin.Context, req validatable) *response.Err {
	if err := ctx.ShouldBindJSON(req); err != nil {
		return response.ErrBadRequest(err)
	}

	if err := req.Validate(); err != nil {
		return response.ErrBadRequest(err)
	}

	return nil
}

func uintParam(ctx *gin.Context, name string) (uint, *response.Err) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, raw))
	}

	return uint(id), nil
}

func uintQuery(ctx *gin.Context, name string) (uint, *response.Err) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, raw))
	}

	return uint(id), nil
}

func intQuery(ctx *gin.Context, name string) (int, *response.Err) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, raw))
	}

	return n, nil
}

var errNoOperator = errors.New("no operator signed in")
