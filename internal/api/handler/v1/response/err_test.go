package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alihassan193/snooker-console/internal/board"
	"github.com/alihassan193/snooker-console/internal/gateway"
	"github.com/alihassan193/snooker-console/internal/service"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantText   string
	}{
		{
			name:       "validation",
			err:        fmt.Errorf("%w: guest name is required", service.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantText:   "guest name is required",
		},
		{
			name: "validation behind a wrap chain",
			err: fmt.Errorf("v1.HandleCancelSession -> h.actions.CancelSession -> %w",
				fmt.Errorf("%w: %w (session %d)", service.ErrValidation, board.ErrSessionNotActive, 8)),
			wantStatus: http.StatusBadRequest,
			wantText:   "session is not active (session 8)",
		},
		{
			name:       "session expired",
			err:        fmt.Errorf("s.gw.Get -> %w", gateway.ErrSessionExpired),
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeLoginRequired,
			wantText:   "Your session has expired, please log in again",
		},
		{
			name:       "unknown table",
			err:        fmt.Errorf("a.StartSession -> table 9: %w", board.ErrTableNotFound),
			wantStatus: http.StatusNotFound,
			wantText:   "table 9: " + board.ErrTableNotFound.Error(),
		},
		{
			name:       "backend message is shown",
			err:        fmt.Errorf("s.gw.Post -> %w", &gateway.APIError{StatusCode: http.StatusConflict, Message: "Table is already occupied"}),
			wantStatus: http.StatusConflict,
			wantText:   "Table is already occupied",
		},
		{
			name:       "backend failure without a message",
			err:        &gateway.APIError{StatusCode: http.StatusInternalServerError},
			wantStatus: http.StatusBadGateway,
			wantText:   msgGeneric,
		},
		{
			name:       "transport",
			err:        fmt.Errorf("%w: GET /tables: connection refused", gateway.ErrTransport),
			wantStatus: http.StatusBadGateway,
			wantText:   msgGeneric,
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("send -> %w", context.DeadlineExceeded),
			wantStatus: http.StatusBadGateway,
			wantText:   msgGeneric,
		},
		{
			name:       "anything else",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantText:   msgGeneric,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)

			assert.Equal(t, tt.wantStatus, got.HTTPStatusCode)
			assert.Equal(t, tt.wantCode, got.Code)
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, got.ErrorText)
			}
			assert.NotContains(t, got.ErrorText, chainSep)
			assert.ErrorIs(t, got.Err, tt.err)
		})
	}
}

func TestRenderErr_HidesWrapChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/sessions/8/end", nil)

	err := fmt.Errorf("v1.HandleEndSession -> h.actions.EndSession -> %w",
		fmt.Errorf("%w: %w (session %d)", service.ErrValidation, board.ErrSessionNotActive, 8))
	errResp := FromError(err)
	RenderErr(ctx, errResp)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "->")
	assert.NotContains(t, rec.Body.String(), "HandleEndSession")

	var body Err
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session is not active (session 8)", body.ErrorText)
	assert.Contains(t, errResp.Err.Error(), "v1.HandleEndSession -> h.actions.EndSession")
}
