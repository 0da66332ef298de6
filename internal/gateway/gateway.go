package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/alihassan193/snooker-console/internal/config"
	"github.com/alihassan193/snooker-console/internal/domain"
)

type anonymousKey struct{}

// Anonymous marks calls that must go out without the stored bearer token, such as login.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	anon, _ := ctx.Value(anonymousKey{}).(bool)
	return anon
}

type TokenStore interface {
	Tokens() domain.Tokens
	SaveTokens(ctx context.Context, tokens domain.Tokens) error
	ClearTokens(ctx context.Context) error
}

// Client talks JSON to the club backend with the operator's bearer token. A 401 on an
// authenticated call triggers exactly one refresh and one retry.
type Client struct {
	baseURL     string
	refreshPath string
	http        *http.Client
	tokens      TokenStore

	// refreshMu makes concurrent 401s share a single refresh.
	refreshMu sync.Mutex
}

func NewClient(conf *config.BackendConfig, tokens TokenStore) *Client {
	return &Client{
		baseURL:     strings.TrimRight(conf.BaseURL, "/"),
		refreshPath: conf.RefreshPath,
		http:        &http.Client{Timeout: conf.Timeout},
		tokens:      tokens,
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("json.Marshal -> %w", err)
		}
	}

	var access string
	if !isAnonymous(ctx) {
		access = c.tokens.Tokens().AccessToken
	}
	status, raw, err := c.send(ctx, method, path, payload, access)
	if err != nil {
		return err
	}

	// Unauthenticated calls (login) get their 401 back as a normal API error.
	if status == http.StatusUnauthorized && access != "" {
		if err = c.refresh(ctx, access); err != nil {
			return err
		}

		status, raw, err = c.send(ctx, method, path, payload, c.tokens.Tokens().AccessToken)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			c.expire(ctx)
			return ErrSessionExpired
		}
	}

	if status >= http.StatusBadRequest {
		return decodeError(status, raw)
	}

	return decodeBody(status, raw, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, access string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}

		return 0, nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: reading %s %s: %v", ErrTransport, method, path, err)
	}

	return resp.StatusCode, raw, nil
}

// refresh swaps the refresh token for new tokens. stale is the access token that was
// rejected; if another call already replaced it, the new token is reused.
func (c *Client) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current := c.tokens.Tokens()
	if current.AccessToken != "" && current.AccessToken != stale {
		return nil
	}
	if current.RefreshToken == "" {
		c.expire(ctx)
		return ErrSessionExpired
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": current.RefreshToken})
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	status, raw, err := c.send(ctx, http.MethodPost, c.refreshPath, payload, "")
	if err != nil {
		if errors.Is(err, ErrTransport) {
			return err
		}
		return fmt.Errorf("c.send refresh -> %w", err)
	}
	if status >= http.StatusBadRequest {
		zap.L().Info("token refresh rejected", zap.Int("status", status))
		c.expire(ctx)
		return ErrSessionExpired
	}

	var fresh domain.Tokens
	if err = decodeBody(status, raw, &fresh); err != nil || fresh.AccessToken == "" {
		zap.L().Warn("token refresh returned no access token", zap.Error(err))
		c.expire(ctx)
		return ErrSessionExpired
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	}

	if err = c.tokens.SaveTokens(ctx, fresh); err != nil {
		return fmt.Errorf("c.tokens.SaveTokens -> %w", err)
	}

	return nil
}

func (c *Client) expire(ctx context.Context) {
	if err := c.tokens.ClearTokens(ctx); err != nil {
		zap.L().Error("failed to clear stored tokens", zap.Error(err))
	}
}
