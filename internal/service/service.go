package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alihassan193/snooker-console/internal/gateway"
)

var (
	// ErrValidation is returned before any backend call when the input cannot be sent.
	ErrValidation = errors.New("validation failed")

	ErrSessionExpired = gateway.ErrSessionExpired
	ErrTransport      = gateway.ErrTransport
)

// Gateway is the backend transport the services speak through.
type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type validatable interface {
	Validate() error
}

func validate(in validatable) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

func resourcePath(base string, id uint, rest ...string) string {
	p := base + "/" + strconv.FormatUint(uint64(id), 10)
	for _, r := range rest {
		p += "/" + r
	}

	return p
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}

	return path + "?" + query.Encode()
}
