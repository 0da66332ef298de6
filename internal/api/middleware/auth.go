package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alihassan193/snooker-console/internal/api/handler/v1/response"
	"github.com/alihassan193/snooker-console/internal/domain"
)

const (
	ContextUserKey = "user"

	bearerPrefix = "Bearer "
)

type Identity interface {
	Authenticated() bool
	User() (domain.User, bool)
	VerifyConsoleToken(token string) bool
}

type ClubSessionSource interface {
	ClubSession() *domain.ClubSession
}

// Authenticator gates routes on the operator signed in to this console.
type Authenticator struct {
	identity Identity
}

func NewAuthenticator(identity Identity) *Authenticator {
	return &Authenticator{
		identity: identity,
	}
}

// RequireSession admits only the client holding the console token issued at login and puts
// the operator in the context.
func (a *Authenticator) RequireSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := a.identity.User()
		if !ok || !a.identity.Authenticated() {
			response.RenderErr(ctx, response.ErrLoginRequired(fmt.Errorf("no operator signed in")))
			return
		}

		token, found := bearerToken(ctx)
		if !found || !a.identity.VerifyConsoleToken(token) {
			response.RenderErr(ctx, response.ErrLoginRequired(fmt.Errorf("missing or unknown console token")))
			return
		}

		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) (string, bool) {
	header := ctx.GetHeader("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])

	return token, token != ""
}

func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok || !user.HasRole(roles...) {
			response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("role %q may not access this", user.Role)))
			return
		}

		ctx.Next()
	}
}

func RequirePermission(p domain.Permission) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok || !user.Can(p) {
			response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("missing permission %s", p)))
			return
		}

		ctx.Next()
	}
}

// RequireClubSession blocks manager actions while the club has no open cash-register
// session. Admins are not bound to a club and pass through.
func RequireClubSession(source ClubSessionSource) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if ok && user.Role != domain.RoleManager {
			ctx.Next()
			return
		}

		if session := source.ClubSession(); session == nil || !session.Open() {
			response.RenderErr(ctx, response.ErrClubSessionRequired())
			return
		}

		ctx.Next()
	}
}

func CurrentUser(ctx *gin.Context) (domain.User, bool) {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)

	return user, ok
}
