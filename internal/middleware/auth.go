package middleware

import (
	"context"
	"strings"

	"task-tracker-api/internal/services"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Identity, error)
}

// Authenticate resolves the bearer token into an identity stored on the gin
// context. Browsers cannot set headers on a websocket upgrade, so a "token"
// query parameter is accepted as a fallback.
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			RespondError(c, services.ErrMissingToken)
			return
		}

		id, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			RespondError(c, err)
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireCapability rejects identities the policy does not grant c.
func RequireCapability(p services.Policy, c services.Capability) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := IdentityFrom(ctx)
		if !ok {
			RespondError(ctx, services.ErrMissingToken)
			return
		}
		if err := p.Authorize(id, c); err != nil {
			RespondError(ctx, err)
			return
		}
		ctx.Next()
	}
}

// IdentityFrom returns the identity set by Authenticate.
func IdentityFrom(c *gin.Context) (services.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return services.Identity{}, false
	}
	id, ok := v.(services.Identity)
	return id, ok
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
