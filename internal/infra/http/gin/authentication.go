package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/authz"
)

const identityContextKey = "staybook.identity"

// TokenResolver maps an opaque bearer token onto a caller identity. The
// authentication layer behind it is out of scope here.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (authz.Identity, error)
}

type AuthMiddleware struct {
	Resolver TokenResolver
	Logger   *slog.Logger
}

// Handle resolves a bearer token into an identity when one is present.
// Requests without a token proceed anonymously; booking creation and the
// availability check accept anonymous callers.
func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Resolver == nil {
		c.Next()
		return
	}
	id, err := m.Resolver.Resolve(c.Request.Context(), token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token resolution failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(identityContextKey, id)
	c.Next()
}

func currentIdentity(c *gin.Context) authz.Identity {
	val, exists := c.Get(identityContextKey)
	if !exists {
		return authz.Identity{}
	}
	id, ok := val.(authz.Identity)
	if !ok {
		return authz.Identity{}
	}
	return id
}

// requireIdentity aborts with 401 for anonymous callers on endpoints that
// need an authenticated principal.
func requireIdentity(c *gin.Context) (authz.Identity, bool) {
	id := currentIdentity(c)
	if id.IsAnonymous() {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return authz.Identity{}, false
	}
	return id, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
