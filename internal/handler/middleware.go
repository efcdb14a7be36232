package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"adaura-rewards/internal/pkg/token"
)

const (
	// ContextIdentityKey stores the authenticated identity in the Gin context.
	ContextIdentityKey = "identity"
	// ContextIsAdminKey stores the admin flag in the Gin context.
	ContextIsAdminKey = "is_admin"
	// ContextTokenKey stores the raw bearer token for logout revocation.
	ContextTokenKey = "bearer_token"
)

// AuthRequired ensures the request carries a valid, unrevoked bearer token.
func AuthRequired(tokens *token.Manager, blacklist *token.Blacklist) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			fail(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			fail(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			fail(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		if blacklist.IsRevoked(tokenStr) {
			fail(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			fail(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextIdentityKey, claims.Identity)
		ctx.Set(ContextIsAdminKey, claims.IsAdmin)
		ctx.Set(ContextTokenKey, tokenStr)
		ctx.Next()
	}
}

// AdminRequired gates a route to authenticated admin accounts. Must run
// after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !ctx.GetBool(ContextIsAdminKey) {
			fail(ctx, http.StatusForbidden, 40301, "admin access required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// identityFrom reads the authenticated identity set by AuthRequired.
func identityFrom(ctx *gin.Context) string {
	return ctx.GetString(ContextIdentityKey)
}
