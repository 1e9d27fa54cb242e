package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/forum/permissions"
	"github.com/campuslink/forum/utils"
)

// ContextPrincipalKey stores the resolved principal inside Gin context.
const ContextPrincipalKey = "principal"

// Principal returns the request's principal. Requests that never went
// through the auth middlewares get the anonymous principal.
func Principal(ctx *gin.Context) permissions.Principal {
	if v, ok := ctx.Get(ContextPrincipalKey); ok {
		if p, ok := v.(permissions.Principal); ok {
			return p
		}
	}
	return permissions.Principal{}
}

func bearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func principalFromToken(token string) (permissions.Principal, bool) {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return permissions.Principal{}, false
	}
	return permissions.Principal{
		ID:            claims.UserID,
		Username:      claims.Username,
		Role:          claims.Role,
		IsStaff:       claims.IsStaff,
		Authenticated: true,
	}, true
}

// AuthRequired ensures the request carries a valid identity token.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing or malformed")
			ctx.Abort()
			return
		}
		p, ok := principalFromToken(token)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid token")
			ctx.Abort()
			return
		}
		ctx.Set(ContextPrincipalKey, p)
		ctx.Next()
	}
}

// AuthOptional resolves the principal when a valid token is present and
// falls back to the anonymous principal otherwise. Read endpoints use this
// so user_vote/is_saved can be personalized without requiring login.
func AuthOptional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token, ok := bearerToken(ctx); ok {
			if p, ok := principalFromToken(token); ok {
				ctx.Set(ContextPrincipalKey, p)
			}
		}
		ctx.Next()
	}
}
