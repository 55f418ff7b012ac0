package middlewares

import (
	"net/http"
	"strings"

	"github.com/Kariqs/amexan-checkout/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RequireAuth validates the bearer token and stores its claims under "user".
func RequireAuth(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization token required"})
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}
		// Activation tokens carry a purpose and never authenticate requests.
		if userID, _ := claims["user_id"].(string); userID == "" || claims["purpose"] != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		ctx.Set("user", claims)
		ctx.Next()
	}
}

// UserID returns the authenticated user's id, or "" when RequireAuth did not run.
func UserID(ctx *gin.Context) string {
	claims, ok := ctx.Get("user")
	if !ok {
		return ""
	}
	mc, ok := claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	id, _ := mc["user_id"].(string)
	return id
}

// OptionalAuth stores the claims of a valid bearer token and lets anonymous
// requests through untouched.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, found := strings.CutPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if found && tokenString != "" {
			claims, err := utils.ParseToken(secret, tokenString)
			if err == nil && claims["purpose"] == nil {
				ctx.Set("user", claims)
			}
		}
		ctx.Next()
	}
}
