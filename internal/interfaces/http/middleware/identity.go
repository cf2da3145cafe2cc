package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/retailpos/backend/internal/infrastructure/auth"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// Identity context keys
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"

	authHeaderKey = "Authorization"
	bearerPrefix  = "Bearer "
)

// Identity resolves the acting user for record-keeping fields such as
// created_by and received_by. A bearer token, when present, must be valid.
// Without one the X-User-ID header is accepted as a development fallback.
func Identity(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authHeaderKey)
		if authHeader != "" {
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				abortUnauthorized(c, "Invalid authorization header format")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				abortUnauthorized(c, "Token validation failed")
				return
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(UsernameKey, claims.Username)
			c.Next()
			return
		}

		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// GetUserID returns the user ID resolved by the Identity middleware
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
		dto.ErrCodeUnauthorized,
		message,
		GetRequestID(c),
	))
}
