package api

import (
	"strings"

	"datadesk/internal/auth"
	apperrors "datadesk/internal/errors"
	"datadesk/ports"

	"github.com/gin-gonic/gin"
)

// userIDKey is the gin context key holding the authenticated user ID
const userIDKey = "userID"

// RequireAuth validates the bearer token, makes sure the user exists and
// stores its ID under "userID" for the handlers
func RequireAuth(secret []byte, users ports.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respondError(c, apperrors.Unauthorized("missing bearer token"))
			return
		}

		claims, err := auth.ValidateToken(secret, strings.TrimSpace(token))
		if err != nil {
			respondError(c, apperrors.Unauthorized("invalid or expired token"))
			return
		}
		userID, _ := claims.UserID()

		user, err := users.EnsureUser(c.Request.Context(), userID, claims.Email)
		if err != nil {
			respondError(c, apperrors.Wrap(err, "failed to load user"))
			return
		}
		if !user.IsActive {
			respondError(c, apperrors.Forbidden("account is disabled"))
			return
		}

		c.Set(userIDKey, userID.String())
		c.Next()
	}
}
