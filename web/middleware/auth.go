package middleware

import (
	"net/http"
	"strings"

	"taskpanel/database/model"
	"taskpanel/web/entity"
	"taskpanel/web/service"

	"github.com/gin-gonic/gin"
)

const contextUser = "login_user"

// TokenAuth authenticates API requests via a Bearer access token and loads
// the account with its current role memberships into the request context.
// Roles are read from the store on every request so revocations take effect
// without waiting for token expiry.
func TokenAuth(authService *service.AuthService) gin.HandlerFunc {
	userService := service.UserService{}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.APIError{Error: "authentication required"})
			return
		}

		userId, err := authService.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.APIError{Error: "invalid or expired token"})
			return
		}

		user, err := userService.GetUser(userId)
		if err != nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.APIError{Error: "invalid or expired token"})
			return
		}

		c.Set(contextUser, user)
		c.Next()
	}
}

// LoginUser returns the authenticated API user set by TokenAuth.
func LoginUser(c *gin.Context) *model.User {
	if obj, exists := c.Get(contextUser); exists {
		if user, ok := obj.(*model.User); ok {
			return user
		}
	}
	return nil
}
