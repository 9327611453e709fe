package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-labs/inkwell/internal/app/service/auth"
	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/response"
)

const userKey = "currentUser"

// AuthMiddleware verifies the Bearer token and loads the current user row
// onto the context. Every protected handler reads the user via CurrentUser.
func AuthMiddleware(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorMsg(response.APIResponseCodeUnauthorized, "missing bearer token"))
			return
		}

		user, err := authSvc.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorMsg(response.APIResponseCodeUnauthorized, "invalid or expired token"))
			return
		}

		c.Set(userKey, user)
		ctx := context.WithValue(c.Request.Context(), "user_id", user.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminMiddleware gates admin routes; it must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				response.ErrorMsg(response.APIResponseCodeForbidden, "admin access required"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by AuthMiddleware, or
// nil when the route is unauthenticated.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
