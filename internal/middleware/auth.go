package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Majedzeyad/cancare-api/internal/handler"
	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/service/identity"
	"github.com/Majedzeyad/cancare-api/pkg/auth"
)

const (
	ContextCallerID   = "caller_id"
	ContextCallerRole = "caller_role"
)

type AuthMiddleware struct {
	tokens auth.TokenService
}

func NewAuthMiddleware(tokens auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the JWT token and installs the caller identity on
// the request context for the service layer.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		caller := identity.Caller{
			ID:   claims.UserID,
			Name: claims.Name,
			Role: model.Role(claims.Role),
		}
		c.Request = c.Request.WithContext(identity.WithCaller(c.Request.Context(), caller))

		c.Set(ContextCallerID, claims.UserID.String())
		c.Set(ContextCallerRole, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group to one or more roles.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole := model.Role(c.GetString(ContextCallerRole))
		for _, role := range roles {
			if callerRole == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("role not permitted"))
		c.Abort()
	}
}
