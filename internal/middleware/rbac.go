package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/career-readiness-api/internal/models"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
	"github.com/noah-isme/career-readiness-api/pkg/response"
)

// Self lets a student through when the route's :id (or the named param) is their own record.
const Self = "SELF"

// RBAC enforces role-based access control for routes.
func RBAC(allowed ...string) gin.HandlerFunc {
	return RBACParam("id", allowed...)
}

// RBACParam is RBAC with SELF checked against a custom route parameter.
func RBACParam(param string, allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.UserRole]struct{})
	for _, a := range allowed {
		if a == Self {
			allowSelf = true
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if claims.Owns(c.Param(param)) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
