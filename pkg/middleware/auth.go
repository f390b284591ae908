package middleware

import (
	"strings"

	"dira-directory/backend/pkg/errors"
	"dira-directory/backend/pkg/jwt"
	"dira-directory/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares
const (
	ContextClaimsKey = "claims"
	ContextUserIDKey = "userId"
)

// RequireAuth checks that the request carries a valid identity-provider token
// and adds the claims to the context
func RequireAuth(jwtService *jwt.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, jwtService)
		if err != nil {
			log.Warn("rejected unauthenticated request",
				"path", c.Request.URL.Path,
				"error", err.Error(),
			)
			c.Error(errors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
			c.Abort()
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Set(ContextUserIDKey, claims.Subject)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is present but lets
// anonymous requests through. Used where the caller's own state is a
// best-effort addition to a public read.
func OptionalAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := claimsFromRequest(c, jwtService); err == nil {
			c.Set(ContextClaimsKey, claims)
			c.Set(ContextUserIDKey, claims.Subject)
		}
		c.Next()
	}
}

// CurrentClaims returns the identity claims set by RequireAuth/OptionalAuth
func CurrentClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ContextClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

func claimsFromRequest(c *gin.Context, jwtService *jwt.Service) (*jwt.Claims, error) {
	token := c.GetHeader("Authorization")
	if token == "" {
		return nil, jwt.ErrInvalidToken
	}

	// Strip "Bearer " prefix if present
	if strings.HasPrefix(token, "Bearer ") {
		token = token[7:]
	}

	return jwtService.ValidateToken(token)
}
