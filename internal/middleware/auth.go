package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carshare/internal/auth"
	"carshare/internal/domain"
)

const requesterKey = "requester"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.UserClaims, error)
}

// Auth rejects requests without a valid bearer token and stores the
// caller's identity in the gin context.
func Auth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(requesterKey, claims.Requester())
		c.Next()
	}
}

// RequireRole rejects requesters that do not hold role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := RequesterFrom(c)
		if !ok || !hasRole(req, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

// RequesterFrom returns the identity stored by Auth.
func RequesterFrom(c *gin.Context) (domain.Requester, bool) {
	v, ok := c.Get(requesterKey)
	if !ok {
		return domain.Requester{}, false
	}
	req, ok := v.(domain.Requester)
	return req, ok
}

func hasRole(req domain.Requester, role string) bool {
	for _, r := range req.Roles {
		if r == role {
			return true
		}
	}
	return false
}
