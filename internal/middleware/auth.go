package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/services"
)

const stationClaimsKey = "stationClaims"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireStation authenticates the request as a paired display station.
// The token is taken from the Authorization header, or from the token
// query parameter for EventSource connections that cannot set headers.
func (am *AuthMiddleware) RequireStation() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		claims, err := am.authService.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		c.Set(stationClaimsKey, claims)
		c.Next()
	}
}

// StationClaims returns the claims set by RequireStation, or nil on
// routes that skipped it.
func StationClaims(c *gin.Context) *services.StationClaims {
	v, ok := c.Get(stationClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*services.StationClaims)
	return claims
}

func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
