package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// PrincipalIDKey ключ контекста Gin с ID аутентифицированного принципала
const PrincipalIDKey = "principal_id"

const bearerPrefix = "Bearer "

// TokenVerifier проверяет ID-токен и возвращает ID принципала
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

// AuthMiddleware создает middleware аутентификации по bearer-токену
func AuthMiddleware(verifier TokenVerifier, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		idToken := strings.TrimPrefix(header, bearerPrefix)
		principalID, err := verifier.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			log.Warnw("Token verification failed", "error", err, "ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(PrincipalIDKey, principalID)
		c.Next()
	}
}
