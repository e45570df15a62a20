package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskdesk/internal/service"
)

const (
	authIdentityKey = "auth_identity"
	sessionCookie   = "sessionid"
)

// AuthIdentity es la identidad autenticada del request, sin importar por
// cual de las tres variantes entro.
type AuthIdentity struct {
	UserID   string
	Email    string
	Username string
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// AuthMiddleware acepta JWT (Authorization: Bearer), llave estatica
// (Authorization: Token) o la cookie de sesion, y deja la identidad en el
// contexto. Sin credencial valida el request se corta con 401.
func AuthMiddleware(jwtSvc *service.JWTService, authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))

		switch {
		case strings.HasPrefix(strings.ToLower(header), "bearer "):
			if jwtSvc == nil {
				c.JSON(http.StatusInternalServerError, gin.H{"detail": "jwt not configured"})
				c.Abort()
				return
			}
			token := strings.TrimSpace(header[len("Bearer "):])
			claims, err := jwtSvc.ParseAccessToken(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
				c.Abort()
				return
			}
			c.Set(authIdentityKey, AuthIdentity{
				UserID:   claims.UserID,
				Email:    claims.Email,
				Username: claims.Username,
			})

		case strings.HasPrefix(strings.ToLower(header), "token "):
			key := strings.TrimSpace(header[len("Token "):])
			user, ok, err := authSvc.ResolveToken(c.Request.Context(), key)
			if err != nil || !ok {
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
				c.Abort()
				return
			}
			c.Set(authIdentityKey, AuthIdentity{
				UserID:   user.ID,
				Email:    user.Email,
				Username: user.Username,
			})

		default:
			sid, err := c.Cookie(sessionCookie)
			if err != nil || sid == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
				c.Abort()
				return
			}
			user, ok, resolveErr := authSvc.ResolveSession(c.Request.Context(), sid)
			if resolveErr != nil || !ok {
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid session"})
				c.Abort()
				return
			}
			c.Set(authIdentityKey, AuthIdentity{
				UserID:   user.ID,
				Email:    user.Email,
				Username: user.Username,
			})
		}

		c.Next()
	}
}

// GetAuthIdentity obtiene la identidad autenticada desde el contexto.
func GetAuthIdentity(c *gin.Context) (AuthIdentity, bool) {
	val, ok := c.Get(authIdentityKey)
	if !ok {
		return AuthIdentity{}, false
	}
	identity, ok := val.(AuthIdentity)
	return identity, ok
}
