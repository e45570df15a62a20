package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskdesk/internal/service"
)

// AuthHandler mantiene dependencias para las tres variantes de login.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	jwtServ  *service.JWTService
}

func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, jwtServ *service.JWTService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
		jwtServ:  jwtServ,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SessionLogin maneja POST /session/login.
func (h *AuthHandler) SessionLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid session login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	user, sid, err := h.authServ.SessionLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.rejectLogin(c, err, "session login failed")
		return
	}

	c.SetCookie(sessionCookie, sid, 0, "/", "", false, true)
	c.JSON(http.StatusAccepted, gin.H{"email": user.Email})
}

// TokenLogin maneja POST /token/login.
func (h *AuthHandler) TokenLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid token login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	user, token, err := h.authServ.TokenLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.rejectLogin(c, err, "token login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token.Key,
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
	})
}

// TokenLogout maneja POST /token/logout.
func (h *AuthHandler) TokenLogout(c *gin.Context) {
	identity, ok := GetAuthIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
		return
	}

	if err := h.authServ.TokenLogout(c.Request.Context(), identity.UserID); err != nil {
		h.logger.Error("token logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not logout"})
		return
	}
	c.Status(http.StatusNoContent)
}

// JWTCreate maneja POST /jwt/create.
func (h *AuthHandler) JWTCreate(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid jwt create request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	user, pair, err := h.authServ.JWTLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.rejectLogin(c, err, "jwt login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":   pair.AccessToken,
		"refresh":  pair.RefreshToken,
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
	})
}

// JWTRefresh maneja POST /jwt/refresh.
func (h *AuthHandler) JWTRefresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid jwt refresh request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "jwt not configured"})
		return
	}

	pair, err := h.jwtServ.RefreshPair(req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": pair.AccessToken, "refresh": pair.RefreshToken})
}

// JWTVerify maneja POST /jwt/verify.
func (h *AuthHandler) JWTVerify(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid jwt verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "jwt not configured"})
		return
	}

	if err := h.jwtServ.VerifyToken(req.Token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "token is invalid or expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *AuthHandler) rejectLogin(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Access denied: wrong email or password."})
	case errors.Is(err, service.ErrNotVerified):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Verification: your account is not verified yet."})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not login"})
	}
}
