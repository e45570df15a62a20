package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskdesk/internal/service"
)

// UserHandler mantiene dependencias para registro, activacion y passwords.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

func NewUserHandler(logger *zap.Logger, userServ *service.UserService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
	}
}

// Register maneja POST /register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Email           string `json:"email" binding:"required,email"`
		Username        string `json:"username" binding:"required"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	user, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		h.logger.Error("register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not register"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"detail":   "Your activation email sent to your inbox.",
		"email":    user.Email,
		"username": user.Username,
	})
}

// ActivationConfirm maneja GET /activation/confirm/:token.
func (h *UserHandler) ActivationConfirm(c *gin.Context) {
	token := c.Param("token")

	_, err := h.userServ.Activate(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Your token has been expired."})
		case errors.Is(err, service.ErrTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Your token is not valid."})
		case errors.Is(err, service.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Your account has already verified."})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "user does not exist."})
		default:
			h.logger.Error("activation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not activate account"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"detail": "Your account have been verified successfully."})
}

// ActivationResend maneja POST /activation/resend.
func (h *UserHandler) ActivationResend(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid resend request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	if err := h.userServ.ResendActivation(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "user does not exist."})
		case errors.Is(err, service.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Your account has already verified."})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"detail": "too many requests"})
		default:
			h.logger.Error("activation resend failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not resend activation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "Your activation resend successfully."})
}

// ChangePassword maneja PUT /change_password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	identity, ok := GetAuthIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
		return
	}

	var req struct {
		OldPassword        string `json:"old_password" binding:"required"`
		NewPassword        string `json:"new_password" binding:"required"`
		ConfirmNewPassword string `json:"confirm_new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid change password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	err := h.userServ.ChangePassword(c.Request.Context(), identity.UserID, service.ChangePasswordInput{
		OldPassword:        req.OldPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Old password is not correct"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		default:
			h.logger.Error("change password failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not change password"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"detail": "Password changed successfully."})
}

// ResetPassword maneja POST /reset_password.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	if err := h.userServ.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "An invalid email has been entered."})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"detail": "too many requests"})
		default:
			h.logger.Error("reset password request failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not request reset"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"detail": "We've emailed you a link for resetting your password.",
	})
}

// ResetPasswordConfirm maneja PUT /reset_password/confirm/:token.
func (h *UserHandler) ResetPasswordConfirm(c *gin.Context) {
	token := c.Param("token")

	var req struct {
		NewPassword        string `json:"new_password" binding:"required"`
		ConfirmNewPassword string `json:"confirm_new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset confirm request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	err := h.userServ.ConfirmPasswordReset(c.Request.Context(), token, service.ResetPasswordInput{
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Your token has been expired."})
		case errors.Is(err, service.ErrTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Your token is not valid."})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "user does not exist."})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		default:
			h.logger.Error("reset password confirm failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not reset password"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"detail": "Password changed successfully."})
}

// isValidationError agrupa las fallas de entrada que vuelven como 400.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrPasswordsMismatch) ||
		errors.Is(err, service.ErrPasswordTooShort) ||
		errors.Is(err, service.ErrPasswordNumeric) ||
		errors.Is(err, service.ErrPasswordTooSimple) ||
		errors.Is(err, service.ErrUserExists) ||
		errors.Is(err, service.ErrEmailRequired)
}
