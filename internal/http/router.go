package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskdesk/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authSvc *service.AuthService,
	userH *UserHandler,
	authH *AuthHandler,
	taskH *TaskHandler,
	weatherH *WeatherHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	requireAuth := AuthMiddleware(jwtSvc, authSvc)

	// Registro y activacion.
	r.POST("/register", userH.Register)
	activation := r.Group("/activation")
	activation.GET("/confirm/:token", userH.ActivationConfirm)
	activation.POST("/resend", userH.ActivationResend)

	// Las tres variantes de login.
	r.POST("/session/login", authH.SessionLogin)
	r.POST("/token/login", authH.TokenLogin)
	r.POST("/token/logout", requireAuth, authH.TokenLogout)
	jwtGroup := r.Group("/jwt")
	jwtGroup.POST("/create", authH.JWTCreate)
	jwtGroup.POST("/refresh", authH.JWTRefresh)
	jwtGroup.POST("/verify", authH.JWTVerify)

	// Manejo de passwords.
	r.PUT("/change_password", requireAuth, userH.ChangePassword)
	r.POST("/reset_password", userH.ResetPassword)
	r.PUT("/reset_password/confirm/:token", userH.ResetPasswordConfirm)

	// Tareas del usuario autenticado.
	tasks := r.Group("/task", requireAuth)
	tasks.GET("", taskH.List)
	tasks.POST("", taskH.Create)
	tasks.GET("/:id", taskH.Get)
	tasks.PUT("/:id", taskH.Update)
	tasks.PATCH("/:id/complete", taskH.ToggleComplete)
	tasks.DELETE("/:id", taskH.Delete)

	// Clima cacheado.
	r.GET("/weather", requireAuth, weatherH.Current)

	return r
}
