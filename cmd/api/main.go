package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"taskdesk/internal/config"
	"taskdesk/internal/db"
	"taskdesk/internal/email"
	apihttp "taskdesk/internal/http"
	"taskdesk/internal/repository"
	"taskdesk/internal/service"
	"taskdesk/internal/weather"
	"taskdesk/internal/worker"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	taskRepo := repository.NewPgTaskRepository(pool)
	authTokenRepo := repository.NewPgAuthTokenRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		limiter      service.EmailRateLimiter
		tokenStore   service.RefreshTokenStore
		sessionStore service.SessionStore
		weatherCache weather.Cache
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisEmailRateLimiter(redisClient, 10*time.Minute, 3)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			sessionStore = service.NewRedisSessionStore(redisClient)
			weatherCache = weather.NewRedisCache(redisClient)
		}
		cancel()
	}
	if sessionStore == nil {
		sessionStore = service.NewMemorySessionStore()
	}

	issuer := service.NewSignedTokenIssuer(cfg.TokenSecret)
	jwtSvc := service.NewJWTServiceWithStore(
		cfg.TokenSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.TokenSecret == "" {
		logger.Warn("token secret not configured")
	}

	userSvc := service.NewUserService(
		logger, userRepo, issuer, emailSender, limiter,
		cfg.PublicURL,
		time.Duration(cfg.ActivationTTLMinutes)*time.Minute,
		time.Duration(cfg.PasswordResetTTLMinutes)*time.Minute,
	)
	authSvc := service.NewAuthService(
		logger, userRepo, authTokenRepo, sessionStore, jwtSvc,
		time.Duration(cfg.SessionTTLMinutes)*time.Minute,
	)
	taskSvc := service.NewTaskService(taskRepo)

	weatherClient := weather.NewHTTPClient("", cfg.WeatherAPIKey, cfg.WeatherCity, cfg.WeatherUnits)
	weatherSvc := weather.NewService(weatherClient, weatherCache, time.Duration(cfg.WeatherCacheTTLMinutes)*time.Minute)

	cleaner := worker.NewCleaner(logger, taskSvc, time.Duration(cfg.CleanupIntervalMinutes)*time.Minute)
	go cleaner.Run(ctx)

	userHandler := apihttp.NewUserHandler(logger, userSvc)
	authHandler := apihttp.NewAuthHandler(logger, authSvc, jwtSvc)
	taskHandler := apihttp.NewTaskHandler(logger, taskSvc)
	weatherHandler := apihttp.NewWeatherHandler(logger, weatherSvc)
	router := apihttp.NewRouter(logger, jwtSvc, authSvc, userHandler, authHandler, taskHandler, weatherHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
