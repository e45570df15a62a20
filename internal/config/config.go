package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	PublicURL   string `env:"PUBLIC_URL" envDefault:"http://127.0.0.1:8080"`

	TokenSecret             string `env:"TOKEN_SECRET,required"`
	JWTAccessTTLMinutes     int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes    int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`
	ActivationTTLMinutes    int    `env:"ACTIVATION_TTL_MINUTES" envDefault:"60"`
	PasswordResetTTLMinutes int    `env:"PASSWORD_RESET_TTL_MINUTES" envDefault:"30"`
	SessionTTLMinutes       int    `env:"SESSION_TTL_MINUTES" envDefault:"1440"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	WeatherAPIKey          string `env:"WEATHER_API_KEY"`
	WeatherCity            string `env:"WEATHER_CITY" envDefault:"Ahvaz"`
	WeatherUnits           string `env:"WEATHER_UNITS" envDefault:"metric"`
	WeatherCacheTTLMinutes int    `env:"WEATHER_CACHE_TTL_MINUTES" envDefault:"20"`

	CleanupIntervalMinutes int `env:"CLEANUP_INTERVAL_MINUTES" envDefault:"10"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
