package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskdesk/internal/weather"
)

// WeatherHandler mantiene dependencias para el lookup de clima.
type WeatherHandler struct {
	logger      *zap.Logger
	weatherServ *weather.Service
}

func NewWeatherHandler(logger *zap.Logger, weatherServ *weather.Service) *WeatherHandler {
	return &WeatherHandler{
		logger:      logger,
		weatherServ: weatherServ,
	}
}

// Current maneja GET /weather.
func (h *WeatherHandler) Current(c *gin.Context) {
	report, err := h.weatherServ.Current(c.Request.Context())
	if err != nil {
		h.logger.Error("weather lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"detail": "weather service unavailable"})
		return
	}
	c.JSON(http.StatusOK, report)
}
