package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/weathervane/backend/internal/services"
	"github.com/weathervane/backend/internal/utils"
)

// WeatherController handles raw weather sample requests
type WeatherController struct {
	weatherService *services.WeatherService
	defaultCity    string
	logger         *utils.Logger
}

// NewWeatherController creates a new weather controller
func NewWeatherController(weatherService *services.WeatherService, defaultCity string, logger *utils.Logger) *WeatherController {
	return &WeatherController{
		weatherService: weatherService,
		defaultCity:    defaultCity,
		logger:         logger.Named("weather_controller"),
	}
}

// RegisterRoutes registers the weather routes
func (c *WeatherController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/current", c.GetCurrent)
	router.GET("/history", c.GetHistory)
	router.POST("/fetch", c.Fetch)
}

// GetCurrent returns the most recent stored sample for a city
// @Summary Get current weather
// @Description Returns the most recent stored weather sample for a city
// @Tags weather
// @Produce json
// @Param city query string false "City name (defaults to the configured city)"
// @Success 200 {object} models.WeatherSample "Latest weather sample"
// @Failure 404 {object} utils.ErrorResponse "No data for city"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /weather/current [get]
func (c *WeatherController) GetCurrent(ctx *gin.Context) {
	city := ctx.DefaultQuery("city", c.defaultCity)

	sample, err := c.weatherService.GetLatest(city)
	if err != nil {
		utils.HandleError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, sample)
}

// GetHistory returns samples for the last N hours, newest first
// @Summary Get weather history
// @Description Returns stored weather samples for the last N hours
// @Tags weather
// @Produce json
// @Param city query string false "City name (defaults to the configured city)"
// @Param hours query int false "Lookback window in hours (default 24)"
// @Success 200 {array} models.WeatherSample "Weather samples"
// @Failure 400 {object} utils.ErrorResponse "Invalid parameters"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /weather/history [get]
func (c *WeatherController) GetHistory(ctx *gin.Context) {
	city := ctx.DefaultQuery("city", c.defaultCity)

	hours, err := strconv.Atoi(ctx.DefaultQuery("hours", "24"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{
			Error:   "bad_request",
			Message: "hours must be an integer",
		})
		return
	}

	samples, err := c.weatherService.GetHistory(city, hours)
	if err != nil {
		utils.HandleError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"city":    city,
		"hours":   hours,
		"count":   len(samples),
		"samples": samples,
	})
}

// Fetch synchronously fetches current weather from the upstream API
// @Summary Fetch weather now
// @Description Fetches current weather from the upstream API and stores a sample
// @Tags weather
// @Produce json
// @Param city query string false "City name (defaults to the configured city)"
// @Success 200 {object} models.WeatherSample "Stored weather sample"
// @Failure 400 {object} utils.ErrorResponse "Invalid city"
// @Failure 502 {object} utils.ErrorResponse "Upstream failure"
// @Router /weather/fetch [post]
func (c *WeatherController) Fetch(ctx *gin.Context) {
	city := ctx.DefaultQuery("city", c.defaultCity)

	sample, err := c.weatherService.FetchAndStore(ctx.Request.Context(), city)
	if err != nil {
		utils.HandleError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, sample)
}
