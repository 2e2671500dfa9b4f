package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/weathervane/backend/internal/api/controllers"
	"github.com/weathervane/backend/internal/api/middleware"
	"github.com/weathervane/backend/internal/config"
	"github.com/weathervane/backend/internal/services"
	"github.com/weathervane/backend/internal/utils"
)

// Router manages the API routes and controllers
type Router struct {
	engine              *gin.Engine
	logger              *utils.Logger
	config              *config.Config
	serviceProvider     *services.ServiceProvider
	dashboardController *controllers.DashboardController
	weatherController   *controllers.WeatherController
	alertController     *controllers.AlertController
}

// NewRouter creates a new Router instance
func NewRouter(
	config *config.Config,
	logger *utils.Logger,
	serviceProvider *services.ServiceProvider,
) *Router {
	if config.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.LoggingMiddleware(logger))

	// The dashboard UI polls from the browser, so allow any origin
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Origin"}
	engine.Use(cors.New(corsConfig))

	return &Router{
		engine:          engine,
		logger:          logger.Named("router"),
		config:          config,
		serviceProvider: serviceProvider,
	}
}

// SetupRoutes configures all API routes
func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	defaultCity := r.config.OpenWeather.City

	r.dashboardController = controllers.NewDashboardController(
		r.serviceProvider.GetDashboardService(), defaultCity, r.logger)
	r.weatherController = controllers.NewWeatherController(
		r.serviceProvider.GetWeatherService(), defaultCity, r.logger)
	r.alertController = controllers.NewAlertController(
		r.serviceProvider.GetAlertService(), defaultCity, r.logger)

	apiV1 := r.engine.Group("/api/v1")
	r.dashboardController.RegisterRoutes(apiV1.Group("/dashboard"))
	r.weatherController.RegisterRoutes(apiV1.Group("/weather"))
	r.alertController.RegisterRoutes(apiV1.Group("/alerts"))

	if !r.config.Server.IsProduction() {
		r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.logger.Info("API routes setup completed")
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
