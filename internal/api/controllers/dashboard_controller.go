package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/weathervane/backend/internal/services"
	"github.com/weathervane/backend/internal/utils"
)

// DashboardController handles dashboard summary requests
type DashboardController struct {
	dashboardService *services.DashboardService
	defaultCity      string
	logger           *utils.Logger
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(dashboardService *services.DashboardService, defaultCity string, logger *utils.Logger) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		defaultCity:      defaultCity,
		logger:           logger.Named("dashboard_controller"),
	}
}

// RegisterRoutes registers the dashboard routes
func (c *DashboardController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/summary", c.GetSummary)
	router.POST("/refresh", c.Refresh)
}

// GetSummary returns the stored dashboard summary for a city
// @Summary Get dashboard summary
// @Description Returns the pre-aggregated dashboard summary for a city
// @Tags dashboard
// @Produce json
// @Param city query string false "City name (defaults to the configured city)"
// @Success 200 {object} models.DashboardSummary "Dashboard summary"
// @Failure 404 {object} utils.ErrorResponse "No summary available"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /dashboard/summary [get]
func (c *DashboardController) GetSummary(ctx *gin.Context) {
	city := ctx.DefaultQuery("city", c.defaultCity)

	summary, err := c.dashboardService.GetLatestSummary(city)
	if err != nil {
		utils.HandleError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// Refresh synchronously regenerates and stores the summary for a city
// @Summary Refresh dashboard summary
// @Description Regenerates the dashboard summary from stored samples and saves it
// @Tags dashboard
// @Produce json
// @Param city query string false "City name (defaults to the configured city)"
// @Success 200 {object} models.DashboardSummary "Fresh dashboard summary"
// @Failure 400 {object} utils.ErrorResponse "Invalid city"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /dashboard/refresh [post]
func (c *DashboardController) Refresh(ctx *gin.Context) {
	city := ctx.DefaultQuery("city", c.defaultCity)

	summary, err := c.dashboardService.Refresh(city)
	if err != nil {
		utils.HandleError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
