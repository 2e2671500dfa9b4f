package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/weathervane/backend/internal/services"
	"github.com/weathervane/backend/internal/utils"
)

// AcknowledgeRequest is the request body for acknowledging an alert
type AcknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledged_by"`
}

// AlertController handles alert requests
type AlertController struct {
	alertService *services.AlertService
	defaultCity  string
	logger       *utils.Logger
}

// NewAlertController creates a new alert controller
func NewAlertController(alertService *services.AlertService, defaultCity string, logger *utils.Logger) *AlertController {
	return &AlertController{
		alertService: alertService,
		defaultCity:  defaultCity,
		logger:       logger.Named("alert_controller"),
	}
}

// RegisterRoutes registers the alert routes
func (c *AlertController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/active", c.GetActive)
	router.GET("/recent", c.GetRecent)
	router.GET("/stats", c.GetStats)
	router.POST("/check", c.Check)
	router.POST("/:id/acknowledge", c.Acknowledge)
}

// GetActive returns unacknowledged alerts, newest first
// @Summary Get active alerts
// @Description Returns unacknowledged alerts, optionally filtered by city
// @Tags alerts
// @Produce json
// @Param city query string false "City name (empty for all cities)"
// @Param limit query int false "Maximum number of alerts (default 50)"
// @Success 200 {array} models.Alert "Active alerts"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /alerts/active [get]
func (c *AlertController) GetActive(ctx *gin.Context) {
	city := ctx.Query("city")

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{
			Error:   "bad_request",
			Message: "limit must be an integer",
		})
		return
	}

	alerts, err := c.alertService.GetActiveAlerts(city, limit)
	if err != nil {
		utils.HandleError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

// GetRecent returns alerts triggered within the last N hours
// @Summary Get recent alerts
// @Description Returns alerts for a city triggered within the lookback window
// @Tags alerts
// @Produce json
// @Param city query string false "City name (defaults to the configured city)"
// @Param hours query int false "Lookback window in hours (default 24)"
// @Param limit query int false "Maximum number of alerts"
// @Success 200 {array} models.Alert "Recent alerts"
// @Failure 400 {object} utils.ErrorResponse "Invalid parameters"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /alerts/recent [get]
func (c *AlertController) GetRecent(ctx *gin.Context) {
	city := ctx.DefaultQuery("city", c.defaultCity)

	hours, err := strconv.Atoi(ctx.DefaultQuery("hours", "24"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{
			Error:   "bad_request",
			Message: "hours must be an integer",
		})
		return
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{
			Error:   "bad_request",
			Message: "limit must be an integer",
		})
		return
	}

	alerts, err := c.alertService.GetRecentAlerts(city, hours, limit)
	if err != nil {
		utils.HandleError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"city":   city,
		"hours":  hours,
		"count":  len(alerts),
		"alerts": alerts,
	})
}

// GetStats returns alert counts over a window
// @Summary Get alert statistics
// @Description Returns total/active/recent counts plus breakdowns by severity and type
// @Tags alerts
// @Produce json
// @Param city query string false "City name (empty for all cities)"
// @Param hours query int false "Recent window in hours (default 24)"
// @Success 200 {object} models.AlertStatistics "Alert statistics"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /alerts/stats [get]
func (c *AlertController) GetStats(ctx *gin.Context) {
	city := ctx.Query("city")

	hours, err := strconv.Atoi(ctx.DefaultQuery("hours", "24"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{
			Error:   "bad_request",
			Message: "hours must be an integer",
		})
		return
	}

	stats, err := c.alertService.GetStatistics(city, hours)
	if err != nil {
		utils.HandleError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// Check synchronously evaluates alert rules for a city
// @Summary Run alert check
// @Description Evaluates all alert rules against the latest sample and returns created alert ids
// @Tags alerts
// @Produce json
// @Param city query string false "City name (defaults to the configured city)"
// @Success 200 {object} map[string]interface{} "Created alert ids"
// @Failure 400 {object} utils.ErrorResponse "Invalid city"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /alerts/check [post]
func (c *AlertController) Check(ctx *gin.Context) {
	city := ctx.DefaultQuery("city", c.defaultCity)

	createdIDs, err := c.alertService.CheckAndCreateAlerts(ctx.Request.Context(), city)
	if err != nil {
		utils.HandleError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"city":           city,
		"alerts_created": len(createdIDs),
		"alert_ids":      createdIDs,
	})
}

// Acknowledge marks an alert as acknowledged
// @Summary Acknowledge alert
// @Description Marks an alert as acknowledged; repeat calls succeed without changes
// @Tags alerts
// @Accept json
// @Produce json
// @Param id path string true "Alert ID"
// @Param request body AcknowledgeRequest false "Acknowledging actor"
// @Success 200 {object} map[string]string "Acknowledged"
// @Failure 404 {object} utils.ErrorResponse "Alert not found"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /alerts/{id}/acknowledge [post]
func (c *AlertController) Acknowledge(ctx *gin.Context) {
	alertID := ctx.Param("id")

	var req AcknowledgeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.HandleValidationErrors(ctx, err)
		return
	}

	if err := c.alertService.Acknowledge(alertID, req.AcknowledgedBy); err != nil {
		utils.HandleError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"alert_id": alertID,
		"status":   "acknowledged",
	})
}
