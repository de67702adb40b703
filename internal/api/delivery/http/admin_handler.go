package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/internal/service"
	"golang-stock-autotrader/pkg/logger"
)

// AdminHandler serves database maintenance and health endpoints.
type AdminHandler struct {
	maintenance service.MaintenanceService
	logger      *logger.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(maintenance service.MaintenanceService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{maintenance: maintenance, logger: logger}
}

// RegisterRoutes registers the maintenance routes to the Echo group.
func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/backup", h.Backup)
	g.POST("/cleanup", h.Cleanup)
	g.GET("/status", h.Status)
}

// Backup godoc
// @Summary Back up the database
// @Description Copy the sqlite database to <path>.backup_YYYYMMDD_HHMMSS
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.BackupResponse
// @Failure 501 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /backup [post]
func (h *AdminHandler) Backup(c echo.Context) error {
	path, err := h.maintenance.Backup(c.Request().Context())
	if errors.Is(err, repository.ErrBackupUnsupported) {
		return errorJSON(c, http.StatusNotImplemented, err.Error())
	}
	if err != nil {
		h.logger.ErrorContext(c.Request().Context(), "Backup failed", logger.ErrorField(err))
		return errorJSON(c, http.StatusInternalServerError, "Backup failed")
	}
	return c.JSON(http.StatusOK, dto.BackupResponse{Message: "Backup created", Path: path})
}

// Cleanup godoc
// @Summary Delete old data
// @Description Delete price, average, signal, log and account rows older than days_to_keep days
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   request  body    dto.CleanupRequest  false  "Retention in days (default 90)"
// @Success 200 {object} dto.CleanupResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cleanup [post]
func (h *AdminHandler) Cleanup(c echo.Context) error {
	var req dto.CleanupRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
		}
	}
	if req.DaysToKeep < 0 {
		return badParam(c, "days_to_keep")
	}
	if req.DaysToKeep == 0 {
		req.DaysToKeep = service.DefaultRetentionDays
	}
	deleted, err := h.maintenance.Cleanup(c.Request().Context(), req.DaysToKeep)
	if err != nil {
		h.logger.ErrorContext(c.Request().Context(), "Cleanup failed", logger.ErrorField(err))
		return errorJSON(c, http.StatusInternalServerError, "Cleanup failed")
	}
	return c.JSON(http.StatusOK, dto.CleanupResponse{DaysToKeep: req.DaysToKeep, Deleted: deleted})
}

// Status godoc
// @Summary System status
// @Description Database state and row counts per table
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.StatusResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /status [get]
func (h *AdminHandler) Status(c echo.Context) error {
	status, err := h.maintenance.Status(c.Request().Context())
	if err != nil {
		h.logger.ErrorContext(c.Request().Context(), "Status failed", logger.ErrorField(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to read status")
	}
	return c.JSON(http.StatusOK, status)
}

// Health godoc
// @Summary Health check
// @Description Liveness and database connectivity; always served at the root
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *AdminHandler) Health(c echo.Context) error {
	health := h.maintenance.Health(c.Request().Context())
	if health.Status != "healthy" {
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	return c.JSON(http.StatusOK, health)
}
