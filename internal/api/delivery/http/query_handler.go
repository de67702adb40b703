package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/service"
	"golang-stock-autotrader/pkg/logger"
)

// QueryHandler serves the stored trading history and settings.
type QueryHandler struct {
	query     service.QueryService
	stockCode string
	logger    *logger.Logger
}

// NewQueryHandler creates a new QueryHandler. stockCode is used when a request names none.
func NewQueryHandler(query service.QueryService, stockCode string, logger *logger.Logger) *QueryHandler {
	return &QueryHandler{query: query, stockCode: stockCode, logger: logger}
}

// RegisterRoutes registers the query routes to the Echo group.
func (h *QueryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/price_history", h.GetPriceHistory)
	g.GET("/moving_averages", h.GetMovingAverages)
	g.GET("/signals", h.GetSignals)
	g.GET("/orders", h.GetOrders)
	g.GET("/statistics", h.GetStatistics)
	g.GET("/logs", h.GetLogs)
	g.GET("/trading_settings", h.GetTradingSettings)
	g.POST("/trading_settings", h.UpdateTradingSettings)
	g.GET("/dashboard", h.GetDashboard)
}

func (h *QueryHandler) code(c echo.Context) string {
	if code := c.QueryParam("code"); code != "" {
		return code
	}
	return h.stockCode
}

func (h *QueryHandler) internalError(c echo.Context, msg string, err error) error {
	h.logger.ErrorContext(c.Request().Context(), msg, logger.ErrorField(err))
	return errorJSON(c, http.StatusInternalServerError, msg)
}

// GetPriceHistory godoc
// @Summary Price history
// @Description Recorded prices, newest first
// @Tags history
// @Produce  json
// @Param   code   query   string  false  "Stock code"
// @Param   limit  query   int     false  "Maximum rows (default 100, max 1000)"
// @Success 200 {array} entity.PriceData
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /price_history [get]
func (h *QueryHandler) GetPriceHistory(c echo.Context) error {
	limit, err := intQuery(c, "limit", service.DefaultQueryLimit)
	if err != nil {
		return badParam(c, "limit")
	}
	prices, err := h.query.PriceHistory(c.Request().Context(), h.code(c), limit)
	if err != nil {
		return h.internalError(c, "Failed to get price history", err)
	}
	return c.JSON(http.StatusOK, prices)
}

// GetMovingAverages godoc
// @Summary Moving averages
// @Description Recorded short/long moving averages, newest first
// @Tags history
// @Produce  json
// @Param   code   query   string  false  "Stock code"
// @Param   count  query   int     false  "Maximum rows (default 100, max 1000)"
// @Success 200 {array} entity.MovingAverage
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /moving_averages [get]
func (h *QueryHandler) GetMovingAverages(c echo.Context) error {
	count, err := intQuery(c, "count", service.DefaultQueryLimit)
	if err != nil {
		return badParam(c, "count")
	}
	averages, err := h.query.MovingAverages(c.Request().Context(), h.code(c), count)
	if err != nil {
		return h.internalError(c, "Failed to get moving averages", err)
	}
	return c.JSON(http.StatusOK, averages)
}

// GetSignals godoc
// @Summary Trading signals
// @Description Evaluated crossover signals, newest first
// @Tags history
// @Produce  json
// @Param   code   query   string  false  "Stock code"
// @Param   limit  query   int     false  "Maximum rows"
// @Success 200 {array} entity.TradingSignal
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /signals [get]
func (h *QueryHandler) GetSignals(c echo.Context) error {
	limit, err := intQuery(c, "limit", service.DefaultQueryLimit)
	if err != nil {
		return badParam(c, "limit")
	}
	signals, err := h.query.Signals(c.Request().Context(), h.code(c), limit)
	if err != nil {
		return h.internalError(c, "Failed to get signals", err)
	}
	return c.JSON(http.StatusOK, signals)
}

// GetOrders godoc
// @Summary Orders
// @Description Recorded orders, newest first
// @Tags history
// @Produce  json
// @Param   code   query   string  false  "Stock code"
// @Param   limit  query   int     false  "Maximum rows"
// @Success 200 {array} entity.Order
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /orders [get]
func (h *QueryHandler) GetOrders(c echo.Context) error {
	limit, err := intQuery(c, "limit", service.DefaultQueryLimit)
	if err != nil {
		return badParam(c, "limit")
	}
	orders, err := h.query.Orders(c.Request().Context(), h.code(c), limit)
	if err != nil {
		return h.internalError(c, "Failed to get orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetStatistics godoc
// @Summary Order statistics
// @Description Order counts and traded amount over the last days
// @Tags history
// @Produce  json
// @Param   code  query   string  false  "Stock code"
// @Param   days  query   int     false  "Days to aggregate (default 7)"
// @Success 200 {object} dto.Statistics
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /statistics [get]
func (h *QueryHandler) GetStatistics(c echo.Context) error {
	days, err := intQuery(c, "days", 7)
	if err != nil || days <= 0 {
		return badParam(c, "days")
	}
	stats, err := h.query.Statistics(c.Request().Context(), h.code(c), days)
	if err != nil {
		return h.internalError(c, "Failed to get statistics", err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetLogs godoc
// @Summary Trading logs
// @Description Operator log entries, newest first
// @Tags history
// @Produce  json
// @Param   level  query   string  false  "INFO, WARNING or ERROR"
// @Param   limit  query   int     false  "Maximum rows"
// @Success 200 {array} entity.TradingLog
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /logs [get]
func (h *QueryHandler) GetLogs(c echo.Context) error {
	limit, err := intQuery(c, "limit", service.DefaultQueryLimit)
	if err != nil {
		return badParam(c, "limit")
	}
	level := entity.LogLevel(strings.ToUpper(c.QueryParam("level")))
	switch level {
	case "", entity.LogLevelInfo, entity.LogLevelWarning, entity.LogLevelError:
	default:
		return badParam(c, "level")
	}
	logs, err := h.query.Logs(c.Request().Context(), level, limit)
	if err != nil {
		return h.internalError(c, "Failed to get logs", err)
	}
	return c.JSON(http.StatusOK, logs)
}

// GetTradingSettings godoc
// @Summary Trading settings
// @Description Settings of the trading loop for a stock
// @Tags settings
// @Produce  json
// @Param   code  query   string  false  "Stock code"
// @Success 200 {object} entity.TradingSetting
// @Failure 500 {object} dto.ErrorResponse
// @Router /trading_settings [get]
func (h *QueryHandler) GetTradingSettings(c echo.Context) error {
	setting, err := h.query.TradingSettings(c.Request().Context(), h.code(c))
	if err != nil {
		return h.internalError(c, "Failed to get trading settings", err)
	}
	return c.JSON(http.StatusOK, setting)
}

// UpdateTradingSettings godoc
// @Summary Update trading settings
// @Description Update the settings row of a stock; omitted fields keep their value
// @Tags settings
// @Accept  json
// @Produce  json
// @Param   settings  body    dto.TradingSettingRequest  true  "Settings to change"
// @Success 200 {object} entity.TradingSetting
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /trading_settings [post]
func (h *QueryHandler) UpdateTradingSettings(c echo.Context) error {
	var req dto.TradingSettingRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}
	if req.StockCode == "" {
		req.StockCode = h.code(c)
	}
	setting, err := h.query.UpdateTradingSettings(c.Request().Context(), req)
	if errors.Is(err, service.ErrInvalidSettings) {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return h.internalError(c, "Failed to update trading settings", err)
	}
	return c.JSON(http.StatusOK, setting)
}

// GetDashboard godoc
// @Summary Dashboard
// @Description Latest price, averages, orders, statistics, settings and logs of a stock
// @Tags history
// @Produce  json
// @Param   code  query   string  false  "Stock code"
// @Success 200 {object} dto.DashboardResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard [get]
func (h *QueryHandler) GetDashboard(c echo.Context) error {
	dashboard, err := h.query.Dashboard(c.Request().Context(), h.code(c))
	if err != nil {
		return h.internalError(c, "Failed to build dashboard", err)
	}
	return c.JSON(http.StatusOK, dashboard)
}
