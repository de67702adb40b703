package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"golang-stock-autotrader/internal/broker"
	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/service"
	"golang-stock-autotrader/pkg/logger"
)

// TradingHandler exposes the manual brokerage operations.
type TradingHandler struct {
	brokerage   service.BrokerageService
	credentials service.CredentialProvider
	logger      *logger.Logger
}

// NewTradingHandler creates a new TradingHandler.
func NewTradingHandler(brokerage service.BrokerageService, credentials service.CredentialProvider, logger *logger.Logger) *TradingHandler {
	return &TradingHandler{brokerage: brokerage, credentials: credentials, logger: logger}
}

// RegisterRoutes registers the trading routes to the Echo group.
func (h *TradingHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/price", h.GetPrice)
	g.POST("/order", h.PlaceOrder)
	g.GET("/fetch_quantity", h.FetchQuantity)
	g.POST("/clear_orders", h.ClearOrders)
	g.GET("/fetch_eval", h.FetchEvaluation)
}

func (h *TradingHandler) credential(c echo.Context, bodyToken string) (broker.Credential, error) {
	return h.credentials.WithToken(c.Request().Context(), tradingToken(c, bodyToken))
}

// brokerFailure maps a brokerage or credential error to a response.
func (h *TradingHandler) brokerFailure(c echo.Context, op string, err error) error {
	h.logger.ErrorContext(c.Request().Context(), op+" failed", logger.ErrorField(err))
	if errors.Is(err, broker.ErrInvalidAccount) {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return errorJSON(c, http.StatusInternalServerError, fmt.Sprintf("%s failed: %v", op, err))
}

// GetPrice godoc
// @Summary Current price
// @Description Fetch the current price of a stock and record it in price history
// @Tags trading
// @Produce  json
// @Param   code   query   string  true   "Stock code"
// @Param   token  query   string  false  "Brokerage access token"
// @Success 200 {object} dto.PriceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /price [get]
func (h *TradingHandler) GetPrice(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return badParam(c, "code")
	}
	cred, err := h.credential(c, "")
	if err != nil {
		return h.brokerFailure(c, "Credential", err)
	}
	price, err := h.brokerage.CurrentPrice(c.Request().Context(), cred, code)
	if err != nil {
		return h.brokerFailure(c, "Price inquiry", err)
	}
	return c.JSON(http.StatusOK, dto.PriceResponse{Price: price})
}

// PlaceOrder godoc
// @Summary Place an order
// @Description Place a limit order; the order is recorded as PENDING and then SUCCESS or FAILED
// @Tags trading
// @Accept  json
// @Produce  json
// @Param   order  body    dto.OrderRequest  true  "Order to place"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.OrderResponse
// @Router /order [post]
func (h *TradingHandler) PlaceOrder(c echo.Context) error {
	var req dto.OrderRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}
	side, err := entity.ParseOrderType(req.Type)
	if err != nil {
		return badParam(c, "type")
	}
	switch {
	case req.Account == "":
		return badParam(c, "account")
	case req.Code == "":
		return badParam(c, "code")
	case req.Amount <= 0:
		return badParam(c, "amount")
	case req.Price <= 0:
		return badParam(c, "price")
	}

	cred, err := h.credential(c, req.Token)
	if err != nil {
		return h.brokerFailure(c, "Credential", err)
	}
	order, err := h.brokerage.PlaceOrder(c.Request().Context(), cred, service.PlaceOrderRequest{
		Account:   req.Account,
		StockCode: req.Code,
		Type:      side,
		Quantity:  req.Amount,
		Price:     req.Price,
	})
	if err != nil {
		return h.brokerFailure(c, "Order", err)
	}

	resp := dto.OrderResponse{
		Success: order.Status == entity.OrderStatusSuccess,
		OrderID: order.ID,
		Status:  string(order.Status),
		Error:   order.ErrorMessage,
	}
	if !resp.Success {
		return c.JSON(http.StatusInternalServerError, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// FetchQuantity godoc
// @Summary Holding quantity
// @Description Fetch the held quantity of a stock
// @Tags trading
// @Produce  json
// @Param   account  query   string  true   "Account number"
// @Param   code     query   string  true   "Stock code"
// @Param   token    query   string  false  "Brokerage access token"
// @Success 200 {object} dto.QuantityResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /fetch_quantity [get]
func (h *TradingHandler) FetchQuantity(c echo.Context) error {
	account, code := c.QueryParam("account"), c.QueryParam("code")
	if account == "" {
		return badParam(c, "account")
	}
	if code == "" {
		return badParam(c, "code")
	}
	cred, err := h.credential(c, "")
	if err != nil {
		return h.brokerFailure(c, "Credential", err)
	}
	qty, err := h.brokerage.HoldingQuantity(c.Request().Context(), cred, account, code)
	if err != nil {
		return h.brokerFailure(c, "Quantity inquiry", err)
	}
	return c.JSON(http.StatusOK, dto.QuantityResponse{Quantity: qty})
}

// ClearOrders godoc
// @Summary Cancel unfilled orders
// @Description Cancel every unfilled order of today for a stock
// @Tags trading
// @Accept  json
// @Produce  json
// @Param   request  body    dto.ClearOrdersRequest  true  "Account and stock"
// @Success 200 {object} dto.ClearOrdersResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /clear_orders [post]
func (h *TradingHandler) ClearOrders(c echo.Context) error {
	var req dto.ClearOrdersRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}
	if req.Account == "" {
		return badParam(c, "account")
	}
	if req.Code == "" {
		return badParam(c, "code")
	}
	cred, err := h.credential(c, req.Token)
	if err != nil {
		return h.brokerFailure(c, "Credential", err)
	}
	result, err := h.brokerage.ClearOrders(c.Request().Context(), cred, req.Account, req.Code)
	if err != nil {
		return h.brokerFailure(c, "Clear orders", err)
	}
	return c.JSON(http.StatusOK, dto.ClearOrdersResponse{
		Message:   fmt.Sprintf("Cancelled %d of %d unfilled orders", len(result.Cancelled), result.Attempted),
		Attempted: result.Attempted,
		Cancelled: result.Cancelled,
		Failed:    result.Failed,
	})
}

// FetchEvaluation godoc
// @Summary Total evaluation
// @Description Fetch the total evaluation amount of an account
// @Tags trading
// @Produce  json
// @Param   account  query   string  true   "Account number"
// @Param   token    query   string  false  "Brokerage access token"
// @Success 200 {object} dto.EvaluationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /fetch_eval [get]
func (h *TradingHandler) FetchEvaluation(c echo.Context) error {
	account := c.QueryParam("account")
	if account == "" {
		return badParam(c, "account")
	}
	cred, err := h.credential(c, "")
	if err != nil {
		return h.brokerFailure(c, "Credential", err)
	}
	evaluation, err := h.brokerage.TotalEvaluation(c.Request().Context(), cred, account)
	if err != nil {
		return h.brokerFailure(c, "Evaluation inquiry", err)
	}
	return c.JSON(http.StatusOK, dto.EvaluationResponse{Evaluation: evaluation})
}
