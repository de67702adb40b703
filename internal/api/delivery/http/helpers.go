package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/pkg/common"
)

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, dto.ErrorResponse{Error: msg})
}

// tradingToken reads the brokerage token from the Trading-Token header, the
// token query parameter or the given body value, in that order.
func tradingToken(c echo.Context, body string) string {
	if token := strings.TrimSpace(c.Request().Header.Get(common.HeaderTradingToken)); token != "" {
		return token
	}
	if token := strings.TrimSpace(c.QueryParam("token")); token != "" {
		return token
	}
	return strings.TrimSpace(body)
}

// intQuery parses an optional integer query parameter.
func intQuery(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func badParam(c echo.Context, name string) error {
	return errorJSON(c, http.StatusBadRequest, "Invalid or missing parameter: "+name)
}
