package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/service"
	"golang-stock-autotrader/pkg/common"
	"golang-stock-autotrader/pkg/logger"
)

const userContextKey = "user"

// currentUser returns the user stored by RequireAuth.
func currentUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(userContextKey).(*entity.User)
	return user, ok
}

// RequireAuth authenticates by X-API-Key header, api_key query parameter or session cookie.
func RequireAuth(auth service.AuthService, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get(common.HeaderAPIKey)
			if apiKey == "" {
				apiKey = c.QueryParam("api_key")
			}
			var sessionID string
			if cookie, err := c.Cookie(common.SessionCookieName); err == nil {
				sessionID = cookie.Value
			}

			user, err := auth.Authenticate(c.Request().Context(), apiKey, sessionID)
			if errors.Is(err, service.ErrUnauthenticated) {
				return errorJSON(c, http.StatusUnauthorized, "Authentication required")
			}
			if err != nil {
				log.ErrorContext(c.Request().Context(), "Authentication lookup failed", logger.ErrorField(err))
				return errorJSON(c, http.StatusInternalServerError, "Authentication failed")
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// RateLimit rejects authenticated users over their hourly request budget with 429.
func RateLimit(auth service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := currentUser(c)
			if ok && !auth.Allow(user.Username) {
				return errorJSON(c, http.StatusTooManyRequests, "Rate limit exceeded")
			}
			return next(c)
		}
	}
}
