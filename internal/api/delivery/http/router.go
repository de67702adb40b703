package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	swagger "github.com/swaggo/echo-swagger"

	"golang-stock-autotrader/internal/service"
	"golang-stock-autotrader/pkg/logger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Trading *TradingHandler
	Query   *QueryHandler
	Admin   *AdminHandler
	Auth    *AuthHandler
}

// RouterConfig selects open or authenticated mode.
type RouterConfig struct {
	AuthEnabled bool
}

// NewRouter builds the Echo server. In open mode the API is mounted at the root;
// in authenticated mode it lives under /api behind RequireAuth and RateLimit.
// /health and /swagger/* are always served at the root without credentials.
func NewRouter(cfg RouterConfig, h Handlers, auth service.AuthService, log *logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/health", h.Admin.Health)
	e.GET("/swagger/*", swagger.WrapHandler)

	var api *echo.Group
	if cfg.AuthEnabled {
		public := e.Group("/api")
		h.Auth.RegisterPublicRoutes(public.Group("/auth"))

		api = e.Group("/api", RequireAuth(auth, log), RateLimit(auth))
		h.Auth.RegisterRoutes(api.Group("/auth"))
	} else {
		api = e.Group("")
	}

	h.Trading.RegisterRoutes(api)
	h.Query.RegisterRoutes(api)
	h.Admin.RegisterRoutes(api)
	return e
}
