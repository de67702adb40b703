package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/internal/service"
	"golang-stock-autotrader/pkg/common"
	"golang-stock-autotrader/pkg/logger"
)

// AuthHandler handles login, registration and API key lookups.
type AuthHandler struct {
	auth   service.AuthService
	logger *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth service.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// RegisterPublicRoutes registers the routes reachable without credentials.
func (h *AuthHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/login", h.Login)
}

// RegisterRoutes registers the routes that need an authenticated user.
func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.GET("/api-key", h.GetAPIKey)
	g.POST("/logout", h.Logout)
}

// Login godoc
// @Summary Log in
// @Description Verify a password and start a session; the session cookie and API key are returned
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   credentials  body    dto.LoginRequest  true  "Username and password"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil || req.Username == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "Username and password are required")
	}

	user, session, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return errorJSON(c, http.StatusUnauthorized, "Invalid username or password")
	}
	if err != nil {
		h.logger.ErrorContext(c.Request().Context(), "Login failed", logger.ErrorField(err))
		return errorJSON(c, http.StatusInternalServerError, "Login failed")
	}

	c.SetCookie(&http.Cookie{
		Name:     common.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, dto.LoginResponse{Message: "Login successful", APIKey: user.APIKey, SessionID: session.ID})
}

// Register godoc
// @Summary Register a user
// @Description Create a user; requires an authenticated caller
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   user  body    dto.RegisterRequest  true  "Username and password (at least 8 characters)"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil || req.Username == "" {
		return errorJSON(c, http.StatusBadRequest, "Username and password are required")
	}

	user, err := h.auth.Register(c.Request().Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrInvalidCredentials):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserExists):
		return errorJSON(c, http.StatusConflict, err.Error())
	case err != nil:
		h.logger.ErrorContext(c.Request().Context(), "Registration failed", logger.ErrorField(err))
		return errorJSON(c, http.StatusInternalServerError, "Registration failed")
	}
	return c.JSON(http.StatusCreated, dto.RegisterResponse{Message: "User created", APIKey: user.APIKey})
}

// GetAPIKey godoc
// @Summary Current API key
// @Description Return the API key of the authenticated user
// @Tags auth
// @Produce  json
// @Success 200 {object} dto.APIKeyResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/api-key [get]
func (h *AuthHandler) GetAPIKey(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Authentication required")
	}
	return c.JSON(http.StatusOK, dto.APIKeyResponse{Username: user.Username, APIKey: user.APIKey})
}

// Logout godoc
// @Summary Log out
// @Description End the current session
// @Tags auth
// @Produce  json
// @Success 200 {object} dto.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(common.SessionCookieName); err == nil {
		h.auth.Logout(cookie.Value)
	}
	c.SetCookie(&http.Cookie{Name: common.SessionCookieName, Value: "", Path: "/", MaxAge: -1})
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}
