package dto

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the credentials issued on login.
type LoginResponse struct {
	Message   string `json:"message"`
	APIKey    string `json:"api_key"`
	SessionID string `json:"session_id"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is returned after a user is created.
type RegisterResponse struct {
	Message string `json:"message"`
	APIKey  string `json:"api_key"`
}

// APIKeyResponse is the body of GET /auth/api-key.
type APIKeyResponse struct {
	Username string `json:"username"`
	APIKey   string `json:"api_key"`
}
