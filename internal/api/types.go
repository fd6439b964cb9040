// Package api defines the shared request/response envelopes for the HTTP API.
package api

// ErrorResponse is the standard error body returned by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the standard success body for operations without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by the token endpoint on successful authentication.
type TokenResponse struct {
	Token string `json:"token"`
}

// HealthResponse is the body of the health check endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
