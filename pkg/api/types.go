package api

import "time"

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OwnerRequest is the body of PUT /assets/{key}/owner
type OwnerRequest struct {
	Owner string `json:"owner"`
}

// AuthorityRequest is the body of PUT /collections/{key}/authority
type AuthorityRequest struct {
	Authority string `json:"authority"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port           int
	Bind           string
	APIKey         string
	RequestTimeout time.Duration
}
