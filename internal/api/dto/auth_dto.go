package dto

import "time"

// TokenRequest exchanges an API key for a bearer token.
type TokenRequest struct {
	APIKey   string `json:"api_key"`
	ClientID string `json:"client_id"`
}

// TokenResponse carries the issued token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
