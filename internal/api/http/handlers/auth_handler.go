package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/appointment-parser/internal/api/dto"
	"github.com/spec-kit/appointment-parser/internal/auth"
	"github.com/spec-kit/appointment-parser/internal/config"
	apperrors "github.com/spec-kit/appointment-parser/pkg/util"
)

// AuthHandler exchanges API keys for bearer tokens.
type AuthHandler struct {
	tokens *auth.TokenManager
	cfg    config.AuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{tokens: tokens, cfg: cfg}
}

// IssueToken POST /auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return apperrors.NewValidationError("api_key required", nil)
	}
	if h.cfg.APIKeyHash == "" {
		return apperrors.NewUnauthorized("API key authentication not configured")
	}
	if err := auth.VerifyAPIKey(h.cfg.APIKeyHash, req.APIKey); err != nil {
		return apperrors.NewUnauthorized("invalid API key")
	}

	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		clientID = "api-client"
	}
	token, expiresAt, err := h.tokens.GenerateToken(clientID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}
