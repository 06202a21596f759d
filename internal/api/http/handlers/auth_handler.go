package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/internal/service"
	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

// AuthHandler exposes the credential verification endpoints.
type AuthHandler struct {
	logon       *service.LogonService
	credentials *service.CredentialService
	claims      *service.ClaimsService
	tokens      *auth.TokenManager
	metrics     *observability.Metrics
}

// NewAuthHandler constructs handler.
func NewAuthHandler(logon *service.LogonService, credentials *service.CredentialService, claims *service.ClaimsService, tokens *auth.TokenManager, metrics *observability.Metrics) *AuthHandler {
	return &AuthHandler{
		logon:       logon,
		credentials: credentials,
		claims:      claims,
		tokens:      tokens,
		metrics:     metrics,
	}
}

// Logon handles POST /auth/logon.
func (h *AuthHandler) Logon(c *fiber.Ctx) error {
	var req dto.LogonRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	result, err := h.logon.AttemptLogon(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	if !result.Success {
		h.metrics.RecordLogon("failure")
		return c.Status(http.StatusUnauthorized).JSON(dto.LogonResponse{
			Success:             false,
			FailedLogonAttempts: result.FailedLogonAttempts,
		})
	}

	claimSet, err := h.claims.BuildClaims(c.Context(), result.Username, domain.AuthMethodPassword)
	if err != nil {
		return err
	}
	if claimSet == nil {
		h.metrics.RecordLogon("failure")
		return apperrors.NewUnauthorized("authentication failed")
	}

	token, expiresAt, err := h.tokens.IssueToken(claimSet)
	if err != nil {
		return err
	}

	h.metrics.RecordLogon("success")
	return c.JSON(dto.LogonResponse{
		Success:  true,
		Username: result.Username,
		Auth:     &dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
	})
}

// RequestPasswordReset handles POST /auth/password/reset/request.
//
// The response is identical for known and unknown usernames; the token
// itself travels by the notification channel, never in the response.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" {
		return fiber.NewError(http.StatusBadRequest, "username required")
	}

	if _, err := h.credentials.RequestPasswordReset(c.Context(), req.Username); err != nil {
		return err
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"message": "if the account exists, a reset link has been sent",
	})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.UserID == "" || req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "user_id, token, new_password required")
	}

	if err := h.credentials.ResetPasswordWithToken(c.Context(), req.UserID, req.Token, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "password has been reset"})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "current_password and new_password required")
	}

	if err := h.credentials.ChangePassword(c.Context(), principal.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "password changed"})
}
