package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-pilot/internal/api/dto"
	"github.com/spec-kit/parking-pilot/internal/auth"
	"github.com/spec-kit/parking-pilot/internal/service"
	"github.com/spec-kit/parking-pilot/internal/verification"
	apperrors "github.com/spec-kit/parking-pilot/pkg/util"
)

// forgotPasswordMessage is returned for every forgot-password request,
// whether or not the email belongs to an account.
const forgotPasswordMessage = "If an account exists for that email, a password reset link has been sent"

// AuthHandler exposes registration, login, password reset and ownership
// verification endpoints.
type AuthHandler struct {
	auth *service.AuthService
	otp  *verification.OTPService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, otpService *verification.OTPService) *AuthHandler {
	return &AuthHandler{auth: authService, otp: otpService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Username = sanitizeString(req.Username)
	req.Email = sanitizeEmail(req.Email)
	if len(req.Username) < 3 {
		return apperrors.NewValidationError("username must be at least 3 characters", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("a valid email is required", nil)
	}
	if len(req.Password) < 6 {
		return apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	account, token, exp, err := h.auth.Register(c.Context(), service.RegisterInput{
		Username:          req.Username,
		Email:             req.Email,
		Password:          req.Password,
		PhoneNumber:       req.PhoneNumber,
		EmployeeStudentID: req.EmployeeStudentID,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"account": dto.NewAccountResponse(account),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Email = sanitizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	account, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": dto.NewAccountResponse(account),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("access token required")
	}

	account, err := h.auth.Profile(c.Context(), claims.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Email = sanitizeEmail(req.Email)
	if req.Email == "" {
		return apperrors.NewValidationError("a valid email is required", nil)
	}

	if err := h.auth.ForgotPassword(c.Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": forgotPasswordMessage})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" {
		return apperrors.NewValidationError("reset token required", nil)
	}
	if len(req.NewPassword) < 6 {
		return apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	if err := h.auth.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password has been reset"})
}

// SendEmailVerification handles POST /auth/send-email-verification.
func (h *AuthHandler) SendEmailVerification(c *fiber.Ctx) error {
	var req dto.SendEmailVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Email = sanitizeEmail(req.Email)
	if req.Email == "" {
		return apperrors.NewValidationError("a valid email is required", nil)
	}

	if err := h.otp.Request(c.Context(), verification.ChannelEmail, req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "verification code sent to your email"})
}

// SendPhoneVerification handles POST /auth/send-phone-verification.
func (h *AuthHandler) SendPhoneVerification(c *fiber.Ctx) error {
	var req dto.SendPhoneVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.PhoneNumber = sanitizePhoneNumber(req.PhoneNumber)
	if req.PhoneNumber == "" {
		return apperrors.NewValidationError("a valid phone number is required", nil)
	}

	if err := h.otp.Request(c.Context(), verification.ChannelPhone, req.PhoneNumber); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "verification code sent to your phone"})
}

// VerifyEmailOTP handles POST /auth/verify-email-otp.
func (h *AuthHandler) VerifyEmailOTP(c *fiber.Ctx) error {
	var req dto.VerifyEmailOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Email = sanitizeEmail(req.Email)
	if req.Email == "" || req.OTP == "" {
		return apperrors.NewValidationError("email and otp required", nil)
	}

	if err := h.otp.Verify(c.Context(), verification.ChannelEmail, req.Email, req.OTP); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "verification successful"})
}

// VerifyPhoneOTP handles POST /auth/verify-phone-otp.
func (h *AuthHandler) VerifyPhoneOTP(c *fiber.Ctx) error {
	var req dto.VerifyPhoneOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.PhoneNumber = sanitizePhoneNumber(req.PhoneNumber)
	if req.PhoneNumber == "" || req.OTP == "" {
		return apperrors.NewValidationError("phone number and otp required", nil)
	}

	if err := h.otp.Verify(c.Context(), verification.ChannelPhone, req.PhoneNumber, req.OTP); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "verification successful"})
}
