package dto

import (
	"time"

	"github.com/spec-kit/parking-pilot/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	Password          string  `json:"password"`
	PhoneNumber       *string `json:"phone_number,omitempty"`
	EmployeeStudentID *string `json:"employee_student_id,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// ForgotPasswordRequest payload for the reset-link flow.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest payload consuming a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// SendEmailVerificationRequest payload.
type SendEmailVerificationRequest struct {
	Email string `json:"email"`
}

// SendPhoneVerificationRequest payload.
type SendPhoneVerificationRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// VerifyEmailOTPRequest payload.
type VerifyEmailOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyPhoneOTPRequest payload.
type VerifyPhoneOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTP         string `json:"otp"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse is the account shape returned to clients. The password
// hash never leaves the service.
type AccountResponse struct {
	ID                string      `json:"id"`
	Username          string      `json:"username"`
	Email             string      `json:"email"`
	Role              domain.Role `json:"role"`
	PhoneNumber       *string     `json:"phone_number,omitempty"`
	EmployeeStudentID *string     `json:"employee_student_id,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

// NewAccountResponse maps the domain model.
func NewAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:                account.ID,
		Username:          account.Username,
		Email:             account.Email,
		Role:              account.Role,
		PhoneNumber:       account.PhoneNumber,
		EmployeeStudentID: account.EmployeeStudentID,
		CreatedAt:         account.CreatedAt,
	}
}
